package cms

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/savetube/savetube/internal/fetch"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(t.TempDir(), nil)
	require.NoError(t, err)
	return s
}

func TestGetEmptyDocument(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	doc, err := s.Get(DocFAQ)
	require.NoError(t, err)
	assert.Empty(t, doc)
}

func TestGetUnknownDocument(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	_, err := s.Get("secrets")
	assert.ErrorIs(t, err, fetch.ErrNotFound)
}

func TestMergePreservesUntouchedKeys(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)

	_, err := s.Merge(DocConfig, map[string]json.RawMessage{
		"title":   json.RawMessage(`"SaveTube"`),
		"tagline": json.RawMessage(`"download anything"`),
	})
	require.NoError(t, err)

	merged, err := s.Merge(DocConfig, map[string]json.RawMessage{
		"tagline": json.RawMessage(`"updated"`),
	})
	require.NoError(t, err)

	assert.JSONEq(t, `"SaveTube"`, string(merged["title"]))
	assert.JSONEq(t, `"updated"`, string(merged["tagline"]))

	// Survives a fresh read from disk.
	again, err := s.Get(DocConfig)
	require.NoError(t, err)
	assert.JSONEq(t, `"SaveTube"`, string(again["title"]))
}

func TestMergeRejectsEmptyPatch(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	_, err := s.Merge(DocTheme, nil)
	var validationErr *fetch.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestMergeNestedValuesReplacedWhole(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	_, err := s.Merge(DocConfig, map[string]json.RawMessage{
		"branding": json.RawMessage(`{"primary":"#111","accent":"#222"}`),
	})
	require.NoError(t, err)

	merged, err := s.Merge(DocConfig, map[string]json.RawMessage{
		"branding": json.RawMessage(`{"primary":"#333"}`),
	})
	require.NoError(t, err)

	// Merge is by top-level key only; nested objects replace wholesale.
	assert.JSONEq(t, `{"primary":"#333"}`, string(merged["branding"]))
}

func TestMergeRequiredKeys(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	var validationErr *fetch.ValidationError

	_, err := s.Merge(DocFAQ, map[string]json.RawMessage{
		"items": json.RawMessage(`[]`),
	})
	assert.ErrorAs(t, err, &validationErr)

	merged, err := s.Merge(DocFAQ, map[string]json.RawMessage{
		"faq_items": json.RawMessage(`[{"q":"?","a":"!"}]`),
	})
	require.NoError(t, err)
	assert.Contains(t, merged, "faq_items")

	_, err = s.Merge(DocHowto, map[string]json.RawMessage{
		"steps": json.RawMessage(`[]`),
	})
	assert.ErrorAs(t, err, &validationErr)
}

func TestMergeThemeAcceptsColorsOnly(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	var validationErr *fetch.ValidationError

	_, err := s.Merge(DocTheme, map[string]json.RawMessage{
		"theme_colors": json.RawMessage(`{"primary":"#111"}`),
		"extra":        json.RawMessage(`true`),
	})
	assert.ErrorAs(t, err, &validationErr)

	merged, err := s.Merge(DocTheme, map[string]json.RawMessage{
		"theme_colors": json.RawMessage(`{"primary":"#111"}`),
	})
	require.NoError(t, err)
	assert.Contains(t, merged, "theme_colors")
}

func TestThemeMergesIntoConfig(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	_, err := s.Merge(DocConfig, map[string]json.RawMessage{
		"title": json.RawMessage(`"SaveTube"`),
	})
	require.NoError(t, err)

	_, err = s.Merge(DocTheme, map[string]json.RawMessage{
		"theme_colors": json.RawMessage(`{"primary":"#333"}`),
	})
	require.NoError(t, err)

	// A config read reflects the theme update; the rest of config survives.
	cfg, err := s.Get(DocConfig)
	require.NoError(t, err)
	assert.JSONEq(t, `{"primary":"#333"}`, string(cfg["theme_colors"]))
	assert.JSONEq(t, `"SaveTube"`, string(cfg["title"]))

	// The theme view exposes only the colors.
	theme, err := s.Get(DocTheme)
	require.NoError(t, err)
	require.Len(t, theme, 1)
	assert.JSONEq(t, `{"primary":"#333"}`, string(theme["theme_colors"]))
}
