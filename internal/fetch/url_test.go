package fetch

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateURL(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{name: "valid https", url: "https://www.youtube.com/watch?v=abc123", wantErr: false},
		{name: "valid http", url: "http://youtu.be/abc123", wantErr: false},
		{name: "empty", url: "", wantErr: true},
		{name: "missing scheme", url: "www.youtube.com/watch?v=abc", wantErr: true},
		{name: "ftp scheme", url: "ftp://example.com/file", wantErr: true},
		{name: "angle bracket", url: "https://example.com/<script>", wantErr: true},
		{name: "quote", url: `https://example.com/"x`, wantErr: true},
		{name: "semicolon", url: "https://example.com/a;b", wantErr: true},
		{name: "braces", url: "https://example.com/{x}", wantErr: true},
		{name: "too long", url: "https://example.com/" + strings.Repeat("a", 2048), wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateURL(tc.url)
			if (err != nil) != tc.wantErr {
				t.Fatalf("ValidateURL(%q) error = %v, wantErr %v", tc.url, err, tc.wantErr)
			}
			if err != nil {
				var verr *ValidationError
				if !errors.As(err, &verr) {
					t.Fatalf("expected ValidationError, got %T", err)
				}
			}
		})
	}
}

func TestNormalizeRejectsFacebook(t *testing.T) {
	t.Parallel()

	for _, url := range []string{
		"https://www.facebook.com/watch?v=123",
		"https://fb.watch/abc",
		"https://fb.com/video/1",
	} {
		if _, err := Normalize(url); !errors.Is(err, ErrUnsupportedPlatform) {
			t.Fatalf("Normalize(%q) error = %v, want ErrUnsupportedPlatform", url, err)
		}
	}
}

func TestNormalizeSlideshowRewrite(t *testing.T) {
	t.Parallel()

	in := "https://www.tiktok.com/@user/photo/7301234567890123456?is_from_webapp=1&sender_device=pc"
	want := "https://www.tiktok.com/@user/video/7301234567890123456"

	req, err := Normalize(in)
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if req.URL != want {
		t.Fatalf("Normalize() url = %q, want %q", req.URL, want)
	}
	if req.Platform != PlatformTikTok {
		t.Fatalf("Normalize() platform = %q, want tiktok", req.Platform)
	}

	// Rewriting is deterministic: a second pass over the result is a no-op.
	again, err := Normalize(req.URL)
	if err != nil {
		t.Fatalf("Normalize() second pass error = %v", err)
	}
	if again.URL != want {
		t.Fatalf("Normalize() second pass url = %q, want %q", again.URL, want)
	}
}

func TestClassify(t *testing.T) {
	t.Parallel()

	cases := []struct {
		url  string
		want Platform
	}{
		{"https://www.youtube.com/watch?v=abc123", PlatformYouTube},
		{"https://youtu.be/abc123", PlatformYouTube},
		{"https://www.tiktok.com/@user/video/1", PlatformTikTok},
		{"https://www.instagram.com/reel/xyz/", PlatformInstagram},
		{"https://vimeo.com/12345", PlatformUnknown},
	}
	for _, tc := range cases {
		if got := Classify(tc.url); got != tc.want {
			t.Fatalf("Classify(%q) = %q, want %q", tc.url, got, tc.want)
		}
	}
}
