package fetch

import (
	"strings"
)

const maxURLLength = 2048

// Characters that could enable header or argument injection into the
// downstream engine invocation.
var dangerousURLChars = []string{"<", ">", `"`, "'", ";", "(", ")", "{", "}"}

// Domains rejected outright with ErrUnsupportedPlatform.
var blockedDomainMarkers = []string{"facebook.com", "fb.watch", "fb.com"}

// ValidateURL checks the submitted URL against length, scheme, and
// dangerous-character rules. It returns a ValidationError on any violation.
func ValidateURL(raw string) error {
	if raw == "" {
		return NewValidationError("url must not be empty")
	}
	if len(raw) > maxURLLength {
		return NewValidationError("url exceeds %d characters", maxURLLength)
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		return NewValidationError("url must start with http:// or https://")
	}
	for _, c := range dangerousURLChars {
		if strings.Contains(raw, c) {
			return NewValidationError("url contains forbidden character %q", c)
		}
	}
	return nil
}

// Classify maps a URL to its source platform by substring markers.
func Classify(raw string) Platform {
	switch {
	case strings.Contains(raw, "instagram.com"):
		return PlatformInstagram
	case strings.Contains(raw, "tiktok.com"):
		return PlatformTikTok
	case strings.Contains(raw, "youtube.com"), strings.Contains(raw, "youtu.be"):
		return PlatformYouTube
	default:
		return PlatformUnknown
	}
}

// rewriteSlideshow converts TikTok photo/slideshow URLs to their video-path
// equivalent so downstream extraction treats them as video jobs. The query
// string is stripped first so repeated calls are deterministic.
func rewriteSlideshow(raw string) string {
	if !strings.Contains(raw, "tiktok.com") || !strings.Contains(raw, "/photo/") {
		return raw
	}
	if i := strings.IndexByte(raw, '?'); i >= 0 {
		raw = raw[:i]
	}
	return strings.ReplaceAll(raw, "/photo/", "/video/")
}

// Normalize validates and canonicalizes a submitted URL and classifies its
// platform. Ordering matters: generic validation, then the platform exclusion
// list, then the slideshow rewrite, then classification.
func Normalize(raw string) (NormalizedRequest, error) {
	if err := ValidateURL(raw); err != nil {
		return NormalizedRequest{}, err
	}
	for _, marker := range blockedDomainMarkers {
		if strings.Contains(raw, marker) {
			return NormalizedRequest{}, ErrUnsupportedPlatform
		}
	}
	canonical := rewriteSlideshow(raw)
	return NormalizedRequest{
		URL:      canonical,
		Platform: Classify(canonical),
	}, nil
}
