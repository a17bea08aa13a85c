package ytdlp

import "github.com/savetube/savetube/internal/fetch"

// Instagram rejects anonymous API clients; the web app id plus a referer is
// enough to look like the browser client.
const instagramAppID = "936619743392459"

// platformHeaders returns extra request headers in "Field:Value" form.
func platformHeaders(platform fetch.Platform) []string {
	switch platform {
	case fetch.PlatformInstagram:
		return []string{
			"Referer:https://www.instagram.com/",
			"X-IG-App-ID:" + instagramAppID,
		}
	default:
		return nil
	}
}

// extractorArgs returns per-site extractor arguments. YouTube gets a spread
// of player clients so throttled or gated responses from one client can be
// served by another.
func extractorArgs(platform fetch.Platform) string {
	switch platform {
	case fetch.PlatformYouTube:
		return "youtube:player_client=android,web,ios"
	default:
		return ""
	}
}
