package ytdlp

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/savetube/savetube/internal/fetch"
)

// enginePayload widens fetch.Metadata with the alternate filename locations
// yt-dlp uses depending on flags and version.
type enginePayload struct {
	fetch.Metadata
	LegacyFilename     string `json:"_filename"`
	RequestedDownloads []struct {
		Filepath string `json:"filepath"`
	} `json:"requested_downloads"`
}

// parseMetadata extracts the info-json document from engine stdout. Download
// runs can interleave progress noise with the JSON document, so scanning runs
// from the last line backwards and takes the first parseable object.
func parseMetadata(stdout string) (fetch.Metadata, error) {
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line == "" || !strings.HasPrefix(line, "{") {
			continue
		}
		var payload enginePayload
		if err := json.Unmarshal([]byte(line), &payload); err != nil {
			continue
		}
		meta := payload.Metadata
		if meta.Filename == "" {
			meta.Filename = payload.LegacyFilename
		}
		if meta.Filename == "" && len(payload.RequestedDownloads) > 0 {
			meta.Filename = payload.RequestedDownloads[0].Filepath
		}
		return meta, nil
	}
	return fetch.Metadata{}, fmt.Errorf("no info document in engine output")
}
