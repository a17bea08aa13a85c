package fetch

// Quality labels offered to clients. These are the keys of the selector table.
const (
	QualityBest  = "Best Quality"
	Quality720p  = "HD 720p"
	Quality480p  = "SD 480p"
	Quality360p  = "Low 360p"
	QualityAudio = "Audio Only (MP3)"
)

// FormatOption is one entry of the fixed format list returned by get-info.
type FormatOption struct {
	Quality     string `json:"quality"`
	Ext         string `json:"ext"`
	Filesize    int64  `json:"filesize"`
	FormatID    string `json:"format_id"`
	Description string `json:"description"`
}

var qualitySelectors = map[string]string{
	QualityBest:  "bv*+ba/b",
	Quality720p:  "bv*[height<=720]+ba/b[height<=720]/bv*[height<=720]/b",
	Quality480p:  "bv*[height<=480]+ba/b[height<=480]/bv*[height<=480]/b",
	Quality360p:  "bv*[height<=360]+ba/b[height<=360]/bv*[height<=360]/b",
	QualityAudio: "bestaudio/best",
}

// FormatOptions returns the fixed five-entry format list offered for every
// probed URL. Sizes are not estimated up front.
func FormatOptions() []FormatOption {
	return []FormatOption{
		{Quality: QualityBest, Ext: "mp4", FormatID: "bv*+ba/b", Description: "Best available quality"},
		{Quality: Quality720p, Ext: "mp4", FormatID: qualitySelectors[Quality720p], Description: "720p HD"},
		{Quality: Quality480p, Ext: "mp4", FormatID: qualitySelectors[Quality480p], Description: "480p SD"},
		{Quality: Quality360p, Ext: "mp4", FormatID: qualitySelectors[Quality360p], Description: "360p"},
		{Quality: QualityAudio, Ext: "mp3", FormatID: "bestaudio", Description: "MP3 audio"},
	}
}

// SelectorFor maps a requested quality label to the engine format selector.
// Unrecognized labels fall back to the caller-supplied format id, then "best".
// The second return reports whether the job is audio-only.
func SelectorFor(quality, formatID string) (string, bool) {
	if sel, ok := qualitySelectors[quality]; ok {
		return sel, quality == QualityAudio
	}
	if formatID != "" {
		return formatID, false
	}
	return "best", false
}
