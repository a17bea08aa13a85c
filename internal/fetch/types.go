package fetch

// Platform identifies the source site of a submitted URL.
type Platform string

// Supported platform classifications.
const (
	PlatformYouTube   Platform = "youtube"
	PlatformTikTok    Platform = "tiktok"
	PlatformInstagram Platform = "instagram"
	PlatformUnknown   Platform = "unknown"
)

// JobKind distinguishes metadata probes from full downloads.
type JobKind string

// Supported job kinds.
const (
	JobKindProbe    JobKind = "probe"
	JobKindDownload JobKind = "download"
)

// NormalizedRequest is a validated, canonicalized media URL plus its
// classified platform. Slideshow-style URLs have already been rewritten to
// their video-path equivalent.
type NormalizedRequest struct {
	URL      string
	Platform Platform
}

// Job is one unit of work requesting a specific rendition of a specific URL.
type Job struct {
	// ID is a short random identifier; every artifact the engine writes for
	// this job is named with it as a prefix.
	ID        string
	Kind      JobKind
	Request   NormalizedRequest
	Quality   string
	Selector  string
	AudioOnly bool
	// OutputTemplate is the engine output path template, rooted at the shared
	// download directory and parameterized by ID plus a wildcard extension.
	// Empty for probe jobs.
	OutputTemplate string
}

// Metadata is the engine's reported information about a media URL.
type Metadata struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Thumbnail string  `json:"thumbnail"`
	Duration  float64 `json:"duration"`
	Uploader  string  `json:"uploader"`
	ViewCount int64   `json:"view_count"`
	LikeCount int64   `json:"like_count"`
	Extractor string  `json:"extractor"`
	// Filename is the output path the engine reports for a completed
	// download, when it reports one.
	Filename string `json:"filename"`
}

// Result is the client-facing outcome of a download job. DownloadURL is the
// relative path contract consumed by the delivery handler.
type Result struct {
	Success     bool   `json:"success"`
	Filename    string `json:"filename"`
	DownloadURL string `json:"download_url"`
	Filesize    int64  `json:"filesize"`
}

// Completion is delivered on a queue item's reply channel once a worker
// finishes the job. Exactly one of Meta/Result is meaningful depending on the
// job kind; Err is set for hard failures.
type Completion struct {
	Meta   Metadata
	Result Result
	Err    error
}

// QueueItem wraps a job ready to run. Reply must be buffered so a worker can
// deliver the completion even if the submitter already gave up.
type QueueItem struct {
	Job       Job
	Reply     chan Completion
	Submitted int64
}
