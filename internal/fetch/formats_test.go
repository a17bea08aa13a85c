package fetch

import "testing"

func TestSelectorFor(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		quality   string
		formatID  string
		want      string
		wantAudio bool
	}{
		{
			name:    "720p table entry",
			quality: Quality720p,
			want:    "bv*[height<=720]+ba/b[height<=720]/bv*[height<=720]/b",
		},
		{
			name:    "best table entry",
			quality: QualityBest,
			want:    "bv*+ba/b",
		},
		{
			name:      "audio only",
			quality:   QualityAudio,
			want:      "bestaudio/best",
			wantAudio: true,
		},
		{
			name:     "unknown quality falls back to format id",
			quality:  "4K Ultra",
			formatID: "bv*[height<=2160]+ba/b",
			want:     "bv*[height<=2160]+ba/b",
		},
		{
			name:    "unknown quality without format id",
			quality: "whatever",
			want:    "best",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, audio := SelectorFor(tc.quality, tc.formatID)
			if got != tc.want {
				t.Fatalf("SelectorFor(%q, %q) = %q, want %q", tc.quality, tc.formatID, got, tc.want)
			}
			if audio != tc.wantAudio {
				t.Fatalf("SelectorFor(%q, %q) audio = %v, want %v", tc.quality, tc.formatID, audio, tc.wantAudio)
			}
		})
	}
}

func TestFormatOptionsFixedList(t *testing.T) {
	t.Parallel()

	opts := FormatOptions()
	if len(opts) != 5 {
		t.Fatalf("FormatOptions() len = %d, want 5", len(opts))
	}
	if opts[0].Quality != QualityBest || opts[0].Ext != "mp4" {
		t.Fatalf("unexpected first option: %+v", opts[0])
	}
	last := opts[len(opts)-1]
	if last.Quality != QualityAudio || last.Ext != "mp3" || last.FormatID != "bestaudio" {
		t.Fatalf("unexpected audio option: %+v", last)
	}
}
