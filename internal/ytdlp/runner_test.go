package ytdlp

import (
	"reflect"
	"testing"
	"time"

	"go.uber.org/zap"

	"castdl/internal/core"
)

func TestDownloadArgs(t *testing.T) {
	tests := []struct {
		name string
		req  core.DownloadRequest
		want []string
	}{
		{
			name: "Audio primary",
			req: core.DownloadRequest{
				URL:        "https://youtu.be/abc123XYZ89",
				TargetPath: "out/ep.mp3",
				Format:     core.FormatAudio,
				Auth:       core.AuthNone,
			},
			want: []string{
				"-x", "--audio-format", "mp3", "--audio-quality", "0",
				"-o", "out/ep.mp3", "https://youtu.be/abc123XYZ89",
			},
		},
		{
			name: "Audio fallback with browser cookies",
			req: core.DownloadRequest{
				URL:        "https://youtu.be/abc123XYZ89",
				TargetPath: "out/ep.mp3",
				Format:     core.FormatAudio,
				Auth:       core.AuthBrowserCookies,
			},
			want: []string{
				"--cookies-from-browser", "firefox",
				"-x", "--audio-format", "mp3", "--audio-quality", "0",
				"-o", "out/ep.mp3", "https://youtu.be/abc123XYZ89",
			},
		},
		{
			name: "Video primary",
			req: core.DownloadRequest{
				URL:        "https://www.youtube.com/watch?v=abc123XYZ89",
				TargetPath: "out/vid.mp4",
				Format:     core.FormatVideo,
				Auth:       core.AuthNone,
			},
			want: []string{
				"-f", "bestvideo[ext=mp4]+bestaudio[ext=m4a]/best[ext=mp4]/best",
				"--merge-output-format", "mp4",
				"-o", "out/vid.mp4", "https://www.youtube.com/watch?v=abc123XYZ89",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := downloadArgs(tt.req, "firefox")
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("downloadArgs() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseListingLine(t *testing.T) {
	tests := []struct {
		name   string
		line   string
		want   core.PlaylistEntry
		wantOK bool
	}{
		{
			name: "Well formed",
			line: "abc123XYZ89;Some Title;20240309;https://www.youtube.com/watch?v=abc123XYZ89",
			want: core.PlaylistEntry{
				ID:         "abc123XYZ89",
				Title:      "Some Title",
				UploadDate: time.Date(2024, time.March, 9, 0, 0, 0, 0, time.UTC),
				URL:        "https://www.youtube.com/watch?v=abc123XYZ89",
			},
			wantOK: true,
		},
		{
			name: "Semicolons inside title",
			line: "id1;Salt; Fat; Acid; Heat;NA;https://www.youtube.com/watch?v=id1",
			want: core.PlaylistEntry{
				ID:    "id1",
				Title: "Salt; Fat; Acid; Heat",
				URL:   "https://www.youtube.com/watch?v=id1",
			},
			wantOK: true,
		},
		{
			name: "Missing upload date",
			line: "id2;Title;NA;https://www.youtube.com/watch?v=id2",
			want: core.PlaylistEntry{
				ID:    "id2",
				Title: "Title",
				URL:   "https://www.youtube.com/watch?v=id2",
			},
			wantOK: true,
		},
		{
			name:   "Too few fields",
			line:   "id3;only a title",
			wantOK: false,
		},
		{
			name:   "Empty id",
			line:   ";Title;NA;https://www.youtube.com/watch?v=id4",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseListingLine(tt.line)
			if ok != tt.wantOK {
				t.Fatalf("parseListingLine() ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if got.ID != tt.want.ID || got.Title != tt.want.Title || got.URL != tt.want.URL {
				t.Errorf("parseListingLine() = %+v, want %+v", got, tt.want)
			}
			if !got.UploadDate.Equal(tt.want.UploadDate) {
				t.Errorf("UploadDate = %v, want %v", got.UploadDate, tt.want.UploadDate)
			}
		})
	}
}

func TestParseListing_SkipsMalformedLines(t *testing.T) {
	r := NewRunner(&core.DownloaderConfig{ToolPath: "yt-dlp"}, zap.NewNop())

	out := "id1;First;NA;https://www.youtube.com/watch?v=id1\n" +
		"garbage line\n" +
		"\n" +
		"id2;Second;20230101;https://www.youtube.com/watch?v=id2\n"

	entries := r.parseListing(out)
	if len(entries) != 2 {
		t.Fatalf("parseListing() returned %d entries, want 2", len(entries))
	}
	if entries[0].ID != "id1" || entries[1].ID != "id2" {
		t.Errorf("parseListing() order = %q, %q", entries[0].ID, entries[1].ID)
	}
}

func TestParseUploadDate(t *testing.T) {
	if got := parseUploadDate("20240309"); got.IsZero() {
		t.Error("parseUploadDate(20240309) returned zero time")
	}
	for _, s := range []string{"", "NA", "not-a-date"} {
		if got := parseUploadDate(s); !got.IsZero() {
			t.Errorf("parseUploadDate(%q) = %v, want zero time", s, got)
		}
	}
}
