// Package ytdlp drives the external yt-dlp executable for playlist
// listing and media downloads. The process is a black box: its exit
// status and output are the only observable signals.
package ytdlp

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"

	"castdl/internal/core"
)

const (
	// printTemplate lists one video per line: id;title;upload_date;url.
	printTemplate = "%(id)s;%(title)s;%(upload_date)s;%(webpage_url)s"
	// printFieldCount is the number of ;-separated fields per line.
	printFieldCount = 4

	uploadDateLayout = "20060102"

	// stderrTailLimit bounds how much captured stderr is carried into
	// error values.
	stderrTailLimit = 500
)

// Runner invokes yt-dlp. It implements core.Downloader and
// core.PlaylistLister.
type Runner struct {
	config *core.DownloaderConfig
	logger *zap.Logger
}

func NewRunner(config *core.DownloaderConfig, logger *zap.Logger) *Runner {
	return &Runner{
		config: config,
		logger: logger,
	}
}

// Installed probes the executable. Callers treat a failure as a warning:
// the tool may still be irrelevant (nothing to download) and per-item
// invocation errors cover the rest.
func (r *Runner) Installed(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, r.config.ToolPath, "--version")
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s not runnable: %w", r.config.ToolPath, err)
	}
	return nil
}

// Download runs one blocking invocation for req. Invocation errors of
// any kind (tool missing, non-zero exit, timeout) come back as a
// core.DownloadError.
func (r *Runner) Download(ctx context.Context, req core.DownloadRequest) error {
	args := downloadArgs(req, r.config.CookiesBrowser)

	timeout := r.config.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Minute
	}
	cmdCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	r.logger.Debug("Running downloader",
		zap.String("tool", r.config.ToolPath),
		zap.Strings("args", args))

	cmd := exec.CommandContext(cmdCtx, r.config.ToolPath, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return &core.DownloadError{
			URL:    req.URL,
			Auth:   req.Auth,
			Stderr: stderrTail(stderr.String()),
			Err:    err,
		}
	}
	return nil
}

// ListPlaylist fetches playlist entries without downloading, one line
// per video. A failed listing is run-fatal and wraps as a
// core.SourceFetchError.
func (r *Runner) ListPlaylist(ctx context.Context, playlistURL string) ([]core.PlaylistEntry, error) {
	args := []string{
		"--flat-playlist",
		"--no-warnings",
		"--print", printTemplate,
		playlistURL,
	}

	timeout := r.config.ListTimeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	cmdCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	r.logger.Info("Fetching playlist listing",
		zap.String("url", playlistURL))

	cmd := exec.CommandContext(cmdCtx, r.config.ToolPath, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, &core.SourceFetchError{
			Source: "youtube playlist",
			Err:    fmt.Errorf("%w: %s", err, stderrTail(stderr.String())),
		}
	}

	entries := r.parseListing(stdout.String())
	r.logger.Info("Playlist listing fetched",
		zap.String("url", playlistURL),
		zap.Int("entries", len(entries)))
	return entries, nil
}

// parseListing turns --print output into entries, skipping malformed
// lines with a warning.
func (r *Runner) parseListing(out string) []core.PlaylistEntry {
	var entries []core.PlaylistEntry

	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		entry, ok := parseListingLine(line)
		if !ok {
			r.logger.Warn("Skipping malformed listing line", zap.String("line", line))
			continue
		}
		entries = append(entries, entry)
	}

	return entries
}

// parseListingLine splits one id;title;upload_date;url line. The title
// may itself contain semicolons, so the line is split from both ends.
func parseListingLine(line string) (core.PlaylistEntry, bool) {
	head, rest, ok := strings.Cut(line, ";")
	if !ok {
		return core.PlaylistEntry{}, false
	}
	// url and upload_date never contain semicolons; peel them off the end.
	rest, url, ok := cutLast(rest, ";")
	if !ok {
		return core.PlaylistEntry{}, false
	}
	title, date, ok := cutLast(rest, ";")
	if !ok {
		return core.PlaylistEntry{}, false
	}

	id := strings.TrimSpace(head)
	url = strings.TrimSpace(url)
	if id == "" || url == "" {
		return core.PlaylistEntry{}, false
	}

	return core.PlaylistEntry{
		ID:         id,
		Title:      strings.TrimSpace(title),
		UploadDate: parseUploadDate(date),
		URL:        url,
	}, true
}

func cutLast(s, sep string) (before, after string, found bool) {
	idx := strings.LastIndex(s, sep)
	if idx < 0 {
		return s, "", false
	}
	return s[:idx], s[idx+len(sep):], true
}

// parseUploadDate parses yt-dlp's YYYYMMDD upload_date. Flat playlist
// extraction often yields "NA"; that maps to the zero time.
func parseUploadDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" || s == "NA" {
		return time.Time{}
	}
	t, err := time.Parse(uploadDateLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// downloadArgs builds the argv tail for one invocation.
func downloadArgs(req core.DownloadRequest, cookiesBrowser string) []string {
	var args []string

	if req.Auth == core.AuthBrowserCookies {
		args = append(args, "--cookies-from-browser", cookiesBrowser)
	}

	switch req.Format {
	case core.FormatVideo:
		args = append(args,
			"-f", "bestvideo[ext=mp4]+bestaudio[ext=m4a]/best[ext=mp4]/best",
			"--merge-output-format", "mp4",
		)
	default:
		args = append(args,
			"-x",
			"--audio-format", "mp3",
			"--audio-quality", "0",
		)
	}

	args = append(args, "-o", req.TargetPath, req.URL)
	return args
}

func stderrTail(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= stderrTailLimit {
		return s
	}
	return s[len(s)-stderrTailLimit:]
}
