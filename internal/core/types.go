package core

import (
	"context"
	"fmt"
	"time"
)

// SourceKind classifies a user-supplied source reference.
type SourceKind int

const (
	// SourceSpotifyPlaylist is an open.spotify.com/playlist/<id> reference
	SourceSpotifyPlaylist SourceKind = iota
	// SourceSpotifyShow is an open.spotify.com/show/<id> reference
	SourceSpotifyShow
	// SourceYouTubePlaylist is a youtube.com URL with a list query parameter
	SourceYouTubePlaylist
)

func (k SourceKind) String() string {
	switch k {
	case SourceSpotifyPlaylist:
		return "spotify_playlist"
	case SourceSpotifyShow:
		return "spotify_show"
	case SourceYouTubePlaylist:
		return "youtube_playlist"
	default:
		return fmt.Sprintf("source_kind(%d)", int(k))
	}
}

// IsSpotify reports whether resolving this kind needs Spotify credentials.
func (k SourceKind) IsSpotify() bool {
	return k == SourceSpotifyPlaylist || k == SourceSpotifyShow
}

// Reference is the classified form of the user's input URL. It is built
// once per run and never mutated. For YouTube playlists ID carries the
// original URL since the external tool consumes it whole.
type Reference struct {
	RawURL string
	Kind   SourceKind
	ID     string
}

// ItemKind tells which identifier namespace an item's ID belongs to.
type ItemKind int

const (
	// ItemSpotifyEpisode is an episode resolved from a show or playlist description
	ItemSpotifyEpisode ItemKind = iota
	// ItemYouTubeVideo is a video listed directly from a YouTube playlist
	ItemYouTubeVideo
)

func (k ItemKind) String() string {
	switch k {
	case ItemSpotifyEpisode:
		return "spotify_episode"
	case ItemYouTubeVideo:
		return "youtube_video"
	default:
		return fmt.Sprintf("item_kind(%d)", int(k))
	}
}

// Item is one resolvable unit of downloadable media. ID is never empty:
// the resolver drops items it cannot identify before they reach the
// orchestrator.
type Item struct {
	ID         string
	Title      string
	UploadDate time.Time // zero when unknown
	SourceURL  string
	Kind       ItemKind
}

// Episode is one listing record returned by the Spotify client.
type Episode struct {
	ID          string
	Name        string
	Description string
	ReleaseDate time.Time // zero when unknown
}

// PlaylistEntry is one listing record returned by the YouTube playlist
// lister.
type PlaylistEntry struct {
	ID         string
	Title      string
	UploadDate time.Time // zero when unknown
	URL        string
}

// MediaFormat selects the requested download format.
type MediaFormat int

const (
	// FormatAudio downloads best audio transcoded to mp3
	FormatAudio MediaFormat = iota
	// FormatVideo downloads best mp4 video
	FormatVideo
)

func (f MediaFormat) String() string {
	switch f {
	case FormatAudio:
		return "audio"
	case FormatVideo:
		return "video"
	default:
		return fmt.Sprintf("media_format(%d)", int(f))
	}
}

// Extension returns the file extension the external tool produces for
// this format.
func (f MediaFormat) Extension() string {
	if f == FormatVideo {
		return "mp4"
	}
	return "mp3"
}

// ParseMediaFormat parses the --format flag value.
func ParseMediaFormat(s string) (MediaFormat, error) {
	switch s {
	case "audio":
		return FormatAudio, nil
	case "video":
		return FormatVideo, nil
	default:
		return FormatAudio, fmt.Errorf("unknown format %q (must be audio or video)", s)
	}
}

// AuthMode selects how a downloader invocation authenticates.
type AuthMode int

const (
	// AuthNone is the standard anonymous invocation
	AuthNone AuthMode = iota
	// AuthBrowserCookies supplies browser-cookie-based authentication
	AuthBrowserCookies
)

func (m AuthMode) String() string {
	switch m {
	case AuthNone:
		return "none"
	case AuthBrowserCookies:
		return "browser_cookies"
	default:
		return fmt.Sprintf("auth_mode(%d)", int(m))
	}
}

// ItemState tracks one item through the download attempt sequence.
type ItemState int

const (
	// StatePending means the item has not been looked at yet
	StatePending ItemState = iota
	// StateDownloading means the primary invocation is running
	StateDownloading
	// StateFallbackDownloading means the fallback invocation is running
	StateFallbackDownloading
	// StateSucceeded is terminal and ledger-recorded
	StateSucceeded
	// StateSkipped means the ledger already contained the item
	StateSkipped
	// StateFailed is terminal and not recorded, eligible for retry next run
	StateFailed
)

func (s ItemState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateDownloading:
		return "downloading"
	case StateFallbackDownloading:
		return "fallback_downloading"
	case StateSucceeded:
		return "succeeded"
	case StateSkipped:
		return "skipped"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("item_state(%d)", int(s))
	}
}

// DownloadRequest describes one external downloader invocation.
type DownloadRequest struct {
	URL        string
	TargetPath string
	Format     MediaFormat
	Auth       AuthMode
}

// Summary accumulates per-item outcomes for the end-of-run report.
type Summary struct {
	Succeeded         int
	FallbackSucceeded int
	Skipped           int
	Failed            int
}

// Total returns the number of items the orchestrator looked at.
func (s Summary) Total() int {
	return s.Succeeded + s.Skipped + s.Failed
}

// EpisodeLister lists episodes from the secondary platform.
type EpisodeLister interface {
	ShowEpisodes(ctx context.Context, showID string) ([]Episode, error)
	PlaylistEpisodes(ctx context.Context, playlistID string) ([]Episode, error)
}

// PlaylistLister lists entries of a video-platform playlist.
type PlaylistLister interface {
	ListPlaylist(ctx context.Context, playlistURL string) ([]PlaylistEntry, error)
}

// Downloader runs one blocking external download invocation.
type Downloader interface {
	Download(ctx context.Context, req DownloadRequest) error
}

// Ledger is the persistent set of identifiers already downloaded.
type Ledger interface {
	Contains(id string) bool
	Record(id string) error
}
