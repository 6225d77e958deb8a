// Package source classifies input URLs and resolves them into
// downloadable items.
package source

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"castdl/internal/core"
	"castdl/pkg/medialink"
)

var (
	spotifyHosts = map[string]bool{
		"open.spotify.com": true,
		"spotify.com":      true,
	}

	youtubeHosts = map[string]bool{
		"youtube.com":       true,
		"www.youtube.com":   true,
		"m.youtube.com":     true,
		"music.youtube.com": true,
	}
)

// Classify determines the source kind from the URL shape alone. No
// network access; unrecognized shapes fail with core.ErrUnsupportedURL.
func Classify(rawURL string) (core.Reference, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return core.Reference{}, fmt.Errorf("%w: %q", core.ErrUnsupportedURL, rawURL)
	}

	host := strings.ToLower(u.Hostname())

	switch {
	case spotifyHosts[host]:
		kind, id, ok := classifySpotifyPath(u.Path)
		if !ok {
			return core.Reference{}, fmt.Errorf("%w: %q", core.ErrUnsupportedURL, rawURL)
		}
		return core.Reference{RawURL: rawURL, Kind: kind, ID: id}, nil

	case youtubeHosts[host]:
		if u.Query().Get("list") == "" {
			return core.Reference{}, fmt.Errorf("%w: %q", core.ErrUnsupportedURL, rawURL)
		}
		// The external tool consumes the playlist URL whole.
		return core.Reference{RawURL: rawURL, Kind: core.SourceYouTubePlaylist, ID: rawURL}, nil

	default:
		return core.Reference{}, fmt.Errorf("%w: %q", core.ErrUnsupportedURL, rawURL)
	}
}

// classifySpotifyPath walks the path segments looking for a playlist or
// show segment followed by an ID.
func classifySpotifyPath(path string) (core.SourceKind, string, bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	for i, part := range parts {
		if i+1 >= len(parts) || parts[i+1] == "" {
			continue
		}
		switch part {
		case "playlist":
			return core.SourceSpotifyPlaylist, parts[i+1], true
		case "show":
			return core.SourceSpotifyShow, parts[i+1], true
		}
	}
	return 0, "", false
}

// Resolver turns a classified reference into the ordered item list.
type Resolver struct {
	spotify core.EpisodeLister
	youtube core.PlaylistLister
	logger  *zap.Logger
}

func NewResolver(spotify core.EpisodeLister, youtube core.PlaylistLister, logger *zap.Logger) *Resolver {
	return &Resolver{
		spotify: spotify,
		youtube: youtube,
		logger:  logger,
	}
}

// Resolve produces the downloadable items for ref in upstream listing
// order. Listing failures abort resolution; per-item problems (no
// extractable link, missing ID) skip the single item with a warning.
func (r *Resolver) Resolve(ctx context.Context, ref core.Reference) ([]core.Item, error) {
	switch ref.Kind {
	case core.SourceSpotifyShow:
		episodes, err := r.spotify.ShowEpisodes(ctx, ref.ID)
		if err != nil {
			return nil, err
		}
		return r.itemsFromEpisodes(episodes), nil

	case core.SourceSpotifyPlaylist:
		episodes, err := r.spotify.PlaylistEpisodes(ctx, ref.ID)
		if err != nil {
			return nil, err
		}
		return r.itemsFromEpisodes(episodes), nil

	case core.SourceYouTubePlaylist:
		entries, err := r.youtube.ListPlaylist(ctx, ref.ID)
		if err != nil {
			return nil, err
		}
		return r.itemsFromEntries(entries), nil

	default:
		return nil, fmt.Errorf("%w: kind %s", core.ErrUnsupportedURL, ref.Kind)
	}
}

// itemsFromEpisodes scans episode descriptions for media links. The
// first link in text order wins; episodes without one are skipped.
func (r *Resolver) itemsFromEpisodes(episodes []core.Episode) []core.Item {
	var items []core.Item

	for _, ep := range episodes {
		if ep.ID == "" {
			r.logger.Warn("Episode without ID, skipping",
				zap.String("name", ep.Name))
			continue
		}

		link, ok := medialink.First(ep.Description)
		if !ok {
			r.logger.Warn("No media link in episode description, skipping",
				zap.String("id", ep.ID),
				zap.String("name", ep.Name),
				zap.Error(core.ErrNoMediaLink))
			continue
		}

		r.logger.Debug("Resolved episode",
			zap.String("id", ep.ID),
			zap.String("link", link.URL))

		items = append(items, core.Item{
			ID:         ep.ID,
			Title:      ep.Name,
			UploadDate: ep.ReleaseDate,
			SourceURL:  link.URL,
			Kind:       core.ItemSpotifyEpisode,
		})
	}

	r.logger.Info("Episode resolution finished",
		zap.Int("episodes", len(episodes)),
		zap.Int("items", len(items)))
	return items
}

func (r *Resolver) itemsFromEntries(entries []core.PlaylistEntry) []core.Item {
	var items []core.Item

	for _, entry := range entries {
		if entry.ID == "" || entry.URL == "" {
			r.logger.Warn("Playlist entry without ID or URL, skipping",
				zap.String("title", entry.Title))
			continue
		}

		items = append(items, core.Item{
			ID:         entry.ID,
			Title:      entry.Title,
			UploadDate: entry.UploadDate,
			SourceURL:  entry.URL,
			Kind:       core.ItemYouTubeVideo,
		})
	}

	return items
}
