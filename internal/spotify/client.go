// Package spotify lists show episodes and playlist items via the Spotify
// Web API using the client-credentials flow.
package spotify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"castdl/internal/core"
)

const pageLimit = 50

// Client wraps the Spotify Web API for listing-only access. It
// implements core.EpisodeLister.
type Client struct {
	api    *spotify.Client
	logger *zap.Logger
}

// NewClient authenticates with the client-credentials flow. Missing
// credentials fail fast with core.ErrMissingCredentials before any
// network call.
func NewClient(ctx context.Context, config *core.SpotifyConfig, logger *zap.Logger) (*Client, error) {
	if !config.HasCredentials() {
		return nil, core.ErrMissingCredentials
	}

	cc := &clientcredentials.Config{
		ClientID:     config.ClientID,
		ClientSecret: config.ClientSecret,
		TokenURL:     spotifyauth.TokenURL,
	}
	httpClient, err := newAuthClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("spotify authentication failed: %w", err)
	}

	logger.Info("Authenticated with Spotify API")

	return &Client{
		api:    spotify.New(httpClient),
		logger: logger,
	}, nil
}

// newAuthClient builds an HTTP client backed by a renewing token
// source. Client-credentials tokens expire after about an hour and
// carry no refresh token, so long listing runs must re-request through
// the source rather than pin a single token. The initial fetch is
// eager so bad credentials fail before any API call.
func newAuthClient(ctx context.Context, cc *clientcredentials.Config) (*http.Client, error) {
	tokenSource := cc.TokenSource(ctx)
	if _, err := tokenSource.Token(); err != nil {
		return nil, err
	}
	return oauth2.NewClient(ctx, tokenSource), nil
}

// ShowEpisodes lists all episodes of a show in upstream order.
func (c *Client) ShowEpisodes(ctx context.Context, showID string) ([]core.Episode, error) {
	c.logger.Info("Fetching show episodes", zap.String("showID", showID))

	page, err := c.api.GetShowEpisodes(ctx, showID, spotify.Limit(pageLimit))
	if err != nil {
		return nil, &core.SourceFetchError{Source: "spotify show", Err: err}
	}

	var episodes []core.Episode
	for {
		for i := range page.Episodes {
			episodes = append(episodes, convertEpisode(&page.Episodes[i]))
		}

		c.logger.Debug("Fetched show episode page",
			zap.Int("pageSize", len(page.Episodes)),
			zap.Int("total", len(episodes)))

		err = c.api.NextPage(ctx, page)
		if errors.Is(err, spotify.ErrNoMorePages) {
			break
		}
		if err != nil {
			return nil, &core.SourceFetchError{Source: "spotify show", Err: err}
		}
	}

	c.logger.Info("Show episodes fetched", zap.Int("count", len(episodes)))
	return episodes, nil
}

// PlaylistEpisodes lists the episode-typed items of a playlist in
// upstream order. Plain tracks carry no scannable description and are
// skipped.
func (c *Client) PlaylistEpisodes(ctx context.Context, playlistID string) ([]core.Episode, error) {
	c.logger.Info("Fetching playlist items", zap.String("playlistID", playlistID))

	var episodes []core.Episode
	skippedTracks := 0
	offset := 0

	for {
		page, err := c.api.GetPlaylistItems(ctx, spotify.ID(playlistID),
			spotify.Limit(pageLimit), spotify.Offset(offset))
		if err != nil {
			return nil, &core.SourceFetchError{Source: "spotify playlist", Err: err}
		}

		for i := range page.Items {
			episode := page.Items[i].Track.Episode
			if episode == nil {
				skippedTracks++
				continue
			}
			episodes = append(episodes, convertEpisode(episode))
		}

		if len(page.Items) < pageLimit {
			break
		}
		offset += pageLimit
	}

	c.logger.Info("Playlist items fetched",
		zap.Int("episodes", len(episodes)),
		zap.Int("skippedTracks", skippedTracks))
	return episodes, nil
}

func convertEpisode(ep *spotify.EpisodePage) core.Episode {
	return core.Episode{
		ID:          string(ep.ID),
		Name:        ep.Name,
		Description: ep.Description,
		ReleaseDate: parseReleaseDate(ep.ReleaseDate),
	}
}

// parseReleaseDate handles Spotify's variable release date precision
// (day, month or year). Anything unparsable maps to the zero time.
func parseReleaseDate(s string) time.Time {
	for _, layout := range []string{"2006-01-02", "2006-01", "2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
