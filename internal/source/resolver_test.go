package source

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"castdl/internal/core"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		wantKind core.SourceKind
		wantID   string
		wantErr  bool
	}{
		{
			name:     "Spotify playlist",
			url:      "https://open.spotify.com/playlist/37i9dQZF1DXcBWIGoYBM5M",
			wantKind: core.SourceSpotifyPlaylist,
			wantID:   "37i9dQZF1DXcBWIGoYBM5M",
		},
		{
			name:     "Spotify show",
			url:      "https://open.spotify.com/show/4rOoJ6Egrf8K2IrywzwOMk",
			wantKind: core.SourceSpotifyShow,
			wantID:   "4rOoJ6Egrf8K2IrywzwOMk",
		},
		{
			name:     "Spotify show with locale prefix",
			url:      "https://open.spotify.com/intl-de/show/4rOoJ6Egrf8K2IrywzwOMk",
			wantKind: core.SourceSpotifyShow,
			wantID:   "4rOoJ6Egrf8K2IrywzwOMk",
		},
		{
			name:     "Spotify show with query",
			url:      "https://open.spotify.com/show/4rOoJ6Egrf8K2IrywzwOMk?si=xyz",
			wantKind: core.SourceSpotifyShow,
			wantID:   "4rOoJ6Egrf8K2IrywzwOMk",
		},
		{
			name:     "YouTube playlist",
			url:      "https://www.youtube.com/playlist?list=PLBCF2DAC6FFB574DE",
			wantKind: core.SourceYouTubePlaylist,
			wantID:   "https://www.youtube.com/playlist?list=PLBCF2DAC6FFB574DE",
		},
		{
			name:     "YouTube watch URL with list param",
			url:      "https://music.youtube.com/watch?v=abc123XYZ89&list=PLx",
			wantKind: core.SourceYouTubePlaylist,
			wantID:   "https://music.youtube.com/watch?v=abc123XYZ89&list=PLx",
		},
		{
			name:    "YouTube watch URL without list param",
			url:     "https://www.youtube.com/watch?v=abc123XYZ89",
			wantErr: true,
		},
		{
			name:    "Spotify track",
			url:     "https://open.spotify.com/track/11dFghVXANMlKmJXsNCbNl",
			wantErr: true,
		},
		{
			name:    "Unrelated site",
			url:     "https://example.com/playlist/123",
			wantErr: true,
		},
		{
			name:    "Not a URL",
			url:     "definitely not a url",
			wantErr: true,
		},
		{
			name:    "Spotify show without ID segment",
			url:     "https://open.spotify.com/show/",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref, err := Classify(tt.url)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Classify(%q) = %+v, want error", tt.url, ref)
				}
				if !errors.Is(err, core.ErrUnsupportedURL) {
					t.Errorf("Classify(%q) error = %v, want ErrUnsupportedURL", tt.url, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Classify(%q) returned error: %v", tt.url, err)
			}
			if ref.Kind != tt.wantKind {
				t.Errorf("Kind = %s, want %s", ref.Kind, tt.wantKind)
			}
			if ref.ID != tt.wantID {
				t.Errorf("ID = %q, want %q", ref.ID, tt.wantID)
			}
			if ref.RawURL != tt.url {
				t.Errorf("RawURL = %q, want %q", ref.RawURL, tt.url)
			}
		})
	}
}

type fakeEpisodeLister struct {
	episodes []core.Episode
	err      error

	showCalls     []string
	playlistCalls []string
}

func (f *fakeEpisodeLister) ShowEpisodes(_ context.Context, showID string) ([]core.Episode, error) {
	f.showCalls = append(f.showCalls, showID)
	return f.episodes, f.err
}

func (f *fakeEpisodeLister) PlaylistEpisodes(_ context.Context, playlistID string) ([]core.Episode, error) {
	f.playlistCalls = append(f.playlistCalls, playlistID)
	return f.episodes, f.err
}

type fakePlaylistLister struct {
	entries []core.PlaylistEntry
	err     error
	calls   []string
}

func (f *fakePlaylistLister) ListPlaylist(_ context.Context, playlistURL string) ([]core.PlaylistEntry, error) {
	f.calls = append(f.calls, playlistURL)
	return f.entries, f.err
}

func TestResolver_ShowEpisodes(t *testing.T) {
	spotify := &fakeEpisodeLister{
		episodes: []core.Episode{
			{ID: "ep1", Name: "With link", Description: "watch https://youtu.be/abc123XYZ89 now"},
			{ID: "ep2", Name: "No link", Description: "just words"},
			{ID: "ep3", Name: "Two links", Description: "https://youtu.be/first123456 and https://youtu.be/second12345"},
			{ID: "", Name: "No ID", Description: "https://youtu.be/orphan12345"},
		},
	}
	r := NewResolver(spotify, &fakePlaylistLister{}, zap.NewNop())

	items, err := r.Resolve(context.Background(), core.Reference{
		Kind: core.SourceSpotifyShow,
		ID:   "show1",
	})
	if err != nil {
		t.Fatalf("Resolve() returned error: %v", err)
	}

	if len(spotify.showCalls) != 1 || spotify.showCalls[0] != "show1" {
		t.Errorf("ShowEpisodes calls = %v, want [show1]", spotify.showCalls)
	}

	if len(items) != 2 {
		t.Fatalf("Resolve() returned %d items, want 2: %+v", len(items), items)
	}

	if items[0].ID != "ep1" || items[0].SourceURL != "https://youtu.be/abc123XYZ89" {
		t.Errorf("items[0] = %+v", items[0])
	}
	if items[0].Kind != core.ItemSpotifyEpisode {
		t.Errorf("items[0].Kind = %s, want spotify_episode", items[0].Kind)
	}

	// Multiple links: first in text order wins.
	if items[1].ID != "ep3" || items[1].SourceURL != "https://youtu.be/first123456" {
		t.Errorf("items[1] = %+v", items[1])
	}
}

func TestResolver_PlaylistUsesEpisodeScan(t *testing.T) {
	spotify := &fakeEpisodeLister{
		episodes: []core.Episode{
			{ID: "ep1", Name: "Ep", Description: "https://www.youtube.com/watch?v=abc123XYZ89"},
		},
	}
	r := NewResolver(spotify, &fakePlaylistLister{}, zap.NewNop())

	items, err := r.Resolve(context.Background(), core.Reference{
		Kind: core.SourceSpotifyPlaylist,
		ID:   "pl1",
	})
	if err != nil {
		t.Fatalf("Resolve() returned error: %v", err)
	}

	if len(spotify.playlistCalls) != 1 || spotify.playlistCalls[0] != "pl1" {
		t.Errorf("PlaylistEpisodes calls = %v, want [pl1]", spotify.playlistCalls)
	}
	if len(items) != 1 || items[0].ID != "ep1" {
		t.Fatalf("items = %+v", items)
	}
}

func TestResolver_YouTubePlaylist(t *testing.T) {
	youtube := &fakePlaylistLister{
		entries: []core.PlaylistEntry{
			{ID: "vid1", Title: "First", URL: "https://www.youtube.com/watch?v=vid1"},
			{ID: "", Title: "Broken", URL: "https://www.youtube.com/watch?v=none"},
			{ID: "vid2", Title: "Second", URL: "https://www.youtube.com/watch?v=vid2"},
		},
	}
	r := NewResolver(&fakeEpisodeLister{}, youtube, zap.NewNop())

	playlistURL := "https://www.youtube.com/playlist?list=PLx"
	items, err := r.Resolve(context.Background(), core.Reference{
		Kind: core.SourceYouTubePlaylist,
		ID:   playlistURL,
	})
	if err != nil {
		t.Fatalf("Resolve() returned error: %v", err)
	}

	if len(youtube.calls) != 1 || youtube.calls[0] != playlistURL {
		t.Errorf("ListPlaylist calls = %v", youtube.calls)
	}

	if len(items) != 2 {
		t.Fatalf("Resolve() returned %d items, want 2", len(items))
	}
	if items[0].ID != "vid1" || items[1].ID != "vid2" {
		t.Errorf("item order = %q, %q", items[0].ID, items[1].ID)
	}
	if items[0].Kind != core.ItemYouTubeVideo {
		t.Errorf("items[0].Kind = %s, want youtube_video", items[0].Kind)
	}
}

func TestResolver_FetchErrorPropagates(t *testing.T) {
	fetchErr := &core.SourceFetchError{Source: "spotify show", Err: errors.New("boom")}
	r := NewResolver(&fakeEpisodeLister{err: fetchErr}, &fakePlaylistLister{}, zap.NewNop())

	_, err := r.Resolve(context.Background(), core.Reference{
		Kind: core.SourceSpotifyShow,
		ID:   "show1",
	})

	var sfe *core.SourceFetchError
	if !errors.As(err, &sfe) {
		t.Fatalf("Resolve() error = %v, want *core.SourceFetchError", err)
	}
}
