// Music data facade for the listening-graph backend.
//
// Catalog types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/desertthunder/soundgraph/internal/shared"
)

// TimeRange selects the aggregation window for top-item queries.
type TimeRange string

const (
	ShortTerm  TimeRange = "short_term"
	MediumTerm TimeRange = "medium_term"
	LongTerm   TimeRange = "long_term"
)

// TimeRanges lists all valid ranges in ascending window order.
var TimeRanges = []TimeRange{ShortTerm, MediumTerm, LongTerm}

// Valid reports whether the value is one of the accepted ranges.
func (t TimeRange) Valid() bool {
	switch t {
	case ShortTerm, MediumTerm, LongTerm:
		return true
	}
	return false
}

// ExternalURLs carries provider links for a catalog object.
type ExternalURLs struct {
	Spotify string `json:"spotify"`
}

// Artist represents a Spotify artist.
type Artist struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Genres       []string     `json:"genres"`
	Popularity   int          `json:"popularity,omitempty"`
	Followers    Followers    `json:"followers,omitempty"`
	Images       []Image      `json:"images"`
	ExternalURLs ExternalURLs `json:"external_urls"`
}

// Album represents a Spotify album.
type Album struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	AlbumType   string   `json:"album_type"`
	Artists     []Artist `json:"artists"`
	Images      []Image  `json:"images"`
	ReleaseDate string   `json:"release_date"`
	TotalTracks int      `json:"total_tracks"`
}

// Track represents a Spotify track.
type Track struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Artists      []Artist     `json:"artists"`
	Album        Album        `json:"album"`
	DurationMS   int          `json:"duration_ms"`
	Popularity   int          `json:"popularity,omitempty"`
	PreviewURL   string       `json:"preview_url,omitempty"`
	ExternalURLs ExternalURLs `json:"external_urls"`
}

// ImportStartResponse is returned by POST /music/import. "Accepted" is not
// "complete"; completion is observed via polling.
type ImportStartResponse struct {
	Message       string `json:"message"`
	SpotifyUserID string `json:"spotify_user_id"`
	Status        string `json:"status"`
}

// ImportStatistics counts graph contents for the authenticated user.
type ImportStatistics struct {
	ArtistsInGraph int `json:"artists_in_graph"`
	TracksInGraph  int `json:"tracks_in_graph"`
	AlbumsInGraph  int `json:"albums_in_graph"`
}

// ImportStatus is the server snapshot returned by GET /music/import-status.
// Always replaced wholesale, never mutated locally.
type ImportStatus struct {
	UserExists    bool              `json:"user_exists"`
	SpotifyUserID string            `json:"spotify_user_id,omitempty"`
	Username      string            `json:"username,omitempty"`
	Email         string            `json:"email,omitempty"`
	LastSync      string            `json:"last_sync,omitempty"`
	Statistics    *ImportStatistics `json:"statistics,omitempty"`
	Message       string            `json:"message,omitempty"`
}

// Complete reports the terminal polling condition: the user node exists and
// statistics are present.
func (s *ImportStatus) Complete() bool {
	return s.UserExists && s.Statistics != nil
}

// TopArtistsResponse is the ranked-artists projection for one time range.
type TopArtistsResponse struct {
	TimeRange string   `json:"time_range"`
	Total     int      `json:"total"`
	Limit     int      `json:"limit"`
	Artists   []Artist `json:"artists"`
}

// TopTracksResponse is the ranked-tracks projection for one time range.
type TopTracksResponse struct {
	TimeRange string  `json:"time_range"`
	Total     int     `json:"total"`
	Limit     int     `json:"limit"`
	Tracks    []Track `json:"tracks"`
}

// SpotifyProfileResponse is the raw profile passthrough from GET /music/profile.
type SpotifyProfileResponse struct {
	SpotifyProfile map[string]any `json:"spotify_profile"`
}

// MusicService implements [MusicAPI] against the backend.
type MusicService struct {
	client *Client
}

// NewMusicService creates the music facade over the shared client.
func NewMusicService(client *Client) *MusicService {
	return &MusicService{client: client}
}

// StartImport asks the backend to begin an asynchronous import job.
func (s *MusicService) StartImport(ctx context.Context) (*ImportStartResponse, error) {
	var resp ImportStartResponse
	if err := s.client.do(ctx, http.MethodPost, "/music/import", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ImportStatus fetches the current import job snapshot.
func (s *MusicService) ImportStatus(ctx context.Context) (*ImportStatus, error) {
	var resp ImportStatus
	if err := s.client.do(ctx, http.MethodGet, "/music/import-status", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// normalizeTimeRange applies the medium_term default and validates the value.
func normalizeTimeRange(timeRange TimeRange) (TimeRange, error) {
	if timeRange == "" {
		return MediumTerm, nil
	}
	if !timeRange.Valid() {
		return "", fmt.Errorf("%w: time_range must be one of short_term, medium_term, long_term", shared.ErrInvalidArgument)
	}
	return timeRange, nil
}

// TopArtists fetches ranked artists, defaulting to the medium_term window.
func (s *MusicService) TopArtists(ctx context.Context, timeRange TimeRange) (*TopArtistsResponse, error) {
	timeRange, err := normalizeTimeRange(timeRange)
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("/music/top-artists?time_range=%s", url.QueryEscape(string(timeRange)))

	var resp TopArtistsResponse
	if err := s.client.do(ctx, http.MethodGet, endpoint, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// TopTracks fetches ranked tracks, defaulting to the medium_term window.
func (s *MusicService) TopTracks(ctx context.Context, timeRange TimeRange) (*TopTracksResponse, error) {
	timeRange, err := normalizeTimeRange(timeRange)
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("/music/top-tracks?time_range=%s", url.QueryEscape(string(timeRange)))

	var resp TopTracksResponse
	if err := s.client.do(ctx, http.MethodGet, endpoint, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Profile fetches the raw Spotify profile passthrough.
func (s *MusicService) Profile(ctx context.Context) (*SpotifyProfileResponse, error) {
	var resp SpotifyProfileResponse
	if err := s.client.do(ctx, http.MethodGet, "/music/profile", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
