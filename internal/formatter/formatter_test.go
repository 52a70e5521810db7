package formatter

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/soundgraph/internal/services"
	"github.com/desertthunder/soundgraph/internal/tasks"
)

var testArtists = &services.TopArtistsResponse{
	TimeRange: "medium_term",
	Total:     2,
	Artists: []services.Artist{
		{ID: "a1", Name: "Khruangbin", Genres: []string{"psychedelic funk", "dub"}, Popularity: 74, Followers: services.Followers{Total: 1500000}},
		{ID: "a2", Name: "Men I Trust", Genres: []string{"indie pop"}, Popularity: 70},
	},
}

var testTracks = &services.TopTracksResponse{
	TimeRange: "short_term",
	Total:     1,
	Tracks: []services.Track{
		{
			ID:         "t1",
			Name:       "Texas Sun",
			Artists:    []services.Artist{{Name: "Khruangbin"}, {Name: "Leon Bridges"}},
			Album:      services.Album{Name: "Texas Sun"},
			DurationMS: 252000,
			Popularity: 68,
		},
	},
}

func TestArtistNames(t *testing.T) {
	got := ArtistNames(testTracks.Tracks[0].Artists)
	if got != "Khruangbin, Leon Bridges" {
		t.Errorf("expected joined names, got %q", got)
	}

	if ArtistNames(nil) != "" {
		t.Error("expected empty string for no artists")
	}
}

func TestCSV(t *testing.T) {
	t.Run("Artists", func(t *testing.T) {
		data, err := ArtistsToCSV(testArtists)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
		if err != nil {
			t.Fatalf("expected valid CSV, got %v", err)
		}
		if len(records) != 3 {
			t.Fatalf("expected header plus 2 rows, got %d", len(records))
		}
		if records[1][2] != "Khruangbin" {
			t.Errorf("expected artist name in column 3, got %s", records[1][2])
		}
		if records[1][3] != "psychedelic funk; dub" {
			t.Errorf("expected joined genres, got %s", records[1][3])
		}
	})

	t.Run("Tracks", func(t *testing.T) {
		data, err := TracksToCSV(testTracks)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
		if err != nil {
			t.Fatalf("expected valid CSV, got %v", err)
		}
		if records[1][3] != "Khruangbin, Leon Bridges" {
			t.Errorf("expected joined artists, got %s", records[1][3])
		}
		if records[1][5] != "252000" {
			t.Errorf("expected duration in ms, got %s", records[1][5])
		}
	})
}

func TestMarkdown(t *testing.T) {
	t.Run("Artists", func(t *testing.T) {
		out := string(ArtistsToMarkdown(testArtists))

		if !strings.Contains(out, "# Top Artists (medium_term)") {
			t.Error("expected heading with time range")
		}
		if !strings.Contains(out, "1. Khruangbin (psychedelic funk, dub)") {
			t.Errorf("expected ranked entry with genres, got:\n%s", out)
		}
	})

	t.Run("Tracks", func(t *testing.T) {
		out := string(TracksToMarkdown(testTracks))

		if !strings.Contains(out, "1. Khruangbin, Leon Bridges - Texas Sun (Texas Sun) [4:12]") {
			t.Errorf("expected ranked entry with album and duration, got:\n%s", out)
		}
	})
}

func TestText(t *testing.T) {
	out := string(TracksToText(testTracks))
	if !strings.Contains(out, "Top Tracks (short_term): 1") {
		t.Error("expected summary line")
	}
	if !strings.Contains(out, "1. Khruangbin, Leon Bridges - Texas Sun") {
		t.Errorf("expected ranked line, got:\n%s", out)
	}
}

func TestWriteExport(t *testing.T) {
	slices := []tasks.ExportSlice{
		{TimeRange: services.MediumTerm, Artists: testArtists},
		{TimeRange: services.ShortTerm, Tracks: testTracks},
	}

	t.Run("CSV Default", func(t *testing.T) {
		base := filepath.Join(t.TempDir(), "export")

		result, err := WriteExport(slices, base, "")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(result.Files) != 2 {
			t.Fatalf("expected 2 files, got %d", len(result.Files))
		}

		expected := base + "_medium_term_artists.csv"
		if result.Files[0] != expected {
			t.Errorf("expected %s, got %s", expected, result.Files[0])
		}
		if _, err := os.Stat(expected); err != nil {
			t.Errorf("expected file on disk: %v", err)
		}
	})

	t.Run("JSON", func(t *testing.T) {
		base := filepath.Join(t.TempDir(), "export")

		result, err := WriteExport(slices, base, "json")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		for _, file := range result.Files {
			if !strings.HasSuffix(file, ".json") {
				t.Errorf("expected json extension, got %s", file)
			}
		}
	})

	t.Run("Unknown Format", func(t *testing.T) {
		if _, err := WriteExport(slices, "", "yaml"); err == nil {
			t.Error("expected error for unknown format")
		}
	})
}
