// package formatter provides functions to export top-item data to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/desertthunder/soundgraph/internal/services"
	"github.com/desertthunder/soundgraph/internal/shared"
	"github.com/desertthunder/soundgraph/internal/tasks"
)

// ArtistNames joins a track's artist names for single-line display.
func ArtistNames(artists []services.Artist) string {
	names := make([]string, 0, len(artists))
	for _, artist := range artists {
		names = append(names, artist.Name)
	}
	return strings.Join(names, ", ")
}

// ArtistsToCSV converts a top-artists response to CSV with columns: Rank, ID, Name, Genres, Popularity, Followers
func ArtistsToCSV(resp *services.TopArtistsResponse) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Rank", "ID", "Name", "Genres", "Popularity", "Followers"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for i, artist := range resp.Artists {
		record := []string{
			strconv.Itoa(i + 1),
			artist.ID,
			artist.Name,
			strings.Join(artist.Genres, "; "),
			strconv.Itoa(artist.Popularity),
			strconv.Itoa(artist.Followers.Total),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// TracksToCSV converts a top-tracks response to CSV with columns: Rank, ID, Title, Artists, Album, Duration, Popularity
func TracksToCSV(resp *services.TopTracksResponse) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Rank", "ID", "Title", "Artists", "Album", "Duration", "Popularity"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for i, track := range resp.Tracks {
		record := []string{
			strconv.Itoa(i + 1),
			track.ID,
			track.Name,
			ArtistNames(track.Artists),
			track.Album.Name,
			strconv.Itoa(track.DurationMS),
			strconv.Itoa(track.Popularity),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ArtistsToMarkdown converts a top-artists response to a Markdown listing
func ArtistsToMarkdown(resp *services.TopArtistsResponse) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# Top Artists (%s)\n\n", resp.TimeRange))
	buf.WriteString(fmt.Sprintf("**Total**: %d\n\n", resp.Total))

	for i, artist := range resp.Artists {
		genrePart := ""
		if len(artist.Genres) > 0 {
			genrePart = fmt.Sprintf(" (%s)", strings.Join(artist.Genres, ", "))
		}
		buf.WriteString(fmt.Sprintf("%d. %s%s\n", i+1, artist.Name, genrePart))
	}

	return buf.Bytes()
}

// TracksToMarkdown converts a top-tracks response to a Markdown listing
func TracksToMarkdown(resp *services.TopTracksResponse) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# Top Tracks (%s)\n\n", resp.TimeRange))
	buf.WriteString(fmt.Sprintf("**Total**: %d\n\n", resp.Total))

	for i, track := range resp.Tracks {
		duration := shared.FormatDuration(track.DurationMS)
		albumPart := ""
		if track.Album.Name != "" {
			albumPart = fmt.Sprintf(" (%s)", track.Album.Name)
		}
		buf.WriteString(fmt.Sprintf("%d. %s - %s%s [%s]\n", i+1, ArtistNames(track.Artists), track.Name, albumPart, duration))
	}

	return buf.Bytes()
}

// ArtistsToText converts a top-artists response to plain text
func ArtistsToText(resp *services.TopArtistsResponse) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Top Artists (%s): %d\n\n", resp.TimeRange, resp.Total))
	for i, artist := range resp.Artists {
		buf.WriteString(fmt.Sprintf("%d. %s\n", i+1, artist.Name))
	}

	return buf.Bytes()
}

// TracksToText converts a top-tracks response to plain text
func TracksToText(resp *services.TopTracksResponse) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Top Tracks (%s): %d\n\n", resp.TimeRange, resp.Total))
	for i, track := range resp.Tracks {
		buf.WriteString(fmt.Sprintf("%d. %s - %s\n", i+1, ArtistNames(track.Artists), track.Name))
	}

	return buf.Bytes()
}

// ExportFiles contains the paths of files created by WriteExport
type ExportFiles struct {
	Files []string
}

// WriteExport writes every slice of a bulk export run to disk.
//
// format is one of "csv", "markdown", "text", or "json". Filenames follow
// {base}_{time_range}_{kind}.{ext}; base defaults to "soundgraph".
func WriteExport(result []tasks.ExportSlice, base, format string) (*ExportFiles, error) {
	if base == "" {
		base = "soundgraph"
	}

	out := &ExportFiles{}

	for _, slice := range result {
		if slice.Artists != nil {
			data, ext, err := renderArtists(slice.Artists, format)
			if err != nil {
				return nil, err
			}
			path := fmt.Sprintf("%s_%s_artists.%s", base, slice.TimeRange, ext)
			if err := os.WriteFile(path, data, 0644); err != nil {
				return nil, fmt.Errorf("failed to write export file: %w", err)
			}
			out.Files = append(out.Files, path)
		}

		if slice.Tracks != nil {
			data, ext, err := renderTracks(slice.Tracks, format)
			if err != nil {
				return nil, err
			}
			path := fmt.Sprintf("%s_%s_tracks.%s", base, slice.TimeRange, ext)
			if err := os.WriteFile(path, data, 0644); err != nil {
				return nil, fmt.Errorf("failed to write export file: %w", err)
			}
			out.Files = append(out.Files, path)
		}
	}

	return out, nil
}

func renderArtists(resp *services.TopArtistsResponse, format string) ([]byte, string, error) {
	switch format {
	case "csv", "":
		data, err := ArtistsToCSV(resp)
		return data, "csv", err
	case "markdown", "md":
		return ArtistsToMarkdown(resp), "md", nil
	case "text", "txt":
		return ArtistsToText(resp), "txt", nil
	case "json":
		data, err := shared.MarshalJSON(resp, true)
		return data, "json", err
	default:
		return nil, "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, format)
	}
}

func renderTracks(resp *services.TopTracksResponse, format string) ([]byte, string, error) {
	switch format {
	case "csv", "":
		data, err := TracksToCSV(resp)
		return data, "csv", err
	case "markdown", "md":
		return TracksToMarkdown(resp), "md", nil
	case "text", "txt":
		return TracksToText(resp), "txt", nil
	case "json":
		data, err := shared.MarshalJSON(resp, true)
		return data, "json", err
	default:
		return nil, "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, format)
	}
}
