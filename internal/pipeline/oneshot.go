package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"moviedash/internal"
)

// ReadRawFile picks a reader by extension. genre only applies to saved HTML
// pages, where it is not part of the markup.
func ReadRawFile(path, durationField, genre string) ([]internal.RawMovie, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return ReadRawCSV(path, durationField)
	case ".xlsx":
		return ReadRawXLSX(path, durationField)
	case ".html", ".htm":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrSourceUnavailable, path, err)
		}
		defer f.Close()
		return ParseListingHTML(f, genre)
	default:
		return nil, fmt.Errorf("unsupported input type: %s", path)
	}
}

// GenreFromFilename derives "action" from "action.html" or "action_movies.csv".
func GenreFromFilename(path string) string {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return strings.TrimSuffix(base, "_movies")
}
