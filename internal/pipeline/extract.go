package pipeline

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/xuri/excelize/v2"

	"moviedash/internal"
	"moviedash/internal/util"
)

var (
	ErrSourceUnavailable = errors.New("source unavailable")
	ErrSchemaMismatch    = errors.New("schema mismatch")
)

var (
	ratingPattern   = regexp.MustCompile(`^\d+\.\d+$`)
	durationPattern = regexp.MustCompile(`^(\d+h\s*(\d+m)?|\d+m)$`)
)

// ReadRawCSV loads scraped or merged rows. durationField names the column
// holding the duration text. A file that already carries Duration_Minutes is
// accepted as well; its typed columns are then the only duration source.
func ReadRawCSV(path, durationField string) ([]internal.RawMovie, error) {
	rows, err := readCSVRows(path)
	if err != nil {
		return nil, err
	}
	return rowsToRaw(path, rows, durationField)
}

// ReadRawXLSX is ReadRawCSV over the first sheet of a workbook.
func ReadRawXLSX(path, durationField string) ([]internal.RawMovie, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrSourceUnavailable, path, err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrSourceUnavailable, path, err)
	}
	return rowsToRaw(path, rows, durationField)
}

// ReadMoviesCSV loads a normalized file for the table loader. Missing vote
// counts become 0 there; missing ratings stay nil.
func ReadMoviesCSV(path string) ([]internal.Movie, error) {
	rows, err := readCSVRows(path)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s: empty file", ErrSchemaMismatch, path)
	}
	header := readHeader(rows[0])
	if missing := missingColumns(header, internal.LoadColumns); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s: missing columns %s", ErrSchemaMismatch, path, strings.Join(missing, ", "))
	}

	out := make([]internal.Movie, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		m := internal.Movie{
			Name:             valueAt(header, row, internal.ColMovieName),
			Genre:            valueAt(header, row, internal.ColGenre),
			Duration:         valueAt(header, row, internal.ColDuration),
			DurationMinutes:  parseIntCell(valueAt(header, row, internal.ColDurationMinutes)),
			DurationCategory: nullable(valueAt(header, row, internal.ColDurationCategory)),
		}
		if r, err := strconv.ParseFloat(valueAt(header, row, internal.ColRating), 64); err == nil {
			m.Rating = util.FloatPtr(r)
		}
		votes := int64(0)
		if v := parseIntCell(valueAt(header, row, internal.ColVotingCounts)); v != nil {
			votes = int64(*v)
		}
		m.Votes = util.Int64Ptr(votes)
		out = append(out, m)
	}
	return out, nil
}

// ParseListingHTML extracts movie cards from a saved search results page.
// Cards without a title are skipped.
func ParseListingHTML(r io.Reader, genre string) ([]internal.RawMovie, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}

	genre = util.NormalizeGenre(genre)
	out := []internal.RawMovie{}
	doc.Find("li.ipc-metadata-list-summary-item").Each(func(_ int, card *goquery.Selection) {
		title := util.NormalizeTitle(card.Find("h3").First().Text())
		if title == "" {
			return
		}

		item := internal.RawMovie{Name: util.StringPtr(title)}
		if genre != "" {
			item.Genre = util.StringPtr(genre)
		}
		if rating := leafSpanMatching(card, ratingPattern); rating != "" {
			item.Rating = util.StringPtr(rating)
		}
		if votes := card.Find("span.ipc-rating-star--voteCount").First(); votes.Length() > 0 {
			v := strings.Trim(strings.Join(strings.Fields(votes.Text()), ""), "()")
			if v != "" {
				item.Votes = util.StringPtr(v)
			}
		}
		if d := leafSpanMatching(card, durationPattern); d != "" {
			item.Duration = util.StringPtr(d)
		}
		out = append(out, item)
	})
	return out, nil
}

func leafSpanMatching(card *goquery.Selection, re *regexp.Regexp) string {
	match := ""
	card.Find("span").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if s.Children().Length() > 0 {
			return true
		}
		text := util.CleanText(s.Text())
		if re.MatchString(text) {
			match = text
			return false
		}
		return true
	})
	return match
}

func readCSVRows(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrSourceUnavailable, path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrSourceUnavailable, path, err)
	}
	return rows, nil
}

func rowsToRaw(path string, rows [][]string, durationField string) ([]internal.RawMovie, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s: empty file", ErrSchemaMismatch, path)
	}
	header := readHeader(rows[0])

	_, normalized := header[internal.ColDurationMinutes]
	required := append([]string{}, internal.RawColumns...)
	if normalized {
		required = append(required, internal.ColDurationMinutes)
	} else {
		required = append(required, durationField)
	}
	if missing := missingColumns(header, required); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s: missing columns %s", ErrSchemaMismatch, path, strings.Join(missing, ", "))
	}

	out := make([]internal.RawMovie, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		item := internal.RawMovie{
			Name:     nullable(valueAt(header, row, internal.ColMovieName)),
			Rating:   nullable(valueAt(header, row, internal.ColRating)),
			Votes:    nullable(valueAt(header, row, internal.ColVotingCounts)),
			Genre:    nullable(valueAt(header, row, internal.ColGenre)),
			Duration: nullable(valueAt(header, row, durationField)),
		}
		if normalized {
			item.Duration = nil
			item.Minutes = parseIntCell(valueAt(header, row, internal.ColDurationMinutes))
			item.Category = nullable(valueAt(header, row, internal.ColDurationCategory))
		}
		out = append(out, item)
	}
	return out, nil
}

func readHeader(row []string) map[string]int {
	header := make(map[string]int, len(row))
	for idx, name := range row {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, dup := header[name]; !dup {
			header[name] = idx
		}
	}
	return header
}

func missingColumns(header map[string]int, required []string) []string {
	var missing []string
	for _, col := range required {
		if _, ok := header[col]; !ok {
			missing = append(missing, col)
		}
	}
	return missing
}

func valueAt(header map[string]int, row []string, key string) string {
	idx, ok := header[key]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func nullable(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

// parseIntCell accepts "130" and the "130.0" a float column is written as.
func parseIntCell(v string) *int {
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return util.IntPtr(int(f))
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
