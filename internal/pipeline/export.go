package pipeline

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"

	"github.com/xuri/excelize/v2"

	"moviedash/internal"
	"moviedash/internal/util"
)

// WriteMoviesCSV writes the normalizer's output schema. Absent values are
// written as empty cells.
func WriteMoviesCSV(path string, movies []internal.Movie) error {
	rows := make([][]string, 0, len(movies)+1)
	rows = append(rows, internal.MovieColumns)
	for _, m := range movies {
		rows = append(rows, []string{
			m.Name,
			optFloat(m.Rating),
			optInt64(m.Votes),
			m.Genre,
			optInt(m.DurationMinutes),
			util.DerefString(m.DurationCategory),
			m.Duration,
		})
	}
	return writeCSV(path, rows)
}

// WriteRawCSV writes scraped or merged records with the duration text under
// durationField.
func WriteRawCSV(path string, records []internal.RawMovie, durationField string) error {
	header := append(append([]string{}, internal.RawColumns...), durationField)
	rows := make([][]string, 0, len(records)+1)
	rows = append(rows, header)
	for _, r := range records {
		rows = append(rows, []string{
			util.DerefString(r.Name),
			util.DerefString(r.Rating),
			util.DerefString(r.Votes),
			util.DerefString(r.Genre),
			util.DerefString(r.Duration),
		})
	}
	return writeCSV(path, rows)
}

func writeCSV(path string, rows [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	// Renamed over path at the end; an in-place clean never leaves it truncated.
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

func ExportMoviesToXLSX(movies []internal.Movie, outputPath string) error {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	for i, h := range internal.MovieColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i, m := range movies {
		r := i + 2
		set := func(col int, value any) {
			cell, _ := excelize.CoordinatesToCellName(col, r)
			_ = f.SetCellValue(sheet, cell, value)
		}

		set(1, m.Name)
		set(2, derefFloat(m.Rating))
		set(3, derefInt64(m.Votes))
		set(4, m.Genre)
		set(5, derefInt(m.DurationMinutes))
		set(6, util.DerefString(m.DurationCategory))
		set(7, m.Duration)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}

func derefFloat(v *float64) any {
	if v == nil {
		return ""
	}
	return *v
}

func derefInt(v *int) any {
	if v == nil {
		return ""
	}
	return *v
}

func derefInt64(v *int64) any {
	if v == nil {
		return ""
	}
	return *v
}

func optFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}

func optInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func optInt64(v *int64) string {
	if v == nil {
		return ""
	}
	return formatInt(*v)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatInt(v int64) string {
	return strconv.FormatInt(v, 10)
}
