package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"moviedash/internal"
	"moviedash/internal/config"
	"moviedash/internal/storage"
)

func testConfig(dir string) config.Config {
	return config.Config{
		DBPath:           filepath.Join(dir, "movies.db"),
		CSVDir:           dir,
		MergedCSV:        filepath.Join(dir, "merged_movies.csv"),
		CleanedCSV:       filepath.Join(dir, "cleaned_movies.csv"),
		OutputDir:        filepath.Join(dir, "out"),
		DurationField:    "Duration_Total",
		NormalizeWorkers: 2,
		LogLevel:         "info",
		TopN:             10,
	}
}

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestSmokeGenreFilesToTable(t *testing.T) {
	tmp := t.TempDir()
	cfg := testConfig(tmp)

	writeFile(t, filepath.Join(tmp, "action_movies.csv"), "Movie_Name,Rating,Voting_Counts,Genre,Duration_Total\n"+
		"The Dark Knight,9.0,3M,Action,2h 32m\n"+
		"Mad Max,8.1,1.1M,Action,2h\n")
	writeFile(t, filepath.Join(tmp, "drama_movies.csv"), "Movie_Name,Rating,Voting_Counts,Genre,Duration_Total\n"+
		"The Dark Knight,9.0,3M,Drama,2h 32m\n"+
		"Short Film,N/A,N/A,Drama,45m\n")

	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	ctx := context.Background()
	proc := NewProcessingService(db, cfg, nil)
	res, err := proc.Refresh(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if res.Merge.RowsIn != 4 || res.Merge.RowsOut != 3 {
		t.Fatalf("merge = %+v", res.Merge)
	}
	if res.Clean.Stats.Rows != 3 || res.Clean.Stats.VoteFailures != 1 {
		t.Fatalf("clean stats = %+v", res.Clean.Stats)
	}
	if res.Load.Rows != 3 {
		t.Fatalf("loaded %d", res.Load.Rows)
	}

	movies, err := db.ListMovies(ctx, internal.MovieFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(movies) != 3 || movies[0].Name != "The Dark Knight" || movies[0].Genre != "Action" {
		t.Fatalf("unexpected table %+v", movies)
	}
	if movies[0].Duration != internal.BucketTwoThree || *movies[0].Votes != 3000000 {
		t.Fatalf("unexpected first row %+v", movies[0])
	}
	if movies[2].Rating != nil || *movies[2].Votes != 0 {
		t.Fatalf("short film should load unrated with 0 votes: %+v", movies[2])
	}

	run, err := db.LatestRun(ctx, "clean")
	if err != nil || run == nil || run.TraceID != res.Clean.TraceID {
		t.Fatalf("clean run not recorded: %+v %v", run, err)
	}
	if last, _ := db.GetMetadata("movies.last_load"); last == nil {
		t.Fatal("last load not recorded")
	}

	// A second refresh must not pick up the merged or cleaned outputs.
	again, err := proc.Refresh(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(again.Merge.Files) != 2 {
		t.Fatalf("merge read %v", again.Merge.Files)
	}

	out := filepath.Join(cfg.OutputDir, "movies.xlsx")
	if err := ExportMoviesToXLSX(movies, out); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(out); err != nil {
		t.Fatal(err)
	}
}

func TestCleanIsIdempotentOnItsOwnOutput(t *testing.T) {
	tmp := t.TempDir()
	cfg := testConfig(tmp)
	in := filepath.Join(tmp, "merged_movies.csv")
	writeFile(t, in, "Movie_Name,Rating,Voting_Counts,Genre,Duration_Total\n"+
		"A,8.1,253K,Action,2h 10m\n"+
		"B,6.0,\"5,700\",Drama,3h 5m\n"+
		"C,,,Horror,\n")

	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	ctx := context.Background()
	proc := NewProcessingService(db, cfg, nil)
	first := filepath.Join(tmp, "first.csv")
	second := filepath.Join(tmp, "second.csv")
	if _, err := proc.Clean(ctx, in, first); err != nil {
		t.Fatal(err)
	}
	if _, err := proc.Clean(ctx, first, second); err != nil {
		t.Fatal(err)
	}

	a, err := os.ReadFile(first)
	if err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(second)
	if err != nil {
		t.Fatal(err)
	}
	if string(a) != string(b) {
		t.Fatalf("second clean changed output:\n%s\n---\n%s", a, b)
	}
}
