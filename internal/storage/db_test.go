package storage

import (
	"context"
	"path/filepath"
	"testing"

	"moviedash/internal"
	"moviedash/internal/util"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "movies.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func movie(name, genre, bucket string, rating *float64, votes *int64) internal.Movie {
	return internal.Movie{Name: name, Genre: genre, Duration: bucket, Rating: rating, Votes: votes}
}

func TestReplaceAndListMovies(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	first := []internal.Movie{movie("Old", "Drama", "< 2 hrs", util.FloatPtr(5), util.Int64Ptr(10))}
	if _, err := db.ReplaceMovies(ctx, first); err != nil {
		t.Fatal(err)
	}

	movies := []internal.Movie{
		{Name: "A", Genre: "Action", Duration: "2–3 hrs", Rating: util.FloatPtr(8.1), Votes: util.Int64Ptr(253000), DurationMinutes: util.IntPtr(130), DurationCategory: util.StringPtr("120-150 min")},
		movie("B", "Drama", "< 2 hrs", util.FloatPtr(6.0), nil),
		movie("C", "Action", "Unknown", nil, util.Int64Ptr(50)),
	}
	n, err := db.ReplaceMovies(ctx, movies)
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Fatalf("inserted %d", n)
	}
	if count, _ := db.CountMovies(ctx); count != 3 {
		t.Fatalf("table should be replaced, count=%d", count)
	}

	all, err := db.ListMovies(ctx, internal.MovieFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 || all[0].Name != "A" {
		t.Fatalf("unexpected rows %+v", all)
	}
	if all[0].DurationMinutes == nil || *all[0].DurationMinutes != 130 || all[0].DurationCategory == nil {
		t.Fatalf("typed columns lost: %+v", all[0])
	}
	if all[1].Votes == nil || *all[1].Votes != 0 {
		t.Fatalf("absent votes should load as 0, got %v", all[1].Votes)
	}
	if all[2].Rating != nil {
		t.Fatalf("absent rating should stay NULL, got %v", *all[2].Rating)
	}
}

func TestListMoviesFilters(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	_, err := db.ReplaceMovies(ctx, []internal.Movie{
		movie("A", "Action", "2–3 hrs", util.FloatPtr(8.1), util.Int64Ptr(253000)),
		movie("B", "Drama", "< 2 hrs", util.FloatPtr(6.0), util.Int64Ptr(900)),
		movie("C", "Action", "< 2 hrs", nil, util.Int64Ptr(5000)),
		movie("D", "Horror", "3–4 hrs", util.FloatPtr(7.2), util.Int64Ptr(12000)),
	})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		filter internal.MovieFilter
		want   []string
	}{
		{name: "no filter", filter: internal.MovieFilter{}, want: []string{"A", "B", "C", "D"}},
		{name: "genres", filter: internal.MovieFilter{Genres: []string{"Action", "Horror"}}, want: []string{"A", "C", "D"}},
		{name: "durations", filter: internal.MovieFilter{Durations: []string{"< 2 hrs"}}, want: []string{"B", "C"}},
		{name: "min rating drops unrated", filter: internal.MovieFilter{MinRating: 6.5}, want: []string{"A", "D"}},
		{name: "min votes", filter: internal.MovieFilter{MinVotes: 5000}, want: []string{"A", "C", "D"}},
		{name: "combined", filter: internal.MovieFilter{Genres: []string{"Action"}, MinVotes: 10000}, want: []string{"A"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := db.ListMovies(ctx, tt.filter)
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d rows want %v", len(got), tt.want)
			}
			for i := range got {
				if got[i].Name != tt.want[i] {
					t.Fatalf("row %d = %s want %s", i, got[i].Name, tt.want[i])
				}
			}
		})
	}
}

func TestRunsAndMetadata(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if run, err := db.LatestRun(ctx, "clean"); err != nil || run != nil {
		t.Fatalf("expected no run, got %+v %v", run, err)
	}
	id1, err := db.InsertRun(ctx, "clean", map[string]float64{"totalMs": 3}, map[string]int{"rows": 1})
	if err != nil {
		t.Fatal(err)
	}
	id2, err := db.InsertRun(ctx, "clean", map[string]float64{"totalMs": 4}, map[string]int{"rows": 2})
	if err != nil {
		t.Fatal(err)
	}
	if id1 == id2 || id1 == "" {
		t.Fatalf("trace ids should be unique: %q %q", id1, id2)
	}
	run, err := db.LatestRun(ctx, "clean")
	if err != nil {
		t.Fatal(err)
	}
	if run == nil || run.TraceID != id2 || run.Counts["rows"] != 2 {
		t.Fatalf("unexpected latest run %+v", run)
	}

	if err := db.SetMetadata("movies.last_load", "x"); err != nil {
		t.Fatal(err)
	}
	if err := db.SetMetadata("movies.last_load", "y"); err != nil {
		t.Fatal(err)
	}
	v, err := db.GetMetadata("movies.last_load")
	if err != nil || v == nil || *v != "y" {
		t.Fatalf("metadata = %v, %v", v, err)
	}
}

func TestFilterOptionQueries(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if _, _, ok, err := db.RatingBounds(ctx); err != nil || ok {
		t.Fatalf("empty table should have no rating bounds, ok=%v err=%v", ok, err)
	}
	if _, _, ok, err := db.VoteBounds(ctx); err != nil || ok {
		t.Fatalf("empty table should have no vote bounds, ok=%v err=%v", ok, err)
	}

	_, err := db.ReplaceMovies(ctx, []internal.Movie{
		movie("A", "Drama", "2–3 hrs", util.FloatPtr(8.1), util.Int64Ptr(253000)),
		movie("B", "Action", "< 2 hrs", nil, nil),
		movie("C", "Drama", "< 2 hrs", util.FloatPtr(4.5), util.Int64Ptr(90)),
	})
	if err != nil {
		t.Fatal(err)
	}

	genres, err := db.Genres(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(genres) != 2 || genres[0] != "Action" || genres[1] != "Drama" {
		t.Fatalf("genres = %v", genres)
	}
	buckets, err := db.DurationBuckets(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(buckets) != 2 {
		t.Fatalf("buckets = %v", buckets)
	}

	lo, hi, ok, err := db.RatingBounds(ctx)
	if err != nil || !ok || lo != 4.5 || hi != 8.1 {
		t.Fatalf("rating bounds = %v %v %v %v", lo, hi, ok, err)
	}
	vlo, vhi, ok, err := db.VoteBounds(ctx)
	if err != nil || !ok || vlo != 0 || vhi != 253000 {
		t.Fatalf("vote bounds = %v %v %v %v", vlo, vhi, ok, err)
	}
}
