// Backfills genre data for library movies imported before genres were stored.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/afero"

	"cinelog/config"
	"cinelog/internal/database"
	"cinelog/services/tmdb"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "report movies missing genres without updating them")
	flag.Parse()

	cfg, err := config.Load(afero.NewOsFs(), os.Getenv("ENV_FILE"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	db, err := database.NewDB(database.Config{DatabasePath: cfg.DatabasePath})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	catalog := tmdb.NewClient(cfg.TMDBAPIKey, cfg.TMDBBearerToken,
		tmdb.WithHTTPClient(&http.Client{Timeout: 10 * time.Second}))

	ctx := context.Background()
	movies, err := db.Movies.All(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to list movies: %v\n", err)
		os.Exit(1)
	}

	var updated, failed, skipped int
	for _, movie := range movies {
		if len(movie.Genres) > 0 {
			skipped++
			continue
		}

		fmt.Printf("fetching genres for %q (tmdb id %d)...\n", movie.Title, movie.TMDBID)
		details, err := catalog.Details(ctx, movie.TMDBID)
		if err != nil || len(details.Genres) == 0 {
			fmt.Printf("  no genre data: %v\n", err)
			failed++
			continue
		}

		if *dryRun {
			fmt.Printf("  would set: %v\n", details.Genres)
			updated++
			continue
		}

		if err := db.Movies.UpdateGenres(ctx, movie.ID, details.Genres); err != nil {
			fmt.Fprintf(os.Stderr, "  update failed: %v\n", err)
			failed++
			continue
		}
		fmt.Printf("  set: %v\n", details.Genres)
		updated++

		// Stay polite to the catalog API.
		time.Sleep(250 * time.Millisecond)
	}

	fmt.Printf("done: %d updated, %d failed, %d already had genres\n", updated, failed, skipped)
}
