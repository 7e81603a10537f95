package library_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cinelog/internal/database"
	"cinelog/models"
	"cinelog/services/library"
)

// fakeCatalog serves canned details without touching the network.
type fakeCatalog struct {
	details map[int64]*models.MovieDetails
	err     error
}

func (f *fakeCatalog) Details(_ context.Context, tmdbID int64) (*models.MovieDetails, error) {
	if f.err != nil {
		return nil, f.err
	}
	if d, ok := f.details[tmdbID]; ok {
		return d, nil
	}
	return nil, errors.New("no such movie")
}

func (f *fakeCatalog) ImageURL(path, size string) string {
	if path == "" {
		return ""
	}
	return "https://image.tmdb.org/t/p/" + size + path
}

type fixture struct {
	db      *database.DB
	svc     *library.Service
	catalog *fakeCatalog
	alex    int64
	carrie  int64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := database.NewDB(database.Config{DatabasePath: filepath.Join(t.TempDir(), "lib.db")})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	catalog := &fakeCatalog{details: map[int64]*models.MovieDetails{}}
	svc := library.NewService(db, catalog)

	ctx := context.Background()
	alex, err := db.Users.Create(ctx, "Alex", "x")
	require.NoError(t, err)
	carrie, err := db.Users.Create(ctx, "Carrie", "x")
	require.NoError(t, err)

	return &fixture{db: db, svc: svc, catalog: catalog, alex: alex.ID, carrie: carrie.ID}
}

func (fx *fixture) seedMovie(t *testing.T, tmdbID int64, title string, year int, genres []string) int64 {
	t.Helper()
	id, err := fx.db.Movies.Insert(context.Background(), &models.Movie{
		TMDBID:     tmdbID,
		Title:      title,
		Year:       year,
		PosterPath: "/p.jpg",
		Genres:     genres,
		AddedBy:    fx.alex,
	})
	require.NoError(t, err)
	return id
}

func TestListGenreAndYearConjunction(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	fx.seedMovie(t, 1, "Old Laughs", 2019, []string{"Comedy"})
	want := fx.seedMovie(t, 2, "New Laughs", 2021, []string{"Comedy"})
	fx.seedMovie(t, 3, "Loud Bangs", 2021, []string{"Action"})

	page, err := fx.svc.List(ctx, models.ListFilters{
		Genres:   []string{"Comedy", "Drama"},
		YearFrom: 2020,
	}, 1, 20)
	require.NoError(t, err)

	require.Len(t, page.Items, 1)
	assert.Equal(t, want, page.Items[0].ID)
	assert.Equal(t, 1, page.Total)
	assert.Equal(t, 1, page.TotalPages)
}

func TestListEveryItemSatisfiesAllPredicates(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	// A spread of movies across years, genres, tags and ratings
	for i := int64(1); i <= 12; i++ {
		genre := "Drama"
		if i%2 == 0 {
			genre = "Comedy"
		}
		id := fx.seedMovie(t, i, fmt.Sprintf("Movie %d", i), 2010+int(i), []string{genre})
		if i%3 == 0 {
			_, _, err := fx.svc.AddTag(ctx, id, fx.alex, "Classic")
			require.NoError(t, err)
		}
		if i%4 == 0 {
			r := 4.5
			require.NoError(t, fx.svc.Rate(ctx, id, fx.carrie, &r, ""))
		}
	}

	filters := models.ListFilters{
		YearFrom:  2014,
		YearTo:    2022,
		Genres:    []string{"Comedy"},
		Tags:      []string{"Classic"},
		MinRating: 4.0,
	}
	page, err := fx.svc.List(ctx, filters, 1, 50)
	require.NoError(t, err)

	// Only i=12 is even (Comedy), divisible by 3 (tagged) and 4 (rated 4.5),
	// with year 2022 inside the range.
	require.Len(t, page.Items, 1)
	assert.Equal(t, int64(12), page.Items[0].TMDBID)
	assert.Equal(t, []string{"Comedy"}, page.Items[0].Genres)
	assert.Equal(t, map[string]float64{"Carrie": 4.5}, page.Items[0].Ratings)
}

func TestListPaginationWalk(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	const totalMovies = 23
	for i := int64(1); i <= totalMovies; i++ {
		fx.seedMovie(t, i, fmt.Sprintf("Movie %d", i), 2000, nil)
	}

	perPage := 5
	seen := map[int64]bool{}
	var order []int64

	first, err := fx.svc.List(ctx, models.ListFilters{}, 1, perPage)
	require.NoError(t, err)
	assert.Equal(t, totalMovies, first.Total)
	assert.Equal(t, 5, first.TotalPages) // ceil(23/5)

	for p := 1; p <= first.TotalPages; p++ {
		page, err := fx.svc.List(ctx, models.ListFilters{}, p, perPage)
		require.NoError(t, err)
		for _, item := range page.Items {
			assert.False(t, seen[item.ID], "movie %d appeared twice", item.ID)
			seen[item.ID] = true
			order = append(order, item.ID)
		}
	}

	require.Len(t, order, totalMovies)
	// Most recently added first, stable across the walk
	for i := 1; i < len(order); i++ {
		assert.Greater(t, order[i-1], order[i])
	}
}

func TestListPerPageClamp(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	for i := int64(1); i <= 60; i++ {
		fx.seedMovie(t, i, fmt.Sprintf("Movie %d", i), 2000, nil)
	}

	page, err := fx.svc.List(ctx, models.ListFilters{}, 1, 100)
	require.NoError(t, err)
	assert.Equal(t, 50, page.PerPage)
	assert.Len(t, page.Items, 50)

	// An explicit per_page below the floor clamps to 1, it does not fall
	// back to the handler's default.
	page, err = fx.svc.List(ctx, models.ListFilters{}, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 1, page.PerPage)
	assert.Len(t, page.Items, 1)
	assert.Equal(t, 60, page.TotalPages)
}

func TestListNoMatches(t *testing.T) {
	fx := newFixture(t)
	fx.seedMovie(t, 1, "Something", 1990, []string{"Drama"})

	page, err := fx.svc.List(context.Background(), models.ListFilters{Genres: []string{"Western"}}, 1, 20)
	require.NoError(t, err)

	assert.Equal(t, 0, page.Total)
	assert.Equal(t, 1, page.TotalPages)
	assert.Empty(t, page.Items)
}

func TestAddIsIdempotentByTMDBID(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	fx.catalog.details[603] = &models.MovieDetails{
		TMDBID: 603, Title: "The Matrix", Year: 1999, Genres: []string{"Action"},
	}

	id, existing, err := fx.svc.Add(ctx, fx.alex, 603)
	require.NoError(t, err)
	assert.False(t, existing)

	again, existing, err := fx.svc.Add(ctx, fx.carrie, 603)
	require.NoError(t, err)
	assert.True(t, existing)
	assert.Equal(t, id, again)

	movies, err := fx.db.Movies.All(ctx)
	require.NoError(t, err)
	assert.Len(t, movies, 1)
}

func TestAddReportsCatalogFailure(t *testing.T) {
	fx := newFixture(t)
	fx.catalog.err = errors.New("timeout")

	_, _, err := fx.svc.Add(context.Background(), fx.alex, 42)
	assert.ErrorIs(t, err, library.ErrCatalogUnavailable)
}

func TestRateValidatesAndOverwrites(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	movieID := fx.seedMovie(t, 1, "Heat", 1995, nil)

	bad := 5.5
	assert.ErrorIs(t, fx.svc.Rate(ctx, movieID, fx.alex, &bad, ""), library.ErrInvalidRating)
	negative := -0.5
	assert.ErrorIs(t, fx.svc.Rate(ctx, movieID, fx.alex, &negative, ""), library.ErrInvalidRating)

	first := 3.5
	require.NoError(t, fx.svc.Rate(ctx, movieID, fx.alex, &first, "solid"))
	second := 4.5
	require.NoError(t, fx.svc.Rate(ctx, movieID, fx.alex, &second, "grew on me"))

	review, err := fx.svc.UserReview(ctx, movieID, fx.alex)
	require.NoError(t, err)
	require.NotNil(t, review)
	require.NotNil(t, review.Rating)
	assert.Equal(t, 4.5, *review.Rating)

	assert.ErrorIs(t, fx.svc.Rate(ctx, 9999, fx.alex, &first, ""), library.ErrMovieNotFound)
}

func TestTagLifecycle(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	movieID := fx.seedMovie(t, 1, "Clue", 1985, nil)

	tag, already, err := fx.svc.AddTag(ctx, movieID, fx.alex, "Comfort Watch")
	require.NoError(t, err)
	assert.False(t, already)
	assert.Equal(t, "comfort-watch", tag.Slug)
	// Predefined palette color resolved at creation
	assert.Equal(t, "#f0f9f0", tag.Color)

	_, already, err = fx.svc.AddTag(ctx, movieID, fx.carrie, "Comfort Watch")
	require.NoError(t, err)
	assert.True(t, already)

	tags, err := fx.svc.MovieTags(ctx, movieID)
	require.NoError(t, err)
	require.Len(t, tags, 1)

	require.NoError(t, fx.svc.RemoveTag(ctx, movieID, tag.ID))
	assert.ErrorIs(t, fx.svc.RemoveTag(ctx, movieID, tag.ID), library.ErrTagNotFound)

	assert.ErrorIs(t, fx.svc.Rate(ctx, 12345, fx.alex, nil, ""), library.ErrMovieNotFound)
}

func TestTagSlugCollisionGetsSuffix(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	movieID := fx.seedMovie(t, 1, "Up", 2009, nil)

	first, _, err := fx.svc.AddTag(ctx, movieID, fx.alex, "Feel Good")
	require.NoError(t, err)
	assert.Equal(t, "feel-good", first.Slug)

	// Different name, same derived slug
	second, _, err := fx.svc.AddTag(ctx, movieID, fx.alex, "feel  good!")
	require.NoError(t, err)
	assert.Equal(t, "feel-good-1", second.Slug)
}

func TestSearchLibraryFuzzy(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	fx.seedMovie(t, 27205, "Inception", 2010, nil)
	fx.seedMovie(t, 603, "The Matrix", 1999, nil)

	results, err := fx.svc.SearchLibrary(ctx, "incepton")
	require.NoError(t, err)

	require.NotEmpty(t, results)
	assert.Equal(t, int64(27205), results[0].TMDBID)
	assert.True(t, results[0].InLibrary)
	assert.Equal(t, "https://image.tmdb.org/t/p/w185/p.jpg", results[0].PosterURL)
}

func TestDeleteNotFound(t *testing.T) {
	fx := newFixture(t)
	assert.ErrorIs(t, fx.svc.Delete(context.Background(), 777), library.ErrMovieNotFound)
}
