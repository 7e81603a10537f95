package tmdb

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/sourcegraph/conc/pool"

	"cinelog/models"
	"cinelog/utils/similarity"
)

const (
	// Candidate windows for enrichment and ranking. Larger when a director
	// filter is active, since confirmed matches may sit further down the
	// raw result list.
	maxCandidatesWithDirector = 15
	maxCandidates             = 8

	// Per-candidate credits fetches run through a small worker pool.
	creditsWorkers = 4

	titleWeight    = 5.0
	exactYearBonus = 3.0
	nearYearBonus  = 1.0
	directorBonus  = 3.0
)

// Search queries the catalog and returns ranked, simplified candidates.
// year narrows the server-side search when > 0; director restricts ranking to
// favor that person's filmography. External failures degrade to an empty or
// partial list; Search never fails the request.
func (c *Client) Search(ctx context.Context, query string, page, year int, director string) []models.SearchResult {
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.SearchResult{}
	}
	if page < 1 {
		page = 1
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("page", strconv.Itoa(page))
	params.Set("include_adult", "false")
	if year > 0 {
		// TMDB supports both; send both to tighten results
		params.Set("year", strconv.Itoa(year))
		params.Set("primary_release_year", strconv.Itoa(year))
	}
	for k, v := range c.authParams() {
		params.Set(k, v)
	}

	var resp searchMovieResponse
	endpoint := fmt.Sprintf("%s/search/movie?%s", c.baseURL, params.Encode())
	if err := c.getJSON(ctx, endpoint, &resp); err != nil {
		log.Printf("[tmdb] search %q failed: %v", query, err)
		return []models.SearchResult{}
	}

	director = strings.TrimSpace(director)

	// Resolve the director to their filmography when requested. A failed
	// resolution just means no filmography boost.
	var filmography map[int64]bool
	if director != "" {
		if personID := c.searchPerson(ctx, director); personID != 0 {
			filmography = c.directorFilmography(ctx, personID)
		}
	}

	window := maxCandidates
	if director != "" {
		window = maxCandidatesWithDirector
	}
	candidates := resp.Results
	if len(candidates) > window {
		candidates = candidates[:window]
	}

	// Credits are only fetched when the director filter is active: that is
	// N extra calls per search, pointless otherwise.
	directors := make([][]string, len(candidates))
	if director != "" {
		p := pool.New().WithMaxGoroutines(creditsWorkers)
		for i, cand := range candidates {
			p.Go(func() {
				directors[i] = c.movieDirectors(ctx, cand.ID)
			})
		}
		p.Wait()
	}

	type scored struct {
		result     models.SearchResult
		score      float64
		inDirected bool
	}

	ranked := make([]scored, 0, len(candidates))
	for i, cand := range candidates {
		title := cand.Title
		if title == "" {
			title = cand.OriginalTitle
		}
		candYear := extractYear(cand.ReleaseDate)

		score := similarity.Ratio(title, query) * titleWeight
		if year > 0 && candYear > 0 {
			switch diff := candYear - year; {
			case diff == 0:
				score += exactYearBonus
			case diff == 1 || diff == -1:
				score += nearYearBonus
			}
		}

		inDirected := false
		if director != "" {
			inDirected = filmography[cand.ID]
			if inDirected || anyNameMatch(directors[i], director) {
				score += directorBonus
			}
		}

		ranked = append(ranked, scored{
			result: models.SearchResult{
				TMDBID:     cand.ID,
				Title:      title,
				Year:       candYear,
				PosterPath: cand.PosterPath,
				PosterURL:  c.ImageURL(cand.PosterPath, PosterSizeSearch),
				Overview:   cand.Overview,
				Directors:  directors[i],
			},
			score:      score,
			inDirected: inDirected,
		})
	}

	// Candidates confirmed in the resolved director's filmography always
	// outrank score alone.
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].inDirected != ranked[j].inDirected {
			return ranked[i].inDirected
		}
		return ranked[i].score > ranked[j].score
	})

	results := make([]models.SearchResult, len(ranked))
	for i, s := range ranked {
		results[i] = s.result
	}
	return results
}

// searchPerson resolves a name to the top-ranked person id, or 0 when nothing
// matches or the lookup fails.
func (c *Client) searchPerson(ctx context.Context, name string) int64 {
	params := url.Values{}
	params.Set("query", name)
	params.Set("include_adult", "false")
	for k, v := range c.authParams() {
		params.Set(k, v)
	}

	var resp searchPersonResponse
	endpoint := fmt.Sprintf("%s/search/person?%s", c.baseURL, params.Encode())
	if err := c.getJSON(ctx, endpoint, &resp); err != nil {
		log.Printf("[tmdb] person search %q failed: %v", name, err)
		return 0
	}
	if len(resp.Results) == 0 {
		return 0
	}
	return resp.Results[0].ID
}

// directorFilmography returns the set of movie ids the person is credited as
// director on, or nil when the lookup fails.
func (c *Client) directorFilmography(ctx context.Context, personID int64) map[int64]bool {
	params := url.Values{}
	for k, v := range c.authParams() {
		params.Set(k, v)
	}

	var resp personCreditsResponse
	endpoint := fmt.Sprintf("%s/person/%d/movie_credits?%s", c.baseURL, personID, params.Encode())
	if err := c.getJSON(ctx, endpoint, &resp); err != nil {
		log.Printf("[tmdb] person credits for %d failed: %v", personID, err)
		return nil
	}

	ids := make(map[int64]bool)
	for _, entry := range resp.Crew {
		if isDirectorCredit(entry) && entry.ID != 0 {
			ids[entry.ID] = true
		}
	}
	return ids
}

// movieDirectors fetches a movie's credits and extracts its director names,
// deduplicated in credit order. Failures yield no names.
func (c *Client) movieDirectors(ctx context.Context, movieID int64) []string {
	if movieID == 0 {
		return nil
	}

	params := url.Values{}
	for k, v := range c.authParams() {
		params.Set(k, v)
	}

	var resp creditsResponse
	endpoint := fmt.Sprintf("%s/movie/%d/credits?%s", c.baseURL, movieID, params.Encode())
	if err := c.getJSON(ctx, endpoint, &resp); err != nil {
		log.Printf("[tmdb] credits for %d failed: %v", movieID, err)
		return nil
	}

	seen := make(map[string]bool)
	var names []string
	for _, entry := range resp.Crew {
		if entry.Name == "" || !isDirectorCredit(entry) {
			continue
		}
		if !seen[entry.Name] {
			names = append(names, entry.Name)
			seen[entry.Name] = true
		}
	}
	return names
}

// isDirectorCredit applies the crew heuristic: the job mentions "director" or
// the department is "directing". Known approximation for co-director and
// uncredited entries.
func isDirectorCredit(entry crewEntry) bool {
	return strings.Contains(strings.ToLower(entry.Job), "director") ||
		strings.EqualFold(entry.Department, "directing")
}

// anyNameMatch reports whether any extracted director name fuzzily matches
// the requested one: normalized substring containment in either direction.
func anyNameMatch(names []string, requested string) bool {
	want := similarity.Normalize(requested)
	if want == "" {
		return false
	}
	for _, name := range names {
		got := similarity.Normalize(name)
		if got == "" {
			continue
		}
		if strings.Contains(got, want) || strings.Contains(want, got) {
			return true
		}
	}
	return false
}

// extractYear pulls the year off a yyyy-mm-dd release date, or 0.
func extractYear(date string) int {
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return year
}
