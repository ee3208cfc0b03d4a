package movie

import (
	"strconv"
	"strings"
	"unicode"

	"notioner/internal/domain/entity"
	"notioner/internal/infra/omdb"
	"notioner/internal/infra/tmdb"
)

const (
	// TMDBImageBaseURL prefixes TMDB poster and backdrop paths.
	TMDBImageBaseURL = "https://image.tmdb.org/t/p/original"
	// TMDBSiteURL is the TMDB movie page prefix used for "Where To Watch".
	TMDBSiteURL = "https://www.themoviedb.org/movie/"
	// YouTubeWatchURL prefixes trailer keys.
	YouTubeWatchURL = "https://www.youtube.com/watch?v="

	notAvailable = "N/A"
	defaultRated = "G"
)

var languagePreferences = map[string][]string{
	"India": {"Tamil", "English", "Hindi", "Telugu", "Malayalam", "Spanish"},
}

var defaultLanguagePreferences = []string{"English", "Spanish", "Tamil"}

// PreferredLanguage picks one language out of OMDB's comma separated list.
// Movies produced in India prefer Indian languages; everything else prefers English.
// When no preferred language is listed the first one wins.
func PreferredLanguage(languages, country string) string {
	list := strings.Split(strings.Map(dropSpace, languages), ",")

	prefs := defaultLanguagePreferences
	for _, c := range strings.Split(country, ",") {
		if p, ok := languagePreferences[strings.TrimSpace(c)]; ok {
			prefs = p
			break
		}
	}

	for _, want := range prefs {
		for _, have := range list {
			if have == want {
				return want
			}
		}
	}
	return list[0]
}

func dropSpace(r rune) rune {
	if unicode.IsSpace(r) {
		return -1
	}
	return r
}

// FormatRuntime turns "142 min" (or "142") into "2h 22m". Empty or unparseable input yields "".
func FormatRuntime(runtime string) string {
	total, ok := leadingInt(runtime)
	if !ok {
		return ""
	}
	return strconv.Itoa(total/60) + "h " + strconv.Itoa(total%60) + "m"
}

// leadingInt parses the integer prefix of s, ignoring leading blanks.
func leadingInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

// FormatOMDB normalizes an OMDB response into movie data.
func FormatOMDB(resp *omdb.Response) entity.MovieData {
	if resp == nil {
		return entity.MovieData{}
	}

	year, _ := leadingInt(resp.Year)

	rated := resp.Rated
	if rated == notAvailable || rated == "" {
		rated = defaultRated
	}

	rating, err := strconv.ParseFloat(strings.TrimSpace(resp.IMDbRating), 64)
	if err != nil {
		rating = 0
	}

	runtime := ""
	if resp.Runtime != notAvailable {
		runtime = FormatRuntime(resp.Runtime)
	}

	boxOffice := "0"
	if resp.BoxOffice != notAvailable && resp.BoxOffice != "" {
		boxOffice = strings.ReplaceAll(strings.Replace(resp.BoxOffice, "$", "", 1), ",", "")
	}

	plot := resp.Plot
	if plot == notAvailable {
		plot = ""
	}

	return entity.MovieData{
		Title:      resp.Title,
		Year:       year,
		Rated:      rated,
		Genre:      resp.Genre,
		IMDBRating: rating,
		RunTime:    runtime,
		Language:   PreferredLanguage(resp.Language, resp.Country),
		Cast:       resp.Actors,
		Poster:     resp.Poster,
		Type:       resp.Type,
		BoxOffice:  boxOffice,
		Director:   resp.Director,
		IMDbID:     resp.IMDbID,
		Plot:       plot,
	}
}

// PrepareMovieData merges OMDB and TMDB data. details may be nil when TMDB has no match;
// the TMDB-only fields are then left empty.
func PrepareMovieData(resp *omdb.Response, details *tmdb.MovieDetails) entity.MovieData {
	m := FormatOMDB(resp)
	if details == nil {
		return m
	}

	if m.Title == "" {
		m.Title = details.Title
	}
	if m.RunTime == "" && details.Runtime > 0 {
		m.RunTime = FormatRuntime(strconv.Itoa(details.Runtime))
	}
	if (m.BoxOffice == "" || m.BoxOffice == "0") && details.Revenue > 0 {
		m.BoxOffice = strconv.FormatInt(details.Revenue, 10)
	}
	if m.BoxOffice == "" {
		m.BoxOffice = "0"
	}
	if m.Plot == "" {
		m.Plot = details.Overview
	}

	m.Tagline = details.Tagline
	m.TMDBID = details.ID
	if details.ID != 0 {
		m.WhereToWatch = TMDBSiteURL + strconv.Itoa(details.ID) + "/watch?locale=IN"
	}
	if key := details.TrailerKey(); key != "" {
		m.Trailer = YouTubeWatchURL + key
	}
	m.BackDrop = imageURL(details.BackdropPath)
	m.Icon = imageURL(details.PosterPath)

	if c := details.BelongsToCollection; c != nil {
		m.Collection = c.Name
		m.CollectionID = c.ID
		m.CollectionBackdrop = imageURL(c.BackdropPath)
		m.CollectionPoster = imageURL(c.PosterPath)
	}
	return m
}

func imageURL(path string) string {
	if path == "" {
		return ""
	}
	return TMDBImageBaseURL + path
}
