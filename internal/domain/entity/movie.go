package entity

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Notion property names of the movies database.
const (
	PropGenre        = "Genre"
	PropType         = "Type"
	PropIMDbID       = "imdbID"
	PropRunTime      = "Run Time"
	PropRated        = "Rated"
	PropWatchedOn    = "Watched On"
	PropTMDBID       = "TMDB ID"
	PropTagline      = "Tagline"
	PropMyRating     = "My Rating"
	PropTrailer      = "Trailer"
	PropPoster       = "Poster"
	PropLanguage     = "Language"
	PropDirector     = "Director"
	PropCast         = "Cast"
	PropPlot         = "Plot"
	PropWhereToWatch = "Where To Watch"
	PropYear         = "Year"
	PropWatchCount   = "Watch Count"
	PropIMDBRating   = "IMDB Rating"
	PropBoxOffice    = "Box Office"
	PropCollection   = "Collection"
	PropTitle        = "Title"
)

// Record keys that travel with a movie but are not movie-database properties.
const (
	KeyItemID             = "Item ID"
	KeyBackDrop           = "Back Drop"
	KeyIcon               = "Icon"
	KeyCollectionID       = "CID"
	KeyCollectionBackdrop = "CBackdrop"
	KeyCollectionPoster   = "CPoster"
)

// MovieData is a merged, normalized movie as written to Notion.
// JSON keys follow the flat record layout shared with the widget and automation clients.
type MovieData struct {
	Title              string  `json:"Title"`
	Year               int     `json:"Year"`
	Rated              string  `json:"Rated"`
	Genre              string  `json:"Genre"`
	IMDBRating         float64 `json:"IMDB Rating"`
	RunTime            string  `json:"Run Time"`
	Language           string  `json:"Language"`
	Cast               string  `json:"Cast"`
	Poster             string  `json:"Poster"`
	Type               string  `json:"Type"`
	BoxOffice          string  `json:"Box Office"`
	Director           string  `json:"Director"`
	IMDbID             string  `json:"imdbID"`
	Plot               string  `json:"Plot"`
	Tagline            string  `json:"Tagline"`
	TMDBID             int     `json:"TMDB ID"`
	WhereToWatch       string  `json:"Where To Watch"`
	Trailer            string  `json:"Trailer"`
	BackDrop           string  `json:"Back Drop"`
	Icon               string  `json:"Icon"`
	Collection         string  `json:"Collection"`
	CollectionID       int     `json:"CID"`
	CollectionBackdrop string  `json:"CBackdrop"`
	CollectionPoster   string  `json:"CPoster"`
	WatchedOn          string  `json:"Watched On,omitempty"`
}

// Record flattens the movie into a property-name keyed record.
// Zero values that would write misleading data (year 0, TMDB id 0) are left out.
func (m MovieData) Record() MovieRecord {
	r := MovieRecord{
		PropTitle:        m.Title,
		PropRated:        m.Rated,
		PropGenre:        m.Genre,
		PropIMDBRating:   strconv.FormatFloat(m.IMDBRating, 'f', -1, 64),
		PropRunTime:      m.RunTime,
		PropLanguage:     m.Language,
		PropCast:         m.Cast,
		PropPoster:       m.Poster,
		PropType:         m.Type,
		PropBoxOffice:    m.BoxOffice,
		PropDirector:     m.Director,
		PropIMDbID:       m.IMDbID,
		PropPlot:         m.Plot,
		PropTagline:      m.Tagline,
		PropWhereToWatch: m.WhereToWatch,
		PropTrailer:      m.Trailer,
		PropCollection:   m.Collection,
		PropWatchedOn:    m.WatchedOn,

		KeyBackDrop:           m.BackDrop,
		KeyIcon:               m.Icon,
		KeyCollectionBackdrop: m.CollectionBackdrop,
		KeyCollectionPoster:   m.CollectionPoster,
	}
	if m.Year != 0 {
		r[PropYear] = strconv.Itoa(m.Year)
	}
	if m.TMDBID != 0 {
		r[PropTMDBID] = strconv.Itoa(m.TMDBID)
	}
	if m.CollectionID != 0 {
		r[KeyCollectionID] = strconv.Itoa(m.CollectionID)
	}
	for k, v := range r {
		if v == "" {
			delete(r, k)
		}
	}
	return r
}

// MovieRecord is a flat property-name → value view of a movie.
// Values are kept as text; typing happens when Notion properties are built.
type MovieRecord map[string]string

// Get returns the value for key, or "" when absent.
func (r MovieRecord) Get(key string) string {
	return r[key]
}

// ItemID returns the Notion page id carried by the record, if any.
func (r MovieRecord) ItemID() string {
	return r[KeyItemID]
}

// ParseMovieRecord converts a decoded flat JSON object into a MovieRecord.
// Strings, numbers (json.Number or float64) and booleans are accepted; null values are skipped.
// Nested objects and arrays are rejected with a ValidationError.
func ParseMovieRecord(raw map[string]any) (MovieRecord, error) {
	if len(raw) == 0 {
		return nil, &ValidationError{Field: "body", Message: "movie record is required"}
	}

	r := make(MovieRecord, len(raw))
	for key, value := range raw {
		switch v := value.(type) {
		case nil:
			continue
		case string:
			r[key] = v
		case json.Number:
			r[key] = v.String()
		case float64:
			r[key] = strconv.FormatFloat(v, 'f', -1, 64)
		case bool:
			r[key] = strconv.FormatBool(v)
		default:
			return nil, &ValidationError{
				Field:   key,
				Message: fmt.Sprintf("must be a string, number or boolean (got %T)", value),
			}
		}
	}
	return r, nil
}

// NewMovie is a movie page created in Notion within a fetch window.
// Year is nil when the page has no year set.
type NewMovie struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Year  *int   `json:"year"`
}

// FetchStatus records when new movies were last fetched and when the next fetch is due.
type FetchStatus struct {
	LastFetched time.Time `json:"lastFetched"`
	NextFetch   time.Time `json:"nextFetch"`
}
