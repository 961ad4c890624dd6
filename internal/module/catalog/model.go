package catalog

// Tag is a catalog genre or theme tag.
type Tag struct {
	ID   string            `json:"id"`
	Name map[string]string `json:"name"`
}

// Manga is the public representation of a catalog title.
type Manga struct {
	ID                           string            `json:"id"`
	Title                        map[string]string `json:"title"`
	Description                  map[string]string `json:"description"`
	Status                       string            `json:"status"`
	Year                         *int              `json:"year"`
	ContentRating                string            `json:"contentRating"`
	Tags                         []Tag             `json:"tags"`
	CoverURL                     *string           `json:"coverUrl"`
	Author                       *string           `json:"author,omitempty"`
	Artist                       *string           `json:"artist,omitempty"`
	LastChapter                  *string           `json:"lastChapter"`
	LastVolume                   *string           `json:"lastVolume"`
	OriginalLanguage             string            `json:"originalLanguage"`
	AvailableTranslatedLanguages []string          `json:"availableTranslatedLanguages"`
}

// MangaList is a page of titles.
type MangaList struct {
	Data   []Manga `json:"data"`
	Total  int     `json:"total"`
	Limit  int     `json:"limit"`
	Offset int     `json:"offset"`
}

// Chapter is the public representation of a chapter.
type Chapter struct {
	ID                 string  `json:"id"`
	Title              *string `json:"title"`
	Chapter            *string `json:"chapter"`
	Volume             *string `json:"volume"`
	TranslatedLanguage string  `json:"translatedLanguage"`
	PublishAt          string  `json:"publishAt"`
	Pages              int     `json:"pages"`
	ScanlationGroup    *string `json:"scanlationGroup,omitempty"`
}

// ChapterList is a page of chapters.
type ChapterList struct {
	Data   []Chapter `json:"data"`
	Total  int       `json:"total"`
	Limit  int       `json:"limit"`
	Offset int       `json:"offset"`
}

// Page is a single chapter page image.
type Page struct {
	PageNumber int    `json:"pageNumber"`
	URL        string `json:"url"`
	Filename   string `json:"filename"`
}

// ChapterPages lists the page images of a chapter.
type ChapterPages struct {
	ChapterID  string `json:"chapterId"`
	Pages      []Page `json:"pages"`
	TotalPages int    `json:"totalPages"`
	Hash       string `json:"hash"`
}

// SearchQuery holds manga search filters.
type SearchQuery struct {
	Title        string
	Limit        int
	Offset       int
	Status       string
	IncludedTags []string
	ExcludedTags []string
	// Languages restricts results to titles translated into any of them.
	Languages []string
}

// PopularQuery holds popular listing filters.
type PopularQuery struct {
	Limit     int
	Offset    int
	Languages []string
}

// ChapterQuery holds chapter listing filters.
type ChapterQuery struct {
	Limit     int
	Offset    int
	Languages []string
}
