package catalog

import (
	"context"
	"net/url"
	"strings"
)

// Upstream is the third-party catalog API.
type Upstream interface {
	SearchManga(ctx context.Context, query url.Values) (*RawMangaList, error)
	GetManga(ctx context.Context, id string) (*RawManga, error)
	ListChapters(ctx context.Context, query url.Values) (*RawChapterList, error)
	GetChapter(ctx context.Context, id string) (*RawChapter, error)
	GetAtHomeServer(ctx context.Context, chapterID string) (*RawAtHome, error)
}

// RawRelationship links an entity to a related one. Attributes are only
// present for types requested through includes[].
type RawRelationship struct {
	ID         string                     `json:"id"`
	Type       string                     `json:"type"`
	Attributes *RawRelationshipAttributes `json:"attributes,omitempty"`
}

// RawRelationshipAttributes covers the fields read from cover_art,
// author, artist and scanlation_group relationships.
type RawRelationshipAttributes struct {
	FileName string `json:"fileName,omitempty"`
	Name     string `json:"name,omitempty"`
}

// RawTag is an upstream tag.
type RawTag struct {
	ID         string `json:"id"`
	Attributes struct {
		Name map[string]string `json:"name"`
	} `json:"attributes"`
}

// RawMangaAttributes are the upstream manga attributes.
type RawMangaAttributes struct {
	Title                        map[string]string `json:"title"`
	Description                  map[string]string `json:"description"`
	Status                       string            `json:"status"`
	Year                         *int              `json:"year"`
	ContentRating                string            `json:"contentRating"`
	Tags                         []RawTag          `json:"tags"`
	LastChapter                  *string           `json:"lastChapter"`
	LastVolume                   *string           `json:"lastVolume"`
	OriginalLanguage             string            `json:"originalLanguage"`
	AvailableTranslatedLanguages []string          `json:"availableTranslatedLanguages"`
}

// RawManga is an upstream manga entity.
type RawManga struct {
	ID            string             `json:"id"`
	Type          string             `json:"type"`
	Attributes    RawMangaAttributes `json:"attributes"`
	Relationships []RawRelationship  `json:"relationships"`
}

// RawMangaList is the upstream manga collection response.
type RawMangaList struct {
	Data   []RawManga `json:"data"`
	Limit  int        `json:"limit"`
	Offset int        `json:"offset"`
	Total  int        `json:"total"`
}

// RawChapterAttributes are the upstream chapter attributes.
type RawChapterAttributes struct {
	Title              *string `json:"title"`
	Volume             *string `json:"volume"`
	Chapter            *string `json:"chapter"`
	Pages              int     `json:"pages"`
	TranslatedLanguage string  `json:"translatedLanguage"`
	PublishAt          string  `json:"publishAt"`
}

// RawChapter is an upstream chapter entity.
type RawChapter struct {
	ID            string               `json:"id"`
	Type          string               `json:"type"`
	Attributes    RawChapterAttributes `json:"attributes"`
	Relationships []RawRelationship    `json:"relationships"`
}

// RawChapterList is the upstream chapter collection response.
type RawChapterList struct {
	Data   []RawChapter `json:"data"`
	Limit  int          `json:"limit"`
	Offset int          `json:"offset"`
	Total  int          `json:"total"`
}

// RawAtHome is the upstream image delivery server response.
type RawAtHome struct {
	BaseURL string `json:"baseUrl"`
	Chapter struct {
		Hash      string   `json:"hash"`
		Data      []string `json:"data"`
		DataSaver []string `json:"dataSaver"`
	} `json:"chapter"`
}

func findRelationship(rels []RawRelationship, typ string) *RawRelationship {
	for i := range rels {
		if rels[i].Type == typ {
			return &rels[i]
		}
	}
	return nil
}

func relationshipName(rels []RawRelationship, typ string) *string {
	rel := findRelationship(rels, typ)
	if rel == nil || rel.Attributes == nil || rel.Attributes.Name == "" {
		return nil
	}
	name := rel.Attributes.Name
	return &name
}

func newManga(raw *RawManga, coverBaseURL string) Manga {
	m := Manga{
		ID:                           raw.ID,
		Title:                        raw.Attributes.Title,
		Description:                  raw.Attributes.Description,
		Status:                       raw.Attributes.Status,
		Year:                         raw.Attributes.Year,
		ContentRating:                raw.Attributes.ContentRating,
		Tags:                         make([]Tag, 0, len(raw.Attributes.Tags)),
		Author:                       relationshipName(raw.Relationships, "author"),
		Artist:                       relationshipName(raw.Relationships, "artist"),
		LastChapter:                  raw.Attributes.LastChapter,
		LastVolume:                   raw.Attributes.LastVolume,
		OriginalLanguage:             raw.Attributes.OriginalLanguage,
		AvailableTranslatedLanguages: raw.Attributes.AvailableTranslatedLanguages,
	}
	if m.AvailableTranslatedLanguages == nil {
		m.AvailableTranslatedLanguages = []string{}
	}
	for _, t := range raw.Attributes.Tags {
		m.Tags = append(m.Tags, Tag{ID: t.ID, Name: t.Attributes.Name})
	}
	if cover := findRelationship(raw.Relationships, "cover_art"); cover != nil && cover.Attributes != nil {
		u := strings.TrimRight(coverBaseURL, "/") + "/" + raw.ID + "/" + cover.Attributes.FileName
		m.CoverURL = &u
	}
	return m
}

func newMangaList(raw *RawMangaList, coverBaseURL string) *MangaList {
	list := &MangaList{
		Data:   make([]Manga, 0, len(raw.Data)),
		Total:  raw.Total,
		Limit:  raw.Limit,
		Offset: raw.Offset,
	}
	if list.Limit == 0 {
		list.Limit = defaultMangaLimit
	}
	for i := range raw.Data {
		list.Data = append(list.Data, newManga(&raw.Data[i], coverBaseURL))
	}
	return list
}

func newChapter(raw *RawChapter) Chapter {
	return Chapter{
		ID:                 raw.ID,
		Title:              raw.Attributes.Title,
		Chapter:            raw.Attributes.Chapter,
		Volume:             raw.Attributes.Volume,
		TranslatedLanguage: raw.Attributes.TranslatedLanguage,
		PublishAt:          raw.Attributes.PublishAt,
		Pages:              raw.Attributes.Pages,
		ScanlationGroup:    relationshipName(raw.Relationships, "scanlation_group"),
	}
}

func newChapterList(raw *RawChapterList) *ChapterList {
	list := &ChapterList{
		Data:   make([]Chapter, 0, len(raw.Data)),
		Total:  raw.Total,
		Limit:  raw.Limit,
		Offset: raw.Offset,
	}
	if list.Limit == 0 {
		list.Limit = defaultChapterLimit
	}
	for i := range raw.Data {
		list.Data = append(list.Data, newChapter(&raw.Data[i]))
	}
	return list
}

func newChapterPages(chapterID string, raw *RawAtHome) *ChapterPages {
	base := strings.TrimRight(raw.BaseURL, "/")
	pages := make([]Page, 0, len(raw.Chapter.Data))
	for i, filename := range raw.Chapter.Data {
		pages = append(pages, Page{
			PageNumber: i + 1,
			URL:        base + "/data/" + raw.Chapter.Hash + "/" + filename,
			Filename:   filename,
		})
	}
	return &ChapterPages{
		ChapterID:  chapterID,
		Pages:      pages,
		TotalPages: len(pages),
		Hash:       raw.Chapter.Hash,
	}
}
