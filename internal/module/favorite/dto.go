package favorite

import (
	"time"

	"github.com/google/uuid"
)

// ListRequest is the query string of GET /favorites.
type ListRequest struct {
	Limit  *int     `form:"limit" binding:"omitempty,min=1,max=100"`
	Offset *int     `form:"offset" binding:"omitempty,min=0"`
	SortBy string   `form:"sortBy" binding:"omitempty,oneof=createdAt mangaTitle lastReadChapter rating"`
	Order  string   `form:"order" binding:"omitempty,oneof=asc desc"`
	Search string   `form:"search"`
	Tags   []string `form:"tags"`
}

// CreateRequest adds a manga to the favorites.
type CreateRequest struct {
	MangaID          string   `json:"mangaId" binding:"required,uuid"`
	MangaTitle       string   `json:"mangaTitle" binding:"required,max=200"`
	MangaCoverURL    string   `json:"mangaCoverUrl" binding:"omitempty,url"`
	MangaStatus      string   `json:"mangaStatus" binding:"omitempty,oneof=ongoing completed hiatus cancelled"`
	MangaDescription string   `json:"mangaDescription"`
	Tags             []string `json:"tags"`
	Rating           *int     `json:"rating" binding:"omitempty,min=1,max=10"`
	Notes            string   `json:"notes" binding:"max=500"`
}

// NotificationsUpdate changes notification settings. Nil fields are kept.
type NotificationsUpdate struct {
	Enabled   *bool    `json:"enabled"`
	Languages []string `json:"languages" binding:"omitempty,dive,language"`
}

// UpdateRequest changes a favorite. Nil fields are kept.
type UpdateRequest struct {
	Tags          []string             `json:"tags"`
	Rating        *int                 `json:"rating" binding:"omitempty,min=1,max=10"`
	Notes         *string              `json:"notes" binding:"omitempty,max=500"`
	Notifications *NotificationsUpdate `json:"notifications"`
}

// MarkReadRequest records the last chapter read.
type MarkReadRequest struct {
	ChapterID     string `json:"chapterId" binding:"required,uuid"`
	ChapterNumber string `json:"chapterNumber" binding:"required"`
}

// MangaIDRequest binds the :mangaId path parameter.
type MangaIDRequest struct {
	MangaID string `uri:"mangaId" binding:"required,uuid"`
}

// LastRead is the last chapter a user read.
type LastRead struct {
	ChapterID     string     `json:"chapterId"`
	ChapterNumber string     `json:"chapterNumber"`
	ReadAt        *time.Time `json:"readAt"`
}

// Notifications holds new-chapter notification settings.
type Notifications struct {
	Enabled   bool     `json:"enabled"`
	Languages []string `json:"languages"`
}

// FavoriteResponse is the public favorite representation.
type FavoriteResponse struct {
	ID               uuid.UUID       `json:"id"`
	MangaID          string          `json:"mangaId"`
	MangaTitle       string          `json:"mangaTitle"`
	MangaCoverURL    string          `json:"mangaCoverUrl,omitempty"`
	MangaStatus      string          `json:"mangaStatus"`
	MangaDescription string          `json:"mangaDescription,omitempty"`
	LastReadChapter  *LastRead       `json:"lastReadChapter"`
	Notifications    Notifications   `json:"notifications"`
	LatestChapters   []LatestChapter `json:"latestChapters"`
	Tags             []string        `json:"tags"`
	Rating           *int            `json:"rating"`
	Notes            string          `json:"notes,omitempty"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
	NewChaptersCount int             `json:"newChaptersCount"`
	HasNewChapters   bool            `json:"hasNewChapters"`
}

// ListResponse is a page of favorites.
type ListResponse struct {
	Data   []*FavoriteResponse `json:"data"`
	Total  int64               `json:"total"`
	Limit  int                 `json:"limit"`
	Offset int                 `json:"offset"`
}

// FavoriteEnvelope wraps a single favorite with a message.
type FavoriteEnvelope struct {
	Message  string            `json:"message"`
	Favorite *FavoriteResponse `json:"favorite"`
}

// CheckResponse reports whether a manga is a favorite.
type CheckResponse struct {
	IsFavorite bool              `json:"isFavorite"`
	Favorite   *FavoriteResponse `json:"favorite"`
}

// LastReadResponse is returned after marking a chapter read.
type LastReadResponse struct {
	Message  string    `json:"message"`
	LastRead *LastRead `json:"lastRead"`
}

// MessageResponse is a plain message body.
type MessageResponse struct {
	Message string `json:"message"`
}

// TagCount is a tag and how many favorites use it.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// Stats summarises a user's favorites.
type Stats struct {
	Total     int            `json:"total"`
	AvgRating float64        `json:"avgRating"`
	ByStatus  map[string]int `json:"byStatus"`
	TopTags   []TagCount     `json:"topTags"`
}
