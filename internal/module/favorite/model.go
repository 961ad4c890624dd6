package favorite

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Publication statuses a favorite may record.
const (
	StatusOngoing   = "ongoing"
	StatusCompleted = "completed"
	StatusHiatus    = "hiatus"
	StatusCancelled = "cancelled"
)

// MaxLatestChapters bounds the chapters remembered per favorite.
const MaxLatestChapters = 10

// LatestChapter is a recently published chapter remembered for new-chapter
// tracking.
type LatestChapter struct {
	ChapterID     string    `json:"chapterId"`
	ChapterNumber *string   `json:"chapterNumber"`
	Language      string    `json:"language"`
	PublishAt     time.Time `json:"publishAt"`
	Title         *string   `json:"title"`
}

// Favorite is a manga saved by a user.
type Favorite struct {
	ID                    uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID                uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_favorites_user_manga;index:idx_favorites_user_created,priority:1"`
	MangaID               string    `gorm:"size:36;not null;uniqueIndex:idx_favorites_user_manga"`
	MangaTitle            string    `gorm:"size:200;not null"`
	MangaCoverURL         string    `gorm:"column:manga_cover_url"`
	MangaStatus           string    `gorm:"size:16;default:ongoing"`
	MangaDescription      string    `gorm:"type:text"`
	LastReadChapterID     *string   `gorm:"size:36"`
	LastReadChapterNumber *string
	LastReadAt            *time.Time
	NotificationsEnabled  bool            `gorm:"default:true"`
	NotificationLanguages pq.StringArray  `gorm:"type:text[]"`
	LatestChapters        []LatestChapter `gorm:"type:jsonb;serializer:json"`
	Tags                  pq.StringArray  `gorm:"type:text[]"`
	Rating                *int
	Notes                 string    `gorm:"size:500"`
	CreatedAt             time.Time `gorm:"index:idx_favorites_user_created,priority:2"`
	UpdatedAt             time.Time
}

// TableName returns the database table name.
func (Favorite) TableName() string {
	return "favorites"
}

// NewChapters returns the latest chapters published after the last read,
// or all of them if nothing was read yet.
func (f *Favorite) NewChapters() []LatestChapter {
	if f.LastReadAt == nil {
		return f.LatestChapters
	}
	var out []LatestChapter
	for _, ch := range f.LatestChapters {
		if ch.PublishAt.After(*f.LastReadAt) {
			out = append(out, ch)
		}
	}
	return out
}

// MergeLatestChapters adds chapters not already known, keeping the newest
// MaxLatestChapters by publish time.
func (f *Favorite) MergeLatestChapters(chapters []LatestChapter) {
	known := make(map[string]struct{}, len(f.LatestChapters))
	merged := append([]LatestChapter(nil), f.LatestChapters...)
	for _, ch := range f.LatestChapters {
		known[ch.ChapterID] = struct{}{}
	}
	for _, ch := range chapters {
		if _, ok := known[ch.ChapterID]; ok {
			continue
		}
		known[ch.ChapterID] = struct{}{}
		merged = append(merged, ch)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].PublishAt.After(merged[j].PublishAt)
	})
	if len(merged) > MaxLatestChapters {
		merged = merged[:MaxLatestChapters]
	}
	f.LatestChapters = merged
}

// MarkRead records chapterID as the last chapter read at readAt.
func (f *Favorite) MarkRead(chapterID, chapterNumber string, readAt time.Time) {
	f.LastReadChapterID = &chapterID
	f.LastReadChapterNumber = &chapterNumber
	f.LastReadAt = &readAt
}

// ToResponse converts the favorite to its public representation.
func (f *Favorite) ToResponse() *FavoriteResponse {
	newCount := len(f.NewChapters())

	resp := &FavoriteResponse{
		ID:               f.ID,
		MangaID:          f.MangaID,
		MangaTitle:       f.MangaTitle,
		MangaCoverURL:    f.MangaCoverURL,
		MangaStatus:      f.MangaStatus,
		MangaDescription: f.MangaDescription,
		Notifications: Notifications{
			Enabled:   f.NotificationsEnabled,
			Languages: nonNil(f.NotificationLanguages),
		},
		LatestChapters:   f.LatestChapters,
		Tags:             nonNil(f.Tags),
		Rating:           f.Rating,
		Notes:            f.Notes,
		CreatedAt:        f.CreatedAt,
		UpdatedAt:        f.UpdatedAt,
		NewChaptersCount: newCount,
		HasNewChapters:   newCount > 0,
	}
	if resp.LatestChapters == nil {
		resp.LatestChapters = []LatestChapter{}
	}
	resp.LastReadChapter = f.lastRead()
	return resp
}

func (f *Favorite) lastRead() *LastRead {
	if f.LastReadChapterID == nil {
		return nil
	}
	lr := &LastRead{ChapterID: *f.LastReadChapterID, ReadAt: f.LastReadAt}
	if f.LastReadChapterNumber != nil {
		lr.ChapterNumber = *f.LastReadChapterNumber
	}
	return lr
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
