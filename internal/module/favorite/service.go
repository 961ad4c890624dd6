package favorite

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/readmanga/server/internal/module/catalog"
	"go.uber.org/zap"
)

const (
	defaultListLimit = 20
	maxTopTags       = 10
)

// ChapterFetcher lists the chapters of a manga.
type ChapterFetcher interface {
	Chapters(ctx context.Context, mangaID string, q catalog.ChapterQuery) (*catalog.ChapterList, error)
}

// Service manages user favorites.
type Service struct {
	repo     Repository
	chapters ChapterFetcher
	logger   *zap.Logger
	now      func() time.Time
}

// NewService creates a new favorite service.
func NewService(repo Repository, chapters ChapterFetcher, logger *zap.Logger) *Service {
	return &Service{
		repo:     repo,
		chapters: chapters,
		logger:   logger,
		now:      time.Now,
	}
}

// ListResult is a page of favorites.
type ListResult struct {
	Favorites []*Favorite
	Total     int64
	Limit     int
	Offset    int
}

// List returns a page of the user's favorites.
func (s *Service) List(ctx context.Context, userID uuid.UUID, filter ListFilter) (*ListResult, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultListLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	filter.Search = strings.TrimSpace(filter.Search)

	favorites, total, err := s.repo.List(ctx, userID, &filter)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}

	return &ListResult{
		Favorites: favorites,
		Total:     total,
		Limit:     filter.Limit,
		Offset:    filter.Offset,
	}, nil
}

// Add saves a manga as a favorite. languages are the user's preferred
// languages, used for both the chapter snapshot and notifications.
func (s *Service) Add(ctx context.Context, userID uuid.UUID, languages []string, req *CreateRequest) (*Favorite, error) {
	if _, err := s.repo.Get(ctx, userID, req.MangaID); err == nil {
		return nil, ErrAlreadyFavorite
	} else if !errors.Is(err, ErrFavoriteNotFound) {
		return nil, fmt.Errorf("check favorite: %w", err)
	}

	status := req.MangaStatus
	if status == "" {
		status = StatusOngoing
	}

	favorite := &Favorite{
		ID:                    uuid.New(),
		UserID:                userID,
		MangaID:               req.MangaID,
		MangaTitle:            strings.TrimSpace(req.MangaTitle),
		MangaCoverURL:         strings.TrimSpace(req.MangaCoverURL),
		MangaStatus:           status,
		MangaDescription:      strings.TrimSpace(req.MangaDescription),
		NotificationsEnabled:  true,
		NotificationLanguages: append([]string(nil), languages...),
		Tags:                  append([]string{}, req.Tags...),
		Rating:                req.Rating,
		Notes:                 req.Notes,
	}
	favorite.MergeLatestChapters(s.latestChapters(ctx, req.MangaID, languages))

	if err := s.repo.Create(ctx, favorite); err != nil {
		if errors.Is(err, ErrAlreadyFavorite) {
			return nil, err
		}
		return nil, fmt.Errorf("create favorite: %w", err)
	}

	return favorite, nil
}

// latestChapters snapshots chapters from the catalog. Failures are logged
// and yield no chapters.
func (s *Service) latestChapters(ctx context.Context, mangaID string, languages []string) []LatestChapter {
	list, err := s.chapters.Chapters(ctx, mangaID, catalog.ChapterQuery{
		Limit:     MaxLatestChapters,
		Languages: languages,
	})
	if err != nil {
		s.logger.Warn("fetch latest chapters failed", zap.String("manga_id", mangaID), zap.Error(err))
		return nil
	}

	out := make([]LatestChapter, 0, len(list.Data))
	for _, ch := range list.Data {
		publishAt, _ := time.Parse(time.RFC3339, ch.PublishAt)
		out = append(out, LatestChapter{
			ChapterID:     ch.ID,
			ChapterNumber: ch.Chapter,
			Language:      ch.TranslatedLanguage,
			PublishAt:     publishAt,
			Title:         ch.Title,
		})
	}
	return out
}

// Check returns the favorite for mangaID, or nil if the user has not saved it.
func (s *Service) Check(ctx context.Context, userID uuid.UUID, mangaID string) (*Favorite, error) {
	favorite, err := s.repo.Get(ctx, userID, mangaID)
	if err != nil {
		if errors.Is(err, ErrFavoriteNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get favorite: %w", err)
	}
	return favorite, nil
}

// Update changes tags, rating, notes and notification settings.
func (s *Service) Update(ctx context.Context, userID uuid.UUID, mangaID string, req *UpdateRequest) (*Favorite, error) {
	favorite, err := s.repo.Get(ctx, userID, mangaID)
	if err != nil {
		return nil, err
	}

	if req.Tags != nil {
		favorite.Tags = append([]string{}, req.Tags...)
	}
	if req.Rating != nil {
		favorite.Rating = req.Rating
	}
	if req.Notes != nil {
		favorite.Notes = *req.Notes
	}
	if n := req.Notifications; n != nil {
		if n.Enabled != nil {
			favorite.NotificationsEnabled = *n.Enabled
		}
		if n.Languages != nil {
			favorite.NotificationLanguages = append([]string(nil), n.Languages...)
		}
	}

	if err := s.repo.Update(ctx, favorite); err != nil {
		return nil, fmt.Errorf("update favorite: %w", err)
	}
	return favorite, nil
}

// MarkRead records the last chapter read.
func (s *Service) MarkRead(ctx context.Context, userID uuid.UUID, mangaID string, req *MarkReadRequest) (*Favorite, error) {
	favorite, err := s.repo.Get(ctx, userID, mangaID)
	if err != nil {
		return nil, err
	}

	favorite.MarkRead(req.ChapterID, req.ChapterNumber, s.now().UTC())

	if err := s.repo.Update(ctx, favorite); err != nil {
		return nil, fmt.Errorf("update favorite: %w", err)
	}
	return favorite, nil
}

// Remove deletes a favorite.
func (s *Service) Remove(ctx context.Context, userID uuid.UUID, mangaID string) error {
	return s.repo.Delete(ctx, userID, mangaID)
}

// Stats summarises the user's favorites.
func (s *Service) Stats(ctx context.Context, userID uuid.UUID) (*Stats, error) {
	favorites, err := s.repo.ListForStats(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	return buildStats(favorites), nil
}

func buildStats(favorites []*Favorite) *Stats {
	stats := &Stats{
		Total:    len(favorites),
		ByStatus: map[string]int{},
		TopTags:  []TagCount{},
	}

	var ratingSum, rated int
	tagCounts := map[string]int{}
	for _, f := range favorites {
		stats.ByStatus[f.MangaStatus]++
		if f.Rating != nil {
			ratingSum += *f.Rating
			rated++
		}
		for _, tag := range f.Tags {
			tagCounts[tag]++
		}
	}

	if rated > 0 {
		stats.AvgRating = math.Round(float64(ratingSum)/float64(rated)*10) / 10
	}

	for tag, count := range tagCounts {
		stats.TopTags = append(stats.TopTags, TagCount{Tag: tag, Count: count})
	}
	sort.Slice(stats.TopTags, func(i, j int) bool {
		if stats.TopTags[i].Count != stats.TopTags[j].Count {
			return stats.TopTags[i].Count > stats.TopTags[j].Count
		}
		return stats.TopTags[i].Tag < stats.TopTags[j].Tag
	})
	if len(stats.TopTags) > maxTopTags {
		stats.TopTags = stats.TopTags[:maxTopTags]
	}

	return stats
}
