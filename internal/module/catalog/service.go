package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/readmanga/server/internal/shared/metrics"
	"github.com/readmanga/server/internal/utils/requestctx"
	"go.uber.org/zap"
)

// Cache operation names.
const (
	OpSearch       = "search"
	OpPopular      = "popular"
	OpManga        = "manga"
	OpChapters     = "chapters"
	OpChapterPages = "chapter-pages"
)

const (
	defaultMangaLimit   = 20
	defaultChapterLimit = 100

	cacheName = "catalog"
)

// DefaultChapterLanguages are used when a chapter listing names no language.
var DefaultChapterLanguages = []string{"en", "ar"}

// Service serves catalog reads through the TTL cache.
type Service struct {
	upstream     Upstream
	cache        *Cache
	coverBaseURL string
	metrics      *metrics.Metrics
	logger       *zap.Logger
}

// NewService creates a catalog service. m may be nil.
func NewService(upstream Upstream, cache *Cache, coverBaseURL string, m *metrics.Metrics, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		upstream:     upstream,
		cache:        cache,
		coverBaseURL: coverBaseURL,
		metrics:      m,
		logger:       logger.Named("catalog"),
	}
}

// cached serves key from the cache, or runs fetch and stores its result.
// Fetch errors are returned without touching the cache.
func cached[T any](ctx context.Context, s *Service, op string, params *Params, fetch func(context.Context) (T, error)) (T, error) {
	key := ComputeKey(op, params)
	if v, ok := s.cache.Get(key); ok {
		if out, ok := v.(T); ok {
			s.recordHit()
			return out, nil
		}
	}
	s.recordMiss()

	// The fetch outlives a disconnected caller; the client timeout still bounds it.
	out, err := fetch(context.WithoutCancel(ctx))
	if err != nil {
		var zero T
		return zero, err
	}
	s.cache.Set(key, out)
	return out, nil
}

// Search lists titles matching q.
func (s *Service) Search(ctx context.Context, q SearchQuery) (*MangaList, error) {
	if q.Limit <= 0 {
		q.Limit = defaultMangaLimit
	}
	if q.Offset < 0 {
		q.Offset = 0
	}

	params := NewParams().
		Add("limit", q.Limit).
		Add("offset", q.Offset).
		AddString("title", q.Title).
		AddStrings("includedTags", q.IncludedTags).
		AddStrings("excludedTags", q.ExcludedTags).
		AddStrings("availableTranslatedLanguage", q.Languages)
	if q.Status != "" {
		params.Add("status", []string{q.Status})
	}

	return cached(ctx, s, OpSearch, params, func(ctx context.Context) (*MangaList, error) {
		query := mangaListQuery(q.Limit, q.Offset, q.Languages)
		query.Set("order[relevance]", "desc")
		if q.Title != "" {
			query.Set("title", q.Title)
		}
		if q.Status != "" {
			query.Add("status[]", q.Status)
		}
		for _, tag := range q.IncludedTags {
			query.Add("includedTags[]", tag)
		}
		for _, tag := range q.ExcludedTags {
			query.Add("excludedTags[]", tag)
		}

		raw, err := s.upstream.SearchManga(ctx, query)
		if err != nil {
			s.log(ctx).Error("search manga failed", zap.String("title", q.Title), zap.Error(err))
			return nil, fmt.Errorf("search manga: %w", upstreamErr(err))
		}
		return newMangaList(raw, s.coverBaseURL), nil
	})
}

// Popular lists the most followed titles. An upstream failure yields an
// empty page, which is cached like a real result.
func (s *Service) Popular(ctx context.Context, q PopularQuery) (*MangaList, error) {
	if q.Limit <= 0 {
		q.Limit = defaultMangaLimit
	}
	if q.Offset < 0 {
		q.Offset = 0
	}

	params := NewParams().
		Add("limit", q.Limit).
		Add("offset", q.Offset).
		AddStrings("availableTranslatedLanguage", q.Languages)

	return cached(ctx, s, OpPopular, params, func(ctx context.Context) (*MangaList, error) {
		query := mangaListQuery(q.Limit, q.Offset, q.Languages)
		query.Set("order[followedCount]", "desc")
		query.Set("hasAvailableChapters", "true")

		raw, err := s.upstream.SearchManga(ctx, query)
		if err != nil {
			s.log(ctx).Warn("popular manga failed, serving empty fallback", zap.Error(err))
			return &MangaList{
				Data:   []Manga{},
				Total:  0,
				Limit:  q.Limit,
				Offset: q.Offset,
			}, nil
		}
		return newMangaList(raw, s.coverBaseURL), nil
	})
}

// GetManga returns a single title.
func (s *Service) GetManga(ctx context.Context, id string) (*Manga, error) {
	params := NewParams().Add("id", id)

	return cached(ctx, s, OpManga, params, func(ctx context.Context) (*Manga, error) {
		raw, err := s.upstream.GetManga(ctx, id)
		if err != nil {
			s.log(ctx).Error("get manga failed", zap.String("manga_id", id), zap.Error(err))
			if errors.Is(err, ErrNotFound) {
				return nil, ErrMangaNotFound
			}
			return nil, fmt.Errorf("get manga: %w", upstreamErr(err))
		}
		m := newManga(raw, s.coverBaseURL)
		return &m, nil
	})
}

// Chapters lists the chapters of a title, ordered by chapter number.
func (s *Service) Chapters(ctx context.Context, mangaID string, q ChapterQuery) (*ChapterList, error) {
	if q.Limit <= 0 {
		q.Limit = defaultChapterLimit
	}
	if q.Offset < 0 {
		q.Offset = 0
	}

	params := NewParams().
		Add("mangaId", mangaID).
		Add("limit", q.Limit).
		Add("offset", q.Offset).
		AddStrings("languages", q.Languages)

	return cached(ctx, s, OpChapters, params, func(ctx context.Context) (*ChapterList, error) {
		languages := q.Languages
		if len(languages) == 0 {
			languages = DefaultChapterLanguages
		}

		query := url.Values{}
		query.Set("manga", mangaID)
		query.Set("limit", strconv.Itoa(q.Limit))
		query.Set("offset", strconv.Itoa(q.Offset))
		query.Set("order[chapter]", "asc")
		query["translatedLanguage[]"] = languages
		query["includes[]"] = []string{"scanlation_group"}

		raw, err := s.upstream.ListChapters(ctx, query)
		if err != nil {
			s.log(ctx).Error("list chapters failed", zap.String("manga_id", mangaID), zap.Error(err))
			return nil, fmt.Errorf("list chapters: %w", upstreamErr(err))
		}
		return newChapterList(raw), nil
	})
}

// ChapterPages resolves the page image URLs of a chapter.
func (s *Service) ChapterPages(ctx context.Context, chapterID string) (*ChapterPages, error) {
	params := NewParams().Add("chapterId", chapterID)

	return cached(ctx, s, OpChapterPages, params, func(ctx context.Context) (*ChapterPages, error) {
		log := s.log(ctx).With(zap.String("chapter_id", chapterID))

		if _, err := s.upstream.GetChapter(ctx, chapterID); err != nil {
			log.Error("get chapter failed", zap.Error(err))
			if errors.Is(err, ErrNotFound) {
				return nil, ErrChapterNotFound
			}
			return nil, fmt.Errorf("get chapter: %w", upstreamErr(err))
		}

		atHome, err := s.upstream.GetAtHomeServer(ctx, chapterID)
		if err != nil {
			log.Error("get at-home server failed", zap.Error(err))
			if errors.Is(err, ErrNotFound) {
				return nil, ErrChapterNotFound
			}
			return nil, fmt.Errorf("get at-home server: %w", upstreamErr(err))
		}
		if atHome.BaseURL == "" {
			log.Error("at-home server returned no base url")
			return nil, fmt.Errorf("get at-home server: %w: no base url", ErrUpstreamUnavailable)
		}

		return newChapterPages(chapterID, atHome), nil
	})
}

// CacheStats reports the cache size and counters.
func (s *Service) CacheStats() CacheStats {
	return s.cache.Stats()
}

// ClearCache drops every cached response.
func (s *Service) ClearCache() {
	s.cache.Clear()
	s.logger.Info("catalog cache cleared")
}

func mangaListQuery(limit, offset int, languages []string) url.Values {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	query.Set("offset", strconv.Itoa(offset))
	query["contentRating[]"] = []string{"safe", "suggestive"}
	query["includes[]"] = []string{"cover_art", "author", "artist"}
	for _, lang := range languages {
		query.Add("availableTranslatedLanguage[]", lang)
	}
	return query
}

func upstreamErr(err error) error {
	if errors.Is(err, ErrUpstreamUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
}

func (s *Service) log(ctx context.Context) *zap.Logger {
	if id := requestctx.RequestID(ctx); id != "" {
		return s.logger.With(zap.String("request_id", id))
	}
	return s.logger
}

func (s *Service) recordHit() {
	if s.metrics != nil {
		s.metrics.RecordCacheHit(cacheName)
	}
}

func (s *Service) recordMiss() {
	if s.metrics != nil {
		s.metrics.RecordCacheMiss(cacheName)
	}
}
