package favorite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/readmanga/server/internal/module/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockRepository is a mock implementation of Repository.
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, favorite *Favorite) error {
	args := m.Called(ctx, favorite)
	return args.Error(0)
}

func (m *MockRepository) Get(ctx context.Context, userID uuid.UUID, mangaID string) (*Favorite, error) {
	args := m.Called(ctx, userID, mangaID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Favorite), args.Error(1)
}

func (m *MockRepository) List(ctx context.Context, userID uuid.UUID, filter *ListFilter) ([]*Favorite, int64, error) {
	args := m.Called(ctx, userID, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*Favorite), args.Get(1).(int64), args.Error(2)
}

func (m *MockRepository) ListForStats(ctx context.Context, userID uuid.UUID) ([]*Favorite, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Favorite), args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, favorite *Favorite) error {
	args := m.Called(ctx, favorite)
	return args.Error(0)
}

func (m *MockRepository) Delete(ctx context.Context, userID uuid.UUID, mangaID string) error {
	args := m.Called(ctx, userID, mangaID)
	return args.Error(0)
}

// MockChapterFetcher is a mock implementation of ChapterFetcher.
type MockChapterFetcher struct {
	mock.Mock
}

func (m *MockChapterFetcher) Chapters(ctx context.Context, mangaID string, q catalog.ChapterQuery) (*catalog.ChapterList, error) {
	args := m.Called(ctx, mangaID, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.ChapterList), args.Error(1)
}

const testMangaID = "a1c7c817-4e59-43b7-9365-09675a149a6f"

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestFavorite_NewChapters(t *testing.T) {
	t0 := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	f := &Favorite{LatestChapters: []LatestChapter{
		{ChapterID: "c3", PublishAt: t0.Add(48 * time.Hour)},
		{ChapterID: "c2", PublishAt: t0.Add(24 * time.Hour)},
		{ChapterID: "c1", PublishAt: t0},
	}}

	assert.Len(t, f.NewChapters(), 3)

	f.MarkRead("c2", "2", t0.Add(24*time.Hour))
	newChapters := f.NewChapters()
	require.Len(t, newChapters, 1)
	assert.Equal(t, "c3", newChapters[0].ChapterID)

	resp := f.ToResponse()
	assert.Equal(t, 1, resp.NewChaptersCount)
	assert.True(t, resp.HasNewChapters)
	require.NotNil(t, resp.LastReadChapter)
	assert.Equal(t, "2", resp.LastReadChapter.ChapterNumber)
}

func TestFavorite_MergeLatestChapters(t *testing.T) {
	t0 := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	f := &Favorite{LatestChapters: []LatestChapter{{ChapterID: "c0", PublishAt: t0}}}

	var incoming []LatestChapter
	for i := 1; i <= 12; i++ {
		incoming = append(incoming, LatestChapter{
			ChapterID: "c" + string(rune('a'+i)),
			PublishAt: t0.Add(time.Duration(i) * time.Hour),
		})
	}
	incoming = append(incoming, LatestChapter{ChapterID: "c0", PublishAt: t0.Add(100 * time.Hour)})

	f.MergeLatestChapters(incoming)

	require.Len(t, f.LatestChapters, MaxLatestChapters)
	for i := 1; i < len(f.LatestChapters); i++ {
		assert.True(t, f.LatestChapters[i-1].PublishAt.After(f.LatestChapters[i].PublishAt))
	}
	for _, ch := range f.LatestChapters {
		assert.NotEqual(t, "c0", ch.ChapterID)
	}
}

func TestService_Add(t *testing.T) {
	userID := uuid.New()
	repo := new(MockRepository)
	chapters := new(MockChapterFetcher)
	repo.On("Get", mock.Anything, userID, testMangaID).Return(nil, ErrFavoriteNotFound)
	chapters.On("Chapters", mock.Anything, testMangaID, catalog.ChapterQuery{Limit: 10, Languages: []string{"fr"}}).
		Return(&catalog.ChapterList{Data: []catalog.Chapter{
			{ID: "ch1", Chapter: strPtr("1"), TranslatedLanguage: "fr", PublishAt: "2024-05-01T10:00:00+00:00"},
			{ID: "ch2", Chapter: strPtr("2"), TranslatedLanguage: "fr", PublishAt: "2024-05-08T10:00:00+00:00"},
		}}, nil)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*favorite.Favorite")).Return(nil)
	svc := NewService(repo, chapters, zap.NewNop())

	favorite, err := svc.Add(context.Background(), userID, []string{"fr"}, &CreateRequest{
		MangaID:    testMangaID,
		MangaTitle: "  Berserk ",
		Tags:       []string{"seinen"},
		Rating:     intPtr(9),
	})

	require.NoError(t, err)
	assert.Equal(t, "Berserk", favorite.MangaTitle)
	assert.Equal(t, StatusOngoing, favorite.MangaStatus)
	assert.True(t, favorite.NotificationsEnabled)
	assert.Equal(t, []string{"fr"}, []string(favorite.NotificationLanguages))
	require.Len(t, favorite.LatestChapters, 2)
	assert.Equal(t, "ch2", favorite.LatestChapters[0].ChapterID)
	repo.AssertExpectations(t)
}

func TestService_AddChapterFailureIsIgnored(t *testing.T) {
	userID := uuid.New()
	repo := new(MockRepository)
	chapters := new(MockChapterFetcher)
	repo.On("Get", mock.Anything, userID, testMangaID).Return(nil, ErrFavoriteNotFound)
	chapters.On("Chapters", mock.Anything, testMangaID, mock.Anything).Return(nil, catalog.ErrUpstreamUnavailable)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	svc := NewService(repo, chapters, zap.NewNop())

	favorite, err := svc.Add(context.Background(), userID, nil, &CreateRequest{MangaID: testMangaID, MangaTitle: "Berserk"})

	require.NoError(t, err)
	assert.Empty(t, favorite.LatestChapters)
}

func TestService_AddDuplicate(t *testing.T) {
	userID := uuid.New()
	repo := new(MockRepository)
	repo.On("Get", mock.Anything, userID, testMangaID).Return(&Favorite{}, nil)
	svc := NewService(repo, new(MockChapterFetcher), zap.NewNop())

	_, err := svc.Add(context.Background(), userID, nil, &CreateRequest{MangaID: testMangaID, MangaTitle: "Berserk"})

	assert.ErrorIs(t, err, ErrAlreadyFavorite)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestService_Check(t *testing.T) {
	userID := uuid.New()
	repo := new(MockRepository)
	repo.On("Get", mock.Anything, userID, testMangaID).Return(nil, ErrFavoriteNotFound)
	svc := NewService(repo, nil, zap.NewNop())

	favorite, err := svc.Check(context.Background(), userID, testMangaID)

	require.NoError(t, err)
	assert.Nil(t, favorite)
}

func TestService_Update(t *testing.T) {
	userID := uuid.New()
	existing := &Favorite{
		UserID:                userID,
		MangaID:               testMangaID,
		Tags:                  []string{"old"},
		Notes:                 "keep",
		NotificationsEnabled:  true,
		NotificationLanguages: []string{"en"},
	}
	repo := new(MockRepository)
	repo.On("Get", mock.Anything, userID, testMangaID).Return(existing, nil)
	repo.On("Update", mock.Anything, existing).Return(nil)
	svc := NewService(repo, nil, zap.NewNop())

	disabled := false
	favorite, err := svc.Update(context.Background(), userID, testMangaID, &UpdateRequest{
		Rating:        intPtr(7),
		Notifications: &NotificationsUpdate{Enabled: &disabled},
	})

	require.NoError(t, err)
	assert.Equal(t, 7, *favorite.Rating)
	assert.Equal(t, "keep", favorite.Notes)
	assert.Equal(t, []string{"old"}, []string(favorite.Tags))
	assert.False(t, favorite.NotificationsEnabled)
	assert.Equal(t, []string{"en"}, []string(favorite.NotificationLanguages))
}

func TestService_UpdateNotFound(t *testing.T) {
	userID := uuid.New()
	repo := new(MockRepository)
	repo.On("Get", mock.Anything, userID, testMangaID).Return(nil, ErrFavoriteNotFound)
	svc := NewService(repo, nil, zap.NewNop())

	_, err := svc.Update(context.Background(), userID, testMangaID, &UpdateRequest{})

	assert.ErrorIs(t, err, ErrFavoriteNotFound)
}

func TestService_MarkRead(t *testing.T) {
	userID := uuid.New()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	existing := &Favorite{UserID: userID, MangaID: testMangaID}
	repo := new(MockRepository)
	repo.On("Get", mock.Anything, userID, testMangaID).Return(existing, nil)
	repo.On("Update", mock.Anything, existing).Return(nil)
	svc := NewService(repo, nil, zap.NewNop())
	svc.now = func() time.Time { return now }

	favorite, err := svc.MarkRead(context.Background(), userID, testMangaID, &MarkReadRequest{
		ChapterID:     "3c4e5f07-8a59-4b9a-b1c0-4d9b2c0d7e11",
		ChapterNumber: "12",
	})

	require.NoError(t, err)
	assert.Equal(t, now, *favorite.LastReadAt)
	assert.Equal(t, "12", *favorite.LastReadChapterNumber)
}

func TestService_ListDefaults(t *testing.T) {
	userID := uuid.New()
	repo := new(MockRepository)
	repo.On("List", mock.Anything, userID, &ListFilter{Limit: 20, Search: "one"}).Return([]*Favorite{}, int64(0), nil)
	svc := NewService(repo, nil, zap.NewNop())

	result, err := svc.List(context.Background(), userID, ListFilter{Offset: -3, Search: "  one "})

	require.NoError(t, err)
	assert.Equal(t, 20, result.Limit)
	assert.Equal(t, 0, result.Offset)
	repo.AssertExpectations(t)
}

func TestService_ListError(t *testing.T) {
	repo := new(MockRepository)
	repo.On("List", mock.Anything, mock.Anything, mock.Anything).Return(nil, int64(0), errors.New("db down"))
	svc := NewService(repo, nil, zap.NewNop())

	_, err := svc.List(context.Background(), uuid.New(), ListFilter{})

	assert.Error(t, err)
}

func TestBuildStats(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		stats := buildStats(nil)

		assert.Equal(t, &Stats{Total: 0, AvgRating: 0, ByStatus: map[string]int{}, TopTags: []TagCount{}}, stats)
	})

	t.Run("aggregates", func(t *testing.T) {
		stats := buildStats([]*Favorite{
			{MangaStatus: StatusOngoing, Rating: intPtr(8), Tags: []string{"action", "drama"}},
			{MangaStatus: StatusOngoing, Rating: intPtr(7), Tags: []string{"action"}},
			{MangaStatus: StatusCompleted, Tags: []string{"comedy"}},
		})

		assert.Equal(t, 3, stats.Total)
		assert.Equal(t, 7.5, stats.AvgRating)
		assert.Equal(t, map[string]int{"ongoing": 2, "completed": 1}, stats.ByStatus)
		assert.Equal(t, []TagCount{{"action", 2}, {"comedy", 1}, {"drama", 1}}, stats.TopTags)
	})

	t.Run("rounds and caps tags", func(t *testing.T) {
		var favorites []*Favorite
		for i := 0; i < 12; i++ {
			favorites = append(favorites, &Favorite{Tags: []string{string(rune('a' + i))}})
		}
		favorites[0].Rating = intPtr(1)
		favorites[1].Rating = intPtr(2)
		favorites[2].Rating = intPtr(2)

		stats := buildStats(favorites)

		assert.Equal(t, 1.7, stats.AvgRating)
		assert.Len(t, stats.TopTags, maxTopTags)
	})
}
