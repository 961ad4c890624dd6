package catalog

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/readmanga/server/internal/module/auth"
	"github.com/readmanga/server/internal/shared/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	testMangaID   = "a1c7c817-4e59-43b7-9365-09675a149a6f"
	testChapterID = "3c4e5f07-8a59-4b9a-b1c0-4d9b2c0d7e11"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupRouter(up Upstream, devMode bool, mw ...gin.HandlerFunc) (*gin.Engine, *Cache) {
	svc, cache := newTestService(up)
	r := gin.New()
	NewHandler(svc, devMode).RegisterRoutes(r.Group("/api"), mw...)
	return r, cache
}

func doGet(r *gin.Engine, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	r.ServeHTTP(w, req)
	return w
}

func decodeValidation(t *testing.T, w *httptest.ResponseRecorder) validation.ErrorResponse {
	t.Helper()
	var body validation.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestHandler_SearchIdenticalBodies(t *testing.T) {
	up := new(MockUpstream)
	up.On("SearchManga", mock.Anything, mock.Anything).Return(rawMangaList("a", "b"), nil).Once()
	r, _ := setupRouter(up, false)

	first := doGet(r, "/api/manga/search?title=naruto&limit=10")
	second := doGet(r, "/api/manga/search?limit=10&title=naruto")

	require.Equal(t, http.StatusOK, first.Code)
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
	up.AssertNumberOfCalls(t, "SearchManga", 1)
}

func TestHandler_SearchForwardsFilters(t *testing.T) {
	up := new(MockUpstream)
	up.On("SearchManga", mock.Anything, mock.MatchedBy(func(q url.Values) bool {
		return q.Get("title") == "one piece" &&
			q.Get("limit") == "20" &&
			assert.ObjectsAreEqual([]string{"t1", "t2"}, q["includedTags[]"]) &&
			assert.ObjectsAreEqual([]string{"t3"}, q["excludedTags[]"])
	})).Return(rawMangaList(), nil)
	r, _ := setupRouter(up, false)

	w := doGet(r, "/api/manga/search?title=%20one%20piece%20&includedTags=t1&includedTags[]=t2&excludedTags[]=t3")

	assert.Equal(t, http.StatusOK, w.Code)
	up.AssertExpectations(t)
}

func TestHandler_SearchValidation(t *testing.T) {
	tests := []struct {
		name  string
		query string
		field string
	}{
		{name: "limit too large", query: "limit=51", field: "limit"},
		{name: "limit zero", query: "limit=0", field: "limit"},
		{name: "negative offset", query: "offset=-1", field: "offset"},
		{name: "unknown status", query: "status=paused", field: "status"},
		{name: "blank title", query: "title=%20%20", field: "title"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			up := new(MockUpstream)
			r, _ := setupRouter(up, false)

			w := doGet(r, "/api/manga/search?"+tt.query)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			body := decodeValidation(t, w)
			assert.Equal(t, "invalid parameters", body.Message)
			require.NotEmpty(t, body.Errors)
			assert.Equal(t, tt.field, body.Errors[0].Field)
			up.AssertNotCalled(t, "SearchManga", mock.Anything, mock.Anything)
		})
	}
}

func TestHandler_SearchUpstreamFailure(t *testing.T) {
	up := new(MockUpstream)
	up.On("SearchManga", mock.Anything, mock.Anything).Return(nil, errors.New("connection refused"))
	r, cache := setupRouter(up, false)

	w := doGet(r, "/api/manga/search")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"message":"failed to search manga"}`, w.Body.String())
	assert.Equal(t, 0, cache.Len())
}

func TestHandler_PopularFallback(t *testing.T) {
	up := new(MockUpstream)
	up.On("SearchManga", mock.Anything, mock.Anything).Return(nil, &HTTPError{StatusCode: 502})
	r, _ := setupRouter(up, false)

	w := doGet(r, "/api/manga/popular?limit=20&offset=0")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":[],"total":0,"limit":20,"offset":0}`, w.Body.String())
}

func TestHandler_PopularUsesPreferredLanguages(t *testing.T) {
	up := new(MockUpstream)
	up.On("SearchManga", mock.Anything, mock.MatchedBy(func(q url.Values) bool {
		return assert.ObjectsAreEqual([]string{"ar"}, q["availableTranslatedLanguage[]"])
	})).Return(rawMangaList(), nil)
	withIdentity := func(c *gin.Context) {
		c.Set(auth.IdentityKey, &auth.Identity{UserID: uuid.New(), PreferredLanguages: []string{"ar"}})
		c.Next()
	}
	r, _ := setupRouter(up, false, withIdentity)

	w := doGet(r, "/api/manga/popular")

	assert.Equal(t, http.StatusOK, w.Code)
	up.AssertExpectations(t)
}

func TestHandler_GetManga(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		up := new(MockUpstream)
		up.On("GetManga", mock.Anything, testMangaID).Return(&RawManga{ID: testMangaID, Type: "manga"}, nil)
		r, _ := setupRouter(up, false)

		w := doGet(r, "/api/manga/"+testMangaID)

		assert.Equal(t, http.StatusOK, w.Code)
		var body Manga
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, testMangaID, body.ID)
	})

	t.Run("not found", func(t *testing.T) {
		up := new(MockUpstream)
		up.On("GetManga", mock.Anything, testMangaID).Return(nil, ErrNotFound)
		r, _ := setupRouter(up, false)

		w := doGet(r, "/api/manga/"+testMangaID)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, `{"message":"manga not found"}`, w.Body.String())
	})

	t.Run("invalid id", func(t *testing.T) {
		up := new(MockUpstream)
		r, _ := setupRouter(up, false)

		w := doGet(r, "/api/manga/not-a-uuid")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		body := decodeValidation(t, w)
		require.NotEmpty(t, body.Errors)
		assert.Equal(t, "id", body.Errors[0].Field)
	})
}

func TestHandler_Chapters(t *testing.T) {
	t.Run("explicit languages", func(t *testing.T) {
		up := new(MockUpstream)
		up.On("ListChapters", mock.Anything, mock.MatchedBy(func(q url.Values) bool {
			return q.Get("manga") == testMangaID &&
				q.Get("limit") == "100" &&
				assert.ObjectsAreEqual([]string{"fr", "ja"}, q["translatedLanguage[]"])
		})).Return(&RawChapterList{}, nil)
		r, _ := setupRouter(up, false)

		w := doGet(r, "/api/manga/"+testMangaID+"/chapters?languages=fr&languages[]=ja")

		assert.Equal(t, http.StatusOK, w.Code)
		up.AssertExpectations(t)
	})

	t.Run("unknown language", func(t *testing.T) {
		up := new(MockUpstream)
		r, _ := setupRouter(up, false)

		w := doGet(r, "/api/manga/"+testMangaID+"/chapters?languages=xx")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		body := decodeValidation(t, w)
		require.NotEmpty(t, body.Errors)
		assert.Equal(t, "languages", body.Errors[0].Field)
	})

	t.Run("limit above range", func(t *testing.T) {
		up := new(MockUpstream)
		r, _ := setupRouter(up, false)

		w := doGet(r, "/api/manga/"+testMangaID+"/chapters?limit=501")

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHandler_ChapterPagesUpstreamFailure(t *testing.T) {
	up := new(MockUpstream)
	up.On("GetChapter", mock.Anything, testChapterID).Return(nil, &HTTPError{StatusCode: 503})
	r, _ := setupRouter(up, false)

	w := doGet(r, "/api/manga/chapter/"+testChapterID+"/pages")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"message":"failed to fetch chapter pages"}`, w.Body.String())
}

func TestHandler_ChapterPagesNotFound(t *testing.T) {
	up := new(MockUpstream)
	up.On("GetChapter", mock.Anything, testChapterID).Return(nil, ErrNotFound)
	r, _ := setupRouter(up, false)

	w := doGet(r, "/api/manga/chapter/"+testChapterID+"/pages")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"message":"chapter not found"}`, w.Body.String())
}

func TestHandler_CacheAdmin(t *testing.T) {
	t.Run("disabled outside development", func(t *testing.T) {
		r, _ := setupRouter(new(MockUpstream), false)

		w := doGet(r, "/api/manga/cache/stats")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, `{"message":"route not found"}`, w.Body.String())

		w = httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/manga/cache", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("development", func(t *testing.T) {
		r, cache := setupRouter(new(MockUpstream), true)
		cache.Set("search_{}", &MangaList{})
		cache.Set("popular_{}", &MangaList{})

		w := doGet(r, "/api/manga/cache/stats")
		require.Equal(t, http.StatusOK, w.Code)
		var stats CacheStats
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
		assert.Equal(t, 2, stats.Size)
		assert.Equal(t, 300, stats.TTLSeconds)

		w = httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/manga/cache", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"message":"cache cleared"}`, w.Body.String())
		assert.Equal(t, 0, cache.Len())
	})
}
