package catalog

import (
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/readmanga/server/internal/module/auth"
	"github.com/readmanga/server/internal/shared/validation"
)

const invalidParamsMessage = "invalid parameters"

// Handler handles HTTP requests for the manga catalog.
type Handler struct {
	service *Service
	devMode bool
}

// NewHandler creates a new catalog handler. devMode enables the cache
// admin routes.
func NewHandler(service *Service, devMode bool) *Handler {
	return &Handler{service: service, devMode: devMode}
}

// RegisterRoutes registers the catalog routes. mw runs before every
// catalog read, typically rate limiting and optional auth.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup, mw ...gin.HandlerFunc) {
	manga := r.Group("/manga")
	{
		reads := manga.Group("", mw...)
		reads.GET("/search", h.Search)
		reads.GET("/popular", h.Popular)
		reads.GET("/:id", h.GetManga)
		reads.GET("/:id/chapters", h.Chapters)
		reads.GET("/chapter/:id/pages", h.ChapterPages)

		manga.GET("/cache/stats", h.CacheStats)
		manga.DELETE("/cache", h.ClearCache)
	}
}

// Search handles manga search.
//
//	@Summary		Search manga
//	@Description	Search the catalog. Signed-in users only see titles translated into their preferred languages.
//	@Tags			Manga
//	@Produce		json
//	@Param			title			query		string		false	"Title (1-100 characters)"
//	@Param			limit			query		int			false	"Page size (1-50)"	default(20)
//	@Param			offset			query		int			false	"Offset"			default(0)
//	@Param			status			query		string		false	"Publication status"	Enums(ongoing, completed, hiatus, cancelled)
//	@Param			includedTags	query		[]string	false	"Tags that must be present"
//	@Param			excludedTags	query		[]string	false	"Tags that must be absent"
//	@Success		200				{object}	MangaList
//	@Failure		400				{object}	validation.ErrorResponse
//	@Failure		500				{object}	MessageResponse
//	@Router			/manga/search [get]
func (h *Handler) Search(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		validation.AbortWithError(c, invalidParamsMessage, err)
		return
	}

	if raw, ok := c.GetQuery("title"); ok {
		req.Title = strings.TrimSpace(raw)
		if n := utf8.RuneCountInString(req.Title); n < 1 || n > 100 {
			validation.Abort(c, invalidParamsMessage, []validation.FieldError{
				{Field: "title", Message: "must be between 1 and 100 characters"},
			})
			return
		}
	}

	result, err := h.service.Search(c.Request.Context(), SearchQuery{
		Title:        req.Title,
		Limit:        intOr(req.Limit, defaultMangaLimit),
		Offset:       intOr(req.Offset, 0),
		Status:       req.Status,
		IncludedTags: mergeArray(req.IncludedTags, c.QueryArray("includedTags[]")),
		ExcludedTags: mergeArray(req.ExcludedTags, c.QueryArray("excludedTags[]")),
		Languages:    auth.GetPreferredLanguages(c),
	})
	if err != nil {
		handleError(c, err, "failed to search manga")
		return
	}

	c.JSON(http.StatusOK, result)
}

// Popular handles the popular listing.
//
//	@Summary		Popular manga
//	@Description	Most followed titles. Returns an empty page while the upstream catalog is unavailable.
//	@Tags			Manga
//	@Produce		json
//	@Param			limit	query		int	false	"Page size (1-50)"	default(20)
//	@Param			offset	query		int	false	"Offset"			default(0)
//	@Success		200		{object}	MangaList
//	@Failure		400		{object}	validation.ErrorResponse
//	@Router			/manga/popular [get]
func (h *Handler) Popular(c *gin.Context) {
	var req PopularRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		validation.AbortWithError(c, invalidParamsMessage, err)
		return
	}

	result, err := h.service.Popular(c.Request.Context(), PopularQuery{
		Limit:     intOr(req.Limit, defaultMangaLimit),
		Offset:    intOr(req.Offset, 0),
		Languages: auth.GetPreferredLanguages(c),
	})
	if err != nil {
		handleError(c, err, "failed to fetch popular manga")
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetManga handles manga detail lookup.
//
//	@Summary		Get manga
//	@Tags			Manga
//	@Produce		json
//	@Param			id	path		string	true	"Manga ID (UUID)"
//	@Success		200	{object}	Manga
//	@Failure		400	{object}	validation.ErrorResponse
//	@Failure		404	{object}	MessageResponse
//	@Failure		500	{object}	MessageResponse
//	@Router			/manga/{id} [get]
func (h *Handler) GetManga(c *gin.Context) {
	var uri IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		validation.AbortWithError(c, invalidParamsMessage, err)
		return
	}

	result, err := h.service.GetManga(c.Request.Context(), uri.ID)
	if err != nil {
		handleError(c, err, "failed to fetch manga")
		return
	}

	c.JSON(http.StatusOK, result)
}

// Chapters handles chapter listing.
//
//	@Summary		List chapters
//	@Description	Chapters ordered by number. Defaults to the caller's preferred languages, then en and ar.
//	@Tags			Manga
//	@Produce		json
//	@Param			id			path		string		true	"Manga ID (UUID)"
//	@Param			limit		query		int			false	"Page size (1-500)"	default(100)
//	@Param			offset		query		int			false	"Offset"				default(0)
//	@Param			languages	query		[]string	false	"Translation languages"
//	@Success		200			{object}	ChapterList
//	@Failure		400			{object}	validation.ErrorResponse
//	@Failure		500			{object}	MessageResponse
//	@Router			/manga/{id}/chapters [get]
func (h *Handler) Chapters(c *gin.Context) {
	var uri IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		validation.AbortWithError(c, invalidParamsMessage, err)
		return
	}
	var req ChaptersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		validation.AbortWithError(c, invalidParamsMessage, err)
		return
	}

	languages := mergeArray(req.Languages, c.QueryArray("languages[]"))
	for _, lang := range languages {
		if !validation.IsLanguage(lang) {
			validation.Abort(c, invalidParamsMessage, []validation.FieldError{
				{Field: "languages", Message: "must be one of: " + strings.Join(validation.Languages, ", ")},
			})
			return
		}
	}
	if len(languages) == 0 {
		languages = auth.GetPreferredLanguages(c)
	}

	result, err := h.service.Chapters(c.Request.Context(), uri.ID, ChapterQuery{
		Limit:     intOr(req.Limit, defaultChapterLimit),
		Offset:    intOr(req.Offset, 0),
		Languages: languages,
	})
	if err != nil {
		handleError(c, err, "failed to fetch chapters")
		return
	}

	c.JSON(http.StatusOK, result)
}

// ChapterPages handles chapter page lookup.
//
//	@Summary		Chapter pages
//	@Tags			Manga
//	@Produce		json
//	@Param			id	path		string	true	"Chapter ID (UUID)"
//	@Success		200	{object}	ChapterPages
//	@Failure		400	{object}	validation.ErrorResponse
//	@Failure		404	{object}	MessageResponse
//	@Failure		500	{object}	MessageResponse
//	@Router			/manga/chapter/{id}/pages [get]
func (h *Handler) ChapterPages(c *gin.Context) {
	var uri IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		validation.AbortWithError(c, invalidParamsMessage, err)
		return
	}

	result, err := h.service.ChapterPages(c.Request.Context(), uri.ID)
	if err != nil {
		handleError(c, err, "failed to fetch chapter pages")
		return
	}

	c.JSON(http.StatusOK, result)
}

// CacheStats reports cache statistics. Development only.
//
//	@Summary		Cache statistics
//	@Tags			Manga
//	@Produce		json
//	@Success		200	{object}	CacheStats
//	@Failure		404	{object}	MessageResponse
//	@Router			/manga/cache/stats [get]
func (h *Handler) CacheStats(c *gin.Context) {
	if !h.devMode {
		routeNotFound(c)
		return
	}
	c.JSON(http.StatusOK, h.service.CacheStats())
}

// ClearCache empties the cache. Development only.
//
//	@Summary		Clear cache
//	@Tags			Manga
//	@Produce		json
//	@Success		200	{object}	MessageResponse
//	@Failure		404	{object}	MessageResponse
//	@Router			/manga/cache [delete]
func (h *Handler) ClearCache(c *gin.Context) {
	if !h.devMode {
		routeNotFound(c)
		return
	}
	h.service.ClearCache()
	c.JSON(http.StatusOK, MessageResponse{Message: "cache cleared"})
}

func routeNotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, MessageResponse{Message: "route not found"})
}

func mergeArray(a, b []string) []string {
	if len(b) == 0 {
		return a
	}
	return append(append([]string(nil), a...), b...)
}

func handleError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrMangaNotFound):
		c.JSON(http.StatusNotFound, MessageResponse{Message: "manga not found"})
	case errors.Is(err, ErrChapterNotFound):
		c.JSON(http.StatusNotFound, MessageResponse{Message: "chapter not found"})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, MessageResponse{Message: fallback})
	}
}
