package favorite

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/readmanga/server/internal/module/auth"
	apperrors "github.com/readmanga/server/internal/shared/errors"
	"github.com/readmanga/server/internal/shared/validation"
)

const invalidDataMessage = "invalid data"

// Handler handles HTTP requests for favorites.
type Handler struct {
	service *Service
}

// NewHandler creates a new favorite handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the favorite routes behind requireAuth.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	favorites := r.Group("/favorites", requireAuth)
	{
		favorites.GET("", h.List)
		favorites.POST("", h.Add)
		favorites.GET("/stats", h.Stats)
		favorites.GET("/check/:mangaId", h.Check)
		favorites.PUT("/:mangaId", h.Update)
		favorites.POST("/:mangaId/read", h.MarkRead)
		favorites.DELETE("/:mangaId", h.Remove)
	}
}

// List handles listing favorites.
//
//	@Summary		List favorites
//	@Tags			Favorites
//	@Produce		json
//	@Security		BearerAuth
//	@Param			limit	query		int			false	"Page size (1-100)"	default(20)
//	@Param			offset	query		int			false	"Offset"				default(0)
//	@Param			sortBy	query		string		false	"Sort field"			Enums(createdAt, mangaTitle, lastReadChapter, rating)
//	@Param			order	query		string		false	"Sort order"			Enums(asc, desc)
//	@Param			search	query		string		false	"Title contains (case-insensitive)"
//	@Param			tags	query		[]string	false	"Any of these tags"
//	@Success		200		{object}	ListResponse
//	@Failure		400		{object}	validation.ErrorResponse
//	@Router			/favorites [get]
func (h *Handler) List(c *gin.Context) {
	var req ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		validation.AbortWithError(c, invalidDataMessage, err)
		return
	}

	filter := ListFilter{
		Limit:  defaultListLimit,
		SortBy: req.SortBy,
		Desc:   req.Order != "asc",
		Search: req.Search,
		Tags:   append(req.Tags, c.QueryArray("tags[]")...),
	}
	if req.Limit != nil {
		filter.Limit = *req.Limit
	}
	if req.Offset != nil {
		filter.Offset = *req.Offset
	}

	result, err := h.service.List(c.Request.Context(), auth.GetUserID(c), filter)
	if err != nil {
		handleError(c, err)
		return
	}

	data := make([]*FavoriteResponse, 0, len(result.Favorites))
	for _, f := range result.Favorites {
		data = append(data, f.ToResponse())
	}

	c.JSON(http.StatusOK, ListResponse{
		Data:   data,
		Total:  result.Total,
		Limit:  result.Limit,
		Offset: result.Offset,
	})
}

// Add handles adding a favorite.
//
//	@Summary		Add favorite
//	@Description	Saves a manga and snapshots its latest chapters in the user's languages
//	@Tags			Favorites
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		CreateRequest	true	"Favorite"
//	@Success		201		{object}	FavoriteEnvelope
//	@Failure		400		{object}	validation.ErrorResponse
//	@Router			/favorites [post]
func (h *Handler) Add(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validation.AbortWithError(c, invalidDataMessage, err)
		return
	}
	if strings.TrimSpace(req.MangaTitle) == "" {
		validation.Abort(c, invalidDataMessage, []validation.FieldError{
			{Field: "mangaTitle", Message: "is required"},
		})
		return
	}

	favorite, err := h.service.Add(c.Request.Context(), auth.GetUserID(c), auth.GetPreferredLanguages(c), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, FavoriteEnvelope{
		Message:  "manga added to favorites",
		Favorite: favorite.ToResponse(),
	})
}

// Check handles checking whether a manga is a favorite.
//
//	@Summary		Check favorite
//	@Tags			Favorites
//	@Produce		json
//	@Security		BearerAuth
//	@Param			mangaId	path		string	true	"Manga ID (UUID)"
//	@Success		200		{object}	CheckResponse
//	@Failure		400		{object}	validation.ErrorResponse
//	@Router			/favorites/check/{mangaId} [get]
func (h *Handler) Check(c *gin.Context) {
	var uri MangaIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		validation.AbortWithError(c, invalidDataMessage, err)
		return
	}

	favorite, err := h.service.Check(c.Request.Context(), auth.GetUserID(c), uri.MangaID)
	if err != nil {
		handleError(c, err)
		return
	}

	resp := CheckResponse{IsFavorite: favorite != nil}
	if favorite != nil {
		resp.Favorite = favorite.ToResponse()
	}
	c.JSON(http.StatusOK, resp)
}

// Update handles updating a favorite.
//
//	@Summary		Update favorite
//	@Tags			Favorites
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			mangaId	path		string			true	"Manga ID (UUID)"
//	@Param			request	body		UpdateRequest	true	"Changes"
//	@Success		200		{object}	FavoriteEnvelope
//	@Failure		400		{object}	validation.ErrorResponse
//	@Failure		404		{object}	apperrors.AppError
//	@Router			/favorites/{mangaId} [put]
func (h *Handler) Update(c *gin.Context) {
	var uri MangaIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		validation.AbortWithError(c, invalidDataMessage, err)
		return
	}
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validation.AbortWithError(c, invalidDataMessage, err)
		return
	}

	favorite, err := h.service.Update(c.Request.Context(), auth.GetUserID(c), uri.MangaID, &req)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, FavoriteEnvelope{
		Message:  "favorite updated",
		Favorite: favorite.ToResponse(),
	})
}

// MarkRead handles marking a chapter as read.
//
//	@Summary		Mark chapter read
//	@Tags			Favorites
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			mangaId	path		string			true	"Manga ID (UUID)"
//	@Param			request	body		MarkReadRequest	true	"Chapter"
//	@Success		200		{object}	LastReadResponse
//	@Failure		400		{object}	validation.ErrorResponse
//	@Failure		404		{object}	apperrors.AppError
//	@Router			/favorites/{mangaId}/read [post]
func (h *Handler) MarkRead(c *gin.Context) {
	var uri MangaIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		validation.AbortWithError(c, invalidDataMessage, err)
		return
	}
	var req MarkReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validation.AbortWithError(c, invalidDataMessage, err)
		return
	}

	favorite, err := h.service.MarkRead(c.Request.Context(), auth.GetUserID(c), uri.MangaID, &req)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, LastReadResponse{
		Message:  "chapter marked as read",
		LastRead: favorite.lastRead(),
	})
}

// Remove handles deleting a favorite.
//
//	@Summary		Remove favorite
//	@Tags			Favorites
//	@Produce		json
//	@Security		BearerAuth
//	@Param			mangaId	path		string	true	"Manga ID (UUID)"
//	@Success		200		{object}	MessageResponse
//	@Failure		404		{object}	apperrors.AppError
//	@Router			/favorites/{mangaId} [delete]
func (h *Handler) Remove(c *gin.Context) {
	var uri MangaIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		validation.AbortWithError(c, invalidDataMessage, err)
		return
	}

	if err := h.service.Remove(c.Request.Context(), auth.GetUserID(c), uri.MangaID); err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "manga removed from favorites"})
}

// Stats handles favorite statistics.
//
//	@Summary		Favorite statistics
//	@Tags			Favorites
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	Stats
//	@Router			/favorites/stats [get]
func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context(), auth.GetUserID(c))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func handleError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	switch {
	case errors.Is(err, ErrAlreadyFavorite):
		appErr = apperrors.BadRequest("manga already in favorites")
	case errors.Is(err, ErrFavoriteNotFound):
		appErr = apperrors.NotFound("favorite not found")
	default:
		_ = c.Error(err)
		appErr = apperrors.Internal("", err)
	}
	c.JSON(appErr.StatusCode, appErr)
}
