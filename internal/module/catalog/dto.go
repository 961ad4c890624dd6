package catalog

// SearchRequest is the query string of GET /manga/search.
type SearchRequest struct {
	Title        string   `form:"title"`
	Limit        *int     `form:"limit" binding:"omitempty,min=1,max=50"`
	Offset       *int     `form:"offset" binding:"omitempty,min=0"`
	Status       string   `form:"status" binding:"omitempty,oneof=ongoing completed hiatus cancelled"`
	IncludedTags []string `form:"includedTags"`
	ExcludedTags []string `form:"excludedTags"`
}

// PopularRequest is the query string of GET /manga/popular.
type PopularRequest struct {
	Limit  *int `form:"limit" binding:"omitempty,min=1,max=50"`
	Offset *int `form:"offset" binding:"omitempty,min=0"`
}

// ChaptersRequest is the query string of GET /manga/:id/chapters.
type ChaptersRequest struct {
	Limit     *int     `form:"limit" binding:"omitempty,min=1,max=500"`
	Offset    *int     `form:"offset" binding:"omitempty,min=0"`
	Languages []string `form:"languages"`
}

// IDRequest binds a UUID path parameter.
type IDRequest struct {
	ID string `uri:"id" binding:"required,uuid"`
}

// MessageResponse is a plain message body.
type MessageResponse struct {
	Message string `json:"message"`
}

func intOr(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}
