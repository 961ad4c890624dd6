package favorite

import "errors"

// Module errors.
var (
	ErrFavoriteNotFound = errors.New("favorite not found")
	ErrAlreadyFavorite  = errors.New("manga already in favorites")
)
