package favorite

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ListFilter selects and orders a page of favorites.
type ListFilter struct {
	Limit  int
	Offset int
	SortBy string
	Desc   bool
	Search string
	Tags   []string
}

var sortColumns = map[string]string{
	"createdAt":       "created_at",
	"mangaTitle":      "manga_title",
	"lastReadChapter": "last_read_at",
	"rating":          "rating",
}

// Repository defines the interface for favorite data access.
type Repository interface {
	Create(ctx context.Context, favorite *Favorite) error
	Get(ctx context.Context, userID uuid.UUID, mangaID string) (*Favorite, error)
	List(ctx context.Context, userID uuid.UUID, filter *ListFilter) ([]*Favorite, int64, error)
	ListForStats(ctx context.Context, userID uuid.UUID) ([]*Favorite, error)
	Update(ctx context.Context, favorite *Favorite) error
	Delete(ctx context.Context, userID uuid.UUID, mangaID string) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository creates a new favorite repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, favorite *Favorite) error {
	err := r.db.WithContext(ctx).Create(favorite).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrAlreadyFavorite
	}
	return err
}

func (r *repository) Get(ctx context.Context, userID uuid.UUID, mangaID string) (*Favorite, error) {
	var favorite Favorite
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND manga_id = ?", userID, mangaID).
		First(&favorite).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFavoriteNotFound
		}
		return nil, err
	}
	return &favorite, nil
}

func (r *repository) List(ctx context.Context, userID uuid.UUID, filter *ListFilter) ([]*Favorite, int64, error) {
	var favorites []*Favorite
	var total int64

	query := r.db.WithContext(ctx).Model(&Favorite{}).Where("user_id = ?", userID)
	if filter.Search != "" {
		query = query.Where("manga_title ILIKE ?", "%"+escapeLike(filter.Search)+"%")
	}
	if len(filter.Tags) > 0 {
		query = query.Where("tags && ?", pq.StringArray(filter.Tags))
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	column, ok := sortColumns[filter.SortBy]
	if !ok {
		column = sortColumns["createdAt"]
	}

	err := query.
		Order(clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: filter.Desc}).
		Offset(filter.Offset).
		Limit(filter.Limit).
		Find(&favorites).Error
	if err != nil {
		return nil, 0, err
	}

	return favorites, total, nil
}

func (r *repository) ListForStats(ctx context.Context, userID uuid.UUID) ([]*Favorite, error) {
	var favorites []*Favorite
	err := r.db.WithContext(ctx).
		Select("manga_status", "rating", "tags").
		Where("user_id = ?", userID).
		Find(&favorites).Error
	return favorites, err
}

func (r *repository) Update(ctx context.Context, favorite *Favorite) error {
	return r.db.WithContext(ctx).Save(favorite).Error
}

func (r *repository) Delete(ctx context.Context, userID uuid.UUID, mangaID string) error {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND manga_id = ?", userID, mangaID).
		Delete(&Favorite{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrFavoriteNotFound
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
