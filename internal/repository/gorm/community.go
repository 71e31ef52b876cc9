package gorm

import (
	"context"
	"errors"
	"time"

	"github.com/gatherly/gatherly/internal/domain/community"
	ierr "github.com/gatherly/gatherly/internal/errors"
	"github.com/gatherly/gatherly/internal/logger"
	"github.com/gatherly/gatherly/internal/types"
	"gorm.io/gorm"
)

// communityRow is the database representation of a community
type communityRow struct {
	ID        string    `gorm:"column:id;primaryKey"`
	OwnerID   string    `gorm:"column:owner_id;index"`
	Name      string    `gorm:"column:name"`
	Category  string    `gorm:"column:category"`
	Address   string    `gorm:"column:address"`
	Activated bool      `gorm:"column:activated;index"`
	Status    string    `gorm:"column:status;index"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (communityRow) TableName() string { return "communities" }

func communityToRow(c *community.Community) *communityRow {
	return &communityRow{
		ID:        c.ID,
		OwnerID:   c.OwnerID,
		Name:      c.Name,
		Category:  c.Category,
		Address:   c.Address,
		Activated: c.Activated,
		Status:    string(c.Status),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func communityFromRow(r *communityRow) *community.Community {
	return &community.Community{
		ID:        r.ID,
		OwnerID:   r.OwnerID,
		Name:      r.Name,
		Category:  r.Category,
		Address:   r.Address,
		Activated: r.Activated,
		BaseModel: types.BaseModel{
			Status:    types.Status(r.Status),
			CreatedAt: r.CreatedAt,
			UpdatedAt: r.UpdatedAt,
		},
	}
}

type communityRepository struct {
	db     *gorm.DB
	logger *logger.Logger
}

func NewCommunityRepository(db *gorm.DB, logger *logger.Logger) community.Repository {
	return &communityRepository{db: db, logger: logger}
}

func (r *communityRepository) Create(ctx context.Context, c *community.Community) error {
	r.logger.Debugw("creating community", "community_id", c.ID, "owner_id", c.OwnerID)

	if err := r.db.WithContext(ctx).Create(communityToRow(c)).Error; err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create community").
			WithReportableDetails(map[string]any{"community_id": c.ID}).
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *communityRepository) Get(ctx context.Context, id string) (*community.Community, error) {
	var row communityRow
	err := r.db.WithContext(ctx).
		Where("id = ? AND status = ?", id, string(types.StatusPublished)).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ierr.NewError("community not found").
				WithHintf("Community with ID %s was not found", id).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get community").
			Mark(ierr.ErrDatabase)
	}
	return communityFromRow(&row), nil
}

func (r *communityRepository) List(ctx context.Context, filter *types.CommunityFilter) ([]*community.Community, error) {
	stmt := r.applyFilter(r.db.WithContext(ctx).Model(&communityRow{}), filter)
	if !filter.IsUnlimited() {
		stmt = stmt.Limit(filter.GetLimit()).Offset(filter.GetOffset())
	}

	var rows []*communityRow
	if err := stmt.Order("created_at desc").Find(&rows).Error; err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list communities").
			Mark(ierr.ErrDatabase)
	}

	communities := make([]*community.Community, len(rows))
	for i, row := range rows {
		communities[i] = communityFromRow(row)
	}
	return communities, nil
}

func (r *communityRepository) Count(ctx context.Context, filter *types.CommunityFilter) (int, error) {
	var count int64
	stmt := r.applyFilter(r.db.WithContext(ctx).Model(&communityRow{}), filter)
	if err := stmt.Count(&count).Error; err != nil {
		return 0, ierr.WithError(err).
			WithHint("Failed to count communities").
			Mark(ierr.ErrDatabase)
	}
	return int(count), nil
}

func (r *communityRepository) Update(ctx context.Context, c *community.Community) error {
	c.UpdatedAt = time.Now().UTC()

	// Select("*") forces zero values (activated = false) to be written.
	result := r.db.WithContext(ctx).
		Model(&communityRow{}).
		Where("id = ?", c.ID).
		Select("*").
		Updates(communityToRow(c))
	if result.Error != nil {
		return ierr.WithError(result.Error).
			WithHint("Failed to update community").
			WithReportableDetails(map[string]any{"community_id": c.ID}).
			Mark(ierr.ErrDatabase)
	}
	if result.RowsAffected == 0 {
		return ierr.NewError("community not found").
			WithHintf("Community with ID %s was not found", c.ID).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *communityRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).
		Model(&communityRow{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     string(types.StatusDeleted),
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return ierr.WithError(result.Error).
			WithHint("Failed to delete community").
			Mark(ierr.ErrDatabase)
	}
	if result.RowsAffected == 0 {
		return ierr.NewError("community not found").
			WithHintf("Community with ID %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *communityRepository) applyFilter(stmt *gorm.DB, filter *types.CommunityFilter) *gorm.DB {
	stmt = stmt.Where("status = ?", string(filter.GetStatus()))
	if filter.OwnerID != "" {
		stmt = stmt.Where("owner_id = ?", filter.OwnerID)
	}
	if filter.Activated != nil {
		stmt = stmt.Where("activated = ?", *filter.Activated)
	}
	if filter.Name != "" {
		stmt = stmt.Where("name = ?", filter.Name)
	}
	if filter.Category != "" {
		stmt = stmt.Where("category = ?", filter.Category)
	}
	if filter.Address != "" {
		stmt = stmt.Where("address = ?", filter.Address)
	}
	return stmt
}
