package gorm

import (
	"context"
	"errors"
	"time"

	"github.com/gatherly/gatherly/internal/domain/owner"
	ierr "github.com/gatherly/gatherly/internal/errors"
	"github.com/gatherly/gatherly/internal/logger"
	"github.com/gatherly/gatherly/internal/types"
	"gorm.io/gorm"
)

// ownerRow is the database representation of an owner
type ownerRow struct {
	ID                string     `gorm:"column:id;primaryKey"`
	Email             string     `gorm:"column:email;index"`
	Name              string     `gorm:"column:name"`
	BillingCustomerID string     `gorm:"column:billing_customer_id"`
	Tickets           int        `gorm:"column:tickets"`
	TicketExpiry      *time.Time `gorm:"column:ticket_expiry"`
	Status            string     `gorm:"column:status;index"`
	CreatedAt         time.Time  `gorm:"column:created_at"`
	UpdatedAt         time.Time  `gorm:"column:updated_at"`
}

func (ownerRow) TableName() string { return "owners" }

func ownerToRow(o *owner.Owner) *ownerRow {
	return &ownerRow{
		ID:                o.ID,
		Email:             o.Email,
		Name:              o.Name,
		BillingCustomerID: o.BillingCustomerID,
		Tickets:           o.Tickets,
		TicketExpiry:      o.TicketExpiry,
		Status:            string(o.Status),
		CreatedAt:         o.CreatedAt,
		UpdatedAt:         o.UpdatedAt,
	}
}

func ownerFromRow(r *ownerRow) *owner.Owner {
	return &owner.Owner{
		ID:                r.ID,
		Email:             r.Email,
		Name:              r.Name,
		BillingCustomerID: r.BillingCustomerID,
		Tickets:           r.Tickets,
		TicketExpiry:      r.TicketExpiry,
		BaseModel: types.BaseModel{
			Status:    types.Status(r.Status),
			CreatedAt: r.CreatedAt,
			UpdatedAt: r.UpdatedAt,
		},
	}
}

type ownerRepository struct {
	db     *gorm.DB
	logger *logger.Logger
}

func NewOwnerRepository(db *gorm.DB, logger *logger.Logger) owner.Repository {
	return &ownerRepository{db: db, logger: logger}
}

func (r *ownerRepository) Create(ctx context.Context, o *owner.Owner) error {
	r.logger.Debugw("creating owner", "owner_id", o.ID, "email", o.Email)

	if err := r.db.WithContext(ctx).Create(ownerToRow(o)).Error; err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create owner").
			WithReportableDetails(map[string]any{"owner_id": o.ID}).
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *ownerRepository) Get(ctx context.Context, id string) (*owner.Owner, error) {
	var row ownerRow
	err := r.db.WithContext(ctx).
		Where("id = ? AND status = ?", id, string(types.StatusPublished)).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ierr.NewError("owner not found").
				WithHintf("Owner with ID %s was not found", id).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get owner").
			Mark(ierr.ErrDatabase)
	}
	return ownerFromRow(&row), nil
}

func (r *ownerRepository) GetByEmail(ctx context.Context, email string) (*owner.Owner, error) {
	var row ownerRow
	err := r.db.WithContext(ctx).
		Where("email = ? AND status = ?", email, string(types.StatusPublished)).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ierr.NewError("owner not found").
				WithHintf("Owner with email %s was not found", email).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get owner by email").
			Mark(ierr.ErrDatabase)
	}
	return ownerFromRow(&row), nil
}

func (r *ownerRepository) List(ctx context.Context, filter *types.OwnerFilter) ([]*owner.Owner, error) {
	stmt := r.db.WithContext(ctx).Model(&ownerRow{}).
		Where("status = ?", string(filter.GetStatus()))
	if filter.Email != "" {
		stmt = stmt.Where("email = ?", filter.Email)
	}
	if !filter.IsUnlimited() {
		stmt = stmt.Limit(filter.GetLimit()).Offset(filter.GetOffset())
	}

	var rows []*ownerRow
	if err := stmt.Order("created_at desc").Find(&rows).Error; err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list owners").
			Mark(ierr.ErrDatabase)
	}

	owners := make([]*owner.Owner, len(rows))
	for i, row := range rows {
		owners[i] = ownerFromRow(row)
	}
	return owners, nil
}

func (r *ownerRepository) Update(ctx context.Context, o *owner.Owner) error {
	o.UpdatedAt = time.Now().UTC()

	// Select("*") forces zero values (tickets reset to 0, cleared expiry)
	// to be written as well.
	result := r.db.WithContext(ctx).
		Model(&ownerRow{}).
		Where("id = ?", o.ID).
		Select("*").
		Updates(ownerToRow(o))
	if result.Error != nil {
		return ierr.WithError(result.Error).
			WithHint("Failed to update owner").
			WithReportableDetails(map[string]any{"owner_id": o.ID}).
			Mark(ierr.ErrDatabase)
	}
	if result.RowsAffected == 0 {
		return ierr.NewError("owner not found").
			WithHintf("Owner with ID %s was not found", o.ID).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *ownerRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).
		Model(&ownerRow{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     string(types.StatusDeleted),
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return ierr.WithError(result.Error).
			WithHint("Failed to delete owner").
			Mark(ierr.ErrDatabase)
	}
	if result.RowsAffected == 0 {
		return ierr.NewError("owner not found").
			WithHintf("Owner with ID %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	return nil
}
