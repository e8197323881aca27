package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/whitelabel/internal/invitation/domain"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) domain.Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) domain.Repository {
	return &repository{db: tx}
}

func (r *repository) Insert(ctx context.Context, invitation *domain.Invitation) error {
	return r.db.WithContext(ctx).Create(invitation).Error
}

// UpdateStatus moves a pending invitation to its new status. It returns
// ErrAlreadyProcessed when the stored row has already left pending.
func (r *repository) UpdateStatus(ctx context.Context, invitation *domain.Invitation) error {
	res := r.db.WithContext(ctx).
		Model(&domain.Invitation{}).
		Where("id = ? AND status = ?", invitation.ID, domain.StatusPending).
		Updates(map[string]any{
			"status":      invitation.Status,
			"accepted_at": invitation.AcceptedAt,
			"revoked_at":  invitation.RevokedAt,
			"updated_at":  invitation.UpdatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrAlreadyProcessed
	}
	return nil
}

func (r *repository) FindByID(ctx context.Context, id snowflake.ID) (*domain.Invitation, error) {
	return take(r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *repository) FindByToken(ctx context.Context, token string) (*domain.Invitation, error) {
	return take(r.db.WithContext(ctx).Where("token = ?", token))
}

func (r *repository) ListByAgency(ctx context.Context, agencyID snowflake.ID) ([]domain.Invitation, error) {
	var items []domain.Invitation
	err := r.db.WithContext(ctx).
		Where("agency_id = ?", agencyID).
		Order("created_at asc, id asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func take(stmt *gorm.DB) (*domain.Invitation, error) {
	var invitation domain.Invitation
	if err := stmt.Take(&invitation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &invitation, nil
}
