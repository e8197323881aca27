package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/whitelabel/internal/tenancy/domain"
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

func (r *repository) InsertAgency(ctx context.Context, agency *domain.Agency) error {
	return r.db.WithContext(ctx).Create(agency).Error
}

func (r *repository) FindAgency(ctx context.Context, id snowflake.ID) (*domain.Agency, error) {
	var agency domain.Agency
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&agency).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &agency, nil
}

func (r *repository) InsertClient(ctx context.Context, client *domain.Client) error {
	return r.db.WithContext(ctx).Create(client).Error
}

func (r *repository) FindClient(ctx context.Context, id snowflake.ID) (*domain.Client, error) {
	var client domain.Client
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&client).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &client, nil
}

func (r *repository) ListClients(ctx context.Context, agencyID snowflake.ID) ([]domain.Client, error) {
	var clients []domain.Client
	err := r.db.WithContext(ctx).
		Where("agency_id = ?", agencyID).
		Order("created_at asc, id asc").
		Find(&clients).Error
	if err != nil {
		return nil, err
	}
	return clients, nil
}

func (r *repository) CountClients(ctx context.Context, agencyID snowflake.ID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Client{}).
		Where("agency_id = ?", agencyID).
		Count(&count).Error
	return count, err
}

func (r *repository) ListSlugs(ctx context.Context, agencyID snowflake.ID, base string) ([]string, error) {
	var slugs []string
	err := r.db.WithContext(ctx).
		Model(&domain.Client{}).
		Where("agency_id = ? AND (slug = ? OR slug LIKE ?)", agencyID, base, base+"-%").
		Pluck("slug", &slugs).Error
	if err != nil {
		return nil, err
	}
	return slugs, nil
}

func (r *repository) InsertMembership(ctx context.Context, membership *domain.Membership) error {
	return r.db.WithContext(ctx).Create(membership).Error
}

func (r *repository) FindMembership(ctx context.Context, userID, agencyID snowflake.ID) (*domain.Membership, error) {
	var membership domain.Membership
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND agency_id = ?", userID, agencyID).
		Take(&membership).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &membership, nil
}

func (r *repository) UpdateMembership(ctx context.Context, membership *domain.Membership) error {
	return r.db.WithContext(ctx).
		Model(&domain.Membership{}).
		Where("id = ?", membership.ID).
		Updates(map[string]any{
			"role":              membership.Role,
			"current_client_id": membership.CurrentClientID,
			"updated_at":        membership.UpdatedAt,
		}).Error
}
