package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/whitelabel/internal/branding/domain"
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

func (r *repository) Insert(ctx context.Context, asset *domain.Asset) error {
	return r.db.WithContext(ctx).Create(asset).Error
}

func (r *repository) Update(ctx context.Context, asset *domain.Asset) error {
	return r.db.WithContext(ctx).
		Model(&domain.Asset{}).
		Where("id = ?", asset.ID).
		Updates(map[string]any{
			"company_name":    asset.CompanyName,
			"logo_url":        asset.LogoURL,
			"primary_color":   asset.PrimaryColor,
			"secondary_color": asset.SecondaryColor,
			"accent_color":    asset.AccentColor,
			"updated_at":      asset.UpdatedAt,
		}).Error
}

func (r *repository) FindAgencyAsset(ctx context.Context, agencyID snowflake.ID) (*domain.Asset, error) {
	return r.first(r.db.WithContext(ctx).
		Where("agency_id = ? AND client_id IS NULL", agencyID))
}

func (r *repository) FindClientAsset(ctx context.Context, agencyID, clientID snowflake.ID) (*domain.Asset, error) {
	return r.first(r.db.WithContext(ctx).
		Where("agency_id = ? AND client_id = ?", agencyID, clientID))
}

func (r *repository) first(stmt *gorm.DB) (*domain.Asset, error) {
	var asset domain.Asset
	if err := stmt.Order("id asc").Take(&asset).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &asset, nil
}
