package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/whitelabel/internal/customdomain/domain"
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

func (r *repository) Insert(ctx context.Context, cfg *domain.DomainConfiguration) error {
	return r.db.WithContext(ctx).Create(cfg).Error
}

func (r *repository) Update(ctx context.Context, cfg *domain.DomainConfiguration) error {
	return r.db.WithContext(ctx).
		Model(&domain.DomainConfiguration{}).
		Where("id = ?", cfg.ID).
		Updates(map[string]any{
			"status":                    cfg.Status,
			"certificate_pem":           cfg.CertificatePEM,
			"verified_at":               cfg.VerifiedAt,
			"activated_at":              cfg.ActivatedAt,
			"last_verification_attempt": cfg.LastVerificationAttempt,
			"updated_at":                cfg.UpdatedAt,
		}).Error
}

func (r *repository) FindByID(ctx context.Context, id snowflake.ID) (*domain.DomainConfiguration, error) {
	return take(r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *repository) FindByDomain(ctx context.Context, name string) (*domain.DomainConfiguration, error) {
	return take(r.db.WithContext(ctx).Where("domain = ?", name))
}

func (r *repository) FindResolvable(ctx context.Context, name string) (*domain.DomainConfiguration, error) {
	return take(r.db.WithContext(ctx).
		Where("domain = ? AND status IN ?", name, []domain.Status{domain.StatusVerified, domain.StatusActive}))
}

func (r *repository) ListByClient(ctx context.Context, clientID snowflake.ID) ([]domain.DomainConfiguration, error) {
	var items []domain.DomainConfiguration
	err := r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("created_at asc, id asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func take(stmt *gorm.DB) (*domain.DomainConfiguration, error) {
	var cfg domain.DomainConfiguration
	if err := stmt.Take(&cfg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cfg, nil
}
