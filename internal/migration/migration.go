package migration

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	brandingdomain "github.com/smallbiznis/whitelabel/internal/branding/domain"
	customdomaindomain "github.com/smallbiznis/whitelabel/internal/customdomain/domain"
	invitationdomain "github.com/smallbiznis/whitelabel/internal/invitation/domain"
	tenancydomain "github.com/smallbiznis/whitelabel/internal/tenancy/domain"
	userdomain "github.com/smallbiznis/whitelabel/internal/user/domain"
	"gorm.io/gorm"
)

const migrationsDir = "sql"

//go:embed sql/*.sql
var embeddedMigrations embed.FS

// Models lists every persisted entity in dependency order.
func Models() []any {
	return []any{
		&userdomain.User{},
		&tenancydomain.Agency{},
		&tenancydomain.Client{},
		&tenancydomain.Membership{},
		&brandingdomain.Asset{},
		&customdomaindomain.DomainConfiguration{},
		&invitationdomain.Invitation{},
	}
}

// RunMigrations applies the embedded postgres migrations.
func RunMigrations(db *sql.DB) error {
	if db == nil {
		return errors.New("migration database handle is required")
	}

	sub, err := fs.Sub(embeddedMigrations, migrationsDir)
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}

	source, err := iofs.New(sub, ".")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	migrator, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	upErr := migrator.Up()
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", upErr)
	}
	// Closing the migrator would close the shared *sql.DB.

	return nil
}

// Agency-level branding (client_id NULL) must be unique per agency. The sqlite
// migrator re-parses index DDL on every boot and rejects partial indexes, so
// the rule is a trigger there.
const (
	agencyBrandingIndex   = "ux_branding_assets_agency_scope"
	agencyBrandingTrigger = `CREATE TRIGGER IF NOT EXISTS trg_branding_assets_agency_scope
BEFORE INSERT ON branding_assets
WHEN NEW.client_id IS NULL AND EXISTS (
	SELECT 1 FROM branding_assets WHERE agency_id = NEW.agency_id AND client_id IS NULL
)
BEGIN
	SELECT RAISE(ABORT, 'UNIQUE constraint failed: branding_assets.agency_id');
END`
)

// AutoMigrate builds the schema from the models for dialects without SQL
// migrations. It is safe to run on every boot.
func AutoMigrate(conn *gorm.DB) error {
	sqlite := conn.Dialector.Name() == "sqlite"
	if sqlite && conn.Migrator().HasIndex(&brandingdomain.Asset{}, agencyBrandingIndex) {
		// left behind by earlier builds
		if err := conn.Migrator().DropIndex(&brandingdomain.Asset{}, agencyBrandingIndex); err != nil {
			return fmt.Errorf("drop agency branding index: %w", err)
		}
	}
	if err := conn.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	if sqlite {
		if err := conn.Exec(agencyBrandingTrigger).Error; err != nil {
			return fmt.Errorf("create agency branding trigger: %w", err)
		}
	}
	return nil
}
