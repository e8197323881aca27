package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Fields are the overridable branding attributes. A nil field inherits from
// the next scope up.
type Fields struct {
	CompanyName    *string `gorm:"type:varchar(255)" json:"company_name"`
	LogoURL        *string `gorm:"type:text" json:"logo_url"`
	PrimaryColor   *string `gorm:"type:varchar(32)" json:"primary_color"`
	SecondaryColor *string `gorm:"type:varchar(32)" json:"secondary_color"`
	AccentColor    *string `gorm:"type:varchar(32)" json:"accent_color"`
}

// Asset is the stored branding of an agency (ClientID nil) or of one of its
// clients.
type Asset struct {
	ID        snowflake.ID  `gorm:"primaryKey" json:"id"`
	AgencyID  snowflake.ID  `gorm:"not null;uniqueIndex:ux_branding_assets_scope,priority:1" json:"agency_id"`
	ClientID  *snowflake.ID `gorm:"uniqueIndex:ux_branding_assets_scope,priority:2" json:"client_id"`
	Fields    `gorm:"embedded"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Asset) TableName() string { return "branding_assets" }

// Apply overwrites the fields set in patch and keeps the rest.
func (f *Fields) Apply(patch Fields) {
	if patch.CompanyName != nil {
		f.CompanyName = patch.CompanyName
	}
	if patch.LogoURL != nil {
		f.LogoURL = patch.LogoURL
	}
	if patch.PrimaryColor != nil {
		f.PrimaryColor = patch.PrimaryColor
	}
	if patch.SecondaryColor != nil {
		f.SecondaryColor = patch.SecondaryColor
	}
	if patch.AccentColor != nil {
		f.AccentColor = patch.AccentColor
	}
}

type Field string

const (
	FieldCompanyName    Field = "company_name"
	FieldLogoURL        Field = "logo_url"
	FieldPrimaryColor   Field = "primary_color"
	FieldSecondaryColor Field = "secondary_color"
	FieldAccentColor    Field = "accent_color"
)

// Patch is a partial branding update. Set overwrites its non-nil fields and
// Clear resets the listed fields so they inherit from the next scope up.
// Fields in neither are kept.
type Patch struct {
	Set   Fields
	Clear []Field
}

func (f *Fields) ApplyPatch(p Patch) {
	f.Apply(p.Set)
	for _, field := range p.Clear {
		switch field {
		case FieldCompanyName:
			f.CompanyName = nil
		case FieldLogoURL:
			f.LogoURL = nil
		case FieldPrimaryColor:
			f.PrimaryColor = nil
		case FieldSecondaryColor:
			f.SecondaryColor = nil
		case FieldAccentColor:
			f.AccentColor = nil
		}
	}
}

// Merge layers scopes from the broadest to the narrowest. Missing layers are
// skipped.
func Merge(layers ...*Asset) Fields {
	var out Fields
	for _, layer := range layers {
		if layer == nil {
			continue
		}
		out.Apply(layer.Fields)
	}
	return out
}

func AgencyScope(agencyID snowflake.ID) string {
	return "agency:" + agencyID.String()
}

func ClientScope(clientID snowflake.ID) string {
	return "client:" + clientID.String()
}

func DomainScope(domain string) string {
	return "domain:" + domain
}
