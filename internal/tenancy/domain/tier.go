package domain

type Feature string

const (
	FeatureMultipleClients Feature = "multiple_clients"
	FeatureCustomDomains   Feature = "custom_domains"
	FeatureInvitations     Feature = "invitations"
)

// Allows reports whether the agency's current tier unlocks feature.
func (a Agency) Allows(feature Feature) bool {
	switch feature {
	case FeatureMultipleClients, FeatureCustomDomains, FeatureInvitations:
		return a.Tier == TierAgency
	default:
		return false
	}
}

func EnsureFeature(agency *Agency, feature Feature) error {
	if agency == nil || !agency.Allows(feature) {
		return ErrTierRestricted
	}
	return nil
}
