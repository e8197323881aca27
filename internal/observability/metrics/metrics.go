package metrics

import (
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Config configures the metric registry labels.
type Config struct {
	Enabled     bool
	ServiceName string
	Environment string
}

const (
	ResultVerified = "verified"
	ResultRejected = "rejected"
	ResultError    = "error"

	OutcomeIssued   = "issued"
	OutcomeAccepted = "accepted"
	OutcomeExpired  = "expired"
	OutcomeRevoked  = "revoked"

	LookupHit  = "hit"
	LookupMiss = "miss"
)

// Metrics exposes the domain counters of the portal backend.
type Metrics struct {
	agenciesCreated     *prometheus.CounterVec
	domainVerifications *prometheus.CounterVec
	invitations         *prometheus.CounterVec
	brandingLookups     *prometheus.CounterVec
	rateLimited         *prometheus.CounterVec
}

var (
	defaultOnce    sync.Once
	defaultMetrics *Metrics
)

// New returns the process-wide metrics registered on the default registerer, or
// nil when metrics are disabled. A nil *Metrics records nothing.
func New(cfg Config) *Metrics {
	if !cfg.Enabled {
		return nil
	}
	defaultOnce.Do(func() {
		defaultMetrics = NewWithRegisterer(prometheus.DefaultRegisterer, cfg)
	})
	return defaultMetrics
}

func NewWithRegisterer(registerer prometheus.Registerer, cfg Config) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	constLabels := labelsFor(cfg)

	m := &Metrics{
		agenciesCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "whitelabel_agencies_created_total",
			Help:        "Agencies bootstrapped by tier.",
			ConstLabels: constLabels,
		}, []string{"tier"}),
		domainVerifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "whitelabel_domain_verifications_total",
			Help:        "Custom domain verification attempts by result.",
			ConstLabels: constLabels,
		}, []string{"result"}),
		invitations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "whitelabel_invitations_total",
			Help:        "Invitation lifecycle transitions by outcome.",
			ConstLabels: constLabels,
		}, []string{"outcome"}),
		brandingLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "whitelabel_branding_lookups_total",
			Help:        "Effective branding resolutions by scope and result.",
			ConstLabels: constLabels,
		}, []string{"scope", "result"}),
		rateLimited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "whitelabel_rate_limited_total",
			Help:        "Requests rejected by the rate limiter by endpoint.",
			ConstLabels: constLabels,
		}, []string{"endpoint"}),
	}

	registerer.MustRegister(
		m.agenciesCreated,
		m.domainVerifications,
		m.invitations,
		m.brandingLookups,
		m.rateLimited,
	)
	return m
}

func (m *Metrics) RecordAgencyCreated(tier string) {
	if m == nil {
		return
	}
	m.agenciesCreated.WithLabelValues(strings.TrimSpace(tier)).Inc()
}

func (m *Metrics) RecordDomainVerification(result string) {
	if m == nil {
		return
	}
	m.domainVerifications.WithLabelValues(result).Inc()
}

func (m *Metrics) RecordInvitation(outcome string) {
	if m == nil {
		return
	}
	m.invitations.WithLabelValues(outcome).Inc()
}

// RecordBrandingLookup counts a resolution; scope is agency, client or domain.
func (m *Metrics) RecordBrandingLookup(scope, result string) {
	if m == nil {
		return
	}
	m.brandingLookups.WithLabelValues(scope, result).Inc()
}

func (m *Metrics) RecordRateLimited(endpoint string) {
	if m == nil {
		return
	}
	m.rateLimited.WithLabelValues(endpoint).Inc()
}

func labelsFor(cfg Config) prometheus.Labels {
	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "whitelabel"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}
	return prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}
}
