package observability

import (
	"os"
	"strconv"
	"strings"

	"github.com/smallbiznis/whitelabel/internal/config"
)

const (
	defaultServiceName   = "whitelabel"
	defaultSamplingRatio = 0.1

	// brandingLookupPrefix is the public, unauthenticated lookup hit by every
	// portal page load on a custom domain.
	brandingLookupPrefix = "/branding/by-domain/"
)

var defaultTraceSkipPaths = []string{"/health", "/metrics"}

// Config holds observability configuration derived from environment variables.
type Config struct {
	ServiceName string
	Environment string
	Version     string

	LogLevel  string
	LogFormat string

	OtelEnabled          bool
	OtelExporterEndpoint string
	OtelSamplingRatio    float64

	// TraceSkipPaths are path prefixes that never start a span.
	TraceSkipPaths []string
	// TraceBrandingLookups opts the public branding lookup into tracing.
	TraceBrandingLookups bool

	MetricsEnabled bool
}

func LoadConfig(cfg config.Config) Config {
	out := Config{
		ServiceName:          strings.TrimSpace(cfg.AppName),
		Environment:          env("DEPLOYMENT_ENV", cfg.Environment),
		Version:              env("SERVICE_VERSION", cfg.AppVersion),
		LogLevel:             strings.ToLower(env("LOG_LEVEL", "info")),
		LogFormat:            strings.ToLower(env("LOG_FORMAT", "json")),
		OtelEnabled:          envBool("OTEL_ENABLED", true),
		OtelExporterEndpoint: env("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.OTLPEndpoint),
		OtelSamplingRatio:    envRatio("OTEL_SAMPLING_RATIO", defaultSamplingRatio),
		TraceSkipPaths:       envList("OTEL_TRACE_SKIP_PATHS", defaultTraceSkipPaths),
		TraceBrandingLookups: envBool("OTEL_TRACE_BRANDING_LOOKUPS", false),
		MetricsEnabled:       envBool("METRICS_ENABLED", true),
	}
	if out.ServiceName == "" {
		out.ServiceName = defaultServiceName
	}
	return out
}

// Debug is true for an explicit debug level or a development environment.
func (c Config) Debug() bool {
	if strings.EqualFold(strings.TrimSpace(c.LogLevel), "debug") {
		return true
	}
	switch strings.ToLower(strings.TrimSpace(c.Environment)) {
	case "dev", "development", "local", "test":
		return true
	}
	return false
}

// UntracedPrefixes lists the request path prefixes the tracing middleware
// passes through.
func (c Config) UntracedPrefixes() []string {
	out := append([]string(nil), c.TraceSkipPaths...)
	if !c.TraceBrandingLookups {
		out = append(out, brandingLookupPrefix)
	}
	return out
}

func env(key, def string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return strings.TrimSpace(def)
}

func envBool(key string, def bool) bool {
	switch strings.ToLower(env(key, "")) {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	}
	return def
}

// envRatio parses a sampling ratio and rejects values outside [0, 1].
func envRatio(key string, def float64) float64 {
	parsed, err := strconv.ParseFloat(env(key, ""), 64)
	if err != nil || parsed < 0 || parsed > 1 {
		return def
	}
	return parsed
}

func envList(key string, def []string) []string {
	raw := env(key, "")
	if raw == "" {
		return append([]string(nil), def...)
	}
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
