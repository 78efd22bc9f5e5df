package config

import "os"

// Server captures process-level configuration for the admin gateway.
type Server struct {
	Addr        string
	MetricsAddr string
	PostgresURL string

	// AdminToken guards the API routes when set; empty disables the gate.
	AdminToken string

	// ManifestPath overrides the embedded coverage manifest when set.
	ManifestPath string

	// CoverageOnProgress enables coverage enrichment on progress calculation.
	// CoverageOnSave enables coverage enrichment on each section save.
	// Both default to true; coverage failures never fail the primary request.
	CoverageOnProgress bool
	CoverageOnSave     bool
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("GRC_ADMIN_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	metricsAddr := os.Getenv("GRC_ADMIN_METRICS_ADDR")
	if metricsAddr == "" {
		metricsAddr = ":9090"
	}

	return Server{
		Addr:               addr,
		MetricsAddr:        metricsAddr,
		PostgresURL:        os.Getenv("GRC_ADMIN_POSTGRES_URL"),
		AdminToken:         os.Getenv("GRC_ADMIN_TOKEN"),
		ManifestPath:       os.Getenv("ONBOARDING_COVERAGE_MANIFEST"),
		CoverageOnProgress: boolFromEnv("ONBOARDING_COVERAGE_ON_PROGRESS", true),
		CoverageOnSave:     boolFromEnv("ONBOARDING_COVERAGE_ON_SAVE", true),
	}
}

func boolFromEnv(key string, fallback bool) bool {
	switch os.Getenv(key) {
	case "true", "1":
		return true
	case "false", "0":
		return false
	default:
		return fallback
	}
}
