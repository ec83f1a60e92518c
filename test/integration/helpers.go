// Package integration holds cross-package tests that exercise the full
// pipeline, plus environment-gated tests against live backing services.
package integration

import (
	"os"
	"testing"

	"github.com/turtacn/ChemSAR/internal/config"
)

// EnvIntegrationEnabled gates tests that need live backing services.
const EnvIntegrationEnabled = "CHEMSAR_INTEGRATION"

// SkipIfNoIntegration skips the calling test when the integration flag is
// unset.
func SkipIfNoIntegration(t *testing.T) {
	t.Helper()
	if os.Getenv(EnvIntegrationEnabled) != "1" {
		t.Skipf("skipping integration test: set %s=1 to enable", EnvIntegrationEnabled)
	}
}

// loadIntegrationConfig builds the configuration from CHEMSAR_* environment
// variables, as integration runs configure backends through the environment.
func loadIntegrationConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.LoadFromEnv()
	if err != nil {
		t.Fatalf("loading integration config: %v", err)
	}
	return cfg
}
