package telemetry

import (
	"fmt"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"gorm.io/gorm"
)

// DBTracingConfig controls gorm query instrumentation.
type DBTracingConfig struct {
	Enabled bool
	DBName  string
	// LogFullSQL includes interpolated query parameters in span attributes.
	// Keep this off in production: parameters can contain customer data.
	LogFullSQL bool
}

// InstrumentGorm registers the otelgorm plugin so every query emits a span
// (and query metrics) under the active providers. Safe to skip when tracing
// is disabled.
func InstrumentGorm(db *gorm.DB, cfg DBTracingConfig) error {
	if !cfg.Enabled {
		return nil
	}

	opts := []otelgorm.Option{}
	if cfg.DBName != "" {
		opts = append(opts, otelgorm.WithDBName(cfg.DBName))
	}
	if !cfg.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}

	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return fmt.Errorf("failed to register otelgorm plugin: %w", err)
	}
	return nil
}
