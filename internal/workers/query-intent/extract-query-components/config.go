// internal/workers/query-intent/extract-query-components/config.go
package extractquerycomponents

import (
	"time"

	"query-intent-workers/internal/common/config"
)

type Config struct {
	Timeout        time.Duration
	FuzzyThreshold int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:        5 * time.Second,
		FuzzyThreshold: 80,
	}
}

// FromAppConfig overlays the worker and query sections of cfg on the defaults.
func FromAppConfig(cfg *config.Config) *Config {
	c := LoadConfig()
	if cfg == nil {
		return c
	}
	if wc := config.GetWorkerConfig(cfg, TaskType); wc.Timeout > 0 {
		c.Timeout = config.GetDuration(wc.Timeout)
	}
	if cfg.Query.FuzzyThreshold > 0 {
		c.FuzzyThreshold = cfg.Query.FuzzyThreshold
	}
	return c
}
