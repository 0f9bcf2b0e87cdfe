// internal/workers/query-intent/build-query-result/config.go
package buildqueryresult

import (
	"time"

	"query-intent-workers/internal/common/config"
)

type Config struct {
	Timeout  time.Duration
	CacheTTL time.Duration
	// Location is used to read referenceDate and to pick "today".
	Location *time.Location
}

func LoadConfig() *Config {
	return &Config{
		Timeout:  10 * time.Second,
		CacheTTL: time.Hour,
		Location: time.Local,
	}
}

// FromAppConfig overlays the worker, query and cache sections of cfg on the
// defaults.
func FromAppConfig(cfg *config.Config) *Config {
	c := LoadConfig()
	if cfg == nil {
		return c
	}
	if wc := config.GetWorkerConfig(cfg, TaskType); wc.Timeout > 0 {
		c.Timeout = config.GetDuration(wc.Timeout)
	}
	if cfg.Cache.TTL > 0 {
		c.CacheTTL = time.Duration(cfg.Cache.TTL) * time.Second
	}
	c.Location = cfg.Query.Location()
	return c
}
