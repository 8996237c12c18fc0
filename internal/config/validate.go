package config

import (
	"fmt"

	"github.com/miyabiro/kotoba-backend/internal/domain"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if err := c.Database.validate(); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if err := c.Lookup.validate(); err != nil {
		return fmt.Errorf("lookup: %w", err)
	}

	return nil
}

func (d DatabaseConfig) validate() error {
	if d.MaxConns <= 0 {
		return fmt.Errorf("max_conns must be > 0 (got %d)", d.MaxConns)
	}
	if d.MinConns < 0 {
		return fmt.Errorf("min_conns must be >= 0 (got %d)", d.MinConns)
	}
	if d.MinConns > d.MaxConns {
		return fmt.Errorf("min_conns %d exceeds max_conns %d", d.MinConns, d.MaxConns)
	}
	return nil
}

func (l LookupConfig) validate() error {
	if !domain.MatchType(l.DefaultStrategy).IsValid() {
		return fmt.Errorf("default_strategy must be one of exact, prefix, suffix (got %q)", l.DefaultStrategy)
	}

	seen := make(map[string]struct{}, len(l.Dictionaries))
	for i, d := range l.Dictionaries {
		if d.Title == "" {
			return fmt.Errorf("dictionaries[%d]: title must not be empty", i)
		}
		if _, dup := seen[d.Title]; dup {
			return fmt.Errorf("dictionaries[%d]: duplicate title %q", i, d.Title)
		}
		seen[d.Title] = struct{}{}

		if d.Priority != nil && *d.Priority < 0 {
			return fmt.Errorf("dictionaries[%d] %q: priority must be >= 0 (got %d)", i, d.Title, *d.Priority)
		}
	}

	return nil
}
