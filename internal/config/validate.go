package config

import (
	"fmt"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if c.Database.MaxConns <= 0 {
		return fmt.Errorf("database.max_conns must be > 0 (got %d)", c.Database.MaxConns)
	}
	if c.Database.MinConns < 0 {
		return fmt.Errorf("database.min_conns must be >= 0 (got %d)", c.Database.MinConns)
	}
	if c.Database.MinConns > c.Database.MaxConns {
		return fmt.Errorf("database.min_conns (%d) must not exceed database.max_conns (%d)",
			c.Database.MinConns, c.Database.MaxConns)
	}

	if c.Pipeline.HardDeleteRetentionDays <= 0 {
		return fmt.Errorf("pipeline.hard_delete_retention_days must be > 0 (got %d)",
			c.Pipeline.HardDeleteRetentionDays)
	}

	if c.Dispatcher.BatchSize <= 0 {
		return fmt.Errorf("dispatcher.batch_size must be > 0 (got %d)", c.Dispatcher.BatchSize)
	}
	if c.Dispatcher.Lookahead < 0 {
		return fmt.Errorf("dispatcher.lookahead must be >= 0 (got %v)", c.Dispatcher.Lookahead)
	}

	return nil
}
