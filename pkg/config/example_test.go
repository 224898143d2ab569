package config_test

import (
	"fmt"

	"github.com/wonny/tse-screener/pkg/config"
)

// Example demonstrates how to use the config package
func Example() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		return
	}

	// Access configuration values
	fmt.Printf("Markets: %v\n", cfg.Pipeline.Markets)
	fmt.Printf("Batch size: %d\n", cfg.Pipeline.BatchSize)
	fmt.Printf("Output: %s/%s_<date>.csv\n", cfg.Pipeline.OutputDir, cfg.Pipeline.OutputPrefix)
	fmt.Printf("Archive enabled: %v\n", cfg.Database.Enabled())
}
