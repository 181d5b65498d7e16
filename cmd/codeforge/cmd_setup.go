package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/codeforge-dev/codeforge/internal/config"
)

// cmdInit initializes CodeForge for first-time use
func cmdInit() error {
	fmt.Println("CodeForge - First-Time Setup")
	fmt.Println("============================")
	fmt.Println()

	fmt.Print("Creating ~/.codeforge directory structure... ")
	codeforgeDir, err := config.EnsureCodeforgeDir()
	if err != nil {
		return fmt.Errorf("create directories: %w", err)
	}
	fmt.Println("✓")

	configPath := filepath.Join(codeforgeDir, "config.yaml")
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		fmt.Print("Creating default configuration... ")
		if err := config.SaveLocalConfig(config.DefaultLocalConfig()); err != nil {
			return fmt.Errorf("save config: %w", err)
		}
		fmt.Println("✓")
	} else {
		fmt.Println("Configuration already exists ✓")
	}

	fmt.Println()
	fmt.Println("Setup complete. Next steps:")
	fmt.Println("  codeforge start    # start the daemon")
	fmt.Println("  codeforge status   # verify it is running")
	return nil
}
