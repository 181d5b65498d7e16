package main

import (
	"fmt"
	"os"

	"github.com/codeforge-dev/codeforge/internal/config"
)

// Version is set at build time via ldflags
var Version = "dev"

const pidFile = "codeforged.pid"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "init":
		err = cmdInit()
	case "start":
		err = cmdStart()
	case "stop":
		err = cmdStop()
	case "status":
		err = cmdStatus()
	case "logs":
		err = cmdLogs()
	case "problems":
		err = cmdProblems(os.Args[2:])
	case "stats":
		err = cmdStats(os.Args[2:])
	case "help", "-h", "--help":
		printUsage()
	case "version", "-v", "--version":
		fmt.Printf("codeforge %s\n", Version)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// daemonAddr resolves the daemon base URL from local config
func daemonAddr() string {
	cfg, err := config.LoadLocalConfig()
	if err != nil {
		cfg = config.DefaultLocalConfig()
	}
	return fmt.Sprintf("http://%s:%d", cfg.Daemon.Bind, cfg.Daemon.Port)
}

func printUsage() {
	fmt.Println(`CodeForge - Local Coding Practice Platform

Usage:
  codeforge <command> [arguments]

Setup Commands:
  init            Initialize CodeForge (first-time setup)

Daemon Commands:
  start           Start the CodeForge daemon
  stop            Stop the CodeForge daemon
  status          Show daemon status
  logs            View daemon logs

Problem Commands:
  problems list   List catalog problems
  problems info   Show problem details

Analytics Commands:
  stats           Show progress overview
  stats board     Show the leaderboard

Other:
  help            Show this help message
  version         Show version information

Examples:
  codeforge start                  # Start daemon
  codeforge problems list          # List the catalog
  codeforge problems info two-sum  # Show one problem
  codeforge stats                  # Progress overview`)
}
