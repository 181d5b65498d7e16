package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/codeforge-dev/codeforge/internal/config"
)

// cmdStart starts the daemon in the background
func cmdStart() error {
	if isRunning() {
		fmt.Println("✓ Daemon is already running")
		return nil
	}

	codeforgeDir, err := config.EnsureCodeforgeDir()
	if err != nil {
		return fmt.Errorf("setup codeforge directory: %w", err)
	}

	daemonPath, err := findDaemonBinary()
	if err != nil {
		return fmt.Errorf("find daemon binary: %w", err)
	}

	cmd := exec.Command(daemonPath)
	cmd.Dir = codeforgeDir
	cmd.Stdout = nil
	cmd.Stderr = nil
	configureDaemonProcess(cmd)

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start daemon: %w", err)
	}

	fmt.Print("Starting daemon...")
	for i := 0; i < 30; i++ {
		time.Sleep(100 * time.Millisecond)
		if isRunning() {
			fmt.Println(" ✓")
			fmt.Printf("Daemon running at %s\n", daemonAddr())
			return nil
		}
		fmt.Print(".")
	}

	fmt.Println(" ✗")
	return fmt.Errorf("daemon failed to start (check logs with 'codeforge logs')")
}

// cmdStop stops the daemon via its PID file
func cmdStop() error {
	if !isRunning() {
		fmt.Println("Daemon is not running")
		return nil
	}

	codeforgeDir, err := config.CodeforgeDir()
	if err != nil {
		return err
	}

	data, err := os.ReadFile(filepath.Join(codeforgeDir, pidFile))
	if err != nil {
		return fmt.Errorf("read PID file: %w", err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return fmt.Errorf("parse PID: %w", err)
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("find process: %w", err)
	}

	fmt.Print("Stopping daemon...")
	if err := process.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("send signal: %w", err)
	}

	for i := 0; i < 50; i++ {
		time.Sleep(100 * time.Millisecond)
		if !isRunning() {
			fmt.Println(" ✓")
			return nil
		}
		fmt.Print(".")
	}

	fmt.Println(" ✗")
	return fmt.Errorf("daemon did not stop gracefully")
}

// cmdStatus shows daemon status
func cmdStatus() error {
	if !isRunning() {
		fmt.Println("Status: stopped")
		return nil
	}

	var status struct {
		Status   string `json:"status"`
		Version  string `json:"version"`
		Problems int    `json:"problems"`
		Pack     string `json:"pack"`
		LoggedIn bool   `json:"logged_in"`
	}
	if err := getJSON("/v1/status", &status); err != nil {
		return fmt.Errorf("get status: %w", err)
	}

	fmt.Printf("Status:    %s\n", status.Status)
	fmt.Printf("Version:   %s\n", status.Version)
	fmt.Printf("Pack:      %s (%d problems)\n", status.Pack, status.Problems)
	fmt.Printf("Logged in: %v\n", status.LoggedIn)
	fmt.Printf("Address:   %s\n", daemonAddr())
	return nil
}

// cmdLogs prints the tail of the daemon log
func cmdLogs() error {
	codeforgeDir, err := config.CodeforgeDir()
	if err != nil {
		return err
	}

	logPath := filepath.Join(codeforgeDir, "logs", "codeforged.log")
	if _, err := os.Stat(logPath); os.IsNotExist(err) {
		fmt.Println("No log file found. Start the daemon first.")
		return nil
	}

	file, err := os.Open(logPath)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	// Seek to end and go back ~4KB for recent entries
	info, _ := file.Stat()
	offset := info.Size() - 4096
	if offset < 0 {
		offset = 0
	}
	_, _ = file.Seek(offset, 0)

	scanner := bufio.NewScanner(file)
	if offset > 0 && scanner.Scan() {
		// Drop the partial first line.
	}
	for scanner.Scan() {
		fmt.Println(scanner.Text())
	}
	return nil
}

// isRunning checks the daemon's health endpoint
func isRunning() bool {
	resp, err := http.Get(daemonAddr() + "/v1/health")
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// findDaemonBinary locates the codeforged binary
func findDaemonBinary() (string, error) {
	if path, err := exec.LookPath("codeforged"); err == nil {
		return path, nil
	}

	if self, err := os.Executable(); err == nil {
		path := filepath.Join(filepath.Dir(self), "codeforged")
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("codeforged not found in PATH or next to codeforge")
}

// getJSON fetches a daemon endpoint into out
func getJSON(path string, out interface{}) error {
	resp, err := http.Get(daemonAddr() + path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("daemon returned %s", resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
