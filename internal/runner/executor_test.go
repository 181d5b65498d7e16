package runner

import (
	"context"
	"testing"
	"time"
)

func TestMockExecutor_KnownInput(t *testing.T) {
	executor := NewMockExecutor(0)

	tests := []struct {
		input string
		want  string
	}{
		{"[2,7,11,15], 9", "[0,1]"},
		{"123", "321"},
		{"-121", "false"},
		{`["dog","racecar","car"]`, `""`},
		{"[1,2], [3,4]", "2.50000"},
	}
	for _, tt := range tests {
		got, err := executor.Execute(context.Background(), "python", "code", tt.input)
		if err != nil {
			t.Fatalf("Execute(%q) error = %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("Execute(%q) = %q; want %q", tt.input, got, tt.want)
		}
	}
}

func TestMockExecutor_UnknownInput(t *testing.T) {
	executor := NewMockExecutor(0)

	got, err := executor.Execute(context.Background(), "python", "code", "[9,9,9], 42")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if got != OutputUnavailable {
		t.Errorf("Execute() = %q; want the OutputUnavailable sentinel", got)
	}
}

func TestMockExecutor_ContextCancelledDuringLatency(t *testing.T) {
	executor := NewMockExecutor(5 * time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := executor.Execute(ctx, "python", "code", "123"); err == nil {
		t.Fatal("Execute() error = nil; want context error")
	}
}

func TestResilientExecutor_PassThrough(t *testing.T) {
	executor := NewResilientExecutor(NewMockExecutor(0), DefaultResilientConfig())
	defer executor.Close()

	got, err := executor.Execute(context.Background(), "python", "code", "121")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if got != "true" {
		t.Errorf("Execute() = %q; want true", got)
	}
}

func TestResilientExecutor_AllDisabled(t *testing.T) {
	executor := NewResilientExecutor(NewMockExecutor(0), ResilientConfig{})
	defer executor.Close()

	got, err := executor.Execute(context.Background(), "python", "code", "10")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if got != "false" {
		t.Errorf("Execute() = %q; want false", got)
	}
}
