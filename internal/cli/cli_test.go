package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReadCode(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.go")
	if err := os.WriteFile(path, []byte("package main"), 0o600); err != nil {
		t.Fatal(err)
	}

	got, err := readCode(strings.NewReader("ignored"), path)
	if err != nil || got != "package main" {
		t.Fatalf("readCode(file) = %q, %v", got, err)
	}

	got, err = readCode(strings.NewReader("x = 1"), "")
	if err != nil || got != "x = 1" {
		t.Fatalf("readCode(stdin) = %q, %v", got, err)
	}

	if _, err := readCode(nil, filepath.Join(dir, "missing.go")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(out.String(), "xenovate ") {
		t.Fatalf("unexpected output %q", out.String())
	}
}

func TestInitCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
		cfgFile = ""
		initForce = false
	})

	rootCmd.SetArgs([]string{"init", "--config", path})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("init: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config not written: %v", err)
	}

	rootCmd.SetArgs([]string{"init", "--config", path})
	if err := rootCmd.Execute(); err == nil {
		t.Fatal("expected refusal to overwrite")
	}

	rootCmd.SetArgs([]string{"init", "--config", path, "--force"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("init --force: %v", err)
	}
}

func TestRunRejectsUnknownOperation(t *testing.T) {
	rootCmd.SetArgs([]string{"run", "summarize"})
	rootCmd.SetErr(&bytes.Buffer{})
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetErr(nil)
	})
	err := rootCmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "unknown operation") {
		t.Fatalf("expected unknown operation error, got %v", err)
	}
}
