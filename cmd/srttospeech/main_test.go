package main

import (
	"strings"
	"testing"
)

func TestFormatVersion(t *testing.T) {
	origVersion, origCommit := version, gitCommit
	defer func() {
		version, gitCommit = origVersion, origCommit
	}()

	version = "1.2.0"
	gitCommit = ""
	if got := formatVersion(); got != "1.2.0" {
		t.Errorf("formatVersion() = %q, want 1.2.0", got)
	}

	gitCommit = "abc1234"
	if got := formatVersion(); got != "1.2.0 (git: abc1234)" {
		t.Errorf("formatVersion() = %q, want commit suffix", got)
	}
}

func TestDefaultConfigPath(t *testing.T) {
	path := defaultConfigPath()
	if path == "" {
		t.Fatal("expected a non-empty config path")
	}
	if !strings.HasSuffix(path, "config.json") {
		t.Errorf("path %q should end with config.json", path)
	}
}
