package logging

import (
	"testing"

	"github.com/hotwords123/judge-v3/config"
)

func TestNewProductionLogger(t *testing.T) {
	logger, err := New(&config.Config{LogRelease: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if logger == nil {
		t.Fatal("want a non-nil logger")
	}
}

func TestNewDevelopmentLogger(t *testing.T) {
	logger, err := New(&config.Config{LogRelease: false, EnableDebug: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if logger == nil {
		t.Fatal("want a non-nil logger")
	}
}
