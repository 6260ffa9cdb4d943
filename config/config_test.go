package config

import "testing"

func TestLoadWithoutFlagsAppliesTagDefaults(t *testing.T) {
	t.Setenv("JUDGE_TOML_FILE", "")

	var c Config
	if err := c.LoadWithoutFlags(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if c.TestData != "testdata" {
		t.Fatalf("TestData = %q, want the struct tag default %q", c.TestData, "testdata")
	}
	if c.DiagnosticsMaxTimeRatio != 3 {
		t.Fatalf("DiagnosticsMaxTimeRatio = %v, want 3", c.DiagnosticsMaxTimeRatio)
	}
}

func TestLoadWithoutFlagsLeavesUntaggedBoolAtZeroValue(t *testing.T) {
	t.Setenv("JUDGE_TOML_FILE", "")

	var c Config
	if err := c.LoadWithoutFlags(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.DiagnosticsEnabled {
		t.Fatal("want DiagnosticsEnabled false, since it has no struct tag default and no env override")
	}
}
