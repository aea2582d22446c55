package config

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewDefaults(t *testing.T) {
	cfg := New("flowers")
	if cfg.DataDir != "flowers" {
		t.Errorf("DataDir = %q, want %q", cfg.DataDir, "flowers")
	}
	if cfg.Arch != "vgg11" {
		t.Errorf("Arch = %q, want vgg11", cfg.Arch)
	}
	if cfg.SaveDir != "" {
		t.Errorf("SaveDir = %q, want empty", cfg.SaveDir)
	}
	if cfg.LearningRate != 0.001 {
		t.Errorf("LearningRate = %g, want 0.001", cfg.LearningRate)
	}
	if cfg.HiddenUnits != 512 {
		t.Errorf("HiddenUnits = %d, want 512", cfg.HiddenUnits)
	}
	if cfg.Epochs != 5 {
		t.Errorf("Epochs = %d, want 5", cfg.Epochs)
	}
	if !cfg.GPU {
		t.Errorf("GPU = false, want true")
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults are valid", func(c *Config) {}, false},
		{"empty data dir", func(c *Config) { c.DataDir = "" }, true},
		{"zero learning rate", func(c *Config) { c.LearningRate = 0 }, true},
		{"negative learning rate", func(c *Config) { c.LearningRate = -0.1 }, true},
		{"zero hidden units", func(c *Config) { c.HiddenUnits = 0 }, true},
		{"zero epochs", func(c *Config) { c.Epochs = 0 }, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := New("flowers")
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.wantErr && err == nil {
				t.Fatal("expected an error, got nil")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestPrintOneLinePerField(t *testing.T) {
	var buf bytes.Buffer
	New("flowers").Print(&buf)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	// One header line plus one line per field.
	if len(lines) != 8 {
		t.Fatalf("Print produced %d lines, want 8:\n%s", len(lines), buf.String())
	}
	wantPrefixes := []string{
		"data_dir =", "arch =", "save_dir =", "learning_rate =",
		"hidden_units =", "epochs =", "gpu =",
	}
	for i, prefix := range wantPrefixes {
		line := strings.TrimSpace(lines[i+1])
		if !strings.HasPrefix(line, prefix) {
			t.Errorf("line %d = %q, want prefix %q", i+1, line, prefix)
		}
	}
}
