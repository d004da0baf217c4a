package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cubelab/solfilter/domain"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.Filter.Threshold != 4.0 {
		t.Errorf("Expected threshold 4.0, got %v", config.Filter.Threshold)
	}
	if config.Filter.PrefixLen != 4 {
		t.Errorf("Expected prefix_len 4, got %d", config.Filter.PrefixLen)
	}
	if config.Filter.MinClusterSize != 0 {
		t.Errorf("Expected automatic min_cluster_size, got %d", config.Filter.MinClusterSize)
	}
	if config.Filter.ReportOutliers {
		t.Error("Expected outlier reporting to be off by default")
	}
	if config.Output.Format != "text" {
		t.Errorf("Expected format 'text', got %s", config.Output.Format)
	}
	if config.Server.Addr != domain.DefaultServerAddr {
		t.Errorf("Expected addr %s, got %s", domain.DefaultServerAddr, config.Server.Addr)
	}
	if err := config.Validate(); err != nil {
		t.Errorf("Expected default config to be valid, got %v", err)
	}
}

func TestFilterConfigRoundTrip(t *testing.T) {
	def := domain.DefaultFilterConfig()
	def.Threshold = 3.25
	def.ReportOutliers = true

	got := FromFilterConfig(def).ToFilterConfig()
	if got != def {
		t.Errorf("Expected %+v, got %+v", def, got)
	}
}

func TestConfigValidation(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "negative threshold", mutate: func(c *Config) { c.Filter.Threshold = -1 }, wantErr: true},
		{name: "zero prefix length", mutate: func(c *Config) { c.Filter.PrefixLen = 0 }, wantErr: true},
		{name: "weights above 100", mutate: func(c *Config) { c.Filter.LengthWeight = 70 }, wantErr: true},
		{name: "unknown format", mutate: func(c *Config) { c.Output.Format = "xml" }, wantErr: true},
		{name: "csv format", mutate: func(c *Config) { c.Output.Format = "csv" }},
		{name: "negative top", mutate: func(c *Config) { c.Output.Top = -1 }, wantErr: true},
		{name: "negative timeout", mutate: func(c *Config) { c.Server.RequestTimeoutSeconds = -5 }, wantErr: true},
		{name: "zero batch size", mutate: func(c *Config) { c.Server.MaxBatchSize = 0 }, wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			config := DefaultConfig()
			tc.mutate(config)
			err := config.Validate()
			if tc.wantErr && err == nil {
				t.Error("Expected validation error")
			}
			if !tc.wantErr && err != nil {
				t.Errorf("Unexpected validation error: %v", err)
			}
		})
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	t.Run("yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "solfilter.yaml")
		content := `filter:
  threshold: 3.5
  prefix_len: 6
output:
  format: json
  top: 5
`
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write config file: %v", err)
		}

		config, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("Failed to load config: %v", err)
		}
		if config.Filter.Threshold != 3.5 {
			t.Errorf("Expected threshold 3.5, got %v", config.Filter.Threshold)
		}
		if config.Filter.PrefixLen != 6 {
			t.Errorf("Expected prefix_len 6, got %d", config.Filter.PrefixLen)
		}
		if config.Filter.MaxClusterSize != 15 {
			t.Errorf("Expected unspecified keys to keep defaults, got max_cluster_size %d", config.Filter.MaxClusterSize)
		}
		if config.Output.Format != "json" || config.Output.Top != 5 {
			t.Errorf("Unexpected output config: %+v", config.Output)
		}
	})

	t.Run("toml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ConfigFileName)
		content := "[filter]\nreport_outliers = true\n\n[server]\naddr = \":9090\"\n"
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write config file: %v", err)
		}

		config, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("Failed to load config: %v", err)
		}
		if !config.Filter.ReportOutliers {
			t.Error("Expected report_outliers to be enabled")
		}
		if config.Server.Addr != ":9090" {
			t.Errorf("Expected addr :9090, got %s", config.Server.Addr)
		}
	})

	t.Run("invalid values", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "solfilter.yaml")
		if err := os.WriteFile(path, []byte("filter:\n  prefix_len: 0\n"), 0644); err != nil {
			t.Fatalf("Failed to write config file: %v", err)
		}
		if _, err := LoadConfig(path); err == nil {
			t.Error("Expected invalid configuration error")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
			t.Error("Expected error for missing config file")
		}
	})
}

func TestLoadConfigEnvironmentOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "solfilter.yaml")
	if err := os.WriteFile(path, []byte("filter:\n  threshold: 3.5\n"), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	t.Setenv("SOLFILTER_FILTER_THRESHOLD", "2.5")
	t.Setenv("SOLFILTER_OUTPUT_LABELED_ONLY", "true")

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if config.Filter.Threshold != 2.5 {
		t.Errorf("Expected environment threshold 2.5, got %v", config.Filter.Threshold)
	}
	if !config.Output.LabeledOnly {
		t.Error("Expected environment to enable labeled_only")
	}
}
