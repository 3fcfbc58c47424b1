package config

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		ListenAddr:      "127.0.0.1:8081",
		ShutdownTimeout: 15 * time.Second,
		DataBackend:     "sqlite",
		SQLiteDBPath:    "./test.db",
		LogLevel:        "info",
		LogFormat:       "text",
		QueryCacheSize:  128,
		QueryCacheTTL:   5 * time.Minute,
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(c *Config)
		wantErr     bool
		errorString string
	}{
		{
			name:   "valid sqlite backend config",
			mutate: func(c *Config) {},
		},
		{
			name:   "valid memory backend without database path",
			mutate: func(c *Config) { c.DataBackend = "memory"; c.SQLiteDBPath = "" },
		},
		{
			name:   "listen on all interfaces",
			mutate: func(c *Config) { c.ListenAddr = ":8081" },
		},
		{
			name:        "listen address without port",
			mutate:      func(c *Config) { c.ListenAddr = "127.0.0.1" },
			wantErr:     true,
			errorString: "invalid listen address '127.0.0.1'",
		},
		{
			name:        "listen port out of range",
			mutate:      func(c *Config) { c.ListenAddr = "127.0.0.1:70000" },
			wantErr:     true,
			errorString: "invalid listen port '70000': must be between 1 and 65535",
		},
		{
			name:        "listen port non-numeric",
			mutate:      func(c *Config) { c.ListenAddr = "127.0.0.1:http" },
			wantErr:     true,
			errorString: "invalid listen port 'http'",
		},
		{
			name:        "invalid data backend",
			mutate:      func(c *Config) { c.DataBackend = "sheets" },
			wantErr:     true,
			errorString: "invalid data backend 'sheets': must be one of [memory sqlite]",
		},
		{
			name:        "sqlite backend missing database path",
			mutate:      func(c *Config) { c.SQLiteDBPath = "" },
			wantErr:     true,
			errorString: "SQLite database path cannot be empty when using sqlite backend",
		},
		{
			name:        "invalid log level",
			mutate:      func(c *Config) { c.LogLevel = "verbose" },
			wantErr:     true,
			errorString: "invalid log level 'verbose'",
		},
		{
			name:        "invalid log format",
			mutate:      func(c *Config) { c.LogFormat = "xml" },
			wantErr:     true,
			errorString: "invalid log format 'xml'",
		},
		{
			name:        "query cache size too small",
			mutate:      func(c *Config) { c.QueryCacheSize = 0 },
			wantErr:     true,
			errorString: "invalid query cache size 0: must be at least 1",
		},
		{
			name:        "query cache ttl too short",
			mutate:      func(c *Config) { c.QueryCacheTTL = 10 * time.Millisecond },
			wantErr:     true,
			errorString: "invalid query cache ttl 10ms: must be at least 1 second",
		},
		{
			name:        "shutdown timeout too long",
			mutate:      func(c *Config) { c.ShutdownTimeout = time.Hour },
			wantErr:     true,
			errorString: "invalid shutdown timeout 1h0m0s: must be at most 5 minutes",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				if err == nil {
					t.Errorf("Config.Validate() error = nil, wantErr %v", tt.wantErr)
					return
				}
				if tt.errorString != "" && !strings.Contains(err.Error(), tt.errorString) {
					t.Errorf("Config.Validate() error = %v, want error containing %v", err.Error(), tt.errorString)
				}
			} else if err != nil {
				t.Errorf("Config.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_ValidateAggregatesErrors(t *testing.T) {
	cfg := validConfig()
	cfg.DataBackend = "nope"
	cfg.LogLevel = "loud"
	err := cfg.Validate()
	if err == nil {
		t.Fatalf("expected error")
	}
	if got := strings.Count(err.Error(), "\n- "); got != 2 {
		t.Fatalf("expected two problems, got %d: %v", got, err)
	}
}

func TestConfig_ValidateCreatesDatabaseDirectory(t *testing.T) {
	cfg := validConfig()
	cfg.SQLiteDBPath = filepath.Join(t.TempDir(), "a", "b", "daara.db")
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoad(t *testing.T) {
	for _, key := range []string{"LISTEN_ADDR", "DATA_BACKEND", "SQLITE_DB_PATH", "LOG_LEVEL", "LOG_FORMAT", "QUERY_CACHE_SIZE", "QUERY_CACHE_TTL", "SHUTDOWN_TIMEOUT"} {
		t.Setenv(key, "")
	}

	t.Run("default values", func(t *testing.T) {
		cfg := Load()

		if cfg.ListenAddr != "127.0.0.1:8081" {
			t.Errorf("Load() ListenAddr = %v, want 127.0.0.1:8081", cfg.ListenAddr)
		}
		if cfg.DataBackend != "sqlite" {
			t.Errorf("Load() DataBackend = %v, want sqlite", cfg.DataBackend)
		}
		if cfg.SQLiteDBPath != "./data/daara.db" {
			t.Errorf("Load() SQLiteDBPath = %v, want ./data/daara.db", cfg.SQLiteDBPath)
		}
		if cfg.QueryCacheSize != 128 || cfg.QueryCacheTTL != 5*time.Minute {
			t.Errorf("Load() cache = %d/%v, want 128/5m", cfg.QueryCacheSize, cfg.QueryCacheTTL)
		}
		if cfg.ShutdownTimeout != 15*time.Second {
			t.Errorf("Load() ShutdownTimeout = %v, want 15s", cfg.ShutdownTimeout)
		}
	})

	t.Run("environment variables", func(t *testing.T) {
		t.Setenv("LISTEN_ADDR", "0.0.0.0:9090")
		t.Setenv("DATA_BACKEND", "memory")
		t.Setenv("LOG_LEVEL", "DEBUG")
		t.Setenv("LOG_FORMAT", "json")
		t.Setenv("QUERY_CACHE_SIZE", "16")
		t.Setenv("QUERY_CACHE_TTL", "30s")

		cfg := Load()
		if cfg.ListenAddr != "0.0.0.0:9090" || cfg.DataBackend != "memory" {
			t.Errorf("Load() = %+v", cfg)
		}
		if cfg.LogLevel != "debug" || cfg.LogFormat != "json" {
			t.Errorf("Load() log = %s/%s, want debug/json", cfg.LogLevel, cfg.LogFormat)
		}
		if cfg.QueryCacheSize != 16 || cfg.QueryCacheTTL != 30*time.Second {
			t.Errorf("Load() cache = %d/%v, want 16/30s", cfg.QueryCacheSize, cfg.QueryCacheTTL)
		}
	})

	t.Run("invalid numbers fall back to defaults", func(t *testing.T) {
		t.Setenv("QUERY_CACHE_SIZE", "lots")
		t.Setenv("SHUTDOWN_TIMEOUT", "soon")

		cfg := Load()
		if cfg.QueryCacheSize != 128 || cfg.ShutdownTimeout != 15*time.Second {
			t.Errorf("Load() = %d/%v, want defaults", cfg.QueryCacheSize, cfg.ShutdownTimeout)
		}
	})
}
