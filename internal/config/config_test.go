package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 8080 || cfg.StoreDriver != DriverSQLite {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.GridSize != 8 || cfg.GestureThrottle != 16*time.Millisecond || cfg.RotationSnap != 15 {
		t.Errorf("unexpected editor defaults: %+v", cfg)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SLIDES_PORT", "9090")
	t.Setenv("SLIDES_STORE_DRIVER", "postgres")
	t.Setenv("SLIDES_SNAP_TO_GRID", "true")
	t.Setenv("SLIDES_GESTURE_THROTTLE", "32ms")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 9090 || cfg.StoreDriver != DriverPostgres || !cfg.SnapToGrid {
		t.Errorf("env not applied: %+v", cfg)
	}
	if cfg.GestureThrottle != 32*time.Millisecond {
		t.Errorf("throttle = %v", cfg.GestureThrottle)
	}
}

func TestValidateRejects(t *testing.T) {
	base := func() Config {
		return Config{
			Port:           8080,
			StoreDriver:    DriverSQLite,
			SQLitePath:     "slides.db",
			JWTSecret:      "long-enough-secret",
			AssetDir:       "assets",
			PlaygroundPath: "playground.json",
			LogFormat:      "text",
			GridSize:       8,
		}
	}
	cases := map[string]func(*Config){
		"port":          func(c *Config) { c.Port = 70000 },
		"driver":        func(c *Config) { c.StoreDriver = "mysql" },
		"sqlite path":   func(c *Config) { c.SQLitePath = "" },
		"postgres url":  func(c *Config) { c.StoreDriver = DriverPostgres; c.DatabaseURL = "" },
		"short secret":  func(c *Config) { c.JWTSecret = "abc" },
		"log format":    func(c *Config) { c.LogFormat = "xml" },
		"grid size":     func(c *Config) { c.GridSize = 0 },
		"rotation snap": func(c *Config) { c.RotationSnap = 180 },
	}

	ok := base()
	if err := ok.Validate(); err != nil {
		t.Fatalf("base config invalid: %v", err)
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := base()
			mutate(&c)
			if err := c.Validate(); err == nil {
				t.Errorf("expected validation error")
			}
		})
	}
}

func TestOrigins(t *testing.T) {
	c := Config{AllowedOrigins: "http://localhost:5173, https://slides.example.com,,"}
	got := c.Origins()
	want := []string{"localhost:5173", "slides.example.com"}
	if len(got) != len(want) {
		t.Fatalf("Origins() = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Origins()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
