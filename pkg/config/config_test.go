package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/listgraph/pkg/dag/transform"
	"github.com/matzehuels/listgraph/pkg/errors"
	"github.com/matzehuels/listgraph/pkg/interact"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
	if cfg.Debounce.Query.Duration != 666*time.Millisecond || cfg.Debounce.Root.Duration != 500*time.Millisecond {
		t.Errorf("debounce defaults = %v, %v", cfg.Debounce.Query, cfg.Debounce.Root)
	}
	if cfg.HoverOptions().ExcludeClones {
		t.Error("clones should be highlighted by default")
	}
}

func TestDecode(t *testing.T) {
	cfg, err := Decode(`
[interaction]
layering = "shortest"
restriction = "direct-parents"
include_clones = false

[debounce]
query = "250ms"
disabled = true

[server]
addr = ":9090"
session_ttl = "2h"

[redis]
addr = "localhost:6379"

[cache]
backend = "redis"

[log]
level = "debug"
`)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	if l, _ := cfg.Layering(); l != transform.LayeringShortestPath {
		t.Errorf("Layering() = %v", l)
	}
	hover := cfg.HoverOptions()
	if hover.Restriction != interact.RestrictDirectParentsOnly || !hover.ExcludeClones {
		t.Errorf("HoverOptions() = %+v", hover)
	}
	menu := cfg.MenuOptions()
	if menu.QueryWait != 250*time.Millisecond || menu.RootWait != 500*time.Millisecond || !menu.Disabled {
		t.Errorf("MenuOptions() = %+v", menu)
	}
	if cfg.Server.Addr != ":9090" || cfg.Server.SessionTTL.Duration != 2*time.Hour {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Redis.Channel != "listgraph:events" {
		t.Errorf("redis channel default lost: %q", cfg.Redis.Channel)
	}
	if lvl, _ := cfg.LogLevel(); lvl != log.DebugLevel {
		t.Errorf("LogLevel() = %v", lvl)
	}
}

func TestDecode_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"unknown key", "[server]\nport = 1\n", "server.port"},
		{"bad duration", "[debounce]\nquery = \"soon\"\n", "parse config"},
		{"bad layering", "[interaction]\nlayering = \"wide\"\n", "interaction.layering"},
		{"bad restriction", "[interaction]\nrestriction = \"some\"\n", "interaction.restriction"},
		{"bad level", "[log]\nlevel = \"loud\"\n", "log.level"},
		{"bad backend", "[cache]\nbackend = \"disk\"\n", "cache.backend"},
		{"redis without addr", "[cache]\nbackend = \"redis\"\n", "requires redis.addr"},
		{"negative ttl", "[server]\nsession_ttl = \"-1s\"\n", "server.session_ttl"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.data)
			if !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Fatalf("Decode() error = %v, want INVALID_CONFIG", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Decode() error = %q, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	cfg, err := Load("")
	if err != nil || cfg.Server.Addr != ":8080" {
		t.Fatalf("Load(\"\") = %+v, %v", cfg.Server, err)
	}

	path := filepath.Join(t.TempDir(), "listgraph.toml")
	if err := os.WriteFile(path, []byte("[mongo]\nuri = \"mongodb://localhost\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err = Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Mongo.URI != "mongodb://localhost" || cfg.Mongo.Collection != "graphs" {
		t.Errorf("mongo = %+v", cfg.Mongo)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("Load(missing) error = %v", err)
	}
}

func TestString_RoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Debounce.Query = Duration{time.Second}
	got, err := Decode(cfg.String())
	if err != nil {
		t.Fatalf("Decode(String()) error = %v", err)
	}
	if got.Debounce.Query.Duration != time.Second || got.Server.Addr != cfg.Server.Addr {
		t.Errorf("round trip = %+v", got)
	}
}
