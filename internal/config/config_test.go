package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lofbot.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := writeConfig(t, `
[server]
host = "tmw.example.org"
port = 6902
same_ip = false

[account]
name = "GeorgeBot"
password = "secret"
char_slot = 1

[[slaves]]
name = "GeorgeBot_s1"
password = "x"
direction = "East"

[[slaves]]
name = "GeorgeBot_s2"
password = "y"
direction = "West"

[network]
read_timeout = "90s"
workers = 8

[scripts]
admins = ["Pihro", "George"]
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Host != "tmw.example.org" || cfg.Server.Port != 6902 || cfg.Server.SameIP {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Account.Speaker != "GeorgeBot" {
		t.Errorf("speaker = %q, want account name", cfg.Account.Speaker)
	}
	if cfg.Account.Direction != "north" || !cfg.Account.Sit {
		t.Errorf("account look defaults lost: %+v", cfg.Account)
	}
	if len(cfg.Slaves) != 2 || cfg.Slaves[1].Direction != "West" {
		t.Errorf("slaves = %+v", cfg.Slaves)
	}
	if cfg.Network.ReadTimeout != 90*time.Second || cfg.Network.Workers != 8 {
		t.Errorf("network = %+v", cfg.Network)
	}
	if cfg.Network.HandshakeTimeout != 30*time.Second {
		t.Errorf("handshake timeout default = %s, want 30s", cfg.Network.HandshakeTimeout)
	}
	if cfg.Network.PeriodicInterval != 12*time.Second {
		t.Errorf("periodic interval default lost: %s", cfg.Network.PeriodicInterval)
	}
	if cfg.Database.DSN != "" {
		t.Errorf("database should be disabled by default, dsn %q", cfg.Database.DSN)
	}
	if len(cfg.Scripts.Admins) != 2 || cfg.Scripts.Dir != "scripts" {
		t.Errorf("scripts = %+v", cfg.Scripts)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := writeConfig(t, `
[server]
port = 70000

[account]
char_slot = 300

[[slaves]]
password = "x"

[network]
workers = 0
`)
	_, err := Load(path)
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"server.port", "account.name", "account.char_slot", "slaves[0].name", "network.workers"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}

func TestLoadBadTOML(t *testing.T) {
	if _, err := Load(writeConfig(t, "[server\nhost=")); err == nil {
		t.Error("expected parse error")
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("expected read error")
	}
}

func TestPath(t *testing.T) {
	t.Setenv(EnvPath, "")
	if got := Path(""); got != DefaultPath {
		t.Errorf("Path() = %q", got)
	}
	t.Setenv(EnvPath, "/etc/lofbot.toml")
	if got := Path(""); got != "/etc/lofbot.toml" {
		t.Errorf("Path() with env = %q", got)
	}
	if got := Path("mine.toml"); got != "mine.toml" {
		t.Errorf("Path(flag) = %q", got)
	}
}
