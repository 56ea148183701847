package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestRequireEnv(t *testing.T) {
	tests := []struct {
		name      string
		key       string
		value     string
		shouldSet bool
		wantPanic bool
	}{
		{
			name:      "variable set",
			key:       "TEST_VAR",
			value:     "test_value",
			shouldSet: true,
			wantPanic: false,
		},
		{
			name:      "variable not set",
			key:       "TEST_VAR_MISSING",
			shouldSet: false,
			wantPanic: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.shouldSet {
				t.Setenv(tt.key, tt.value)
			}

			if tt.wantPanic {
				defer func() {
					if r := recover(); r == nil {
						t.Errorf("requireEnv() should have panicked")
					}
				}()
			}

			e := &env{file: map[string]string{}}
			result := e.requireEnv(tt.key)
			if !tt.wantPanic && result != tt.value {
				t.Errorf("requireEnv() = %v, want %v", result, tt.value)
			}
		})
	}
}

func TestEnvHelpersFallBackToDefaults(t *testing.T) {
	e := &env{file: map[string]string{}}

	t.Setenv("TEST_BAD_INT", "not_a_number")
	t.Setenv("TEST_BAD_BOOL", "maybe")
	t.Setenv("TEST_BAD_DURATION", "soon")

	if got := e.getenvInt("TEST_BAD_INT", 7); got != 7 {
		t.Errorf("getenvInt() = %d, want default 7", got)
	}
	if got := e.mustBool("TEST_BAD_BOOL", true); !got {
		t.Errorf("mustBool() = %v, want default true", got)
	}
	if got := e.mustDuration("TEST_BAD_DURATION", time.Second); got != time.Second {
		t.Errorf("mustDuration() = %v, want default 1s", got)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "savelater.yaml")
	content := "owner: from-file\nstore: memory\nremote_timeout: 3s\nSAVELATER_SYNC_INTERVAL: 1m\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	t.Setenv("SAVELATER_CONFIG", path)
	t.Setenv("SAVELATER_OWNER", "from-env")

	cfg, err := LoadClient()
	if err != nil {
		t.Fatalf("LoadClient() failed: %v", err)
	}

	if cfg.Owner != "from-env" {
		t.Errorf("Owner = %q, env should win over file", cfg.Owner)
	}
	if cfg.Store != StoreMemory {
		t.Errorf("Store = %q, want memory from file", cfg.Store)
	}
	if cfg.RemoteTimeout != 3*time.Second {
		t.Errorf("RemoteTimeout = %v, want 3s from file", cfg.RemoteTimeout)
	}
	if cfg.SyncInterval != time.Minute {
		t.Errorf("SyncInterval = %v, want 1m from prefixed file key", cfg.SyncInterval)
	}
}

func TestLoadClientRejectsUnknownStore(t *testing.T) {
	t.Setenv("SAVELATER_CONFIG", "")
	t.Setenv("SAVELATER_STORE", "indexeddb")

	if _, err := LoadClient(); err == nil {
		t.Fatal("LoadClient() should reject an unknown store")
	}
}

func TestLoadClientMissingFile(t *testing.T) {
	t.Setenv("SAVELATER_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))

	if _, err := LoadClient(); err == nil {
		t.Fatal("LoadClient() should fail when the config file is missing")
	}
}

func TestLoadClientDefaults(t *testing.T) {
	t.Setenv("SAVELATER_CONFIG", "")
	t.Setenv("SAVELATER_STORE", "")
	t.Setenv("SAVELATER_REMOTE_URL", "https://links.example.com/")

	cfg, err := LoadClient()
	if err != nil {
		t.Fatalf("LoadClient() failed: %v", err)
	}

	if cfg.Store != StoreSQLite {
		t.Errorf("Store = %q, want sqlite", cfg.Store)
	}
	if cfg.RemoteURL != "https://links.example.com" {
		t.Errorf("RemoteURL = %q, trailing slash should be trimmed", cfg.RemoteURL)
	}
	if cfg.RemoteTimeout != 10*time.Second {
		t.Errorf("RemoteTimeout = %v, want 10s", cfg.RemoteTimeout)
	}
	if cfg.SyncInterval != 5*time.Minute {
		t.Errorf("SyncInterval = %v, want 5m", cfg.SyncInterval)
	}
}

func TestLoadServer(t *testing.T) {
	t.Run("postgres requires database url", func(t *testing.T) {
		t.Setenv("SAVELATER_CONFIG", "")
		t.Setenv("SAVELATER_SERVER_STORE", "postgres")
		t.Setenv("SAVELATER_DATABASE_URL", "")

		defer func() {
			if r := recover(); r == nil {
				t.Errorf("LoadServer() should have panicked without SAVELATER_DATABASE_URL")
			}
		}()
		LoadServer()
	})

	t.Run("token required but missing", func(t *testing.T) {
		t.Setenv("SAVELATER_CONFIG", "")
		t.Setenv("SAVELATER_SERVER_STORE", "memory")
		t.Setenv("SAVELATER_SERVER_TOKEN_REQUIRED", "true")
		t.Setenv("SAVELATER_SERVER_TOKEN", "")

		defer func() {
			if r := recover(); r == nil {
				t.Errorf("LoadServer() should have panicked without a token")
			}
		}()
		LoadServer()
	})

	t.Run("memory store", func(t *testing.T) {
		t.Setenv("SAVELATER_CONFIG", "")
		t.Setenv("SAVELATER_SERVER_STORE", "memory")
		t.Setenv("SAVELATER_SERVER_TOKEN_REQUIRED", "")
		t.Setenv("SAVELATER_ALLOWED_CIDRS", "10.0.0.0/8, 127.0.0.1")

		cfg := LoadServer()
		if cfg.Store != ServerStoreMemory {
			t.Errorf("Store = %q, want memory", cfg.Store)
		}
		if len(cfg.AllowedCIDRS) != 2 {
			t.Errorf("AllowedCIDRS = %v, want 2 entries", cfg.AllowedCIDRS)
		}
		if cfg.ListenPort != ":8080" {
			t.Errorf("ListenPort = %q, want :8080", cfg.ListenPort)
		}
	})
}

func TestSplitAndTrim(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		expected []string
	}{
		{name: "empty", in: "", expected: nil},
		{name: "single", in: "a", expected: []string{"a"}},
		{name: "spaces and quotes", in: ` "a" , 'b',,c `, expected: []string{"a", "b", "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitAndTrim(tt.in)
			if len(got) != len(tt.expected) {
				t.Fatalf("splitAndTrim(%q) = %v, want %v", tt.in, got, tt.expected)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("splitAndTrim(%q)[%d] = %q, want %q", tt.in, i, got[i], tt.expected[i])
				}
			}
		})
	}
}
