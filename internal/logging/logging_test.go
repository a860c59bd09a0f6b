package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"azure-bom-cost/internal/errors"
)

func TestInitializeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.log")
	if err := Initialize(Config{Level: "debug", Format: "json", Output: path}); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	t.Cleanup(func() { _ = Initialize(DefaultConfig()) })

	Named("resolver").Debug("miss", zap.String("service", "Virtual Machines"))
	Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(string(data))), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v\n%s", err, data)
	}
	if entry["logger"] != "resolver" || entry["msg"] != "miss" || entry["service"] != "Virtual Machines" {
		t.Errorf("entry = %v", entry)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name  string
		cfg   Config
		field string
	}{
		{"defaults", DefaultConfig(), ""},
		{"empty", Config{}, ""},
		{"bad level", Config{Level: "loud"}, "logging.level"},
		{"bad format", Config{Format: "xml"}, "logging.format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.field == "" {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			e, ok := errors.As(err)
			if !ok || e.Type != errors.TypeConfig || e.Field() != tt.field {
				t.Errorf("Validate() error = %v, want config error on %s", err, tt.field)
			}
		})
	}
}
