package shortcodes

import (
	"io/ioutil"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestNewLogger(t *testing.T) {
	if _, err := NewLogger("loud", ""); err == nil {
		t.Error("expected error for unknown log level")
	}

	file := filepath.Join(t.TempDir(), "shortcodes.log")
	l, err := NewLogger("info", file)
	if err != nil {
		t.Fatal(err)
	}

	l.Debug("hidden")
	l.Info("shortened", zap.String("code", "abc123"))
	l.Sync()

	contents, err := ioutil.ReadFile(file)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(contents), "hidden") {
		t.Error("debug message written at info level")
	}
	if !strings.Contains(string(contents), `"code":"abc123"`) || !strings.Contains(string(contents), `"service":"shortcodes"`) {
		t.Errorf("log file is missing fields: %s", contents)
	}
}
