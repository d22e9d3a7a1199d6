package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want logrus.Level
	}{
		{"debug", logrus.DebugLevel},
		{"warn", logrus.WarnLevel},
		{"error", logrus.ErrorLevel},
		{"", logrus.InfoLevel},
		{"verbose", logrus.InfoLevel},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestConfigure_WritesJSON(t *testing.T) {
	var buf bytes.Buffer
	Configure(&buf, "debug")
	defer Configure(&bytes.Buffer{}, "info")

	WithField("radius", 42).Debug("boundary located")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Expected JSON log line, got %q: %v", buf.String(), err)
	}
	if entry["msg"] != "boundary located" {
		t.Errorf("Unexpected msg field: %v", entry["msg"])
	}
	if entry["radius"] != float64(42) {
		t.Errorf("Unexpected radius field: %v", entry["radius"])
	}
}
