package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
)

func TestLogger_WritesActionAndFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("mcorder", &buf, slog.LevelDebug)

	log.Error("api_failed", "Totals call failed", "req-1", errors.New("boom"), map[string]interface{}{
		"endpoint": "/order/total",
	})

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v (%s)", err, buf.String())
	}
	if entry["action"] != "api_failed" || entry["request_id"] != "req-1" || entry["service"] != "mcorder" {
		t.Errorf("unexpected entry: %v", entry)
	}
	details, ok := entry["details"].(map[string]interface{})
	if !ok || details["endpoint"] != "/order/total" {
		t.Errorf("details missing: %v", entry["details"])
	}
	errGroup, ok := entry["error"].(map[string]interface{})
	if !ok || errGroup["msg"] != "boom" {
		t.Errorf("error group missing: %v", entry["error"])
	}
}

func TestLogger_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("mcorder", &buf, slog.LevelInfo)

	log.Debug("api_request", "GET /x", "", nil)
	if buf.Len() != 0 {
		t.Errorf("debug line written at info level: %s", buf.String())
	}
}

func TestGenerateRequestID_Unique(t *testing.T) {
	a, b := GenerateRequestID(), GenerateRequestID()
	if a == "" || a == b {
		t.Errorf("request ids not unique: %q %q", a, b)
	}
}
