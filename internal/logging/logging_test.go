package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestLevelFromString(t *testing.T) {
	testCases := []struct {
		in   string
		want slog.Level
	}{
		{"error", slog.LevelError},
		{" WARN ", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"info", slog.LevelInfo},
		{"Debug", slog.LevelDebug},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tc := range testCases {
		if got := LevelFromString(tc.in); got != tc.want {
			t.Errorf("LevelFromString(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestValidLevel(t *testing.T) {
	if !ValidLevel("warn") || !ValidLevel("DEBUG") {
		t.Error("known levels should be valid")
	}
	if ValidLevel("verbose") || ValidLevel("") {
		t.Error("unknown levels should be invalid")
	}
}

func TestNew_TextFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New("warn", FormatText, &buf)

	logger.Info("hidden")
	logger.Warn("row rejected", "row", 3)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info records should be dropped at warn level")
	}
	if !strings.Contains(out, "row rejected") || !strings.Contains(out, "row=3") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	New("info", "JSON", &buf).Info("ingestion finished", "accepted", 2)

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("output should be JSON: %v (%q)", err, buf.String())
	}
	if record["msg"] != "ingestion finished" || record["accepted"] != float64(2) {
		t.Errorf("unexpected record %v", record)
	}
}

func TestDiscard(t *testing.T) {
	if Discard().Enabled(context.Background(), slog.LevelError) {
		t.Error("discard logger should not be enabled at any level")
	}
}
