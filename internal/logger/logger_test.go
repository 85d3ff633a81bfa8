package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestLoggerLevelFilter(t *testing.T) {
	tests := []struct {
		name    string
		level   Level
		message string
		fields  Fields
		err     error
		want    bool // should log
	}{
		{
			name:    "info message",
			level:   LevelInfo,
			message: "test message",
			fields:  Fields{"key": "value"},
			want:    true,
		},
		{
			name:    "debug below threshold",
			level:   LevelDebug,
			message: "debug message",
			want:    false,
		},
		{
			name:    "error with err",
			level:   LevelError,
			message: "error occurred",
			err:     errors.New("test error"),
			want:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := New(LevelInfo, &buf)

			logger.log(tt.level, tt.message, tt.fields, tt.err)

			if logged := buf.Len() > 0; logged != tt.want {
				t.Errorf("log() logged = %v, want %v", logged, tt.want)
			}
		})
	}
}

func TestLoggerEntryShape(t *testing.T) {
	var buf bytes.Buffer
	logger := New(LevelDebug, &buf)

	logger.Error("fetch failed", Fields{"url": "https://example.com"}, errors.New("boom"))

	var e entry
	if err := json.Unmarshal(buf.Bytes(), &e); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if e.Level != "ERROR" {
		t.Errorf("level = %q", e.Level)
	}
	if e.Message != "fetch failed" {
		t.Errorf("message = %q", e.Message)
	}
	if e.Error != "boom" {
		t.Errorf("error = %q", e.Error)
	}
	if e.Fields["url"] != "https://example.com" {
		t.Errorf("fields = %v", e.Fields)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", LevelDebug},
		{"WARN", LevelWarn},
		{" error ", LevelError},
		{"", LevelInfo},
		{"bogus", LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestMetrics(t *testing.T) {
	m := NewMetrics()
	m.Incr("details_fetched")
	m.Add("details_fetched", 2)
	m.Timing("detail_fetch", 100*time.Millisecond)
	m.Timing("detail_fetch", 300*time.Millisecond)

	snap := m.Snapshot()

	counters, ok := snap["counters"].(map[string]int64)
	if !ok {
		t.Fatalf("unexpected counters shape: %v", snap["counters"])
	}
	if counters["details_fetched"] != 3 {
		t.Errorf("counter = %d, want 3", counters["details_fetched"])
	}

	timings, ok := snap["timings"].(map[string]Fields)
	if !ok {
		t.Fatalf("unexpected timings shape: %v", snap["timings"])
	}
	fetch := timings["detail_fetch"]
	if fetch["count"] != 2 {
		t.Errorf("timing count = %v", fetch["count"])
	}
	if avg, _ := fetch["average"].(string); !strings.Contains(avg, "200ms") {
		t.Errorf("timing average = %v", fetch["average"])
	}
}
