package ucplog

import (
	"bytes"
	"log/slog"
	"testing"
)

func TestGetLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	for in, want := range cases {
		got, err := GetLevel(in)
		if err != nil || got != want {
			t.Errorf("GetLevel(%q) = %v, %v; want %v, nil", in, got, err, want)
		}
	}
	if _, err := GetLevel("verbose"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestGetFormat(t *testing.T) {
	if f, err := GetFormat("JSON"); err != nil || f != FormatJSON {
		t.Fatalf("GetFormat(JSON) = %v, %v", f, err)
	}
	if _, err := GetFormat("xml"); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}

func TestCreateHandler_Writes(t *testing.T) {
	var buf bytes.Buffer
	h := CreateHandler(&buf, slog.LevelInfo, FormatJSON)
	logger := slog.New(h)
	logger.Info("hello", "k", "v")
	if buf.Len() == 0 {
		t.Fatalf("expected handler to write output")
	}
}
