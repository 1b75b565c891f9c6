package logger

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewWithWriter(t *testing.T) {
	for _, tc := range []struct {
		name      string
		options   Options
		wantFmt   string
		wantDebug bool
		wantWarn  string
	}{
		{"defaults", Options{Format: "text"}, "text", false, ""},
		{"json debug", Options{Level: "DEBUG", Format: "json"}, "json", true, ""},
		{"warning alias", Options{Level: " warning ", Format: "text"}, "text", false, ""},
		{"bad level", Options{Level: "loud", Format: "json"}, "json", false, "could not parse logger level"},
		{"bad format", Options{Format: "xml"}, "text", false, "could not parse logger format"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			log := NewWithWriter(&tc.options, &buf)

			if got := log.Enabled(context.Background(), slog.LevelDebug); got != tc.wantDebug {
				t.Fatalf("debug enabled = %v, want %v", got, tc.wantDebug)
			}
			if tc.options.Format != tc.wantFmt {
				t.Fatalf("format reset to %q, want %q", tc.options.Format, tc.wantFmt)
			}
			if tc.wantWarn != "" && !strings.Contains(buf.String(), tc.wantWarn) {
				t.Fatalf("output %q lacks %q", buf.String(), tc.wantWarn)
			}

			buf.Reset()
			log.Warn("ready")
			if tc.wantFmt == "json" && !strings.HasPrefix(buf.String(), "{") {
				t.Fatalf("json output = %q", buf.String())
			}
			if tc.wantFmt == "text" && !strings.Contains(buf.String(), "msg=ready") {
				t.Fatalf("text output = %q", buf.String())
			}
		})
	}
}

func TestNew_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "phonebook.log")
	log := New(&Options{File: path, Format: "text"})
	log.Info("server is running")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "server is running") {
		t.Fatalf("log file = %q", data)
	}
}

func TestNew_DevNull(t *testing.T) {
	log := New(&Options{File: os.DevNull, Format: "text"})
	if log.Enabled(context.Background(), slog.LevelError) {
		t.Fatal("logger to the null device is enabled")
	}
}
