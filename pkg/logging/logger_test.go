package logging

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/google/uuid"
)

const testWallet = "0xabcdef0123456789abcdef0123456789abcdef01"

func newBufferLogger(level slog.Level) (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewLoggerWithWriter(&buf, level), &buf
}

// records decodes every JSON line written to buf.
func records(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	sc := bufio.NewScanner(bytes.NewReader(buf.Bytes()))
	for sc.Scan() {
		var rec map[string]any
		if err := json.Unmarshal(sc.Bytes(), &rec); err != nil {
			t.Fatalf("invalid JSON line %q: %v", sc.Text(), err)
		}
		out = append(out, rec)
	}
	return out
}

func onlyRecord(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	recs := records(t, buf)
	if len(recs) != 1 {
		t.Fatalf("got %d records, want 1: %s", len(recs), buf.String())
	}
	return recs[0]
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"DEBUG", slog.LevelDebug},
		{"debug", slog.LevelDebug},
		{"  Info\n", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{" WARNING ", slog.LevelWarn},
		{"Error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseLevel(tt.in); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestLevelFromEnv(t *testing.T) {
	t.Setenv(LevelEnvVar, "debug")
	if got := getLogLevelFromEnv(); got != slog.LevelDebug {
		t.Errorf("level = %v, want DEBUG", got)
	}
	t.Setenv(LevelEnvVar, "")
	if got := getLogLevelFromEnv(); got != slog.LevelInfo {
		t.Errorf("level with empty env = %v, want INFO", got)
	}
}

func TestNewLoggerWithWriter_FiltersByLevel(t *testing.T) {
	logger, buf := newBufferLogger(slog.LevelWarn)
	ctx := context.Background()

	logger.Debug(ctx, "frame")
	logger.Info(ctx, "game started", "mission", 2)
	logger.Warn(ctx, "store unavailable")
	logger.Error(ctx, "save failed", errors.New("disk full"), "score", 1200)

	recs := records(t, buf)
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2: %s", len(recs), buf.String())
	}
	if recs[0]["level"] != "WARN" || recs[0]["msg"] != "store unavailable" {
		t.Errorf("first record = %v", recs[0])
	}
	if recs[1]["level"] != "ERROR" || recs[1]["error"] != "disk full" || recs[1]["score"] != float64(1200) {
		t.Errorf("error record = %v", recs[1])
	}
}

func TestLogger_ErrorWithoutErr(t *testing.T) {
	logger, buf := newBufferLogger(slog.LevelInfo)
	logger.Error(context.Background(), "render failed", nil)

	rec := onlyRecord(t, buf)
	if _, ok := rec["error"]; ok {
		t.Errorf("nil error logged as %v", rec["error"])
	}
}

func TestLogger_CorrelationID(t *testing.T) {
	t.Run("generated id is a uuid", func(t *testing.T) {
		logger, buf := newBufferLogger(slog.LevelInfo)
		ctx := WithCorrelationID(context.Background(), "")
		logger.Info(ctx, "session started")

		id, _ := onlyRecord(t, buf)["correlation_id"].(string)
		if _, err := uuid.Parse(id); err != nil {
			t.Errorf("correlation_id %q is not a uuid: %v", id, err)
		}
		if id != GetCorrelationID(ctx) {
			t.Errorf("logged id %q, context id %q", id, GetCorrelationID(ctx))
		}
	})

	t.Run("given id is kept", func(t *testing.T) {
		logger, buf := newBufferLogger(slog.LevelInfo)
		ctx := WithCorrelationID(context.Background(), "req-42")
		logger.Warn(ctx, "rate limited")

		if got := onlyRecord(t, buf)["correlation_id"]; got != "req-42" {
			t.Errorf("correlation_id = %v, want req-42", got)
		}
	})

	t.Run("absent without id", func(t *testing.T) {
		logger, buf := newBufferLogger(slog.LevelInfo)
		logger.Info(context.Background(), "loop started")

		if _, ok := onlyRecord(t, buf)["correlation_id"]; ok {
			t.Error("correlation_id logged without one in context")
		}
		if GetCorrelationID(context.Background()) != "" {
			t.Error("GetCorrelationID() on empty context not empty")
		}
	})
}

func TestLogger_RedactsAttributes(t *testing.T) {
	logger, buf := newBufferLogger(slog.LevelInfo)
	logger.Info(context.Background(), "profile synced",
		"wallet", testWallet,
		"player_wallet", testWallet,
		"wallet_count", 3,
		"dsn", "postgres://starstrike:hunter2@db/starstrike",
		"api_key", "abc",
		"Password", "hunter2",
		"score", 900,
	)

	rec := onlyRecord(t, buf)
	want := map[string]any{
		"wallet":        "0xabcd...ef01",
		"player_wallet": "0xabcd...ef01",
		"wallet_count":  float64(3),
		"dsn":           "[REDACTED]",
		"api_key":       "[REDACTED]",
		"Password":      "[REDACTED]",
		"score":         float64(900),
	}
	for k, v := range want {
		if rec[k] != v {
			t.Errorf("%s = %v, want %v", k, rec[k], v)
		}
	}
}

func TestMaskWallet(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"ten characters kept", "0x12345678", "0x12345678"},
		{"eleven characters masked", "0x123456789", "0x1234...6789"},
		{"full address", testWallet, "0xabcd...ef01"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MaskWallet(tt.in); got != tt.want {
				t.Errorf("MaskWallet(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestLogger_With(t *testing.T) {
	base, buf := newBufferLogger(slog.LevelInfo)
	logger := base.With("component", "store", "wallet", testWallet)

	logger.Info(context.Background(), "opened")
	base.Info(context.Background(), "plain")

	recs := records(t, buf)
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2", len(recs))
	}
	if recs[0]["component"] != "store" || recs[0]["wallet"] != "0xabcd...ef01" {
		t.Errorf("derived record = %v", recs[0])
	}
	if _, ok := recs[1]["component"]; ok {
		t.Error("With() changed the base logger")
	}
}

func TestNop(t *testing.T) {
	logger := Nop()
	ctx := context.Background()
	if logger.Enabled(ctx, slog.LevelError) {
		t.Error("Nop() logger enabled at ERROR")
	}
	logger.Error(ctx, "ignored", errors.New("boom"))
}

func TestWrapError(t *testing.T) {
	base := errors.New("connection refused")

	tests := []struct {
		name    string
		err     error
		context string
		args    []any
		want    string
	}{
		{"nil stays nil", nil, "open store", nil, ""},
		{"plain context", base, "open store", nil, "open store: connection refused"},
		{"formatted context", base, "save result for %s", []any{"0xabc"}, "save result for 0xabc: connection refused"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := WrapError(tt.err, tt.context, tt.args...)
			if tt.err == nil {
				if err != nil {
					t.Errorf("WrapError(nil) = %v", err)
				}
				return
			}
			if err.Error() != tt.want {
				t.Errorf("Error() = %q, want %q", err.Error(), tt.want)
			}
			if !errors.Is(err, base) {
				t.Error("wrapped error lost its cause")
			}
		})
	}
}
