package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestConfigureSharesOutput(t *testing.T) {
	var buf bytes.Buffer
	Configure(&buf)
	defer UseJSON()

	log.Info().Str("sku", "A").Msg("hello")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected one JSON line, got %q: %v", buf.String(), err)
	}
	if entry["sku"] != "A" || entry["message"] != "hello" {
		t.Fatalf("unexpected entry %v", entry)
	}
}

func TestSetLevel(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.TraceLevel)

	SetLevel("warn")
	if Log.GetLevel() != zerolog.WarnLevel {
		t.Fatalf("expected warn level, got %s", Log.GetLevel())
	}

	SetLevel("nonsense")
	if Log.GetLevel() != zerolog.InfoLevel {
		t.Fatalf("expected fallback to info, got %s", Log.GetLevel())
	}
}
