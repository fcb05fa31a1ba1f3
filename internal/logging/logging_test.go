package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestConfigureLevel(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	var buf bytes.Buffer
	configure(&buf, "warn", false)

	if zerolog.GlobalLevel() != zerolog.WarnLevel {
		t.Fatalf("level got=%s want=warn", zerolog.GlobalLevel())
	}

	log.Info().Msg("hidden")
	log.Warn().Msg("shown")
	if strings.Contains(buf.String(), "hidden") {
		t.Errorf("info message should be filtered: %s", buf.String())
	}
	if !strings.Contains(buf.String(), `"message":"shown"`) {
		t.Errorf("expected json warn message: %s", buf.String())
	}
}

func TestConfigureUnknownLevelDefaultsToInfo(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	var buf bytes.Buffer
	configure(&buf, "loud", false)

	if zerolog.GlobalLevel() != zerolog.InfoLevel {
		t.Fatalf("level got=%s want=info", zerolog.GlobalLevel())
	}
	if !strings.Contains(buf.String(), "defaulting to info") {
		t.Errorf("expected fallback warning: %s", buf.String())
	}
}
