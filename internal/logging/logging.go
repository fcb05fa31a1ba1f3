package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Configure sets the global zerolog logger from the level name and output
// style. An unknown level falls back to info.
func Configure(level string, text bool) {
	configure(os.Stderr, level, text)
}

func configure(out io.Writer, level string, text bool) {
	if text {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: out})
	} else {
		log.Logger = zerolog.New(out).With().Timestamp().Logger()
	}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		log.Warn().Str("loglevel", level).Msg("defaulting to info")
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	log.Debug().Str("loglevel", lvl.String()).Msg("log level set")
}
