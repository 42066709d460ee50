// Package logtrace bootstraps the global zerolog logger.
package logtrace

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func InitLogger() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
}

// TODO - wire a trace exporter once one is picked
func IsTraceEnabled() bool {
	return false
}
