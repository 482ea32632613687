package logger

import (
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"
)

// Init installs the default logger. Unknown levels fall back to info.
func Init(level string, noColor bool) {
	InitWriter(os.Stderr, level, noColor)
}

// InitWriter is Init with an explicit destination.
func InitWriter(w io.Writer, level string, noColor bool) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	log.SetDefault(log.NewWithOptions(w,
		log.Options{
			ReportCaller:    lvl == log.DebugLevel,
			ReportTimestamp: false,
			TimeFormat:      time.RFC3339,
			Prefix:          "JSWALK",
			Level:           lvl,
		}))

	log.SetColorProfile(termenv.ANSI256)
	if noColor {
		log.SetColorProfile(termenv.Ascii)
	}
}
