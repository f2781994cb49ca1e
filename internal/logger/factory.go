package logger

import (
	"os"
	"time"

	"github.com/charmbracelet/log"
)

// Setup configures the package-level logger used by log.Debugf and friends.
// Debug mode adds timestamps and caller info.
func Setup(debug bool) {
	log.SetOutput(os.Stderr)
	if debug {
		log.SetLevel(log.DebugLevel)
		log.SetReportTimestamp(true)
		log.SetTimeFormat(time.Kitchen)
		log.SetReportCaller(true)
		return
	}
	log.SetLevel(log.WarnLevel)
	log.SetReportTimestamp(false)
	log.SetReportCaller(false)
}

// Default creates a logger without timestamps that respects the global
// log level.
func Default(prefix string) *log.Logger {
	return NewWithConfig(os.Stderr, prefix, log.GetLevel(), false, false, log.TextFormatter)
}
