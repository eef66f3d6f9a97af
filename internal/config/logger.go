package config

import (
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"diskmeta/internal/util"
)

var logLevels = util.BuildMap(
	[]string{"trace", "debug", "info", "warn", "error"},
	[]logrus.Level{logrus.TraceLevel, logrus.DebugLevel, logrus.InfoLevel, logrus.WarnLevel, logrus.ErrorLevel},
	logrus.InfoLevel,
)

// NewLogger builds a logger writing to out at the given level.
// "off" (or any unknown level) discards everything.
func NewLogger(level string, out io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	lvl, ok := logLevels[strings.ToLower(level)]
	if !ok {
		logger.SetOutput(io.Discard)
		return logger
	}
	logger.SetLevel(lvl)
	logger.SetOutput(out)
	return logger
}
