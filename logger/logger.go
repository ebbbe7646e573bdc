package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Options configures the global logrus logger
type Options struct {
	Level  string
	File   string
	Format string
}

// InitLogger configures the standard logrus logger. Output goes to
// opts.File when it can be opened and to stdout otherwise. The returned
// closer releases the log file, if any.
func InitLogger(opts Options) io.Closer {
	var closer io.Closer = nopCloser{}

	logrus.SetOutput(os.Stdout)
	if opts.File != "" {
		logFile, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			logrus.Warnf("Failed to open log file (%s), using stdout: %v", opts.File, err)
		} else {
			logrus.SetOutput(logFile)
			closer = logFile
		}
	}

	if opts.Format == "text" {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}

	level, err := logrus.ParseLevel(opts.Level)
	if err != nil {
		logrus.Warnf("Unknown log level %q, falling back to info", opts.Level)
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	logrus.WithField("level", level.String()).Info("Logger initialized")
	return closer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
