// Package logging builds the application's logrus logger.  Every entry
// carries a timestamp, level and caller location; warnings and errors are
// additionally appended to a file so faults survive container restarts.
package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Options configures New.
type Options struct {
	Env   string // "dev" selects the text formatter, anything else JSON
	Level string // logrus level name, defaults to info
	File  string // path receiving warn+ entries; empty disables the sink
}

// New returns a logger writing to stdout and, when opts.File is set, to
// that file for warnings and above.  The returned closer releases the
// file and is never nil.
func New(opts Options) (*logrus.Logger, io.Closer, error) {
	log := logrus.New()
	log.SetOutput(os.Stdout)
	log.SetReportCaller(true)

	if opts.Env == "dev" {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		log.SetFormatter(&logrus.JSONFormatter{})
	}

	level := logrus.InfoLevel
	if opts.Level != "" {
		parsed, err := logrus.ParseLevel(opts.Level)
		if err != nil {
			return nil, nopCloser{}, fmt.Errorf("parse log level: %w", err)
		}
		level = parsed
	}
	log.SetLevel(level)

	if opts.File == "" {
		return log, nopCloser{}, nil
	}
	f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nopCloser{}, fmt.Errorf("open log file: %w", err)
	}
	log.AddHook(&fileHook{
		w:         f,
		formatter: &logrus.TextFormatter{FullTimestamp: true, DisableColors: true},
		levels:    []logrus.Level{logrus.PanicLevel, logrus.FatalLevel, logrus.ErrorLevel, logrus.WarnLevel},
	})
	return log, f, nil
}

// fileHook copies selected levels to a writer using its own formatter.
type fileHook struct {
	w         io.Writer
	formatter logrus.Formatter
	levels    []logrus.Level
}

func (h *fileHook) Levels() []logrus.Level { return h.levels }

func (h *fileHook) Fire(e *logrus.Entry) error {
	line, err := h.formatter.Format(e)
	if err != nil {
		return err
	}
	_, err = h.w.Write(line)
	return err
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
