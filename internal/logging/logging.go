// Package logging is the CLI's logger. Logs go to stderr so templates and
// JSON written to stdout stay machine-readable.
package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fatih/color"
)

type LogManager interface {
	SetVerboseLevel()
	SetDebugLevel()
	SetLevel(level string) error
	Debug(message interface{}, keyvals ...interface{})
	Info(message interface{}, keyvals ...interface{})
	Warn(message interface{}, keyvals ...interface{})
	Error(message interface{}, keyvals ...interface{})
	PrettyJSON(s interface{}) ([]byte, error)
	PrintRed(w io.Writer, s string)
	PrintGreen(w io.Writer, s string)
	PrintYellow(w io.Writer, s string)
}

type logManager struct {
	logger *log.Logger
}

const indentSpaces = 2

var (
	instance *logManager
	once     sync.Once
)

// GetLogManager returns the process-wide logger writing to stderr.
func GetLogManager() LogManager {
	once.Do(func() {
		instance = newLogManager(os.Stderr)
	})
	return instance
}

// NewLogManager returns a logger writing to w.
func NewLogManager(w io.Writer) LogManager {
	return newLogManager(w)
}

func newLogManager(w io.Writer) *logManager {
	return &logManager{
		logger: log.NewWithOptions(w, log.Options{
			CallerOffset:    1,
			Level:           log.WarnLevel,
			ReportCaller:    true,
			ReportTimestamp: true,
			TimeFormat:      time.RFC1123,
		}),
	}
}

func (lm *logManager) SetVerboseLevel() {
	lm.logger.SetLevel(log.InfoLevel)
}

func (lm *logManager) SetDebugLevel() {
	lm.logger.SetLevel(log.DebugLevel)
}

// SetLevel accepts debug, info, warn or error.
func (lm *logManager) SetLevel(level string) error {
	parsed, err := log.ParseLevel(strings.ToLower(level))
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	lm.logger.SetLevel(parsed)
	return nil
}

func (lm *logManager) Debug(message interface{}, keyvals ...interface{}) {
	lm.logger.Debug(message, keyvals...)
}

func (lm *logManager) Info(message interface{}, keyvals ...interface{}) {
	lm.logger.Info(message, keyvals...)
}

func (lm *logManager) Warn(message interface{}, keyvals ...interface{}) {
	lm.logger.Warn(message, keyvals...)
}

func (lm *logManager) Error(message interface{}, keyvals ...interface{}) {
	lm.logger.Error(message, keyvals...)
}

func (lm *logManager) PrettyJSON(s interface{}) ([]byte, error) {
	data, err := json.MarshalIndent(s, "", strings.Repeat(" ", indentSpaces))
	if err != nil {
		lm.Debug("marshal failed", "err", err)
		return nil, err
	}
	return data, nil
}

func (lm *logManager) PrintRed(w io.Writer, s string) {
	printColored(w, s, color.FgRed)
}

func (lm *logManager) PrintGreen(w io.Writer, s string) {
	printColored(w, s, color.FgGreen)
}

func (lm *logManager) PrintYellow(w io.Writer, s string) {
	printColored(w, s, color.FgYellow)
}

func printColored(w io.Writer, s string, c color.Attribute) {
	_, _ = color.New(c).Fprintln(w, s)
}
