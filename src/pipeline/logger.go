package pipeline

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// LogLevel represents severity.
type LogLevel int32

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = map[string]LogLevel{
	"debug":   LevelDebug,
	"info":    LevelInfo,
	"warn":    LevelWarn,
	"warning": LevelWarn,
	"error":   LevelError,
}

var currentLevel int32 = int32(LevelInfo)

var baseLogger = log.New(os.Stderr, "", log.Ldate|log.Ltime|log.Lmicroseconds)

// runLog mirrors every line (regardless of console level) into a per-run log
// file so a reduction run leaves a complete trace next to its figures.
var (
	runLogMu sync.Mutex
	runLog   *os.File
)

// SetLogLevel parses and sets the global console log level.
func SetLogLevel(s string) {
	l, ok := levelNames[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return
	}
	atomic.StoreInt32(&currentLevel, int32(l))
}

func getLevel() LogLevel { return LogLevel(atomic.LoadInt32(&currentLevel)) }

// GetLogLevel returns the current global console log level (exported for
// conditional debug logic outside the package).
func GetLogLevel() LogLevel { return getLevel() }

// OpenRunLog opens (appending) the run log file <dir>/<tag>.log and mirrors
// all subsequent log lines into it. The console filter does not apply to the
// mirror: the file receives every line. An empty tag falls back to
// "quicklook", matching Meta.LogPath.
func OpenRunLog(dir, tag string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}
	if tag == "" {
		tag = "quicklook"
	}
	path := filepath.Join(dir, tag+".log")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open run log: %w", err)
	}
	runLogMu.Lock()
	if runLog != nil {
		runLog.Close()
	}
	runLog = f
	runLogMu.Unlock()
	return nil
}

// CloseRunLog stops mirroring and closes the run log file, if any.
func CloseRunLog() {
	runLogMu.Lock()
	defer runLogMu.Unlock()
	if runLog != nil {
		runLog.Close()
		runLog = nil
	}
}

func mirrorLine(prefix, msg string) {
	runLogMu.Lock()
	defer runLogMu.Unlock()
	if runLog == nil {
		return
	}
	ts := time.Now().Format("2006/01/02 15:04:05.000000")
	fmt.Fprintf(runLog, "%s [%s] %s\n", ts, prefix, msg)
}

func logf(l LogLevel, format string, args ...interface{}) {
	prefix := "INFO"
	switch l {
	case LevelDebug:
		prefix = "DEBUG"
	case LevelWarn:
		prefix = "WARN"
	case LevelError:
		prefix = "ERROR"
	}
	// Only format when there are args; otherwise treat the input as a plain
	// message to avoid fmt parsing literal % characters in already formatted
	// strings (which would yield %!x(MISSING)).
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	mirrorLine(prefix, msg)
	if getLevel() > l {
		return
	}
	baseLogger.Printf("[%s] %s", prefix, msg)
}

// Public helpers
func Debugf(format string, a ...interface{}) { logf(LevelDebug, format, a...) }
func Infof(format string, a ...interface{})  { logf(LevelInfo, format, a...) }
func Warnf(format string, a ...interface{})  { logf(LevelWarn, format, a...) }
func Errorf(format string, a ...interface{}) { logf(LevelError, format, a...) }

// Timing helper for phases.
func TimeTrack(start time.Time, label string) {
	dur := time.Since(start)
	Debugf("%s took %s", label, dur)
}
