package pipeline

import (
	"bytes"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInfof_NoDoubleFormattingWithPercent(t *testing.T) {
	// Swap the base logger to capture output
	var buf bytes.Buffer
	saved := baseLogger
	baseLogger = log.New(&buf, "", 0)
	defer func() { baseLogger = saved }()

	SetLogLevel("info")

	msg := "file 03 int 0042 flux scale vmin=-200 vmax=1000 (97.3% of pixels good) mad=412ppm"
	Infof(msg)

	out := buf.String()
	if !strings.Contains(out, "(97.3% of pixels good)") {
		t.Fatalf("log output missing expected percent segment: %s", out)
	}
	if strings.Contains(out, "%!o(MISSING)") || strings.Contains(out, "%!f(MISSING)") {
		t.Fatalf("log output still shows fmt artifact: %s", out)
	}
}

func TestLevelFilteringAndNames(t *testing.T) {
	var buf bytes.Buffer
	saved := baseLogger
	baseLogger = log.New(&buf, "", 0)
	defer func() { baseLogger = saved }()

	SetLogLevel("warn")
	defer SetLogLevel("info")
	Debugf("hidden debug")
	Infof("hidden info")
	Warnf("shown warn")
	Errorf("shown error")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("messages below warn leaked to console: %s", out)
	}
	if !strings.Contains(out, "[WARN] shown warn") || !strings.Contains(out, "[ERROR] shown error") {
		t.Fatalf("warn/error lines missing or mislabeled: %s", out)
	}

	// Unknown level strings leave the level untouched.
	SetLogLevel("nonsense")
	if GetLogLevel() != LevelWarn {
		t.Fatalf("unknown level string changed level to %v", GetLogLevel())
	}
}

func TestRunLogMirrorReceivesFilteredLines(t *testing.T) {
	var buf bytes.Buffer
	saved := baseLogger
	baseLogger = log.New(&buf, "", 0)
	defer func() { baseLogger = saved }()

	dir := t.TempDir()
	if err := OpenRunLog(dir, "S3_run1"); err != nil {
		t.Fatalf("open run log: %v", err)
	}
	SetLogLevel("error")
	defer SetLogLevel("info")
	Infof("quiet on console, loud on disk")
	CloseRunLog()

	if strings.Contains(buf.String(), "quiet on console") {
		t.Fatalf("info line should not reach console at level=error: %s", buf.String())
	}
	b, err := os.ReadFile(filepath.Join(dir, "S3_run1.log"))
	if err != nil {
		t.Fatalf("read run log: %v", err)
	}
	if !strings.Contains(string(b), "[INFO] quiet on console, loud on disk") {
		t.Fatalf("run log missing mirrored line: %s", string(b))
	}
}
