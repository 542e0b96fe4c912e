package dicomlog

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestSetLevelFiltersBelowThreshold(t *testing.T) {
	orig := CurrentLevel()
	defer SetLevel(orig)

	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	origLogger := std
	SetLogger(logger)
	defer SetLogger(origLogger)

	SetLevel(WARNING)
	Debugf("should not appear")
	if buf.Len() != 0 {
		t.Fatalf("Debugf logged at WARNING threshold: %q", buf.String())
	}

	Warningf("should appear: %d", 7)
	if !bytes.Contains(buf.Bytes(), []byte("should appear: 7")) {
		t.Fatalf("Warningf did not log, got %q", buf.String())
	}
}

func TestSetLevelAllowsDebug(t *testing.T) {
	orig := CurrentLevel()
	defer SetLevel(orig)

	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	origLogger := std
	SetLogger(logger)
	defer SetLogger(origLogger)

	SetLevel(DEBUG)
	Debugf("visible now")
	if !bytes.Contains(buf.Bytes(), []byte("visible now")) {
		t.Fatalf("Debugf did not log at DEBUG threshold, got %q", buf.String())
	}
}

func TestCurrentLevelRoundTrips(t *testing.T) {
	orig := CurrentLevel()
	defer SetLevel(orig)

	SetLevel(ERROR)
	if CurrentLevel() != ERROR {
		t.Fatalf("CurrentLevel() = %v, want ERROR", CurrentLevel())
	}
}
