// Package dicomlog is the logging collaborator named in the design as an
// external concern: a callable sink accepting (level, message). It wraps
// logrus the way odincare-odicom/dicomlog wraps it, generalized from a
// single verbosity integer to the six named levels the design calls for.
package dicomlog

import (
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// Level mirrors the design's six log levels.
type Level int32

const (
	NOTSET   Level = 0
	DEBUG    Level = 10
	INFO     Level = 20
	WARNING  Level = 30
	ERROR    Level = 40
	CRITICAL Level = 50
)

var level int32 = int32(WARNING)

// SetLevel sets the minimum level that will be emitted. Thread safe.
func SetLevel(l Level) {
	atomic.StoreInt32(&level, int32(l))
}

// CurrentLevel returns the current minimum emitted level. Thread safe.
func CurrentLevel() Level {
	return Level(atomic.LoadInt32(&level))
}

var std = logrus.StandardLogger()

// SetLogger swaps the underlying logrus logger, e.g. to redirect output or
// attach structured fields. Not safe to call concurrently with Log.
func SetLogger(l *logrus.Logger) {
	std = l
}

// Log routes message to the logging collaborator at the given level. The
// core library calls this only at ERROR, WARNING and DEBUG per the design.
func Log(l Level, format string, args ...interface{}) {
	if l < CurrentLevel() {
		return
	}
	entry := std.WithField("level", int32(l))
	switch {
	case l >= CRITICAL:
		entry.Fatalf(format, args...)
	case l >= ERROR:
		entry.Errorf(format, args...)
	case l >= WARNING:
		entry.Warnf(format, args...)
	case l >= INFO:
		entry.Infof(format, args...)
	default:
		// Filtering already happened above; keep logrus's own threshold
		// (Info by default) from dropping the entry a second time.
		if !std.IsLevelEnabled(logrus.DebugLevel) {
			std.SetLevel(logrus.DebugLevel)
		}
		entry.Debugf(format, args...)
	}
}

func Debugf(format string, args ...interface{})   { Log(DEBUG, format, args...) }
func Warningf(format string, args ...interface{}) { Log(WARNING, format, args...) }
func Errorf(format string, args ...interface{})   { Log(ERROR, format, args...) }
