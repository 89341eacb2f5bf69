package notice

import (
	"github.com/rs/zerolog"
)

type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notice is a one-line message shown to the user alongside a response.
type Notice struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

// List collects the notices produced while handling one request. Identical
// notices are only recorded once. The zero value is ready to use.
type List struct {
	notices []Notice
}

// Add records a notice and reports whether it was new.
func (l *List) Add(level Level, message string) bool {
	n := Notice{Level: level, Message: message}
	for _, existing := range l.notices {
		if existing == n {
			return false
		}
	}
	l.notices = append(l.notices, n)
	return true
}

func (l *List) Success(message string) {
	l.Add(LevelSuccess, message)
}

func (l *List) Error(message string) {
	l.Add(LevelError, message)
}

// Degraded records an advisory for a lookup that failed but did not stop the
// request. The underlying error is logged since the notice stays generic.
func (l *List) Degraded(logger zerolog.Logger, err error, message string) {
	if l.Add(LevelWarning, message) {
		logger.Error().Err(err).Msg(message)
	}
}

// Notices returns a copy of the recorded notices in the order they were added.
func (l *List) Notices() []Notice {
	if l == nil {
		return []Notice{}
	}
	out := make([]Notice, len(l.notices))
	copy(out, l.notices)
	return out
}

func (l *List) Len() int {
	if l == nil {
		return 0
	}
	return len(l.notices)
}
