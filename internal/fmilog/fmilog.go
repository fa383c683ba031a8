// Package fmilog wraps the FMI host's callback-based logging function with
// the category filter spec.md 4.F describes. It is independent of the
// shim's own operational log (internal/logger): this one speaks to the
// simulation host, that one speaks to stdout.
package fmilog

import "sync"

// Severity mirrors the FMI status levels a log message can carry.
type Severity uint8

const (
	SeverityOK      Severity = 0
	SeverityWarning Severity = 1
	SeverityError   Severity = 3
	SeverityFatal   Severity = 4
)

// Callback is the shape of the host-supplied logging function: instance
// name, category, severity, and message.
type Callback func(instanceName, category string, severity Severity, message string)

// Logger filters messages by category and a master on/off switch before
// forwarding them to the host's Callback, per spec.md 4.F: "a message is
// delivered to the host iff master is on and its category is enabled."
type Logger struct {
	mu                   sync.RWMutex
	cb                   Callback
	instanceName         string
	masterOn             bool
	enabled              map[string]bool
	// allCategoriesDefault governs categories never explicitly named: after
	// a zero-category SetDebugLogging call, any category introduced later
	// defaults to this value.
	allCategoriesDefault bool
}

// New wraps cb for the named instance. Master logging starts at masterOn,
// which callers pass from fmi2Instantiate's logging_on parameter.
func New(instanceName string, masterOn bool, cb Callback) *Logger {
	return &Logger{cb: cb, instanceName: instanceName, masterOn: masterOn, enabled: map[string]bool{}}
}

// SetDebugLogging implements spec.md 4.F's filtering policy exactly: zero
// categories + master on enables all; zero categories + master off disables
// all; a non-empty list toggles only the named categories, accepting
// unrecognized names verbatim (vendor-specific categories are permitted by
// the FMI standard).
func (l *Logger) SetDebugLogging(masterOn bool, categories []string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.masterOn = masterOn
	if len(categories) == 0 {
		for k := range l.enabled {
			l.enabled[k] = masterOn
		}
		l.allCategoriesDefault = masterOn
		return
	}
	for _, c := range categories {
		l.enabled[c] = true
	}
}

func (l *Logger) isEnabled(category string) bool {
	if v, ok := l.enabled[category]; ok {
		return v
	}
	return l.allCategoriesDefault
}

// Log delivers message to the host iff the master switch is on and category
// is enabled.
func (l *Logger) Log(category string, severity Severity, message string) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if !l.masterOn || !l.isEnabled(category) {
		return
	}
	if l.cb == nil {
		return
	}
	l.cb(l.instanceName, category, severity, message)
}

func (l *Logger) OK(category, message string)      { l.Log(category, SeverityOK, message) }
func (l *Logger) Warning(category, message string) { l.Log(category, SeverityWarning, message) }
func (l *Logger) Error(category, message string)   { l.Log(category, SeverityError, message) }
func (l *Logger) Fatal(category, message string)   { l.Log(category, SeverityFatal, message) }
