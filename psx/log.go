package psx

import "fmt"

// Log levels, inclusive: a module set to LogDebug also reports info, warn
// and error messages.
type LogLevel int

const (
	LogOff LogLevel = iota
	LogInfo
	LogWarn
	LogError
	LogDebug
	LogTrace

	numLogLevels
)

// Emulator modules that can emit log messages, each with its own level.
type ModuleID int

const (
	ModCtx ModuleID = iota
	ModCpu
	ModDisasm
	ModBus
	ModBios
	ModTtyStdout

	numModules
)

// Log message text is bounded; anything longer is truncated.
const logMsgSizeMax = 512

var logLevelNames = [numLogLevels]string{
	LogOff:   "off",
	LogInfo:  "info",
	LogWarn:  "warn",
	LogError: "error",
	LogDebug: "debug",
	LogTrace: "trace",
}

var moduleNames = [numModules]string{
	ModCtx:       "ctx",
	ModCpu:       "cpu",
	ModDisasm:    "disasm",
	ModBus:       "bus",
	ModBios:      "bios",
	ModTtyStdout: "tty_stdout",
}

// A log message delivered to the host through the event callback.
type LogMessage struct {
	Module ModuleID
	Level  LogLevel
	Text   string
}

// Logger fans module-tagged messages out to the host event callback.
// There is no global logger; every component carries its module tag to
// the call site.
type Logger struct {
	modules [numModules]LogLevel

	eventCb EventCallback
}

// Apply the desired log level to all modules.
func (l *Logger) SetGlobalLevel(level LogLevel) {
	for i := range l.modules {
		l.modules[i] = level
	}
}

// Apply the desired log level to a specific module.
func (l *Logger) SetModuleLevel(id ModuleID, level LogLevel) {
	l.modules[id] = level
}

// Level of a specific module.
func (l *Logger) ModuleLevel(id ModuleID) LogLevel {
	return l.modules[id]
}

func (l *Logger) msgf(id ModuleID, level LogLevel, format string, args ...interface{}) {
	if l.modules[id] < level || l.eventCb == nil {
		return
	}

	text := fmt.Sprintf("[%s/%s] ", logLevelNames[level], moduleNames[id])
	text += fmt.Sprintf(format, args...)
	if len(text) > logMsgSizeMax {
		text = text[:logMsgSizeMax]
	}

	l.eventCb(EventLogMessage, &LogMessage{Module: id, Level: level, Text: text})
}
