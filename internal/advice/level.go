package advice

import (
	"strings"

	"go.uber.org/zap/zapcore"
)

// Level — уровень важности записи, которую advice отдает в Sink.
type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

// ParseLevel нормализует строку из конфига (регистр не важен).
// Пустое или неизвестное значение (например, "TRACE") превращается в INFO.
func ParseLevel(s string) Level {
	switch l := Level(strings.ToUpper(strings.TrimSpace(s))); l {
	case LevelDebug, LevelInfo, LevelWarn, LevelError:
		return l
	default:
		return LevelInfo
	}
}

func (l Level) String() string {
	return string(l)
}

// ZapLevel маппит уровень на zapcore.Level.
func (l Level) ZapLevel() zapcore.Level {
	switch l {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
