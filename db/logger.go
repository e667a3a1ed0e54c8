package db

import (
	"context"
	"strings"

	"gorm.io/gorm/logger"
)

// redactingLogger keeps password hashes out of SQL logs
type redactingLogger struct {
	logger.Interface
}

func newRedactingLogger(base logger.Interface) logger.Interface {
	return &redactingLogger{Interface: base}
}

func (l *redactingLogger) LogMode(level logger.LogLevel) logger.Interface {
	return &redactingLogger{Interface: l.Interface.LogMode(level)}
}

// ParamsFilter is picked up by gorm before statements are printed
func (l *redactingLogger) ParamsFilter(_ context.Context, sql string, params ...any) (string, []any) {
	filtered := make([]any, len(params))
	for i, p := range params {
		filtered[i] = redact(p)
	}

	return sql, filtered
}

func redact(p any) any {
	s, ok := p.(string)
	if !ok {
		return p
	}

	if strings.HasPrefix(s, "$argon2") || strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$") {
		return "<redacted>"
	}

	return s
}
