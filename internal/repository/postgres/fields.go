package postgres

import (
	"time"

	"go.uber.org/zap"
)

func zapOp(op string) zap.Field {
	return zap.String("operation", op)
}

func zapMs(start time.Time) zap.Field {
	return zap.Duration("ms", time.Since(start))
}
