package postgres

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type traceStartKey struct{}

// slowQueryTracer logs statements that run longer than threshold, and every
// failed statement at debug level.
type slowQueryTracer struct {
	threshold time.Duration
	logger    *zap.Logger
	now       func() time.Time
}

func (t *slowQueryTracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	return context.WithValue(ctx, traceStartKey{}, traceStart{at: t.now(), sql: data.SQL})
}

func (t *slowQueryTracer) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	start, ok := ctx.Value(traceStartKey{}).(traceStart)
	if !ok {
		return
	}
	elapsed := t.now().Sub(start.at)

	fields := []zap.Field{
		zap.String("sql", compactSQL(start.sql)),
		zap.Duration("elapsed", elapsed),
	}
	switch {
	case data.Err != nil:
		t.logger.Debug("query failed", append(fields, zap.Error(data.Err))...)
	case elapsed >= t.threshold:
		t.logger.Warn("slow query", append(fields, zap.Int64("rows", data.CommandTag.RowsAffected()))...)
	}
}

type traceStart struct {
	at  time.Time
	sql string
}

const maxLoggedSQL = 300

func compactSQL(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) > maxLoggedSQL {
		return s[:maxLoggedSQL] + "..."
	}
	return s
}
