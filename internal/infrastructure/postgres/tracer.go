package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var _ pgx.QueryTracer = (*queryTracer)(nil)

// queryTracer abre un span por consulta y avisa las que superan slow.
type queryTracer struct {
	log    zerolog.Logger
	slow   time.Duration
	tracer trace.Tracer
	now    func() time.Time
}

type queryKey struct{}

type queryInfo struct {
	start time.Time
	op    string
	sql   string
	span  trace.Span
}

func newQueryTracer(log zerolog.Logger, slow time.Duration) *queryTracer {
	return &queryTracer{
		log:    log,
		slow:   slow,
		tracer: otel.Tracer("pedidos-api/postgres"),
		now:    time.Now,
	}
}

func (t *queryTracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	op := sqlOperation(data.SQL)
	ctx, span := t.tracer.Start(ctx, "db."+strings.ToLower(op),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", "postgresql"),
			attribute.String("db.operation", op),
		),
	)
	return context.WithValue(ctx, queryKey{}, &queryInfo{start: t.now(), op: op, sql: data.SQL, span: span})
}

func (t *queryTracer) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	info, ok := ctx.Value(queryKey{}).(*queryInfo)
	if !ok {
		return
	}
	defer info.span.End()

	elapsed := t.now().Sub(info.start)
	info.span.SetAttributes(attribute.Int64("db.rows_affected", data.CommandTag.RowsAffected()))
	if data.Err != nil && !errors.Is(data.Err, pgx.ErrNoRows) {
		info.span.RecordError(data.Err)
		info.span.SetStatus(codes.Error, data.Err.Error())
	}
	if t.slow > 0 && elapsed >= t.slow {
		t.log.Warn().
			Str("op", info.op).
			Dur("elapsed", elapsed).
			Str("sql", compactSQL(info.sql)).
			Msg("consulta lenta")
	}
}

// sqlOperation primera palabra de la sentencia en mayúsculas (SELECT, INSERT, ...).
func sqlOperation(sql string) string {
	fields := strings.Fields(sql)
	for _, f := range fields {
		if strings.HasPrefix(f, "--") {
			continue
		}
		return strings.ToUpper(f)
	}
	return "UNKNOWN"
}

func compactSQL(sql string) string {
	s := strings.Join(strings.Fields(sql), " ")
	if len(s) > 200 {
		return s[:200] + "..."
	}
	return s
}
