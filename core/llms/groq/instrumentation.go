package groq

import (
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const scopeName = "github.com/koscakluka/tripper/core/llms/groq"

var (
	tracer = otel.Tracer(scopeName)
	meter  = otel.Meter(scopeName)
	logger = otelslog.NewLogger(scopeName)

	tokenCounter, _ = meter.Int64Counter("groq.tokens",
		metric.WithDescription("Tokens consumed by Groq completions"),
		metric.WithUnit("{token}"),
	)
)
