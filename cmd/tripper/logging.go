package main

import (
	"context"
	"io"

	"go.opentelemetry.io/otel/exporters/stdout/stdoutlog"
	"go.opentelemetry.io/otel/log/global"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

// setupLogging routes package loggers to w when debug is set. Without it the
// global no-op provider drops every record.
func setupLogging(w io.Writer, debug bool) func(context.Context) error {
	if !debug {
		return func(context.Context) error { return nil }
	}

	exporter, err := stdoutlog.New(stdoutlog.WithWriter(w))
	if err != nil {
		return func(context.Context) error { return nil }
	}
	provider := sdklog.NewLoggerProvider(
		sdklog.WithProcessor(sdklog.NewSimpleProcessor(exporter)),
	)
	global.SetLoggerProvider(provider)
	return provider.Shutdown
}
