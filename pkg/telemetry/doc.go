// Package telemetry provides observability instrumentation for confgate.
//
// The telemetry package integrates structured logging (zerolog), tracing
// (OpenTelemetry), metrics (Prometheus), and event publishing into a unified
// system for monitoring config checks and schema reloads.
//
// # Architecture
//
// The telemetry system is built on four pillars:
//
//  1. Structured Logging - Context-aware logging with zerolog
//  2. Tracing - OpenTelemetry spans around checks and reloads
//  3. Metrics Collection - Prometheus metrics for operational insights
//  4. Event Publishing - Event stream for check results and reloads
//
// Violations themselves are data, not telemetry: the validator returns them
// and never logs. This package instruments the machinery around validation,
// not its verdicts.
//
// # Usage
//
// Initialize telemetry at application startup:
//
//	cfg := telemetry.DefaultConfig()
//	cfg.ServiceVersion = "1.0.0"
//
//	tel, err := telemetry.NewTelemetry(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer tel.Shutdown(context.Background())
//
//	ctx := tel.WithContext(context.Background())
//
// # Structured Logging
//
// The logger provides component-specific logging with automatic context
// propagation:
//
//	logger := tel.Logger.NewComponentLogger("gate")
//	logger = logger.WithCheckID("c-123").WithDocument("clusterman")
//	logger.Info("Check started")
//	logger.WithError(err).Error("Schema reload failed")
//
// Log levels: trace, debug, info, warn, error, fatal
//
// # Tracing
//
// Spans wrap each check and each schema load:
//
//	ctx, span := tel.Tracer.StartCheckSpan(ctx, checkID, document, path)
//	defer span.End()
//
//	span.SetAttributes(telemetry.AttrViolationCount.Int(len(report)))
//
//	if err != nil {
//	    telemetry.RecordError(span, err)
//	}
//
// Supported exporters: stdout (development), none (spans generated but not
// exported).
//
// # Metrics
//
// Prometheus metrics track validation behavior:
//
//	tel.Metrics.RecordValidation("clusterman", report.Valid(), duration)
//	tel.Metrics.RecordViolations("clusterman", counts)
//	tel.Metrics.RecordSchemaReload(err == nil)
//	tel.Metrics.SetDocumentsLoaded(len(store.Documents()))
//
// Key metrics exposed:
//
//   - confgate_validations_total{document,result}
//   - confgate_violations_total{document,kind}
//   - confgate_validation_duration_seconds{document}
//   - confgate_schema_reloads_total{result}
//   - confgate_documents_loaded
//   - confgate_watch_events_total{op}
//
// Metrics are exposed via HTTP at /metrics (default: :9102/metrics).
//
// # Event Publishing
//
// The event system publishes check results and schema lifecycle events with
// buffering and filtering:
//
//	tel.Events.PublishCheckStarted(checkID, document, path)
//	tel.Events.PublishCheckFailed(checkID, document, path, len(report))
//	tel.Events.PublishSchemasLoaded(dir, documents)
//
//	tel.Events.Subscribe(func(event telemetry.Event) {
//	    fmt.Printf("Event: %s - %s\n", event.Type, event.Message)
//	}, telemetry.FilterByLevel("warning"))
//
// Event filters: FilterByLevel, FilterByType, FilterByCheckID,
// FilterByDocument.
//
// # Graceful Shutdown
//
// Always shut down telemetry gracefully to flush pending data:
//
//	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
//	defer cancel()
//
//	if err := tel.Shutdown(ctx); err != nil {
//	    log.Printf("Telemetry shutdown error: %v", err)
//	}
package telemetry
