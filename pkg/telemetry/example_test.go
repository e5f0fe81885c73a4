package telemetry_test

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/confgate/confgate/pkg/telemetry"
)

// Example_basicSetup demonstrates basic telemetry setup.
func Example_basicSetup() {
	cfg := telemetry.DefaultConfig()
	cfg.ServiceVersion = "1.0.0"

	tel, err := telemetry.NewTelemetry(cfg)
	if err != nil {
		panic(err)
	}
	defer tel.Shutdown(context.Background())

	// Add telemetry to context
	ctx := tel.WithContext(context.Background())

	// Use telemetry
	logger := telemetry.FromContext(ctx)
	logger.Debug("Gate initialized")

	fmt.Println("Telemetry ready")
	// Output: Telemetry ready
}

// Example_structuredLogging demonstrates structured logging features.
func Example_structuredLogging() {
	cfg := telemetry.DevelopmentConfig()
	cfg.Logging.Output = "stderr"

	tel, _ := telemetry.NewTelemetry(cfg)
	defer tel.Shutdown(context.Background())

	// Component-specific logger
	logger := tel.Logger.NewComponentLogger("gate")

	// Add context fields
	logger = logger.WithCheckID("c-123").WithDocument("clusterman")

	// Log at different levels
	logger.Debug("Loading config file")
	logger.Info("Check complete")

	// Log with error
	err := fmt.Errorf("schema directory unreadable")
	logger.WithError(err).Error("Reload failed")

	// Output varies, no output specified
}

// Example_tracing demonstrates span instrumentation around a check.
func Example_tracing() {
	cfg := telemetry.DefaultConfig()
	cfg.Tracing.Enabled = true
	cfg.Tracing.Exporter = "none"

	tel, _ := telemetry.NewTelemetry(cfg)
	defer tel.Shutdown(context.Background())

	ctx := tel.WithContext(context.Background())

	// Span for a schema load
	ctx, loadSpan := tel.Tracer.StartLoadSpan(ctx, "./schemas")
	loadSpan.End()

	// Span for one check
	_, span := tel.Tracer.StartCheckSpan(ctx, "c-123", "clusterman", "configs/prod.yaml")
	defer span.End()

	span.SetAttributes(
		telemetry.AttrViolationCount.Int(2),
		telemetry.AttrResult.String("invalid"),
	)
	telemetry.RecordSuccess(span)

	fmt.Println("Check instrumented")
	// Output: Check instrumented
}

// Example_metricsCollection demonstrates metrics collection.
func Example_metricsCollection() {
	cfg := telemetry.DefaultConfig()
	cfg.Metrics.Enabled = true

	tel, _ := telemetry.NewTelemetry(cfg)
	defer tel.Shutdown(context.Background())

	// Record validation outcomes
	tel.Metrics.RecordValidation("clusterman", true, 3*time.Millisecond)
	tel.Metrics.RecordValidation("clusterman", false, 5*time.Millisecond)

	// Record per-kind violation counts
	tel.Metrics.RecordViolations("clusterman", map[string]int{
		"unexpected_property": 1,
		"bound_violation":     2,
	})

	// Record schema set state
	tel.Metrics.RecordSchemaReload(true)
	tel.Metrics.SetDocumentsLoaded(4)

	fmt.Println("Metrics recorded successfully")
	// Output: Metrics recorded successfully
}

// Example_eventPublishing demonstrates event publishing and subscription.
func Example_eventPublishing() {
	cfg := telemetry.DefaultConfig()
	cfg.Events.Enabled = true
	cfg.Events.EnableAsync = false // Synchronous for example

	tel, _ := telemetry.NewTelemetry(cfg)
	defer tel.Shutdown(context.Background())

	// Subscribe to events
	tel.Events.Subscribe(func(event telemetry.Event) {
		fmt.Printf("Event: %s\n", event.Type)
	}, nil) // No filter, receive all events

	// Publish events
	tel.Events.PublishCheckStarted("c-1", "clusterman", "configs/prod.yaml")
	tel.Events.PublishCheckFailed("c-1", "clusterman", "configs/prod.yaml", 2)

	// Output:
	// Event: check.started
	// Event: check.failed
}

// Example_eventFiltering demonstrates event filtering.
func Example_eventFiltering() {
	cfg := telemetry.DefaultConfig()
	cfg.Events.Enabled = true
	cfg.Events.EnableAsync = false

	tel, _ := telemetry.NewTelemetry(cfg)
	defer tel.Shutdown(context.Background())

	// Subscribe with level filter (only warnings and errors)
	tel.Events.Subscribe(func(event telemetry.Event) {
		fmt.Printf("Important event: %s\n", event.Type)
	}, telemetry.FilterByLevel(telemetry.EventLevelWarning))

	// Publish various events
	tel.Events.PublishCheckStarted("c-1", "clusterman", "a.yaml") // Info - filtered
	tel.Events.PublishCheckPassed("c-1", "clusterman", "a.yaml", time.Millisecond) // Info - filtered
	tel.Events.PublishCheckFailed("c-2", "clusterman", "b.yaml", 3) // Warning - passes
	tel.Events.PublishReloadFailed("./schemas", "dangling reference") // Error - passes

	// Output:
	// Important event: check.failed
	// Important event: schemas.reload_failed
}

// Example_instrumentedOperation demonstrates the InstrumentedContext helper.
func Example_instrumentedOperation() {
	cfg := telemetry.DefaultConfig()
	tel, _ := telemetry.NewTelemetry(cfg)
	defer tel.Shutdown(context.Background())

	ctx := tel.WithContext(context.Background())

	// Start instrumented operation
	ic := telemetry.StartOperation(ctx, "schemas.load",
		attribute.String("schema.dir", "./schemas"),
	)
	defer ic.End(nil)

	// Use the instrumented context
	ic.Logger.Debug("Loading schema documents")

	fmt.Println("Operation instrumentation complete")
	// Output: Operation instrumentation complete
}

// Example_watchConfiguration demonstrates watch-mode configuration.
func Example_watchConfiguration() {
	cfg := telemetry.WatchConfig()

	// Customize for your environment
	cfg.ServiceVersion = "1.2.3"
	cfg.Environment = "production"
	cfg.Metrics.ListenAddress = ":9102"
	cfg.Events.BufferSize = 10000

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		panic(err)
	}

	fmt.Println("Watch configuration validated")
	// Output: Watch configuration validated
}
