package telemetry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event represents a telemetry event in the confgate system.
type Event struct {
	// ID is the unique identifier for this event.
	ID string `json:"id"`

	// Timestamp is when the event occurred.
	Timestamp time.Time `json:"timestamp"`

	// Type is the event type.
	Type string `json:"type"`

	// Source identifies where the event originated.
	Source string `json:"source"`

	// CheckID is the associated check ID, if applicable.
	CheckID string `json:"check_id,omitempty"`

	// Document is the schema document the event concerns, if applicable.
	Document string `json:"document,omitempty"`

	// Path is the config file path the event concerns, if applicable.
	Path string `json:"path,omitempty"`

	// Message is a human-readable event message.
	Message string `json:"message"`

	// Level is the event severity level (info, warning, error).
	Level string `json:"level"`

	// Data contains additional event-specific data.
	Data map[string]interface{} `json:"data,omitempty"`
}

// EventType constants for common event types.
const (
	EventTypeCheckStarted   = "check.started"
	EventTypeCheckPassed    = "check.passed"
	EventTypeCheckFailed    = "check.failed"
	EventTypeCheckError     = "check.error"
	EventTypeSchemasLoaded  = "schemas.loaded"
	EventTypeReloadFailed   = "schemas.reload_failed"
	EventTypeWatchTriggered = "watch.triggered"
)

// EventLevel constants for event severity.
const (
	EventLevelInfo    = "info"
	EventLevelWarning = "warning"
	EventLevelError   = "error"
)

// EventSubscriber is a function that handles events.
type EventSubscriber func(event Event)

// EventFilter determines if an event should be processed.
type EventFilter func(event Event) bool

// EventPublisher manages event publishing and subscriptions.
type EventPublisher struct {
	config      EventsConfig
	buffer      chan Event
	subscribers []subscriberEntry
	filters     []EventFilter
	wg          sync.WaitGroup
	mu          sync.RWMutex
	ctx         context.Context
	cancel      context.CancelFunc
}

type subscriberEntry struct {
	subscriber EventSubscriber
	filter     EventFilter
}

// NewEventPublisher creates a new event publisher with the given configuration.
func NewEventPublisher(cfg EventsConfig) (*EventPublisher, error) {
	if !cfg.Enabled {
		return &EventPublisher{config: cfg}, nil
	}

	ctx, cancel := context.WithCancel(context.Background())

	ep := &EventPublisher{
		config:      cfg,
		buffer:      make(chan Event, cfg.BufferSize),
		subscribers: make([]subscriberEntry, 0),
		filters:     make([]EventFilter, 0),
		ctx:         ctx,
		cancel:      cancel,
	}

	// Start the event processing goroutine
	if cfg.EnableAsync {
		ep.wg.Add(1)
		go ep.processEvents()
	}

	return ep, nil
}

// Publish publishes an event to all subscribers.
func (ep *EventPublisher) Publish(event Event) error {
	if !ep.config.Enabled {
		return nil
	}

	// Set ID and timestamp if not already set
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	// Apply global filters
	ep.mu.RLock()
	for _, filter := range ep.filters {
		if !filter(event) {
			ep.mu.RUnlock()
			return nil // Event filtered out
		}
	}
	ep.mu.RUnlock()

	// Send to buffer if async, otherwise process immediately
	if ep.config.EnableAsync {
		select {
		case ep.buffer <- event:
			return nil
		case <-ep.ctx.Done():
			return fmt.Errorf("event publisher stopped")
		default:
			return fmt.Errorf("event buffer full, event dropped")
		}
	}

	// Synchronous publishing
	ep.deliverEvent(event)
	return nil
}

// PublishCheckStarted publishes a check started event.
func (ep *EventPublisher) PublishCheckStarted(checkID, document, path string) error {
	return ep.Publish(Event{
		Type:     EventTypeCheckStarted,
		Source:   "gate",
		CheckID:  checkID,
		Document: document,
		Path:     path,
		Message:  fmt.Sprintf("Check %s started for %s against %s", checkID, path, document),
		Level:    EventLevelInfo,
	})
}

// PublishCheckPassed publishes a passed-check event.
func (ep *EventPublisher) PublishCheckPassed(checkID, document, path string, duration time.Duration) error {
	return ep.Publish(Event{
		Type:     EventTypeCheckPassed,
		Source:   "gate",
		CheckID:  checkID,
		Document: document,
		Path:     path,
		Message:  fmt.Sprintf("Check %s passed for %s", checkID, path),
		Level:    EventLevelInfo,
		Data: map[string]interface{}{
			"duration": duration.Seconds(),
		},
	})
}

// PublishCheckFailed publishes a failed-check event. A failed check means
// the instance does not conform; the violation count rides in Data.
func (ep *EventPublisher) PublishCheckFailed(checkID, document, path string, violations int) error {
	return ep.Publish(Event{
		Type:     EventTypeCheckFailed,
		Source:   "gate",
		CheckID:  checkID,
		Document: document,
		Path:     path,
		Message:  fmt.Sprintf("Check %s failed for %s: %d violations", checkID, path, violations),
		Level:    EventLevelWarning,
		Data: map[string]interface{}{
			"violations": violations,
		},
	})
}

// PublishCheckError publishes an event for a check that could not run, such
// as a broken schema set or an unreadable config file.
func (ep *EventPublisher) PublishCheckError(checkID, path, reason string) error {
	return ep.Publish(Event{
		Type:    EventTypeCheckError,
		Source:  "gate",
		CheckID: checkID,
		Path:    path,
		Message: fmt.Sprintf("Check %s errored for %s: %s", checkID, path, reason),
		Level:   EventLevelError,
		Data: map[string]interface{}{
			"reason": reason,
		},
	})
}

// PublishSchemasLoaded publishes a schema set load event.
func (ep *EventPublisher) PublishSchemasLoaded(dir string, documents int) error {
	return ep.Publish(Event{
		Type:    EventTypeSchemasLoaded,
		Source:  "gate",
		Message: fmt.Sprintf("Loaded %d schema documents from %s", documents, dir),
		Level:   EventLevelInfo,
		Data: map[string]interface{}{
			"dir":       dir,
			"documents": documents,
		},
	})
}

// PublishReloadFailed publishes a failed schema reload event. The previous
// schema set stays active.
func (ep *EventPublisher) PublishReloadFailed(dir, reason string) error {
	return ep.Publish(Event{
		Type:    EventTypeReloadFailed,
		Source:  "gate",
		Message: fmt.Sprintf("Schema reload from %s failed, keeping previous set: %s", dir, reason),
		Level:   EventLevelError,
		Data: map[string]interface{}{
			"dir":    dir,
			"reason": reason,
		},
	})
}

// PublishWatchTriggered publishes a watch debounce-fire event.
func (ep *EventPublisher) PublishWatchTriggered(path, op string) error {
	return ep.Publish(Event{
		Type:    EventTypeWatchTriggered,
		Source:  "watcher",
		Path:    path,
		Message: fmt.Sprintf("Filesystem change %s on %s", op, path),
		Level:   EventLevelInfo,
		Data: map[string]interface{}{
			"op": op,
		},
	})
}

// Subscribe adds a new event subscriber.
func (ep *EventPublisher) Subscribe(subscriber EventSubscriber, filter EventFilter) {
	ep.mu.Lock()
	defer ep.mu.Unlock()

	ep.subscribers = append(ep.subscribers, subscriberEntry{
		subscriber: subscriber,
		filter:     filter,
	})
}

// AddFilter adds a global event filter.
func (ep *EventPublisher) AddFilter(filter EventFilter) {
	ep.mu.Lock()
	defer ep.mu.Unlock()

	ep.filters = append(ep.filters, filter)
}

// processEvents processes events from the buffer asynchronously.
func (ep *EventPublisher) processEvents() {
	defer ep.wg.Done()

	batch := make([]Event, 0, ep.config.MaxBatchSize)
	ticker := time.NewTicker(ep.flushInterval())
	defer ticker.Stop()

	for {
		select {
		case event := <-ep.buffer:
			batch = append(batch, event)

			// Flush batch if it reaches max size
			if len(batch) >= ep.config.MaxBatchSize {
				ep.flushBatch(batch)
				batch = make([]Event, 0, ep.config.MaxBatchSize)
			}

		case <-ticker.C:
			if len(batch) > 0 {
				ep.flushBatch(batch)
				batch = make([]Event, 0, ep.config.MaxBatchSize)
			}

		case <-ep.ctx.Done():
			// Flush remaining events before shutting down
			if len(batch) > 0 {
				ep.flushBatch(batch)
			}
			return
		}
	}
}

func (ep *EventPublisher) flushInterval() time.Duration {
	if ep.config.FlushInterval > 0 {
		return ep.config.FlushInterval
	}
	return time.Second
}

// flushBatch delivers a batch of events to subscribers.
func (ep *EventPublisher) flushBatch(events []Event) {
	for _, event := range events {
		ep.deliverEvent(event)
	}
}

// deliverEvent delivers an event to all subscribers.
func (ep *EventPublisher) deliverEvent(event Event) {
	ep.mu.RLock()
	defer ep.mu.RUnlock()

	for _, entry := range ep.subscribers {
		// Apply subscriber-specific filter
		if entry.filter != nil && !entry.filter(event) {
			continue
		}
		entry.subscriber(event)
	}
}

// Shutdown gracefully shuts down the event publisher.
func (ep *EventPublisher) Shutdown(ctx context.Context) error {
	if !ep.config.Enabled {
		return nil
	}

	// Signal shutdown
	ep.cancel()

	// Wait for processing to complete with timeout
	done := make(chan struct{})
	go func() {
		ep.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("event publisher shutdown timeout")
	}
}

// Common event filters.

// FilterByLevel creates a filter that only allows events of a specific level or higher.
func FilterByLevel(minLevel string) EventFilter {
	levels := map[string]int{
		EventLevelInfo:    0,
		EventLevelWarning: 1,
		EventLevelError:   2,
	}

	minLevelValue := levels[minLevel]

	return func(event Event) bool {
		return levels[event.Level] >= minLevelValue
	}
}

// FilterByType creates a filter that only allows events of specific types.
func FilterByType(types ...string) EventFilter {
	typeSet := make(map[string]bool)
	for _, t := range types {
		typeSet[t] = true
	}

	return func(event Event) bool {
		return typeSet[event.Type]
	}
}

// FilterByCheckID creates a filter that only allows events for a specific check.
func FilterByCheckID(checkID string) EventFilter {
	return func(event Event) bool {
		return event.CheckID == checkID
	}
}

// FilterByDocument creates a filter that only allows events for a specific
// schema document.
func FilterByDocument(document string) EventFilter {
	return func(event Event) bool {
		return event.Document == document
	}
}
