package gate

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"gopkg.in/yaml.v3"

	"github.com/confgate/confgate/pkg/formats"
	"github.com/confgate/confgate/pkg/schema"
	"github.com/confgate/confgate/pkg/telemetry"
	"github.com/confgate/confgate/pkg/validate"
)

// Gate loads a schema set from a directory and checks config files against
// it. The store swaps atomically on reload, so checks in flight finish
// against the store they started with and a failed reload keeps the previous
// schema set serving.
type Gate struct {
	cfg     *Config
	tel     *telemetry.Telemetry
	logger  *telemetry.Logger
	formats *formats.Registry

	mu        sync.RWMutex
	store     *schema.Store
	validator *validate.Validator
	watcher   *fsnotify.Watcher
}

// Option configures a Gate.
type Option func(*Gate)

// WithTelemetry supplies the telemetry bundle. New builds a default one
// otherwise.
func WithTelemetry(tel *telemetry.Telemetry) Option {
	return func(g *Gate) {
		g.tel = tel
	}
}

// WithFormats overrides the format-checker registry schemas load against.
func WithFormats(reg *formats.Registry) Option {
	return func(g *Gate) {
		g.formats = reg
	}
}

// New creates a gate and performs the initial schema load. A gate whose
// schemas fail to load is never returned: the caller gets the load error
// instead.
func New(cfg *Config, opts ...Option) (*Gate, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	g := &Gate{cfg: cfg, formats: formats.Default()}
	for _, opt := range opts {
		opt(g)
	}

	if g.tel == nil {
		tel, err := telemetry.NewTelemetry(telemetry.DefaultConfig())
		if err != nil {
			return nil, fmt.Errorf("init telemetry: %w", err)
		}
		g.tel = tel
	}
	g.logger = g.tel.Logger.NewComponentLogger("gate")

	if err := g.Reload(context.Background()); err != nil {
		return nil, err
	}
	return g, nil
}

// Reload reads the schema directory and swaps in a freshly loaded store. On
// failure the previous store, if any, stays in place.
func (g *Gate) Reload(ctx context.Context) error {
	ic := telemetry.StartOperation(g.tel.WithContext(ctx), "schemas.load",
		telemetry.AttrSchemaDir.String(g.cfg.SchemaDir))

	store, err := g.loadStore()
	if err != nil {
		ic.End(err)
		g.tel.Metrics.RecordSchemaReload(false)
		g.tel.Events.PublishReloadFailed(g.cfg.SchemaDir, err.Error())
		ic.Logger.WithError(err).Error("Schema load failed")
		return err
	}

	g.mu.Lock()
	g.store = store
	g.validator = validate.New(store, g.checkOptions()...)
	g.mu.Unlock()

	ic.End(nil)
	g.tel.Metrics.RecordSchemaReload(true)
	g.tel.Metrics.SetDocumentsLoaded(len(store.Documents()))
	g.tel.Events.PublishSchemasLoaded(g.cfg.SchemaDir, len(store.Documents()))
	ic.Logger.Infof("Loaded %d schema documents from %s", len(store.Documents()), g.cfg.SchemaDir)
	return nil
}

func (g *Gate) loadStore() (*schema.Store, error) {
	documents, err := readSchemaDir(g.cfg.SchemaDir)
	if err != nil {
		return nil, err
	}
	return schema.Load(documents, schema.WithFormats(g.formats))
}

func (g *Gate) checkOptions() []validate.Option {
	if g.cfg.ClosedObjects {
		return []validate.Option{validate.WithClosedObjects()}
	}
	return nil
}

// documentExtensions are the file extensions read as schema documents and
// config files. JSON parses as YAML, so one decoder covers both.
var documentExtensions = map[string]bool{
	".yaml": true,
	".yml":  true,
	".json": true,
}

// readSchemaDir reads every schema file directly under dir, keyed by file
// name without extension. Two files mapping to the same document name is an
// error rather than a silent overwrite.
func readSchemaDir(dir string) (map[string][]byte, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read schema dir: %w", err)
	}

	documents := make(map[string][]byte)
	sources := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if !documentExtensions[ext] {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ext)
		full := filepath.Join(dir, entry.Name())
		if prev, ok := sources[name]; ok {
			return nil, fmt.Errorf("schema document %q defined by both %s and %s", name, prev, full)
		}
		data, err := os.ReadFile(full)
		if err != nil {
			return nil, fmt.Errorf("read schema %s: %w", full, err)
		}
		documents[name] = data
		sources[name] = full
	}

	if len(documents) == 0 {
		return nil, fmt.Errorf("no schema documents in %s", dir)
	}
	return documents, nil
}

// Result is the outcome of checking one config file. Err is set when the
// check itself could not run (unreadable file, malformed YAML, schema
// integrity error); violations found in a readable file are not an error
// and land in Report.
type Result struct {
	CheckID  string          `json:"check_id"`
	Path     string          `json:"path"`
	Document string          `json:"document"`
	Report   validate.Report `json:"report"`
	Err      error           `json:"-"`
	Duration time.Duration   `json:"duration"`
}

// Passed reports whether the check ran and found no violations.
func (r *Result) Passed() bool {
	return r.Err == nil && r.Report.Valid()
}

// Check validates one config file against the root document.
func (g *Gate) Check(ctx context.Context, path string) Result {
	checkID := uuid.New().String()
	result := Result{CheckID: checkID, Path: path, Document: g.cfg.RootDocument}

	_, span := g.tel.Tracer.StartCheckSpan(ctx, checkID, g.cfg.RootDocument, path)
	defer span.End()
	timer := telemetry.NewTimer()
	logger := g.logger.WithCheckID(checkID).WithConfigPath(path)

	g.tel.Events.PublishCheckStarted(checkID, g.cfg.RootDocument, path)

	data, err := os.ReadFile(path)
	if err != nil {
		return g.failCheck(result, logger, span, timer, fmt.Errorf("read config: %w", err))
	}

	var instance any
	if err := yaml.Unmarshal(data, &instance); err != nil {
		return g.failCheck(result, logger, span, timer, fmt.Errorf("parse config: %w", err))
	}

	g.mu.RLock()
	v := g.validator
	g.mu.RUnlock()

	report, err := v.ValidateDocument(instance, g.cfg.RootDocument)
	if err != nil {
		return g.failCheck(result, logger, span, timer, err)
	}

	result.Report = report
	result.Duration = timer.Duration()

	g.tel.Metrics.RecordValidation(g.cfg.RootDocument, report.Valid(), result.Duration)
	g.tel.Metrics.RecordViolations(g.cfg.RootDocument, kindCounts(report))
	telemetry.SetAttributes(span, telemetry.AttrViolationCount.Int(len(report)))
	telemetry.RecordSuccess(span)

	if report.Valid() {
		telemetry.SetAttributes(span, telemetry.AttrResult.String("valid"))
		g.tel.Events.PublishCheckPassed(checkID, g.cfg.RootDocument, path, result.Duration)
		logger.Info("Check passed")
	} else {
		telemetry.SetAttributes(span, telemetry.AttrResult.String("invalid"))
		g.tel.Events.PublishCheckFailed(checkID, g.cfg.RootDocument, path, len(report))
		logger.Warnf("Check failed with %d violations", len(report))
	}
	return result
}

func (g *Gate) failCheck(result Result, logger *telemetry.Logger, span trace.Span, timer *telemetry.Timer, err error) Result {
	result.Err = err
	result.Duration = timer.Duration()
	telemetry.RecordError(span, err)
	telemetry.SetAttributes(span, telemetry.AttrResult.String("error"))
	g.tel.Events.PublishCheckError(result.CheckID, result.Path, err.Error())
	logger.WithError(err).Error("Check errored")
	return result
}

// CheckAll checks every config file named by the configured paths, in
// sorted path order. Directories are walked for YAML and JSON files.
func (g *Gate) CheckAll(ctx context.Context) ([]Result, error) {
	paths, err := expandConfigPaths(g.cfg.ConfigPaths)
	if err != nil {
		return nil, err
	}
	results := make([]Result, 0, len(paths))
	for _, p := range paths {
		results = append(results, g.Check(ctx, p))
	}
	return results, nil
}

func expandConfigPaths(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("config path %s: %w", p, err)
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		walkErr := filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && documentExtensions[filepath.Ext(path)] {
				files = append(files, path)
			}
			return nil
		})
		if walkErr != nil {
			return nil, fmt.Errorf("walk config path %s: %w", p, walkErr)
		}
	}
	sort.Strings(files)
	return files, nil
}

// Store returns the currently loaded schema store.
func (g *Gate) Store() *schema.Store {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.store
}

// Documents returns the names of the currently loaded schema documents.
func (g *Gate) Documents() []string {
	return g.Store().Documents()
}

// Telemetry returns the gate's telemetry bundle.
func (g *Gate) Telemetry() *telemetry.Telemetry {
	return g.tel
}

func kindCounts(report validate.Report) map[string]int {
	counts := report.Counts()
	if len(counts) == 0 {
		return nil
	}
	out := make(map[string]int, len(counts))
	for kind, n := range counts {
		out[string(kind)] = n
	}
	return out
}
