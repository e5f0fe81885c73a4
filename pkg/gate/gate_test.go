package gate

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/confgate/confgate/pkg/telemetry"
	"github.com/confgate/confgate/pkg/validate"
)

func quietTelemetry(t *testing.T) *telemetry.Telemetry {
	t.Helper()
	cfg := telemetry.DefaultConfig()
	cfg.Logging.Level = "error"
	cfg.Events.Enabled = false
	tel, err := telemetry.NewTelemetry(cfg)
	require.NoError(t, err)
	return tel
}

func testGate(t *testing.T) *Gate {
	t.Helper()
	cfg := &Config{
		SchemaDir:    "testdata/schemas",
		RootDocument: "clusterman",
		ConfigPaths:  []string{"testdata/configs"},
	}
	g, err := New(cfg, WithTelemetry(quietTelemetry(t)))
	require.NoError(t, err)
	return g
}

func TestNew_LoadsSchemas(t *testing.T) {
	g := testGate(t)
	assert.Equal(t, []string{"clusterman", "definitions", "shared"}, g.Documents())
}

func TestNew_InvalidConfig(t *testing.T) {
	_, err := New(&Config{SchemaDir: "testdata/schemas"}, WithTelemetry(quietTelemetry(t)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid gate config")
}

func TestNew_MissingSchemaDir(t *testing.T) {
	cfg := &Config{SchemaDir: filepath.Join(t.TempDir(), "nope"), RootDocument: "clusterman"}
	_, err := New(cfg, WithTelemetry(quietTelemetry(t)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read schema dir")
}

func TestGate_Check_Valid(t *testing.T) {
	g := testGate(t)

	result := g.Check(context.Background(), "testdata/configs/prod.yaml")
	require.NoError(t, result.Err)
	assert.True(t, result.Passed())
	assert.Empty(t, result.Report)
	assert.Equal(t, "clusterman", result.Document)
	assert.NotEmpty(t, result.CheckID)
}

func TestGate_Check_Violations(t *testing.T) {
	g := testGate(t)

	result := g.Check(context.Background(), "testdata/configs/canary.yaml")
	require.NoError(t, result.Err)
	assert.False(t, result.Passed())
	require.Len(t, result.Report, 5)

	paths := make([]string, len(result.Report))
	kinds := make([]validate.ViolationKind, len(result.Report))
	for i, v := range result.Report {
		paths[i] = v.Path.String()
		kinds[i] = v.Kind
	}
	assert.Equal(t, []string{
		"alerting.page",
		"alerting.runbook",
		"autoscaling.max_weight_to_add",
		"autoscaling.setpoint",
		"aws_region",
	}, paths)
	assert.Equal(t, []validate.ViolationKind{
		validate.KindUnexpectedProperty,
		validate.KindFormatViolation,
		validate.KindBoundViolation,
		validate.KindBoundViolation,
		validate.KindEnumViolation,
	}, kinds)
}

func TestGate_Check_MissingFile(t *testing.T) {
	g := testGate(t)

	result := g.Check(context.Background(), "testdata/configs/nope.yaml")
	require.Error(t, result.Err)
	assert.False(t, result.Passed())
	assert.Nil(t, result.Report)
}

func TestGate_Check_MalformedYAML(t *testing.T) {
	g := testGate(t)
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cluster: [unclosed\n"), 0o644))

	result := g.Check(context.Background(), path)
	require.Error(t, result.Err)
	assert.Contains(t, result.Err.Error(), "parse config")
}

func TestGate_CheckAll(t *testing.T) {
	g := testGate(t)

	results, err := g.CheckAll(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, filepath.Join("testdata", "configs", "canary.yaml"), results[0].Path)
	assert.Equal(t, filepath.Join("testdata", "configs", "prod.yaml"), results[1].Path)
	assert.False(t, results[0].Passed())
	assert.True(t, results[1].Passed())
}

func TestGate_CheckAll_MissingPath(t *testing.T) {
	cfg := &Config{
		SchemaDir:    "testdata/schemas",
		RootDocument: "clusterman",
		ConfigPaths:  []string{filepath.Join(t.TempDir(), "nope")},
	}
	g, err := New(cfg, WithTelemetry(quietTelemetry(t)))
	require.NoError(t, err)

	_, err = g.CheckAll(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config path")
}

func TestGate_Reload_KeepsPreviousStoreOnFailure(t *testing.T) {
	tmpDir := t.TempDir()
	schemaDir := filepath.Join(tmpDir, "schemas")
	require.NoError(t, os.MkdirAll(schemaDir, 0o755))

	good := "schema:\n  type: object\n  properties:\n    replicas:\n      $ref: \"definitions#posint\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(schemaDir, "svc.yaml"), []byte(good), 0o644))

	cfg := &Config{SchemaDir: schemaDir, RootDocument: "svc"}
	g, err := New(cfg, WithTelemetry(quietTelemetry(t)))
	require.NoError(t, err)
	before := g.Store()

	// A dangling reference fails the reload and leaves the old set serving.
	bad := "schema:\n  $ref: \"nowhere#missing\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(schemaDir, "svc.yaml"), []byte(bad), 0o644))

	err = g.Reload(context.Background())
	require.Error(t, err)
	assert.Same(t, before, g.Store())

	configPath := filepath.Join(tmpDir, "app.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("replicas: 3\n"), 0o644))
	result := g.Check(context.Background(), configPath)
	require.NoError(t, result.Err)
	assert.True(t, result.Passed())
}

func TestGate_ClosedObjects(t *testing.T) {
	tmpDir := t.TempDir()
	schemaDir := filepath.Join(tmpDir, "schemas")
	require.NoError(t, os.MkdirAll(schemaDir, 0o755))

	open := "schema:\n  type: object\n  properties:\n    name:\n      type: string\n"
	require.NoError(t, os.WriteFile(filepath.Join(schemaDir, "svc.yaml"), []byte(open), 0o644))

	configPath := filepath.Join(tmpDir, "app.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("name: api\nextra: 1\n"), 0o644))

	cfg := &Config{SchemaDir: schemaDir, RootDocument: "svc"}
	g, err := New(cfg, WithTelemetry(quietTelemetry(t)))
	require.NoError(t, err)
	assert.True(t, g.Check(context.Background(), configPath).Passed())

	cfg = &Config{SchemaDir: schemaDir, RootDocument: "svc", ClosedObjects: true}
	g, err = New(cfg, WithTelemetry(quietTelemetry(t)))
	require.NoError(t, err)

	result := g.Check(context.Background(), configPath)
	require.Len(t, result.Report, 1)
	assert.Equal(t, validate.KindUnexpectedProperty, result.Report[0].Kind)
}

func TestReadSchemaDir_DuplicateDocument(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "svc.yaml"), []byte("schema:\n  type: object\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "svc.json"), []byte(`{"schema": {"type": "object"}}`), 0o644))

	_, err := readSchemaDir(tmpDir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `schema document "svc"`)
}

func TestReadSchemaDir_IgnoresOtherFiles(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "svc.yaml"), []byte("schema:\n  type: object\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "README.md"), []byte("# schemas\n"), 0o644))

	documents, err := readSchemaDir(tmpDir)
	require.NoError(t, err)
	require.Len(t, documents, 1)
	assert.Contains(t, documents, "svc")
}

func TestGate_Watch_StartAndStop(t *testing.T) {
	g := testGate(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, g.Watch(ctx, func(Result) {}))
	g.StopWatching()
}
