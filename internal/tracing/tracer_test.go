package tracing

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	require.False(t, cfg.Enabled, "tracing should be disabled by default")
	require.Equal(t, "file", cfg.Exporter)
	require.Equal(t, "localhost:4317", cfg.OTLPEndpoint)
	require.Equal(t, 1.0, cfg.SampleRate)
	require.Equal(t, "sakuga", cfg.ServiceName)
}

func TestNewProvider_Disabled(t *testing.T) {
	provider, err := NewProvider(Config{})
	require.NoError(t, err)
	require.False(t, provider.Enabled())

	ctx, span := provider.Tracer().Start(context.Background(), SpanRender)
	require.NotNil(t, ctx)
	require.False(t, span.SpanContext().IsValid(), "no-op spans carry no context")
	span.End()

	require.NoError(t, provider.Shutdown(context.Background()))
}

func TestNewProvider_FileExporterWritesSpans(t *testing.T) {
	path := filepath.Join(t.TempDir(), "traces", "render.jsonl")
	provider, err := NewProvider(Config{Enabled: true, Exporter: "file", FilePath: path})
	require.NoError(t, err)
	require.True(t, provider.Enabled())

	ctx, parent := provider.Tracer().Start(context.Background(), SpanRender)
	_, child := provider.Tracer().Start(ctx, SpanMeasure)
	child.SetAttributes(attribute.Int(AttrBlockIndex, 2))
	child.AddEvent(EventScenesMeasured)
	child.SetStatus(codes.Error, "tokenizer failed")
	child.End()
	parent.End()

	require.NoError(t, provider.Shutdown(context.Background()))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	records := map[string]SpanRecord{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var r SpanRecord
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &r))
		records[r.Name] = r
	}
	require.NoError(t, scanner.Err())
	require.Len(t, records, 2)

	measure := records[SpanMeasure]
	require.Equal(t, records[SpanRender].SpanID, measure.ParentID)
	require.Equal(t, records[SpanRender].TraceID, measure.TraceID)
	require.Equal(t, "ERROR", measure.Status)
	require.Equal(t, "tokenizer failed", measure.StatusMsg)
	require.EqualValues(t, 2, measure.Attributes[AttrBlockIndex])
	require.Equal(t, []string{EventScenesMeasured}, measure.Events)
	require.Empty(t, records[SpanRender].ParentID)
}

func TestNewProvider_Errors(t *testing.T) {
	_, err := NewProvider(Config{Enabled: true, Exporter: "file"})
	require.ErrorContains(t, err, "file_path required")

	_, err = NewProvider(Config{Enabled: true, Exporter: "zipkin"})
	require.ErrorContains(t, err, "unsupported exporter type")
}

func TestNewProvider_NoneExporter(t *testing.T) {
	provider, err := NewProvider(Config{Enabled: true, Exporter: "none", SampleRate: -1})
	require.NoError(t, err)

	_, span := provider.Tracer().Start(context.Background(), SpanEncode)
	require.True(t, span.SpanContext().IsValid())
	span.End()
	require.NoError(t, provider.Shutdown(context.Background()))
}
