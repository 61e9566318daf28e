package idmap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/marmos91/dittosync/internal/telemetry"
)

func TestDecodeRecordsResolutionEvents(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(telemetry.SetTracer(tp.Tracer("idmap-test")))

	local := newFakeDirectory()
	local.users["alice"] = 700
	local.member = []uint32{100}

	s := NewSession(local, Options{PreserveUID: true, PreserveGID: true, Superuser: boolPtr(false)})
	stream := append(catalog(501, "alice", 502, "bob"), catalog(800, "wheel")...)
	require.NoError(t, s.DecodeAndResolveCatalogs(context.Background(), reader(stream)))

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, telemetry.SpanDecodeCatalogs, ended[0].Name())

	var outcomes []string
	for _, ev := range ended[0].Events() {
		if ev.Name != "record resolved" {
			continue
		}
		for _, kv := range ev.Attributes {
			if string(kv.Key) == telemetry.AttrOutcome {
				outcomes = append(outcomes, kv.Value.AsString())
			}
		}
	}
	assert.Equal(t, []string{
		string(OutcomeMapped),
		string(OutcomeNumeric),
		string(OutcomeNoGroup),
	}, outcomes)
}
