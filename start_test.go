package spx_test

import (
	"testing"

	"github.com/spxlog/spx-go"
	"github.com/spxlog/spx-go/spxnum"
	"github.com/spxlog/spx-go/spxtest"
	"github.com/spxlog/spx-go/spxtrace"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartSpanRootsNewTrace(t *testing.T) {
	capture := spxtest.Install(t, spxtest.WithQuiet())

	span := spx.StartSpan("root")
	ctx := span.SpanContext()
	assert.True(t, ctx.IsValid())
	assert.False(t, ctx.TraceID().IsZero())
	assert.False(t, ctx.SpanID().IsZero())
	span.End()

	other := spx.StartSpan("another-root")
	assert.NotEqual(t, ctx.TraceID(), other.SpanContext().TraceID())
	other.End()

	sd := capture.Find("root")
	require.NotNil(t, sd)
	assert.True(t, sd.ParentSpanID.IsZero())
	assert.False(t, sd.HasRemoteParent)
}

func TestStartSpanParentage(t *testing.T) {
	capture := spxtest.Install(t, spxtest.WithQuiet())

	parent := spx.StartSpan("parent")
	child := spx.StartSpan("child", spx.WithParent(parent))

	pctx := parent.SpanContext()
	cctx := child.SpanContext()
	assert.Equal(t, pctx.TraceID(), cctx.TraceID())
	assert.NotEqual(t, pctx.SpanID(), cctx.SpanID())

	child.End()
	parent.End()

	childData := capture.Find("child")
	require.NotNil(t, childData)
	assert.Equal(t, pctx.SpanID(), childData.ParentSpanID)
	assert.False(t, childData.HasRemoteParent)

	parentData := capture.Find("parent")
	require.NotNil(t, parentData)
	assert.Equal(t, int32(1), parentData.ChildSpanCount)
	assert.True(t, parentData.ParentSpanID.IsZero())
}

func TestChildSamplingPrecedence(t *testing.T) {
	spxtest.Install(t, spxtest.WithQuiet(), spxtest.WithDefaultSampler(spx.NeverSample()))

	parent := spx.StartSpan("parent", spx.WithSampler(spx.AlwaysSample()))
	require.True(t, parent.IsSampled())

	// the parent's sampled bit beats the never-sample default
	child := spx.StartSpan("child", spx.WithParent(parent))
	assert.True(t, child.IsSampled())

	// an explicit sampler beats the parent's sampled bit
	refused := spx.StartSpan("refused", spx.WithParent(parent), spx.WithSampler(spx.NeverSample()))
	assert.False(t, refused.IsSampled())

	child.End()
	refused.End()
	parent.End()
}

func TestWithParentBlankIsIgnored(t *testing.T) {
	capture := spxtest.Install(t, spxtest.WithQuiet())

	span := spx.StartSpan("orphan", spx.WithParent(spx.BlankSpan()))
	assert.True(t, span.SpanContext().IsValid())
	span.End()

	sd := capture.Find("orphan")
	require.NotNil(t, sd)
	assert.True(t, sd.ParentSpanID.IsZero())
	assert.Equal(t, int32(0), sd.ChildSpanCount)
}

func TestStartSpanWithRemoteParent(t *testing.T) {
	capture := spxtest.Install(t, spxtest.WithQuiet(), spxtest.WithDefaultSampler(spx.NeverSample()))

	state, err := spxtrace.NewTracestate(spxtrace.TracestateEntry{Key: "vendor", Value: "x"})
	require.NoError(t, err)
	remote := spxtrace.NewSpanContextWithTracestate(
		spxtrace.NewTraceID(), spxtrace.NewSpanID(), spxtrace.TraceOptionSampled, state)

	span := spx.StartSpanWithRemoteParent("op", remote)
	ctx := span.SpanContext()
	assert.Equal(t, remote.TraceID(), ctx.TraceID())
	assert.NotEqual(t, remote.SpanID(), ctx.SpanID())
	assert.True(t, ctx.IsSampled())
	carried, ok := ctx.Tracestate().Get("vendor")
	assert.True(t, ok)
	assert.Equal(t, "x", carried)
	span.End()

	sd := capture.Find("op")
	require.NotNil(t, sd)
	assert.True(t, sd.HasRemoteParent)
	assert.Equal(t, remote.SpanID(), sd.ParentSpanID)
}

func TestRemoteParentSamplingPrecedence(t *testing.T) {
	spxtest.Install(t, spxtest.WithQuiet(), spxtest.WithDefaultSampler(spx.AlwaysSample()))

	unsampledRemote := spxtrace.NewSpanContext(spxtrace.NewTraceID(), spxtrace.NewSpanID(), 0)

	// an unsampled remote parent falls through to the default sampler
	span := spx.StartSpanWithRemoteParent("op", unsampledRemote)
	assert.True(t, span.IsSampled())
	span.End()

	// an explicit sampler still wins
	refused := spx.StartSpanWithRemoteParent("op2", unsampledRemote, spx.WithSampler(spx.NeverSample()))
	assert.False(t, refused.IsSampled())
	refused.End()
}

func TestStartSpanWithInvalidRemoteParent(t *testing.T) {
	capture := spxtest.Install(t, spxtest.WithQuiet())

	span := spx.StartSpanWithRemoteParent("op", spxtrace.SpanContext{})
	assert.True(t, span.SpanContext().IsValid())
	span.End()

	sd := capture.Find("op")
	require.NotNil(t, sd)
	assert.False(t, sd.HasRemoteParent)
	assert.True(t, sd.ParentSpanID.IsZero())
}

func TestWithParentLinks(t *testing.T) {
	capture := spxtest.Install(t, spxtest.WithQuiet(), spxtest.WithDefaultSampler(spx.NeverSample()))

	trigger := spx.StartSpan("trigger", spx.WithSampler(spx.AlwaysSample()))

	// a sampled parent link forces sampling
	worker := spx.StartSpan("worker", spx.WithParentLinks(trigger))
	assert.True(t, worker.IsSampled())
	worker.End()
	trigger.End()

	sd := capture.Find("worker")
	require.NotNil(t, sd)
	require.Len(t, sd.Links, 1)
	assert.Equal(t, spxnum.LinkTypeParent, sd.Links[0].Type)
	assert.Equal(t, trigger.SpanContext().TraceID(), sd.Links[0].TraceID)
	assert.Equal(t, trigger.SpanContext().SpanID(), sd.Links[0].SpanID)

	// the linked span is in another trace
	assert.NotEqual(t, trigger.SpanContext().TraceID(), sd.SpanContext.TraceID())
	assert.True(t, sd.ParentSpanID.IsZero())
}

func TestWithSpanKind(t *testing.T) {
	capture := spxtest.Install(t, spxtest.WithQuiet())

	server := spx.StartSpan("inbound", spx.WithSpanKind(spxnum.SpanKindServer))
	server.End()
	client := spx.StartSpan("outbound", spx.WithSpanKind(spxnum.SpanKindClient))
	client.End()
	plain := spx.StartSpan("local")
	plain.End()

	assert.Equal(t, spxnum.SpanKindServer, capture.Find("inbound").Kind)
	assert.Equal(t, spxnum.SpanKindClient, capture.Find("outbound").Kind)
	assert.Equal(t, spxnum.SpanKindUnspecified, capture.Find("local").Kind)
}

func TestSourceRecordedOnSpans(t *testing.T) {
	capture := spxtest.Install(t, spxtest.WithQuiet())

	span := spx.StartSpan("sourced")
	span.End()

	sd := capture.Find("sourced")
	require.NotNil(t, sd)
	assert.Equal(t, "spx-go", sd.Source.Source)
	require.NotNil(t, sd.Source.SourceVersion)
	assert.Equal(t, "spx-go v"+spx.Version, sd.Source.String())
}
