package cmdbuffer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateEmptyBufferIsValid(t *testing.T) {
	b := newBuffer(1)
	require.NoError(t, b.Validate(nil, nil))
}

func TestValidateBalancedRenderPassAndDraw(t *testing.T) {
	b := newBuffer(1)
	rt := NewHandle(0, 1)
	pipeline := NewHandle(0, 2)

	require.NoError(t, b.Record(BeginRenderPass{Spec: RenderPassSpec{Targets: []Handle{rt}}}))
	require.NoError(t, b.Record(BindPipeline{Pipeline: pipeline}))
	require.NoError(t, b.Record(SendPushConstants{Data: []byte{1, 2, 3, 4}}))
	require.NoError(t, b.Record(DrawCommands{Draw: DrawCall{Count: 3}}))
	require.NoError(t, b.Record(EndRenderPass{}))

	require.NoError(t, b.Validate(nil, nil))
}

func TestValidateRejectsNestedRenderPass(t *testing.T) {
	b := newBuffer(1)
	rt1, rt2 := NewHandle(0, 1), NewHandle(0, 2)

	require.NoError(t, b.Record(BeginRenderPass{Spec: RenderPassSpec{Targets: []Handle{rt1}}}))
	require.NoError(t, b.Record(BindPipeline{Pipeline: NewHandle(0, 3)}))
	require.NoError(t, b.Record(BeginRenderPass{Spec: RenderPassSpec{Targets: []Handle{rt2}}}))

	err := b.Validate(nil, nil)
	require.ErrorIs(t, err, ErrNestedRenderPass)
}

func TestValidateRejectsDrawWithoutBoundPipeline(t *testing.T) {
	b := newBuffer(1)
	require.NoError(t, b.Record(BeginRenderPass{Spec: RenderPassSpec{Targets: []Handle{NewHandle(0, 1)}}}))
	require.NoError(t, b.Record(DrawCommands{Draw: DrawCall{Count: 3}}))

	err := b.Validate(nil, nil)
	require.ErrorIs(t, err, ErrOutOfStateCommand)
}

func TestValidateRejectsPushConstantsOutOfScope(t *testing.T) {
	b := newBuffer(1)
	require.NoError(t, b.Record(SendPushConstants{Data: []byte{1}}))

	err := b.Validate(nil, nil)
	require.ErrorIs(t, err, ErrPushConstantsOutOfScope)
}

func TestValidateRejectsUnmatchedEndRenderPass(t *testing.T) {
	b := newBuffer(1)
	require.NoError(t, b.Record(EndRenderPass{}))

	err := b.Validate(nil, nil)
	require.ErrorIs(t, err, ErrUnmatchedScope)
}

func TestValidateRejectsOpenRenderPassAtEnd(t *testing.T) {
	b := newBuffer(1)
	require.NoError(t, b.Record(BeginRenderPass{Spec: RenderPassSpec{Targets: []Handle{NewHandle(0, 1)}}}))

	err := b.Validate(nil, nil)
	require.ErrorIs(t, err, ErrUnmatchedScope)
}

func TestRecordRejectsUnmatchedDebugScopeEagerly(t *testing.T) {
	b := newBuffer(1)
	err := b.Record(EndDebugScope{})
	require.ErrorIs(t, err, ErrUnmatchedScope)
}

func TestValidateRejectsStaleHandle(t *testing.T) {
	b := newBuffer(1)
	stale := NewHandle(0, 42)
	require.NoError(t, b.Record(ClearTexture{Target: stale}))

	liveness := fakeLiveness{live: map[Handle]bool{}}
	err := b.Validate(liveness, nil)
	require.ErrorIs(t, err, ErrStaleHandle)
}

func TestValidateRejectsIncompatiblePipeline(t *testing.T) {
	b := newBuffer(1)
	rt := NewHandle(0, 1)
	pipeline := NewHandle(0, 2)
	require.NoError(t, b.Record(BeginRenderPass{Spec: RenderPassSpec{Targets: []Handle{rt}}}))
	require.NoError(t, b.Record(BindPipeline{Pipeline: pipeline}))
	require.NoError(t, b.Record(DrawCommands{Draw: DrawCall{Count: 1}}))
	require.NoError(t, b.Record(EndRenderPass{}))

	err := b.Validate(nil, fakeCompat{compatible: false})
	require.ErrorIs(t, err, ErrPipelineIncompatible)
}

func TestPoolRecyclesBuffers(t *testing.T) {
	p := NewPool()
	b1 := p.Get()
	require.NoError(t, b1.Record(BeginDebugScope{Label: "x"}))
	p.Put(b1)

	b2 := p.Get()
	require.Same(t, b1, b2)
	require.Equal(t, 0, b2.Len())
}

type fakeLiveness struct{ live map[Handle]bool }

func (f fakeLiveness) IsLive(h Handle) bool { return f.live[h] }

type fakeCompat struct{ compatible bool }

func (f fakeCompat) Compatible(pipeline, target Handle) bool { return f.compatible }
