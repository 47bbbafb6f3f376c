package transient

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/require"
)

func TestRoundUpAlignsToBoundary(t *testing.T) {
	require.Equal(t, uint64(256), roundUp(1, 256))
	require.Equal(t, uint64(256), roundUp(256, 256))
	require.Equal(t, uint64(512), roundUp(257, 256))
	require.Equal(t, uint64(10), roundUp(10, 0))
}

func TestAlignmentForUsesDeviceFloors(t *testing.T) {
	limits := wgpu.Limits{
		MinUniformBufferOffsetAlignment: 256,
		MinStorageBufferOffsetAlignment: 32,
	}
	require.Equal(t, uint64(256), alignmentFor(UsageUniform, limits))
	require.Equal(t, uint64(32), alignmentFor(UsageStorage, limits))
	require.Equal(t, uint64(1), alignmentFor(UsageVertex, limits))
}

func TestDescriptorByteSize(t *testing.T) {
	d := Descriptor{ElementSize: 64, ElementCount: 4}
	require.Equal(t, uint64(256), d.byteSize())
}

func TestBlockLayoutSameLayout(t *testing.T) {
	a := BlockLayout{
		TotalSize: 32,
		Fields: []BlockField{
			{Name: "model", Offset: 0, Size: 16},
			{Name: "color", Offset: 16, Size: 16},
		},
	}
	b := a
	b.Key = "different-key"
	require.True(t, a.SameLayout(b))

	c := a
	c.Fields = append([]BlockField{}, a.Fields...)
	c.Fields[1].Size = 8
	require.False(t, a.SameLayout(c))
}

func TestEncodeFieldRejectsUnsupportedType(t *testing.T) {
	buf := make([]byte, 4)
	err := encodeField(buf, struct{}{})
	require.ErrorIs(t, err, ErrUnsupportedFieldType)
}

func TestEncodeFieldFloat32RoundTrips(t *testing.T) {
	buf := make([]byte, 4)
	require.NoError(t, encodeField(buf, float32(1.5)))
	require.NotEqual(t, []byte{0, 0, 0, 0}, buf)
}

func TestBlockLayoutHasField(t *testing.T) {
	l := BlockLayout{Fields: []BlockField{{Name: "model", Offset: 0, Size: 16}}}
	require.True(t, l.hasField("model"))
	require.False(t, l.hasField("color"))
}
