package renderer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestShadowSampleCountOrDefaultFallsBackToMSAAOff(t *testing.T) {
	b := &wgpuRendererBackendImpl{}
	require.Equal(t, MSAAOff, b.shadowSampleCountOrDefault())

	b.shadowSampleCount = MSAA4x
	require.Equal(t, MSAA4x, b.shadowSampleCountOrDefault())
}

func TestDefaultAnisotropyOrDefaultFallsBackToOne(t *testing.T) {
	b := &wgpuRendererBackendImpl{}
	require.Equal(t, uint16(1), b.defaultAnisotropyOrDefault())

	b.defaultAnisotropy = 16
	require.Equal(t, uint16(16), b.defaultAnisotropyOrDefault())
}
