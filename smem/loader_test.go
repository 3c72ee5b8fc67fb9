package smem_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/smemkit/internal/testutil"
	"github.com/joshuapare/smemkit/smem"
)

func TestOpenHeapImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "smem.bin")
	require.NoError(t, os.WriteFile(path, testutil.LegacyImage(16384, 4096), 0o600))

	h, err := smem.Open(path, 0x8060_0000, smem.Options{})
	require.NoError(t, err)
	defer h.Close()

	require.NoError(t, h.Alloc(smem.HostAny, 10, 64))
	data, err := h.Get(smem.HostAny, 10)
	require.NoError(t, err)
	require.Len(t, data, 64)
}

func TestOpenMissingFile(t *testing.T) {
	_, err := smem.Open(filepath.Join(t.TempDir(), "absent"), 0, smem.Options{})
	require.Error(t, err)
}

func TestOpenNotReadyCleansUp(t *testing.T) {
	path := filepath.Join(t.TempDir(), "smem.bin")
	img := testutil.LegacyImage(16384, 4096)
	img[0xC0] = 0 // clear initialized flag
	require.NoError(t, os.WriteFile(path, img, 0o600))

	_, err := smem.Open(path, 0, smem.Options{})
	require.ErrorIs(t, err, smem.ErrNotReady)
}
