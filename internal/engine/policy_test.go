package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bamsammich/ubcopy/internal/platform"
)

func fakePolicy(threshold int64, sector int, probeErr error) Policy {
	return Policy{
		SyncThreshold: threshold,
		probe:         func(string, string) error { return probeErr },
		sectorSize:    func(string) int { return sector },
		overlapIO:     platform.Direct,
	}
}

func TestBufferBytes(t *testing.T) {
	tests := []struct {
		mb      int
		want    int
		wantErr bool
	}{
		{mb: 1, want: 1 << 20},
		{mb: 16, want: 16 << 20},
		{mb: 32, want: 32 << 20},
		{mb: 33, want: 32 << 20},
		{mb: 1024, want: 32 << 20},
		{mb: 0, wantErr: true},
		{mb: -4, wantErr: true},
	}
	for _, tt := range tests {
		got, err := BufferBytes(tt.mb)
		if tt.wantErr {
			require.Error(t, err, "mb=%d", tt.mb)
			assert.ErrorIs(t, err, ErrConfig)
			continue
		}
		require.NoError(t, err, "mb=%d", tt.mb)
		assert.Equal(t, tt.want, got, "mb=%d", tt.mb)
	}
}

func TestPolicy_Plan(t *testing.T) {
	t.Run("below one buffer uses sync copy", func(t *testing.T) {
		p := fakePolicy(0, 4096, nil)
		plan, err := p.Plan("src", 10, 1, "dir")
		require.NoError(t, err)
		assert.Equal(t, ModeSync, plan.Mode)
		assert.Equal(t, platform.Buffered, plan.IO)
		assert.Equal(t, 1<<20, plan.BufferSize)
		assert.Contains(t, plan.Reason, "threshold")
	})

	t.Run("one full buffer uses overlapped copy", func(t *testing.T) {
		p := fakePolicy(0, 4096, nil)
		plan, err := p.Plan("src", 1<<20, 1, "dir")
		require.NoError(t, err)
		assert.Equal(t, ModeOverlapped, plan.Mode)
		assert.Equal(t, platform.Direct, plan.IO)
		assert.Equal(t, 4096, plan.Align)
	})

	t.Run("explicit threshold", func(t *testing.T) {
		p := fakePolicy(8<<20, 4096, nil)
		plan, err := p.Plan("src", 4<<20, 1, "dir")
		require.NoError(t, err)
		assert.Equal(t, ModeSync, plan.Mode)

		plan, err = p.Plan("src", 8<<20, 1, "dir")
		require.NoError(t, err)
		assert.Equal(t, ModeOverlapped, plan.Mode)
	})

	t.Run("probe failure falls back", func(t *testing.T) {
		p := fakePolicy(0, 4096, errors.New("EINVAL"))
		plan, err := p.Plan("src", 64<<20, 16, "dir")
		require.NoError(t, err)
		assert.Equal(t, ModeSync, plan.Mode)
		assert.Contains(t, plan.Reason, "EINVAL")
	})

	t.Run("oversized buffer is clamped", func(t *testing.T) {
		p := fakePolicy(0, 4096, nil)
		plan, err := p.Plan("src", 1<<30, 100, "dir")
		require.NoError(t, err)
		assert.Equal(t, MaxBufferMB<<20, plan.BufferSize)
	})

	t.Run("non-positive buffer is rejected", func(t *testing.T) {
		p := fakePolicy(0, 4096, nil)
		_, err := p.Plan("src", 1<<20, 0, "dir")
		assert.ErrorIs(t, err, ErrConfig)
	})

	t.Run("misaligned buffer is rejected", func(t *testing.T) {
		p := fakePolicy(0, 3<<20, nil)
		_, err := p.Plan("src", 1<<30, 1, "dir")
		assert.ErrorIs(t, err, ErrConfig)
	})

	t.Run("larger sector of the two ends wins", func(t *testing.T) {
		p := fakePolicy(0, 0, nil)
		p.sectorSize = func(path string) int {
			if path == "src" {
				return 512
			}
			return 8192
		}
		plan, err := p.Plan("src", 1<<20, 1, "dir")
		require.NoError(t, err)
		assert.Equal(t, 8192, plan.Align)
	})
}

func TestNewPolicy_RealFilesystem(t *testing.T) {
	dir := t.TempDir()
	src := writeTempFile(t, dir, "src", 10)

	plan, err := NewPolicy(0).Plan(src, 10, DefaultBufferMB, dir)
	require.NoError(t, err)
	assert.Equal(t, ModeSync, plan.Mode)
	assert.Equal(t, 0, plan.BufferSize%plan.Align)
}

func TestMode_String(t *testing.T) {
	assert.Equal(t, "none", Mode(0).String())
	assert.Equal(t, "sync", ModeSync.String())
	assert.Equal(t, "overlapped", ModeOverlapped.String())
	assert.Equal(t, "unknown", Mode(7).String())
}

func TestRoundUp(t *testing.T) {
	assert.Equal(t, int64(0), roundUp(0, 4096))
	assert.Equal(t, int64(4096), roundUp(1, 4096))
	assert.Equal(t, int64(4096), roundUp(4096, 4096))
	assert.Equal(t, int64(8192), roundUp(4097, 4096))
	assert.Equal(t, int64(3), blocks(10240, 4096))
}
