package conv

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntToUint32(t *testing.T) {
	got, err := IntToUint32(123)
	require.NoError(t, err)
	assert.Equal(t, uint32(123), got)

	got, err = IntToUint32(math.MaxUint32)
	require.NoError(t, err)
	assert.Equal(t, uint32(math.MaxUint32), got)

	_, err = IntToUint32(-1)
	assert.Error(t, err)
	_, err = IntToUint32(math.MaxUint32 + 1)
	assert.Error(t, err)
}

func TestInt64ToInt(t *testing.T) {
	got, err := Int64ToInt(1 << 40)
	require.NoError(t, err)
	assert.Equal(t, 1<<40, got)

	got, err = Int64ToInt(-5)
	require.NoError(t, err)
	assert.Equal(t, -5, got)
}

func TestUint64ToUint32(t *testing.T) {
	got, err := Uint64ToUint32(7)
	require.NoError(t, err)
	assert.Equal(t, uint32(7), got)

	_, err = Uint64ToUint32(math.MaxUint32 + 1)
	assert.Error(t, err)
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"0", 0},
		{"4096", 4096},
		{"64KiB", 64 << 10},
		{"64k", 64 << 10},
		{"8 MiB", 8 << 20},
		{"8m", 8 << 20},
		{"1GB", 1000 * 1000 * 1000},
		{"1g", 1 << 30},
		{"512b", 512},
		{" 2kb ", 2000},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSize(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []string{"", "abc", "-1", "1.5m", "kib", "99999999999999999999"} {
		_, err := ParseSize(bad)
		assert.Error(t, err, bad)
	}
	_, err := ParseSize("9223372036854775807k")
	assert.Error(t, err)
}
