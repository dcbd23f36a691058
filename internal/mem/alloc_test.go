package mem

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllocAligned(t *testing.T) {
	for _, align := range []int{64, 4096, 16384} {
		for _, size := range []int{1, 10, 4095, 4096, 8192} {
			buf := AllocAligned(size, align)
			assert.Len(t, buf, size)
			assert.Equal(t, size, cap(buf), "capacity must not expose padding")
			assert.True(t, IsAligned(buf, align), "size=%d align=%d", size, align)
			for _, b := range buf {
				if b != 0 {
					t.Fatalf("size=%d align=%d: not zeroed", size, align)
				}
			}
		}
	}
}

func TestAllocAligned_Invalid(t *testing.T) {
	assert.Nil(t, AllocAligned(0, 4096))
	assert.Nil(t, AllocAligned(-1, 4096))
	assert.Nil(t, AllocAligned(4096, 0))
	assert.Nil(t, AllocAligned(4096, 3000))
	assert.False(t, IsAligned(nil, 64))
}

func BenchmarkAllocAligned(b *testing.B) {
	for _, size := range []int{4096, 16384, 65536} {
		b.Run(fmt.Sprintf("size=%d", size), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				_ = AllocAligned(size, 4096)
			}
		})
	}
}
