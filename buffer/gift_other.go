//go:build !linux

package buffer

import "fmt"

// GiftSupported reports whether Gift can hand pages to a pipe.
const GiftSupported = false

// Gift is only implemented on Linux. Elsewhere it panics for non-PageMapped
// buffers like the Linux version and returns ErrGiftUnsupported otherwise,
// leaving b untouched.
func Gift(b *Buffer, fd int) (*Buffer, error) {
	b.mustLive("gift")
	if b.strategy != PageMapped {
		panic(fmt.Sprintf("buffer: gift: %s buffers cannot be gifted", b.strategy))
	}
	return b, ErrGiftUnsupported
}
