//go:build linux

package buffer

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// GiftSupported reports whether Gift can hand pages to a pipe.
const GiftSupported = true

// Gift hands the pages of a PageMapped buffer to the pipe fd without
// copying them (vmsplice(2) with SPLICE_F_GIFT).
//
// Gift consumes b. Once the call returns, successful or not, b is disposed
// and must not be used; the pages belong to the kernel. On success Gift
// returns a fresh PageMapped buffer of the same length. Gifting any other
// strategy panics.
func Gift(b *Buffer, fd int) (*Buffer, error) {
	b.mustLive("gift")
	if b.strategy != PageMapped {
		panic(fmt.Sprintf("buffer: gift: %s buffers cannot be gifted", b.strategy))
	}

	alloc := b.alloc
	length := len(b.data)

	err := vmspliceAll(fd, b.data)

	// The gifted pages are never touched again, only unmapped.
	if derr := b.Dispose(); err == nil && derr != nil {
		err = derr
	}
	if err != nil {
		return nil, fmt.Errorf("buffer: gift to fd %d: %w", fd, err)
	}

	return alloc.New(PageMapped, length)
}

func vmspliceAll(fd int, p []byte) error {
	iov := make([]unix.Iovec, 1)
	for len(p) > 0 {
		iov[0].Base = &p[0]
		iov[0].SetLen(len(p))

		n, err := unix.Vmsplice(fd, iov, unix.SPLICE_F_GIFT)
		if err != nil {
			if transient(err) {
				continue
			}
			return fmt.Errorf("vmsplice: %w", err)
		}
		p = p[n:]
	}
	return nil
}
