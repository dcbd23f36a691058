package buffer

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// transient reports whether a syscall error should be retried.
func transient(err error) bool {
	return err == unix.EINTR || err == unix.EAGAIN
}

// FillFrom reads from fd into the remaining capacity until the buffer is
// full or fd signals end of data. It reports eof=true in the latter case.
// Interrupted and would-block reads are retried.
func (b *Buffer) FillFrom(fd int) (eof bool, err error) {
	b.mustLive("fill from")

	for b.head < len(b.data) {
		n, err := unix.Read(fd, b.data[b.head:])
		if err != nil {
			if transient(err) {
				continue
			}
			return false, fmt.Errorf("buffer: fill from fd %d: read: %w", fd, err)
		}
		if n == 0 {
			return true, nil
		}
		b.head += n
		b.dirty = true
	}
	return false, nil
}

// FlushTo writes the region to fd, leaving out the trailing run of zero
// bytes left behind by truncated appends.
func (b *Buffer) FlushTo(fd int) error {
	b.mustLive("flush to")

	if err := writeFull(fd, trimPadding(b.data)); err != nil {
		return fmt.Errorf("buffer: flush to fd %d: %w", fd, err)
	}
	return nil
}

// CopyTo writes the whole region to fd, zero padding included. It moves
// the same bytes a Gift would, through a copy.
func (b *Buffer) CopyTo(fd int) error {
	b.mustLive("copy to")

	if err := writeFull(fd, b.data); err != nil {
		return fmt.Errorf("buffer: copy to fd %d: %w", fd, err)
	}
	return nil
}

func writeFull(fd int, p []byte) error {
	for len(p) > 0 {
		n, err := unix.Write(fd, p)
		if err != nil {
			if transient(err) {
				continue
			}
			return fmt.Errorf("write: %w", err)
		}
		p = p[n:]
	}
	return nil
}
