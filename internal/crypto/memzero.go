package crypto

import (
	"crypto/subtle"
	"runtime"
)

// Wipe zeroes the provided buffer in place. It is best-effort: the Go
// memory model gives no hard guarantee against copies made by the
// garbage collector or earlier compiler optimizations, but
// ConstantTimeCopy against a zero buffer resists being optimized away,
// and the explicit KeepAlive keeps b live until the wipe completes.
//
//go:noinline
func Wipe(b []byte) {
	if len(b) == 0 {
		return
	}
	zero := make([]byte, len(b))
	subtle.ConstantTimeCopy(1, b, zero)
	runtime.KeepAlive(&b)
}
