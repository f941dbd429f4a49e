package spxutil

import "sync/atomic"

// Counter hands out a sequence of int64s starting at 1.  The zero
// Counter is ready to use.
type Counter struct {
	n int64
}

func (c *Counter) Next() int64 {
	return atomic.AddInt64(&c.n, 1)
}
