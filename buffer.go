// Copyright 2024 The httpwire Authors. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE file in the root of the source tree.

package httpwire

import (
	"github.com/valyala/bytebufferpool"
)

// Buffer is the growable read/write-split octet buffer the read-loop
// driver uses to accumulate bytes between Parser.Write calls (§4.4). It
// never shrinks the backing array on consume; instead it tracks a read
// position and compacts (or grows) lazily in Prepare, the same amortized
// strategy bufio.Reader and the teacher's receive-buffer handling use.
//
// The backing []byte is borrowed from a bytebufferpool.Pool so repeated
// message cycles on a connection reuse one allocation instead of growing
// a fresh slice per message.
type Buffer struct {
	pool *bytebufferpool.Pool
	bb   *bytebufferpool.ByteBuffer
	pos  int // read position: Readable() is bb.B[pos:]
	cap  int // soft cap on total growth; 0 means unbounded
}

// NewBuffer returns a Buffer drawing its backing array from pool. A nil
// pool uses the package-default pool (shared across all callers that also
// pass nil, mirroring bytebufferpool's own top-level Get/Put).
func NewBuffer(pool *bytebufferpool.Pool) *Buffer {
	if pool == nil {
		pool = defaultBufferPool
	}
	return &Buffer{pool: pool, bb: pool.Get()}
}

var defaultBufferPool = new(bytebufferpool.Pool)

// SetCap bounds the buffer's total size; Prepare refuses to grow past it.
// Zero (the default) means unbounded, relying on the caller's own
// resource limits (e.g. Parser.SetHeaderLimits) to bound growth instead.
func (b *Buffer) SetCap(n int) {
	b.cap = n
}

// Readable returns the currently buffered, unconsumed bytes. The slice is
// only valid until the next Prepare or Release call.
func (b *Buffer) Readable() []byte {
	return b.bb.B[b.pos:]
}

// Len returns len(Readable()).
func (b *Buffer) Len() int {
	return len(b.bb.B) - b.pos
}

// Prepare ensures room for at least n more bytes past the currently
// buffered data and returns the destination slice to read into (its
// length is the available room, which may exceed n). It compacts the
// unconsumed prefix down to offset zero before growing, so repeated
// small Consumes don't leak capacity. Returns ErrBufferOverflow if
// growing past n would exceed the configured cap.
func (b *Buffer) Prepare(n int) ([]byte, Error) {
	if b.pos > 0 {
		copy(b.bb.B, b.bb.B[b.pos:])
		b.bb.B = b.bb.B[:len(b.bb.B)-b.pos]
		b.pos = 0
	}
	cur := len(b.bb.B)
	need := cur + n
	if b.cap > 0 && need > b.cap {
		return nil, ErrBufferOverflow
	}
	if cap(b.bb.B) < need {
		grown := make([]byte, cur, need)
		copy(grown, b.bb.B)
		b.bb.B = grown
	}
	return b.bb.B[cur:cap(b.bb.B)], ErrNone
}

// Commit records that k bytes were written into the slice Prepare
// returned, extending the buffered region. k is clamped to the room
// Prepare actually made available (cap(bb.B)-len(bb.B)), mirroring
// parse_buffer::commit's beast::detail::clamp(n, cap_-(pos_+len_)) — a
// source that over-reports how much it wrote must not walk len(bb.B)
// past the backing array's capacity.
func (b *Buffer) Commit(k int) {
	if room := cap(b.bb.B) - len(b.bb.B); k > room {
		k = room
	}
	if k < 0 {
		k = 0
	}
	b.bb.B = b.bb.B[:len(b.bb.B)+k]
}

// Consume drops the first k bytes of Readable(); subsequent Readable
// calls start after them. It does not immediately shrink the backing
// array — Prepare compacts on the next growth instead.
func (b *Buffer) Consume(k int) {
	b.pos += k
	if b.pos > len(b.bb.B) {
		panic("httpwire: Consume past buffered data")
	}
}

// Reset discards all buffered data, keeping the backing array for reuse.
func (b *Buffer) Reset() {
	b.bb.Reset()
	b.pos = 0
}

// Release returns the backing array to the pool. The Buffer must not be
// used afterwards unless Reacquire is called first.
func (b *Buffer) Release() {
	b.pool.Put(b.bb)
	b.bb = nil
}

// Reacquire gets a fresh backing array from the pool after Release, so a
// connection handler can return the buffer between idle periods without
// holding onto a possibly large allocation.
func (b *Buffer) Reacquire() {
	b.bb = b.pool.Get()
	b.pos = 0
}
