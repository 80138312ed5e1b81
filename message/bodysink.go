// Copyright 2024 The httpwire Authors. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE file in the root of the source tree.

package message

import (
	"github.com/intuitivelabs/httpwire"
)

// DiscardBodySink accepts and counts body bytes without retaining them,
// for callers that only care about framing and header data (e.g. a proxy
// that forwards the body unparsed through a separate path). scratch is
// reused Prepare space; its prior contents are never read back.
type DiscardBodySink struct {
	N       int64
	scratch []byte
}

func (d *DiscardBodySink) Prepare(n int) ([]byte, httpwire.Error) {
	if cap(d.scratch) < n {
		d.scratch = make([]byte, n)
	}
	return d.scratch[:n], httpwire.ErrNone
}

func (d *DiscardBodySink) Commit(k int) httpwire.Error {
	d.N += int64(k)
	return httpwire.ErrNone
}

func (d *DiscardBodySink) Finish() httpwire.Error { return httpwire.ErrNone }

// BufferBodySink accumulates the whole body into memory, handed to Bytes
// once Finish has been called.
type BufferBodySink struct {
	buf []byte
}

func (b *BufferBodySink) Prepare(n int) ([]byte, httpwire.Error) {
	cur := len(b.buf)
	if cap(b.buf)-cur < n {
		grown := make([]byte, cur, cur+n)
		copy(grown, b.buf)
		b.buf = grown
	}
	return b.buf[cur : cur+n : cur+n], httpwire.ErrNone
}

func (b *BufferBodySink) Commit(k int) httpwire.Error {
	b.buf = b.buf[:len(b.buf)+k]
	return httpwire.ErrNone
}

func (b *BufferBodySink) Finish() httpwire.Error { return httpwire.ErrNone }

// Bytes returns the accumulated body. Valid only after Finish.
func (b *BufferBodySink) Bytes() []byte { return b.buf }

// Reset discards the accumulated body, keeping the backing array.
func (b *BufferBodySink) Reset() { b.buf = b.buf[:0] }

// DirectRead opts BufferBodySink into the driver's direct-read path for
// content-length bodies (§4.5): there is no framing interleaved with a
// content-length body's data, so reading straight into b.buf from the
// byte source is safe and avoids one copy through the shared buffer.
func (b *BufferBodySink) DirectRead() bool { return true }

var _ httpwire.DirectReader = (*BufferBodySink)(nil)
