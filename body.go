// Copyright 2024 The httpwire Authors. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE file in the root of the source tree.

package httpwire

// BodySink receives body octets as the parser discovers them (§6). Prepare
// reserves room for up to n bytes and returns the slice to fill (it may be
// shorter than n); Commit tells the sink how many of those bytes are
// actually valid. Finish is called exactly once, whether or not any data
// arrived, when the body (including a zero-length body) is complete.
//
// A BodySink that wants a direct-read optimization (§4.5, reading straight
// off the wire into its own buffer rather than through the shared parse
// buffer) implements DirectReader in addition; the driver consults it.
type BodySink interface {
	Prepare(n int) ([]byte, Error)
	Commit(k int) Error
	Finish() Error
}

// DirectReader lets a content-length body sink request that the driver
// read the remainder of a known-length body straight from the byte source
// into sink-owned storage, bypassing the shared octet buffer entirely.
// Only meaningful for FramingContentLength; chunked and until-EOF bodies
// always go through the shared buffer because their framing is interleaved
// with data.
type DirectReader interface {
	BodySink
	DirectRead() bool
}

// bodyState is the Parser's body-phase resume state. Body bytes are handed
// to the sink (or counted) as soon as they're seen, so consumed can be
// reported immediately and the caller is free to discard or overwrite them.
// The only offsets kept across Write calls are those of an in-progress
// chunk-size line or trailer field (chunk.ext, chunk.field, resume), and
// those stay valid because such a line reports zero consumed until it is
// complete.
type bodyState struct {
	framing   Framing
	remaining uint64 // bytes left in a content-length body, or in the chunk currently being read
	chunk     chunkParser
	resume    int // offset an in-progress chunk-size line or trailer field resumes at
}

func (b *bodyState) reset() {
	*b = bodyState{}
}

// writeContentLength forwards up to len(buf) bytes of a known-length body
// to sink, decrementing b.remaining. Returns (consumed, MessageComplete)
// once b.remaining reaches zero, (consumed, NeedMore) if buf is exhausted
// first, or a terminal Error if the sink rejects the data.
func writeContentLength(buf []byte, b *bodyState, sink BodySink) (int, Error) {
	n := len(buf)
	if uint64(n) > b.remaining {
		n = int(b.remaining)
	}
	if n > 0 {
		if err := pushBytes(sink, buf[:n]); err != ErrNone {
			return n, err
		}
		b.remaining -= uint64(n)
	}
	if b.remaining == 0 {
		if err := sink.Finish(); err != ErrNone {
			return n, err
		}
		return n, MessageComplete
	}
	return n, NeedMore
}

// writeUntilEOF forwards every byte offered to sink; the body only ends
// when the driver calls WriteEOF (§4.3 "runs until the connection ends").
func writeUntilEOF(buf []byte, sink BodySink) (int, Error) {
	if len(buf) == 0 {
		return 0, NeedMore
	}
	if err := pushBytes(sink, buf); err != ErrNone {
		return len(buf), err
	}
	return len(buf), NeedMore
}

// writeChunked advances the chunked-transfer-coding state machine (§4.2) by
// exactly one bounded step: one chunk-header line, one slice of chunk-data,
// one chunk's trailing CRLF, or one trailer field. buf always starts at the
// beginning of the element in progress, because the only two outcomes are
// (a) consumed == 0 with the buffer left untouched, so the next call sees
// the identical bytes at the identical offsets the in-progress element's
// spans already refer to, and resumes scanning at b.resume, where the
// NeedMore left off, or (b) consumed == n for a step that holds no spans
// into buf past its own return (chunk-data bytes are copied out
// immediately; a completed header line or trailer field has already been
// dispatched). A single step per call costs nothing here since nothing
// blocks — the caller simply loops until MessageComplete or error.
func writeChunked(buf []byte, b *bodyState, sink BodySink, onChunkExt func(ext []byte) Error, onTrailer func(name, value []byte) Error) (int, Error) {
	switch {
	case b.chunk.state == cAwaitSize || b.chunk.state == cSizeDigits ||
		b.chunk.state == cExt || b.chunk.state == cSizeCRLF:
		n, err := parseChunkHeader(buf, b.resume, &b.chunk)
		b.resume = 0
		switch err {
		case NeedMore:
			b.resume = n
			return 0, NeedMore
		case ErrNone:
			if onChunkExt != nil && b.chunk.ext.Len > 0 {
				if herr := onChunkExt(b.chunk.ext.Get(buf)); herr != ErrNone {
					return n, herr
				}
			}
			b.remaining = b.chunk.size
			if b.chunk.size > 0 {
				b.chunk.state = cData
			}
			return n, NeedMore
		default:
			return n, err
		}
	case b.chunk.state == cData:
		n := len(buf)
		if uint64(n) > b.remaining {
			n = int(b.remaining)
		}
		if n > 0 {
			if err := pushBytes(sink, buf[:n]); err != ErrNone {
				return n, err
			}
			b.remaining -= uint64(n)
		}
		if b.remaining == 0 {
			b.chunk.state = cDataCRLF
		}
		return n, NeedMore
	case b.chunk.state == cDataCRLF:
		n, err := chunkDataCRLF(buf, 0)
		switch err {
		case NeedMore:
			return 0, NeedMore
		case ErrNone:
			b.chunk.state = cAwaitSize
			b.chunk.size = 0
			return n, NeedMore
		default:
			return n, err
		}
	case b.chunk.state == cTrailers:
		n, err := parseOneField(buf, b.resume, &b.chunk.field)
		b.resume = 0
		switch err {
		case NeedMore:
			b.resume = n
			return 0, NeedMore
		case errEndOfHeaders:
			if ferr := sink.Finish(); ferr != ErrNone {
				return n, ferr
			}
			return n, MessageComplete
		case ErrNone:
			if onTrailer != nil {
				name := b.chunk.field.name.Get(buf)
				value := b.chunk.field.value.Get(buf)
				if herr := onTrailer(name, value); herr != ErrNone {
					return n, herr
				}
			}
			b.chunk.field.reset()
			return n, NeedMore
		default:
			return n, err
		}
	}
	return 0, errBug
}

// pushBytes is the push-mode sink protocol: Prepare a destination, copy
// in, Commit the actual count. A sink implementing DirectReader with
// DirectRead()==true is still fed this way when data arrives through the
// shared buffer (e.g. pipelined bytes read alongside the prior message);
// the direct-read optimization only changes how the driver itself reads
// from the byte source, not this interface.
func pushBytes(sink BodySink, data []byte) Error {
	for len(data) > 0 {
		dst, err := sink.Prepare(len(data))
		if err != ErrNone {
			return err
		}
		if len(dst) == 0 {
			return ErrBufferOverflow
		}
		n := copy(dst, data)
		if err := sink.Commit(n); err != ErrNone {
			return err
		}
		data = data[n:]
	}
	return ErrNone
}
