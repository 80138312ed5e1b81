// Copyright 2024 The httpwire Authors. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE file in the root of the source tree.

package httpwire

import (
	"io"

	"github.com/intuitivelabs/httpwire/internal/wirelog"
)

// defaultReadHint is how many bytes the Driver asks Buffer.Prepare for per
// read when the caller hasn't overridden it (§4.5).
const defaultReadHint = 64 * 1024

// Mode selects how far a Driver drives the parser per call.
type Mode uint8

const (
	// ParseSome performs one forward-progress step: it reads as needed
	// until the parser reports anything other than NeedMore (including
	// HeaderComplete) and returns that status.
	ParseSome Mode = iota
	// ParseAll loops ParseSome until MessageComplete or a terminal error.
	ParseAll
)

// Driver runs Parser.Write in a loop against a blocking io.Reader,
// growing a Buffer as needed (§4.5). One Driver serves one connection;
// after Parser.Reset, the same Driver drives the next message.
type Driver struct {
	p        *Parser
	bsink    BodySink
	src      io.Reader
	buf      *Buffer
	readHint int

	directReadResult Error
}

// NewDriver builds a Driver reading from src and driving p. bsink should
// be the same sink passed to NewParser; the driver consults it for the
// DirectReader optimization. buf may be shared across the connection's
// messages — pass the same *Buffer across Parser.Reset calls to retain
// its backing array.
func NewDriver(p *Parser, bsink BodySink, src io.Reader, buf *Buffer) *Driver {
	return &Driver{p: p, bsink: bsink, src: src, buf: buf, readHint: defaultReadHint}
}

// SetReadHint overrides the default 64 KiB read size.
func (d *Driver) SetReadHint(n int) {
	if n > 0 {
		d.readHint = n
	}
}

// Run drives the parser according to mode and returns the terminal
// status: HeaderComplete or MessageComplete for ParseSome, MessageComplete
// for ParseAll, or a terminal Error either way.
func (d *Driver) Run(mode Mode) Error {
	status := d.parseSome()
	if mode == ParseSome || status.Terminal() || status == MessageComplete {
		return status
	}
	for status == HeaderComplete {
		if taken := d.maybeDirectRead(); taken {
			return d.directReadResult
		}
		status = d.parseSome()
		if status.Terminal() || status == MessageComplete {
			return status
		}
	}
	return status
}

func (d *Driver) parseSome() Error {
	for {
		n, status := d.p.Write(d.buf.Readable())
		d.buf.Consume(n)
		if status != NeedMore {
			return status
		}
		// Write only advances one bounded unit per call: if it consumed
		// something and bytes remain, there may already be another whole
		// unit sitting in the buffer. Only block on a read once a call
		// makes zero progress, meaning the current unit genuinely needs
		// more bytes than are buffered.
		if n > 0 && d.buf.Len() > 0 {
			continue
		}
		dst, berr := d.buf.Prepare(d.readHint)
		if berr != ErrNone {
			wirelog.Warnf("httpwire: buffer cap exceeded growing by %d bytes", d.readHint)
			return berr
		}
		nr, rerr := d.src.Read(dst)
		if nr > 0 {
			d.buf.Commit(nr)
		}
		if rerr == io.EOF {
			if nr == 0 {
				wirelog.Debugf("httpwire: eof from src, phase=%d", d.p.phase)
				return d.p.WriteEOF()
			}
			continue // drain the short final read before reporting EOF
		}
		if rerr != nil {
			wirelog.Warnf("httpwire: read error: %v", rerr)
			return ErrShortRead
		}
	}
}

// maybeDirectRead, called right after HeaderComplete, checks whether the
// body is content-length framed and bsink opts into DirectReader; if so
// it reads the remainder straight from src into sink-owned buffers,
// bypassing d.buf for the data bytes, and reports the result via
// d.directReadResult.
func (d *Driver) maybeDirectRead() bool {
	framing, _, ferr := d.p.TakeFraming()
	if ferr != ErrNone || framing != FramingContentLength {
		return false
	}
	dr, ok := d.bsink.(DirectReader)
	if !ok || !dr.DirectRead() {
		return false
	}
	wirelog.Debugf("httpwire: direct-read handoff, content-length body")
	// drain whatever body bytes are already buffered through the normal
	// push path first, since they arrived before we knew to go direct.
	if d.buf.Len() > 0 {
		n, status := d.p.Write(d.buf.Readable())
		d.buf.Consume(n)
		if status.Terminal() || status == MessageComplete {
			d.directReadResult = status
			return true
		}
	}
	for d.p.body.remaining > 0 {
		want := d.readHint
		if uint64(want) > d.p.body.remaining {
			want = int(d.p.body.remaining)
		}
		dst, berr := dr.Prepare(want)
		if berr != ErrNone {
			d.directReadResult = berr
			return true
		}
		nr, rerr := d.src.Read(dst)
		if nr > 0 {
			if cerr := dr.Commit(nr); cerr != ErrNone {
				d.directReadResult = cerr
				return true
			}
			d.p.body.remaining -= uint64(nr)
		}
		if rerr == io.EOF && nr == 0 {
			d.p.phase = pError
			d.directReadResult = ErrShortRead
			return true
		}
		if rerr != nil && rerr != io.EOF {
			d.directReadResult = ErrShortRead
			return true
		}
	}
	if ferr := dr.Finish(); ferr != ErrNone {
		d.directReadResult = ferr
		return true
	}
	d.p.phase = pDone
	d.directReadResult = MessageComplete
	return true
}

// CoopDriver drives a Parser cooperatively: the caller hands it bytes as
// they arrive from a non-blocking source (e.g. a poller's readiness
// callback) instead of the Driver performing blocking reads itself. It
// shares Parser.Write and Buffer with Driver; only the input side differs
// (§4.5 "blocking and non-blocking forms sharing one algorithm").
type CoopDriver struct {
	p   *Parser
	buf *Buffer
}

// NewCoopDriver builds a CoopDriver over p and buf.
func NewCoopDriver(p *Parser, buf *Buffer) *CoopDriver {
	return &CoopDriver{p: p, buf: buf}
}

// Feed appends data to the buffer and drives the parser until either
// it can make no more progress with the buffered bytes (returns NeedMore —
// wait for the next readiness event) or the parser reaches MessageComplete
// or a terminal error. HeaderComplete is not returned: Feed carries on into
// the body with whatever bytes follow the header block.
func (d *CoopDriver) Feed(data []byte) Error {
	for len(data) > 0 {
		dst, berr := d.buf.Prepare(len(data))
		if berr != ErrNone {
			return berr
		}
		n := copy(dst, data)
		d.buf.Commit(n)
		data = data[n:]
	}
	for {
		n, status := d.p.Write(d.buf.Readable())
		d.buf.Consume(n)
		switch {
		case status == HeaderComplete:
			continue
		case status != NeedMore:
			return status
		case n == 0 || d.buf.Len() == 0:
			return NeedMore
		}
	}
}

// FeedEOF tells the parser the source will deliver no more bytes.
func (d *CoopDriver) FeedEOF() Error {
	return d.p.WriteEOF()
}
