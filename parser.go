// Copyright 2024 The httpwire Authors. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE file in the root of the source tree.

package httpwire

// HeaderSink receives the start-line and header fields as they are parsed
// (§6). Every method returns an Error; a non-ErrNone return aborts parsing
// and is propagated as the Write call's status. Slices passed to a sink
// method are only valid for the duration of that call — implementations
// that need to keep the data must copy it.
type HeaderSink interface {
	OnMethod(b []byte) Error
	OnPath(b []byte) Error
	OnVersion(v uint16) Error
	OnStatus(v uint16) Error
	OnReason(b []byte) Error
	OnField(name, value []byte) Error
	// OnHeader is called exactly once, after the blank line that ends the
	// header block, before Write returns HeaderComplete.
	OnHeader() Error
	// OnChunkExtension is called once per chunk that carries a non-empty
	// chunk-ext; ext is the raw ";token[=value]..." suffix, unparsed.
	OnChunkExtension(ext []byte) Error
}

// Parser incrementally parses one HTTP/1.x message: a start-line, a header
// block, and a body whose framing (§4.3) is derived from the headers. One
// Parser handles one message; call Reset to reuse it for the next message
// on a persistent connection.
type Parser struct {
	dir   Direction
	sink  HeaderSink
	bsink BodySink

	fl     FirstLine
	fp     fieldParser
	hstate headerState
	body   bodyState

	phase uint8

	maxHeaderBytes  int
	maxHeaderFields int
	skipBody        bool

	headerBytes int
	resume      int // offset the in-progress start-line or field line resumes at
}

const (
	pFirstLine uint8 = iota
	pHeaders
	pBodyCL
	pBodyChunked
	pBodyUntilEOF
	pBodyNone
	pDone
	pError
)

// NewParser constructs a Parser for the given direction. sink receives the
// start-line and header fields; bsink receives body octets. Either may be
// nil if the caller has no interest in that half (a nil bsink still works
// correctly for FramingNone bodies, but Write will panic on the first body
// byte of a non-empty body — pass a real sink, even a discarding one, for
// any message that might carry one).
func NewParser(dir Direction, sink HeaderSink, bsink BodySink) *Parser {
	return &Parser{dir: dir, sink: sink, bsink: bsink}
}

// Reset reinitializes p to parse a new message with the same sinks and
// limits, discarding all in-progress state. Use between messages on a
// keep-alive connection.
func (p *Parser) Reset() {
	p.fl.Reset()
	p.fp.reset()
	p.hstate.reset()
	p.body.reset()
	p.phase = pFirstLine
	p.headerBytes = 0
	p.resume = 0
}

// SkipBody tells the parser to report the body (if any) as FramingNone and
// move straight to MessageComplete once the header block is done, without
// invoking bsink. Used for responses to HEAD requests and other cases
// where the caller already knows no body follows regardless of what the
// headers say (§12).
func (p *Parser) SkipBody(skip bool) {
	p.skipBody = skip
}

// SetHeaderLimits caps the header block at maxBytes octets and maxFields
// fields; zero means unbounded (the default). Exceeding either surfaces as
// ErrHeaderTooLarge (§12).
func (p *Parser) SetHeaderLimits(maxBytes, maxFields int) {
	p.maxHeaderBytes = maxBytes
	p.maxHeaderFields = maxFields
}

// TakeFraming returns the body framing mode determined at header-complete
// and, for FramingContentLength, the declared length. It is only valid
// once Write has returned HeaderComplete for the current message.
func (p *Parser) TakeFraming() (Framing, uint64, Error) {
	if p.phase == pFirstLine || p.phase == pHeaders {
		return 0, 0, errBug
	}
	return p.body.framing, p.hstate.contentLength, ErrNone
}

// KeepAlive reports whether the connection should remain open after this
// message completes, per RFC 7230 §6.1/§6.3: HTTP/1.1 defaults to
// persistent unless "Connection: close" was seen; HTTP/1.0 defaults to
// non-persistent unless "Connection: keep-alive" was seen. Only
// meaningful once HeaderComplete has been observed (§12).
func (p *Parser) KeepAlive() bool {
	if p.hstate.flags&flagConnectionClose != 0 {
		return false
	}
	if p.fl.Version >= 11 {
		return true
	}
	return p.hstate.flags&flagConnectionKeepAlive != 0
}

// Write feeds buf — the currently readable prefix of the caller's octet
// buffer — to the parser and returns how many bytes were consumed and
// what happened (§4, §4.5). The driver is expected to call buffer.consume
// with the returned count and, on NeedMore, append more input and call
// Write again with the new readable prefix.
//
// Each call advances by exactly one bounded step (one start-line, one
// header field, one chunk-header line, one slice of body data, or one
// trailer field) and returns as soon as that step's outcome is known. A
// caller driving the message to completion loops on NeedMore.
func (p *Parser) Write(buf []byte) (int, Error) {
	switch p.phase {
	case pFirstLine:
		return p.writeFirstLine(buf)
	case pHeaders:
		return p.writeHeaderField(buf)
	case pBodyCL:
		n, err := writeContentLength(buf, &p.body, p.bsink)
		if err == MessageComplete {
			p.phase = pDone
		} else if err.Terminal() {
			p.phase = pError
		}
		return n, err
	case pBodyChunked:
		n, err := writeChunked(buf, &p.body, p.bsink, p.onChunkExt, p.onTrailer)
		if err == MessageComplete {
			p.phase = pDone
		} else if err.Terminal() {
			p.phase = pError
		}
		return n, err
	case pBodyUntilEOF:
		return writeUntilEOF(buf, p.bsink)
	case pBodyNone:
		p.phase = pDone
		if p.bsink != nil {
			if err := p.bsink.Finish(); err != ErrNone {
				p.phase = pError
				return 0, err
			}
		}
		return 0, MessageComplete
	case pDone:
		return 0, MessageComplete
	case pError:
		return 0, errBug
	}
	return 0, errBug
}

// WriteEOF tells the parser the byte source reached end-of-input. For an
// until-EOF body this is the normal, expected termination (§4.3); for any
// other in-progress phase it is a premature close and surfaces as
// ErrShortRead, except between messages (pFirstLine with nothing parsed
// yet), which is a clean connection close the driver should treat as
// ordinary EOF rather than an error.
func (p *Parser) WriteEOF() Error {
	switch p.phase {
	case pBodyUntilEOF:
		p.phase = pDone
		if p.bsink != nil {
			if err := p.bsink.Finish(); err != ErrNone {
				p.phase = pError
				return err
			}
		}
		return MessageComplete
	case pFirstLine:
		if p.fl.state == flInit {
			return MessageComplete
		}
		p.phase = pError
		return ErrShortRead
	case pDone:
		return MessageComplete
	default:
		p.phase = pError
		return ErrShortRead
	}
}

func (p *Parser) writeFirstLine(buf []byte) (int, Error) {
	if len(buf) == 0 {
		// leave p.fl in flInit so WriteEOF can tell a clean close
		return 0, NeedMore
	}
	var n int
	var err Error
	if p.dir == DirRequest {
		n, err = ParseRequestLine(buf, p.resume, &p.fl)
	} else {
		n, err = ParseStatusLine(buf, p.resume, &p.fl)
	}
	p.resume = 0
	switch err {
	case NeedMore:
		p.resume = n
		return 0, NeedMore
	case ErrNone:
		if p.maxHeaderBytes > 0 && n > p.maxHeaderBytes {
			p.phase = pError
			return n, ErrHeaderTooLarge
		}
		p.headerBytes = n
		if e := p.dispatchFirstLine(buf); e != ErrNone {
			p.phase = pError
			return n, e
		}
		p.phase = pHeaders
		return n, NeedMore
	default:
		p.phase = pError
		return n, err
	}
}

func (p *Parser) dispatchFirstLine(buf []byte) Error {
	if p.sink == nil {
		return ErrNone
	}
	if p.dir == DirRequest {
		if err := p.sink.OnMethod(p.fl.Method.Get(buf)); err != ErrNone {
			return err
		}
		if err := p.sink.OnPath(p.fl.Target.Get(buf)); err != ErrNone {
			return err
		}
		return p.sink.OnVersion(p.fl.Version)
	}
	if err := p.sink.OnVersion(p.fl.Version); err != ErrNone {
		return err
	}
	if err := p.sink.OnStatus(p.fl.Status); err != ErrNone {
		return err
	}
	return p.sink.OnReason(p.fl.Reason.Get(buf))
}

// writeHeaderField advances the header block by exactly one field line (or
// the terminating blank line). Like writeChunked's steps, buf always starts
// at the beginning of the line: a NeedMore return reports zero consumed and
// records in p.resume where the scan stopped, so the next call sees the
// same bytes at the same offsets p.fp's spans already point into and
// continues from p.resume.
func (p *Parser) writeHeaderField(buf []byte) (int, Error) {
	n, err := parseOneField(buf, p.resume, &p.fp)
	p.resume = 0
	switch err {
	case NeedMore:
		p.resume = n
		return 0, NeedMore
	case errEndOfHeaders:
		if e := p.finishHeaders(); e != ErrNone {
			p.phase = pError
			return n, e
		}
		return n, HeaderComplete
	case ErrNone:
		if p.maxHeaderFields > 0 {
			p.hstate.fieldCount++
			if p.hstate.fieldCount > p.maxHeaderFields {
				p.phase = pError
				return n, ErrHeaderTooLarge
			}
		}
		if p.maxHeaderBytes > 0 {
			p.headerBytes += n
			if p.headerBytes > p.maxHeaderBytes {
				p.phase = pError
				return n, ErrHeaderTooLarge
			}
		}
		name := p.fp.name.Get(buf)
		value := p.fp.value.Get(buf)
		t := classifyField(name)
		if ferr := applyFraming(buf, &p.hstate, t, p.fp.name, p.fp.value); ferr != ErrNone {
			p.phase = pError
			return n, ferr
		}
		if p.sink != nil {
			if serr := p.sink.OnField(name, value); serr != ErrNone {
				p.phase = pError
				return n, serr
			}
		}
		p.fp.reset()
		return n, NeedMore
	default:
		p.phase = pError
		return n, err
	}
}

// finishHeaders resolves the body framing from the accumulated header
// state (§4.3, §12) and transitions to the matching body phase.
func (p *Parser) finishHeaders() Error {
	if p.sink != nil {
		if err := p.sink.OnHeader(); err != ErrNone {
			return err
		}
	}
	switch {
	case p.skipBody:
		p.body.framing = FramingNone
		p.phase = pBodyNone
	case p.hstate.flags&flagChunked != 0:
		p.body.framing = FramingChunked
		p.phase = pBodyChunked
	case p.hstate.flags&flagHaveContentLength != 0:
		p.body.framing = FramingContentLength
		p.body.remaining = p.hstate.contentLength
		if p.body.remaining == 0 {
			p.phase = pBodyNone
		} else {
			p.phase = pBodyCL
		}
	case p.dir == DirRequest:
		// RFC 7230 §3.3.3 (6): a request with neither header has no body.
		p.body.framing = FramingNone
		p.phase = pBodyNone
	default:
		p.body.framing = FramingUntilEOF
		p.phase = pBodyUntilEOF
	}
	return ErrNone
}

// onChunkExt accounts a chunk-extension's bytes against the same header
// byte budget as the header block (§12 "chunk-extension accounting"),
// closing the unbounded-many-small-chunks memory hole, then forwards the
// extension to the sink.
func (p *Parser) onChunkExt(ext []byte) Error {
	if p.maxHeaderBytes > 0 {
		p.headerBytes += len(ext)
		if p.headerBytes > p.maxHeaderBytes {
			return ErrHeaderTooLarge
		}
	}
	if p.sink == nil {
		return ErrNone
	}
	return p.sink.OnChunkExtension(ext)
}

func (p *Parser) onTrailer(name, value []byte) Error {
	if p.sink == nil {
		return ErrNone
	}
	return p.sink.OnField(name, value)
}
