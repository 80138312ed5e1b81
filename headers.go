// Copyright 2024 The httpwire Authors. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE file in the root of the source tree.

package httpwire

import (
	"github.com/intuitivelabs/bytescase"
)

// fieldT classifies a header field name the framing layer cares about.
// Everything else is fOther and is only ever forwarded to the sink.
type fieldT uint8

const (
	fOther fieldT = iota
	fContentLength
	fTransferEncoding
	fConnection
	fUpgrade
)

type fname2type struct {
	name []byte
	t    fieldT
}

// always lower-case; compared case-insensitively via bytescase
var knownFields = [...]fname2type{
	{[]byte("content-length"), fContentLength},
	{[]byte("transfer-encoding"), fTransferEncoding},
	{[]byte("connection"), fConnection},
	{[]byte("upgrade"), fUpgrade},
}

func classifyField(name []byte) fieldT {
	for _, f := range knownFields {
		if bytescase.CmpEq(name, f.name) {
			return f.t
		}
	}
	return fOther
}

// framing bits recorded while the header block is parsed (§3 "flags").
type framingFlags uint8

const (
	flagHaveContentLength framingFlags = 1 << iota
	flagChunked
	flagUpgrade
	flagConnectionClose
	flagConnectionKeepAlive
)

// Framing describes how the caller should determine the message body's
// length, per §4.3.
type Framing uint8

const (
	// FramingContentLength: the body is exactly ContentLength octets.
	FramingContentLength Framing = iota
	// FramingChunked: the body uses Transfer-Encoding: chunked.
	FramingChunked
	// FramingUntilEOF: the body runs until the connection (or write_eof) ends.
	FramingUntilEOF
	// FramingNone: no body is permitted for this message.
	FramingNone
)

// headerState is the internal, per-message state accumulated while
// parsing the header block: the framing flags and the raw Content-Length
// value, kept separate from the per-field resume state in fieldParser.
type headerState struct {
	flags         framingFlags
	contentLength uint64
	fieldCount    int
}

func (h *headerState) reset() {
	*h = headerState{}
}

// fieldParser parses one "Name: value CRLF" line, or the terminating
// bare CRLF. It is re-entrant across Write calls exactly like the
// teacher's ParseHdrLine: state is kept in the struct and buf[offs:] may
// only be a prefix of the line.
type fieldParser struct {
	name  Span
	value Span
	state uint8
}

const (
	hInit uint8 = iota
	hName
	hBeforeValue
	hValue
	hAfterValue
	hDone
)

func (f *fieldParser) reset() {
	*f = fieldParser{}
}

// errEndOfHeaders is a sentinel Error-shaped result that threads "this was
// the blank CRLF line" back to parseOneField's callers (the header block
// and the chunked trailer part) without a separate bool.
const errEndOfHeaders Error = 250

// parseOneField parses a single field line (or the terminating CRLF)
// starting at buf[offs]. Returns the new offset and one of: NeedMore,
// errEndOfHeaders (blank line consumed, headers are done), ErrNone
// (field parsed, f.name/f.value set), or a terminal Error.
func parseOneField(buf []byte, offs int, f *fieldParser) (int, Error) {
	i := offs
	switch f.state {
	case hInit:
		if i >= len(buf) {
			return i, NeedMore
		}
		if buf[i] == '\r' || buf[i] == '\n' {
			n := crlfAt(buf, i)
			if n < 0 {
				return i, NeedMore
			}
			if n != 2 {
				return i, ErrBadField // bare LF terminator: strict mode rejects
			}
			return i + n, errEndOfHeaders
		}
		f.name.Set(i, i)
		f.state = hName
		fallthrough
	case hName:
		i = skipToken(buf, i)
		if i >= len(buf) {
			return i, NeedMore
		}
		if buf[i] == ':' {
			f.name.Extend(i)
			if f.name.Empty() {
				return i, ErrBadField
			}
			i++
			f.value.Set(i, i)
			f.state = hBeforeValue
			goto beforeValue
		}
		// obs-fold (CRLF + WSP) or stray whitespace before ':' is rejected
		return i, ErrBadField
	case hBeforeValue:
		goto beforeValue
	case hValue:
		goto inValue
	case hAfterValue:
		goto afterValue
	case hDone:
		return i, ErrNone
	}
	return i, errBug

beforeValue:
	i = skipSPHT(buf, i)
	if i >= len(buf) {
		f.state = hBeforeValue
		return i, NeedMore
	}
	f.value.Set(i, i)
	f.state = hValue
inValue:
	i = skipFieldValueRun(buf, i)
	if i >= len(buf) {
		f.state = hValue
		return i, NeedMore
	}
	f.value.Extend(i)
	f.state = hAfterValue
afterValue:
	{
		n := crlfAt(buf, i)
		if n < 0 {
			return i, NeedMore
		}
		if n != 2 {
			return i, ErrBadValue // bare LF inside/ending a value: rejected
		}
		// reject obsolete line folding: a continuation line starts with
		// SP/HTAB right after the CRLF we just found.
		if i+n < len(buf) && (buf[i+n] == ' ' || buf[i+n] == '\t') {
			return i, ErrBadValue
		}
		vs, ve := trimOWS(buf, int(f.value.Off), i)
		f.value.Set(vs, ve)
		f.state = hDone
		return i + n, ErrNone
	}
}

// applyFraming folds one parsed field into the accumulated headerState,
// enforcing §4.1's framing-exclusivity rules. name/value are raw spans
// into buf; cmp is done case-insensitively for both the field name
// (already classified by the caller) and, for Transfer-Encoding, each
// comma-separated coding token.
func applyFraming(buf []byte, h *headerState, t fieldT, name, value Span) Error {
	switch t {
	case fContentLength:
		if h.flags&flagHaveContentLength != 0 {
			return ErrBadContentLength // duplicate Content-Length
		}
		if h.flags&flagChunked != 0 {
			return ErrBadContentLength // co-occurs with chunked
		}
		n, ok := decToU64(value.Get(buf))
		if !ok {
			return ErrBadContentLength
		}
		h.contentLength = n
		h.flags |= flagHaveContentLength
	case fTransferEncoding:
		if h.flags&flagHaveContentLength != 0 {
			return ErrBadTransferEncoding // co-occurs with Content-Length
		}
		last, err := lastTransferCoding(buf, value)
		if err != ErrNone {
			return err
		}
		if bytescase.CmpEq(last, []byte("chunked")) {
			h.flags |= flagChunked
		} else if h.flags&flagChunked != 0 {
			// "chunked" must be the last coding in the list
			return ErrBadTransferEncoding
		}
	case fConnection:
		for _, tok := range splitCommaTokens(buf, value) {
			if bytescase.CmpEq(tok, []byte("close")) {
				h.flags |= flagConnectionClose
			} else if bytescase.CmpEq(tok, []byte("keep-alive")) {
				h.flags |= flagConnectionKeepAlive
			}
		}
	case fUpgrade:
		h.flags |= flagUpgrade
	}
	return ErrNone
}

// lastTransferCoding returns the last comma-separated token in value and
// validates that "chunked", if present anywhere but last, is an error
// per §4.1 ("if chunked appears, it must be the last coding").
func lastTransferCoding(buf []byte, value Span) ([]byte, Error) {
	toks := splitCommaTokens(buf, value)
	if len(toks) == 0 {
		return nil, ErrBadTransferEncoding
	}
	for _, tok := range toks[:len(toks)-1] {
		if bytescase.CmpEq(tok, []byte("chunked")) {
			return nil, ErrBadTransferEncoding
		}
	}
	return toks[len(toks)-1], ErrNone
}

// splitCommaTokens splits value on commas, trims OWS from each piece,
// and drops empty pieces (RFC 7230 allows extra/empty list elements).
func splitCommaTokens(buf []byte, value Span) [][]byte {
	raw := value.Get(buf)
	var out [][]byte
	start := 0
	for i := 0; i <= len(raw); i++ {
		if i == len(raw) || raw[i] == ',' {
			s, e := trimOWS(raw, start, i)
			if e > s {
				out = append(out, raw[s:e])
			}
			start = i + 1
		}
	}
	return out
}
