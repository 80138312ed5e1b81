// Copyright 2024 The httpwire Authors. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE file in the root of the source tree.

package httpwire

// Direction tells the parser which grammar to apply to the start line:
// a client-side parser reads responses, a server-side parser reads
// requests. Unlike the teacher package (which sniffs "HTTP/" to decide),
// the direction is known up front by whichever side of the connection
// owns the parser, so it is taken as an explicit constructor parameter
// rather than guessed from the wire.
type Direction uint8

const (
	// DirRequest parses request lines: "method SP target SP version CRLF".
	DirRequest Direction = iota
	// DirResponse parses status lines: "version SP status SP reason CRLF".
	DirResponse
)

// FirstLine holds the parsed request or status line, plus its internal
// resume state. Only the fields relevant to Direction are populated.
type FirstLine struct {
	// request fields
	Method Span
	Target Span

	// response fields
	Status     uint16
	StatusText Span
	Reason     Span

	// common
	Version uint16 // 10*major + minor

	state uint8
}

// Reset reinitializes fl for reuse.
func (fl *FirstLine) Reset() {
	*fl = FirstLine{}
}

// internal first-line parser states
const (
	flInit uint8 = iota
	flMethod
	flTarget
	flReqVersion
	flRspVersion
	flStatus
	flReason
	flCRLF
	flDone
)

var httpSlash = []byte("HTTP/")

// parseVersion parses "HTTP/d.d" starting at buf[i], where i already
// points at 'H'. It returns the offset just past the digits (before the
// terminator), the encoded version, and an error. On NeedMore the returned
// offset is i, so the caller can retry from the same place.
func parseVersion(buf []byte, i int) (int, uint16, Error) {
	if len(buf)-i < len(httpSlash) {
		if !bytesHavePrefix(buf[i:], httpSlash[:len(buf)-i]) {
			return i, 0, ErrBadVersion
		}
		return i, 0, NeedMore
	}
	if !bytesEqual(buf[i:i+len(httpSlash)], httpSlash) {
		return i, 0, ErrBadVersion
	}
	i += len(httpSlash)
	if len(buf)-i < 3 {
		return i - len(httpSlash), 0, NeedMore
	}
	if !isDigit(buf[i]) || buf[i+1] != '.' || !isDigit(buf[i+2]) {
		return i, 0, ErrBadVersion
	}
	major := buf[i] - '0'
	minor := buf[i+2] - '0'
	return i + 3, uint16(major)*10 + uint16(minor), ErrNone
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func bytesHavePrefix(b, prefix []byte) bool {
	if len(b) > len(prefix) {
		return false
	}
	return bytesEqual(b, prefix[:len(b)])
}

// ParseRequestLine parses "method SP request-target SP HTTP-version CRLF"
// starting at buf[offs]. It returns the offset immediately after the
// line and an error; NeedMore means it should be called again with the
// same fl once more bytes are appended to buf (offs should then be the
// returned offset).
func ParseRequestLine(buf []byte, offs int, fl *FirstLine) (int, Error) {
	i := offs
	switch fl.state {
	case flInit:
		fl.Method.Set(i, i)
		fl.state = flMethod
		fallthrough
	case flMethod:
		i = skipToken(buf, i)
		if i >= len(buf) {
			return i, NeedMore
		}
		if buf[i] != ' ' {
			return i, ErrBadMethod
		}
		fl.Method.Extend(i)
		if fl.Method.Empty() {
			return i, ErrBadMethod
		}
		i++
		fl.Target.Set(i, i)
		fl.state = flTarget
		fallthrough
	case flTarget:
		i = skipTextRun(buf, i)
		if i >= len(buf) {
			return i, NeedMore
		}
		if buf[i] != ' ' {
			return i, ErrBadPath
		}
		fl.Target.Extend(i)
		if fl.Target.Empty() {
			return i, ErrBadPath
		}
		i++
		fl.state = flReqVersion
		fallthrough
	case flReqVersion:
		n, ver, err := parseVersion(buf, i)
		if err != ErrNone {
			return n, err
		}
		fl.Version = ver
		i = n
		fl.state = flCRLF
		fallthrough
	case flCRLF:
		n := crlfAt(buf, i)
		if n < 0 {
			return i, NeedMore
		}
		if n != 2 {
			return i, ErrBadVersion // bare LF or stray CR: strict mode rejects
		}
		i += n
		fl.state = flDone
		return i, ErrNone
	case flDone:
		return i, ErrNone
	}
	return i, errBug
}

// ParseStatusLine parses "HTTP-version SP status-code SP reason-phrase
// CRLF" starting at buf[offs]. Same resumption contract as
// ParseRequestLine.
func ParseStatusLine(buf []byte, offs int, fl *FirstLine) (int, Error) {
	i := offs
	switch fl.state {
	case flInit:
		fl.state = flRspVersion
		fallthrough
	case flRspVersion:
		n, ver, err := parseVersion(buf, i)
		if err != ErrNone {
			return n, err
		}
		fl.Version = ver
		i = n
		if i >= len(buf) {
			return offs, NeedMore // still flRspVersion: retry from the version's start
		}
		if buf[i] != ' ' {
			return i, ErrBadVersion
		}
		i++
		fl.state = flStatus
		fallthrough
	case flStatus:
		if len(buf)-i < 4 {
			return i, NeedMore
		}
		if !isDigit(buf[i]) || !isDigit(buf[i+1]) || !isDigit(buf[i+2]) {
			return i, ErrBadStatus
		}
		if buf[i+3] != ' ' {
			return i, ErrBadStatus
		}
		fl.StatusText.Set(i, i+3)
		fl.Status = uint16(buf[i]-'0')*100 + uint16(buf[i+1]-'0')*10 + uint16(buf[i+2]-'0')
		i += 4
		fl.Reason.Set(i, i)
		fl.state = flReason
		fallthrough
	case flReason:
		i = skipFieldValueRun(buf, i) // reason-phrase allows internal SP/HTAB
		n := crlfAt(buf, i)
		if n < 0 {
			return i, NeedMore
		}
		fl.Reason.Extend(i)
		if fl.Reason.Empty() {
			return i, ErrBadReason
		}
		if n != 2 {
			return i, ErrBadReason
		}
		i += n
		fl.state = flDone
		return i, ErrNone
	case flDone:
		return i, ErrNone
	}
	return i, errBug
}
