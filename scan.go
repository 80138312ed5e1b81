// Copyright 2024 The httpwire Authors. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE file in the root of the source tree.

package httpwire

// Low level scanning helpers shared by the start-line, header and chunk
// parsers. The skip helpers operate on buf[i:] and return an advanced
// offset; crlfAt returns -1 when the answer cannot yet be determined from
// the bytes available. None of them allocate.

// skipToken advances i over a run of token chars (classToken) and stops
// at the first non-token byte (which may be i itself, for a zero-length
// run). It never reports NeedMore: the caller decides what an
// end-of-buffer mid-run means.
func skipToken(buf []byte, i int) int {
	for i < len(buf) && octetClass[buf[i]]&classToken != 0 {
		i++
	}
	return i
}

// skipTextRun advances i over text chars (classText), stopping at the
// first CTL/SP byte or end of buffer.
func skipTextRun(buf []byte, i int) int {
	for i < len(buf) && octetClass[buf[i]]&classText != 0 {
		i++
	}
	return i
}

// skipFieldValueRun advances i over field-value chars (classFValue),
// stopping at the first CR/LF or disallowed byte.
func skipFieldValueRun(buf []byte, i int) int {
	for i < len(buf) && octetClass[buf[i]]&classFValue != 0 {
		i++
	}
	return i
}

// skipSPHT advances i over a run of SP/HTAB only (no CRLF continuation:
// strict mode rejects obsolete line folding).
func skipSPHT(buf []byte, i int) int {
	for i < len(buf) && (buf[i] == ' ' || buf[i] == '\t') {
		i++
	}
	return i
}

// trimOWS strips leading and trailing SP/HTAB from buf[off:end] and
// returns the trimmed [start:end) bounds.
func trimOWS(buf []byte, off, end int) (int, int) {
	for off < end && (buf[off] == ' ' || buf[off] == '\t') {
		off++
	}
	for end > off && (buf[end-1] == ' ' || buf[end-1] == '\t') {
		end--
	}
	return off, end
}

// crlfAt reports the length (2, or 1 for a bare LF) of a line terminator
// starting at buf[i], 0 if buf[i:] is not a terminator (including a CR
// followed by anything but LF), or -1 if more bytes are needed to tell.
// It only reports what it sees: strict mode (§6 "no bare LF") is enforced
// by the callers, which reject any result other than 2.
func crlfAt(buf []byte, i int) int {
	if i >= len(buf) {
		return -1 // unknown, need more bytes
	}
	if buf[i] == '\n' {
		return 1
	}
	if buf[i] == '\r' {
		if i+1 >= len(buf) {
			return -1
		}
		if buf[i+1] == '\n' {
			return 2
		}
		return 0
	}
	return 0
}

// hexToU64 parses an ASCII hex run as an unsigned 64-bit integer with
// overflow detection. It returns ok=false on an empty run, a non-hex
// byte, or overflow.
func hexToU64(b []byte) (uint64, bool) {
	if len(b) == 0 {
		return 0, false
	}
	var v uint64
	for _, c := range b {
		var d uint64
		switch {
		case c >= '0' && c <= '9':
			d = uint64(c - '0')
		case c >= 'a' && c <= 'f':
			d = uint64(c-'a') + 10
		case c >= 'A' && c <= 'F':
			d = uint64(c-'A') + 10
		default:
			return 0, false
		}
		if v > (1<<64-1)>>4 {
			return 0, false // would overflow on the next shift
		}
		v = v<<4 | d
	}
	return v, true
}

// decToU64 parses an ASCII decimal run as an unsigned 64-bit integer with
// overflow detection, used for Content-Length.
func decToU64(b []byte) (uint64, bool) {
	if len(b) == 0 {
		return 0, false
	}
	var v uint64
	for _, c := range b {
		if !isDigit(c) {
			return 0, false
		}
		d := uint64(c - '0')
		if v > (1<<64-1-d)/10 {
			return 0, false // would overflow
		}
		v = v*10 + d
	}
	return v, true
}
