// Copyright 2024 The httpwire Authors. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE file in the root of the source tree.

package httpwire

// chunkParser implements the chunked-transfer-coding grammar (§4.2):
//
//	chunked-body   = *chunk last-chunk trailer-part CRLF
//	chunk          = chunk-size [ chunk-ext ] CRLF chunk-data CRLF
//	last-chunk     = 1*("0") [ chunk-ext ] CRLF
//	trailer-part   = *( field-line CRLF )
type chunkParser struct {
	size uint64 // size of the chunk currently being read/skipped
	ext  Span   // opaque chunk-extension slice (";...") for the current chunk
	state  uint8
	field  fieldParser // reused while scanning trailer fields
}

const (
	cAwaitSize uint8 = iota
	cSizeDigits
	cExt
	cSizeCRLF
	cData
	cDataCRLF
	cTrailers
	cDone
)

func (c *chunkParser) reset() {
	c.field.reset()
	*c = chunkParser{field: c.field}
}

// parseChunkHeader parses one "chunk-size [chunk-ext] CRLF" line,
// starting at buf[offs]. On success it returns the offset of the first
// data byte (or, for the last chunk, the offset where trailers begin)
// and ErrNone with c.size set. It never reads chunk-data itself — that
// is the body dispatcher's job, so it can push bytes to the sink without
// copying through this parser.
func parseChunkHeader(buf []byte, offs int, c *chunkParser) (int, Error) {
	i := offs
	switch c.state {
	case cAwaitSize:
		c.state = cSizeDigits
		fallthrough
	case cSizeDigits:
		start := i
		for i < len(buf) && octetClass[buf[i]]&classHex != 0 {
			i++
		}
		if i >= len(buf) {
			return start, NeedMore
		}
		if i == start {
			return i, ErrBadChunkSize
		}
		n, ok := hexToU64(buf[start:i])
		if !ok {
			return start, ErrBadChunkSize
		}
		c.size = n
		c.state = cExt
		fallthrough
	case cExt:
		if i < len(buf) && buf[i] == ';' {
			start := i
			// chunk-ext runs up to CRLF; re-use the field-value char class
			// (no CTL, SP/HTAB allowed) since extensions share that grammar.
			for {
				i = skipFieldValueRun(buf, i)
				if i >= len(buf) {
					return start, NeedMore
				}
				if buf[i] == '\r' || buf[i] == '\n' {
					break // the terminator is checked in cSizeCRLF
				}
				// the value run only stops on a CTL byte (quotes are part
				// of the run); any CTL other than CR/LF is rejected
				if isCtl(buf[i]) {
					return i, ErrBadChunkExtension
				}
				i++
			}
			c.ext.Set(start, i)
		} else {
			c.ext.Reset()
		}
		c.state = cSizeCRLF
		fallthrough
	case cSizeCRLF:
		n := crlfAt(buf, i)
		if n < 0 {
			return i, NeedMore
		}
		if n != 2 {
			return i, ErrBadChunkSize
		}
		i += n
		if c.size == 0 {
			c.state = cTrailers
		} else {
			c.state = cDone
		}
		return i, ErrNone
	case cDone, cTrailers:
		return i, ErrNone
	}
	return i, errBug
}

// chunkDataCRLF confirms the CRLF that terminates a chunk's data
// (including the zero-length final chunk's absent-data case is handled
// by the body dispatcher, which never calls this for the last chunk).
func chunkDataCRLF(buf []byte, offs int) (int, Error) {
	n := crlfAt(buf, offs)
	if n < 0 {
		return offs, NeedMore
	}
	if n != 2 {
		return offs, ErrBadChunkData
	}
	return offs + n, ErrNone
}
