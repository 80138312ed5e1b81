// Copyright 2024 The httpwire Authors. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE file in the root of the source tree.

package httpwire

// Span is an offset and length into a buffer the parser borrows but does
// not own. Parsed tokens (method, target, version, field names/values...)
// are represented this way rather than as copied strings, so that a
// Write call that only sees a prefix of a token can resume it without
// any allocation.
type Span struct {
	Off uint32
	Len uint32
}

// Set points s at [start:end).
func (s *Span) Set(start, end int) {
	if end < start {
		panic("httpwire: invalid span range")
	}
	s.Off = uint32(start)
	s.Len = uint32(end - start)
}

// Extend grows s so it ends at newEnd (newEnd must be >= s.Off).
func (s *Span) Extend(newEnd int) {
	if newEnd < int(s.Off) {
		panic("httpwire: invalid span end")
	}
	s.Len = uint32(newEnd) - s.Off
}

// Reset clears s to the empty span at offset 0.
func (s *Span) Reset() {
	*s = Span{}
}

// Empty reports whether s has zero length.
func (s Span) Empty() bool {
	return s.Len == 0
}

// End returns the offset immediately after the span.
func (s Span) End() int {
	return int(s.Off) + int(s.Len)
}

// Get returns the byte slice s designates inside buf.
func (s Span) Get(buf []byte) []byte {
	return buf[s.Off : s.Off+s.Len]
}
