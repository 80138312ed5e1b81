// Copyright 2024 The httpwire Authors. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE file in the root of the source tree.

package httpwire

// Error is the stable error-kind enumeration produced by the parser (§7).
// It is a small, comparable value: callers can switch on it directly
// (err == ErrBadMethod) instead of unwrapping. The parser never allocates
// on the error path and never wraps these in another error type itself;
// wrapping (with call-site context) is left to the driver/caller layer.
type Error uint8

// Error kinds. NeedMore is a control signal, not a terminal failure: it
// drives another read in the parse-all driver and is never surfaced to
// a parse-all caller (§7 propagation policy).
const (
	ErrNone Error = iota
	NeedMore
	// HeaderComplete is returned by Parser.Write once the start-line and
	// header block have been fully parsed and dispatched to the
	// HeaderSink. TakeFraming becomes valid once this is seen.
	HeaderComplete
	// MessageComplete is returned once the body (or the absence of one)
	// has been fully delivered to the BodySink.
	MessageComplete
	ErrBadMethod
	ErrBadPath
	ErrBadVersion
	ErrBadStatus
	ErrBadReason
	ErrBadField
	ErrBadValue
	ErrBadContentLength
	ErrBadTransferEncoding
	ErrBadChunkSize
	ErrBadChunkExtension
	ErrBadChunkData
	ErrShortRead
	ErrBufferOverflow
	ErrHeaderTooLarge
	errBug // internal invariant violation; never returned on a valid build
)

var errStr = [...]string{
	ErrNone:                "no error",
	NeedMore:                "need more data",
	HeaderComplete:          "header block complete",
	MessageComplete:         "message complete",
	ErrBadMethod:            "invalid request method",
	ErrBadPath:              "invalid request target",
	ErrBadVersion:           "invalid HTTP version",
	ErrBadStatus:            "invalid status code",
	ErrBadReason:            "invalid reason phrase",
	ErrBadField:             "invalid header field name",
	ErrBadValue:             "invalid header field value",
	ErrBadContentLength:     "invalid or conflicting Content-Length",
	ErrBadTransferEncoding:  "invalid or conflicting Transfer-Encoding",
	ErrBadChunkSize:         "invalid chunk size",
	ErrBadChunkExtension:    "invalid chunk extension",
	ErrBadChunkData:         "chunk data missing trailing CRLF",
	ErrShortRead:            "end of input before framing-declared end",
	ErrBufferOverflow:       "parse buffer allocation refused",
	ErrHeaderTooLarge:       "header block exceeds configured limit",
	errBug:                  "internal parser error (bug)",
}

// Error implements the error interface.
func (e Error) Error() string {
	if int(e) >= len(errStr) {
		return "unknown httpwire error"
	}
	return errStr[e]
}

// Terminal reports whether e is a terminal failure rather than the
// NeedMore control signal or the zero value.
func (e Error) Terminal() bool {
	switch e {
	case ErrNone, NeedMore, HeaderComplete, MessageComplete:
		return false
	}
	return true
}
