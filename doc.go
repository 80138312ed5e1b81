// Copyright 2024 The httpwire Authors. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE file in the root of the source tree.

// Package httpwire implements an incremental HTTP/1.x message parser
// (RFC 7230) for both blocking and non-blocking byte-stream consumers.
//
// The parser accepts arbitrary fragments of a request or response octet
// stream, validates them against the HTTP/1.1 grammar, and surfaces the
// start-line, header fields and body in a streaming fashion through the
// callbacks defined in HeaderSink and BodySink. No callback requires a
// complete message to be buffered; the parser can be fed one byte at a
// time and will produce the same result as feeding it whole.
//
// Serialization, concrete byte-source implementations, TLS, WebSocket
// upgrade negotiation and HTTP/2+ framing are out of scope: the parser
// only recognizes the Upgrade header, it does not negotiate it.
package httpwire
