// Copyright 2024 The httpwire Authors. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE file in the root of the source tree.

// Package message is a ready-made httpwire.HeaderSink collaborator for
// callers who want a whole parsed message rather than field-by-field
// callbacks. It sits above the core parser package, not inside it — the
// core's contract is the callback interfaces, and this is one possible
// consumer of them, the way the distillation's §1 frames "higher-level
// message containers" as out of the core's scope.
package message

import (
	"github.com/intuitivelabs/httpwire"
)

// Header is one collected field, in the order it was seen on the wire.
type Header struct {
	Name  string
	Value string
}

// Message accumulates one parsed HTTP/1.x message: start-line, headers in
// order, and whatever chunk extensions were seen. It copies every byte out
// of the parser's borrowed spans, so it remains valid after the parser
// reuses its buffer for the next message.
type Message struct {
	Method  string
	Path    string
	Version uint16
	Status  uint16
	Reason  string

	Headers    []Header
	ChunkExts  []string
	Trailers   []Header
	headerDone bool
}

// Reset clears the message for reuse across a keep-alive connection's
// messages, mirroring Parser.Reset.
func (m *Message) Reset() {
	m.Method, m.Path, m.Reason = "", "", ""
	m.Version, m.Status = 0, 0
	m.Headers = m.Headers[:0]
	m.ChunkExts = m.ChunkExts[:0]
	m.Trailers = m.Trailers[:0]
	m.headerDone = false
}

// Get returns the value of the first header matching name, case-sensitively
// (callers wanting case-insensitive lookup should fold name themselves —
// the collector does not re-implement bytescase comparison at this layer).
func (m *Message) Get(name string) (string, bool) {
	for _, h := range m.Headers {
		if h.Name == name {
			return h.Value, true
		}
	}
	return "", false
}

// HeaderCollector adapts a *Message into an httpwire.HeaderSink. Header
// fields seen after HeaderComplete (i.e. chunked trailers, which the parser
// also funnels through OnField) are appended to Trailers instead of
// Headers once OnHeader has fired.
type HeaderCollector struct {
	M *Message
}

// NewHeaderCollector returns a HeaderCollector writing into m.
func NewHeaderCollector(m *Message) *HeaderCollector {
	return &HeaderCollector{M: m}
}

func (c *HeaderCollector) OnMethod(b []byte) httpwire.Error {
	c.M.Method = string(b)
	return httpwire.ErrNone
}

func (c *HeaderCollector) OnPath(b []byte) httpwire.Error {
	c.M.Path = string(b)
	return httpwire.ErrNone
}

func (c *HeaderCollector) OnVersion(v uint16) httpwire.Error {
	c.M.Version = v
	return httpwire.ErrNone
}

func (c *HeaderCollector) OnStatus(v uint16) httpwire.Error {
	c.M.Status = v
	return httpwire.ErrNone
}

func (c *HeaderCollector) OnReason(b []byte) httpwire.Error {
	c.M.Reason = string(b)
	return httpwire.ErrNone
}

func (c *HeaderCollector) OnField(name, value []byte) httpwire.Error {
	h := Header{Name: string(name), Value: string(value)}
	if c.M.headerDone {
		c.M.Trailers = append(c.M.Trailers, h)
	} else {
		c.M.Headers = append(c.M.Headers, h)
	}
	return httpwire.ErrNone
}

func (c *HeaderCollector) OnHeader() httpwire.Error {
	c.M.headerDone = true
	return httpwire.ErrNone
}

func (c *HeaderCollector) OnChunkExtension(ext []byte) httpwire.Error {
	c.M.ChunkExts = append(c.M.ChunkExts, string(ext))
	return httpwire.ErrNone
}
