// Copyright 2024 The httpwire Authors. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE file in the root of the source tree.

package httpwire_test

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/intuitivelabs/httpwire"
)

// recSink is a HeaderSink that records everything it sees, in order, for
// comparing callback sequences across differently-fragmented inputs (S6).
type recSink struct {
	method, path, reason string
	version, status      uint16
	fields               [][2]string
	chunkExts            []string
	headerDone           bool
}

func (s *recSink) OnMethod(b []byte) httpwire.Error  { s.method = string(b); return httpwire.ErrNone }
func (s *recSink) OnPath(b []byte) httpwire.Error    { s.path = string(b); return httpwire.ErrNone }
func (s *recSink) OnVersion(v uint16) httpwire.Error { s.version = v; return httpwire.ErrNone }
func (s *recSink) OnStatus(v uint16) httpwire.Error  { s.status = v; return httpwire.ErrNone }
func (s *recSink) OnReason(b []byte) httpwire.Error  { s.reason = string(b); return httpwire.ErrNone }
func (s *recSink) OnField(name, value []byte) httpwire.Error {
	s.fields = append(s.fields, [2]string{string(name), string(value)})
	return httpwire.ErrNone
}
func (s *recSink) OnHeader() httpwire.Error { s.headerDone = true; return httpwire.ErrNone }
func (s *recSink) OnChunkExtension(ext []byte) httpwire.Error {
	s.chunkExts = append(s.chunkExts, string(ext))
	return httpwire.ErrNone
}

// recBody collects the body into one buffer.
type recBody struct {
	buf      []byte
	finished bool
}

func (b *recBody) Prepare(n int) ([]byte, httpwire.Error) {
	cur := len(b.buf)
	grown := make([]byte, cur+n)
	copy(grown, b.buf)
	b.buf = grown[:cur]
	return grown[cur : cur+n], httpwire.ErrNone
}
func (b *recBody) Commit(k int) httpwire.Error {
	b.buf = b.buf[:len(b.buf)+k]
	return httpwire.ErrNone
}
func (b *recBody) Finish() httpwire.Error { b.finished = true; return httpwire.ErrNone }

// oneByteReader returns at most one byte per Read call, for byte-by-byte
// fragmentation testing (S6).
type oneByteReader struct {
	r *bytes.Reader
}

func (o *oneByteReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	return o.r.Read(p[:1])
}

func runOnce(t *testing.T, dir httpwire.Direction, src io.Reader) (*recSink, *recBody, httpwire.Error) {
	t.Helper()
	sink := &recSink{}
	body := &recBody{}
	p := httpwire.NewParser(dir, sink, body)
	buf := httpwire.NewBuffer(nil)
	d := httpwire.NewDriver(p, body, src, buf)
	status := d.Run(httpwire.ParseAll)
	return sink, body, status
}

func TestSimpleGet(t *testing.T) { // S1
	const in = "GET / HTTP/1.1\r\nUser-Agent: Beast\r\n\r\n"
	sink, body, status := runOnce(t, httpwire.DirRequest, bytes.NewReader([]byte(in)))
	if status != httpwire.MessageComplete {
		t.Fatalf("status = %v, want MessageComplete", status)
	}
	if sink.method != "GET" || sink.path != "/" || sink.version != 11 {
		t.Fatalf("first line = %q %q %d", sink.method, sink.path, sink.version)
	}
	if len(sink.fields) != 1 || sink.fields[0] != [2]string{"User-Agent", "Beast"} {
		t.Fatalf("fields = %v", sink.fields)
	}
	if len(body.buf) != 0 {
		t.Fatalf("body = %q, want empty", body.buf)
	}
	if !body.finished {
		t.Fatal("body sink never finished")
	}
}

func TestContentLengthResponse(t *testing.T) { // S2
	const in = "HTTP/1.0 200 OK\r\nServer: test\r\nContent-Length: 5\r\n\r\n*****"
	sink, body, status := runOnce(t, httpwire.DirResponse, bytes.NewReader([]byte(in)))
	if status != httpwire.MessageComplete {
		t.Fatalf("status = %v, want MessageComplete", status)
	}
	if sink.version != 10 || sink.status != 200 || sink.reason != "OK" {
		t.Fatalf("status line = %d %d %q", sink.version, sink.status, sink.reason)
	}
	if string(body.buf) != "*****" {
		t.Fatalf("body = %q", body.buf)
	}
}

const s3Input = "HTTP/1.0 200 OK\r\nServer: test\r\nTransfer-Encoding: chunked\r\n\r\n" +
	"5\r\n*****\r\n2;a;b=1;c=\"2\"\r\n--\r\n0;d;e=3;f=\"4\"\r\nExpires: never\r\nMD5-Fingerprint: -\r\n\r\n"

func checkS3(t *testing.T, sink *recSink, body *recBody, status httpwire.Error) {
	t.Helper()
	if status != httpwire.MessageComplete {
		t.Fatalf("status = %v, want MessageComplete", status)
	}
	if string(body.buf) != "*****--" {
		t.Fatalf("body = %q, want %q", body.buf, "*****--")
	}
	// two trailer fields, surfaced the same way as any other field
	var trailers [][2]string
	for _, f := range sink.fields {
		if f[0] == "Expires" || f[0] == "MD5-Fingerprint" {
			trailers = append(trailers, f)
		}
	}
	if len(trailers) != 2 {
		t.Fatalf("trailers = %v, want 2 fields", trailers)
	}
	if len(sink.chunkExts) != 2 {
		t.Fatalf("chunk extensions = %v, want 2 (one per non-empty-ext chunk)", sink.chunkExts)
	}
}

func TestChunkedWithTrailers(t *testing.T) { // S3
	sink, body, status := runOnce(t, httpwire.DirResponse, bytes.NewReader([]byte(s3Input)))
	checkS3(t, sink, body, status)
}

func TestFieldValueOWSTrimmed(t *testing.T) { // S4
	const in = "GET / HTTP/1.1\r\nX: \t x \t \r\n\r\n"
	sink, _, status := runOnce(t, httpwire.DirRequest, bytes.NewReader([]byte(in)))
	if status != httpwire.MessageComplete {
		t.Fatalf("status = %v, want MessageComplete", status)
	}
	if len(sink.fields) != 1 || sink.fields[0][1] != "x" {
		t.Fatalf("fields = %v, want value %q", sink.fields, "x")
	}
}

func TestContentLengthChunkedConflict(t *testing.T) { // S5
	for _, in := range []string{
		"GET / HTTP/1.1\r\nContent-Length: 5\r\nTransfer-Encoding: chunked\r\n\r\n",
		"GET / HTTP/1.1\r\nTransfer-Encoding: chunked\r\nContent-Length: 5\r\n\r\n",
	} {
		_, _, status := runOnce(t, httpwire.DirRequest, bytes.NewReader([]byte(in)))
		if status != httpwire.ErrBadTransferEncoding && status != httpwire.ErrBadContentLength {
			t.Fatalf("input %q: status = %v, want a framing-conflict error", in, status)
		}
	}
}

func TestChunkedFragmentedByteAtATime(t *testing.T) { // S6
	sink, body, status := runOnce(t, httpwire.DirResponse, &oneByteReader{r: bytes.NewReader([]byte(s3Input))})
	checkS3(t, sink, body, status)
}

func TestKeepAliveDefaults(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"GET / HTTP/1.1\r\n\r\n", true},
		{"GET / HTTP/1.1\r\nConnection: close\r\n\r\n", false},
		{"GET / HTTP/1.0\r\n\r\n", false},
		{"GET / HTTP/1.0\r\nConnection: keep-alive\r\n\r\n", true},
	}
	for _, c := range cases {
		sink := &recSink{}
		body := &recBody{}
		p := httpwire.NewParser(httpwire.DirRequest, sink, body)
		buf := httpwire.NewBuffer(nil)
		d := httpwire.NewDriver(p, body, bytes.NewReader([]byte(c.in)), buf)
		if status := d.Run(httpwire.ParseAll); status != httpwire.MessageComplete {
			t.Fatalf("input %q: status = %v", c.in, status)
		}
		if got := p.KeepAlive(); got != c.want {
			t.Errorf("input %q: KeepAlive() = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestSkipBody(t *testing.T) {
	const in = "HTTP/1.1 200 OK\r\nContent-Length: 5\r\n\r\n*****"
	sink := &recSink{}
	body := &recBody{}
	p := httpwire.NewParser(httpwire.DirResponse, sink, body)
	p.SkipBody(true)
	buf := httpwire.NewBuffer(nil)
	d := httpwire.NewDriver(p, body, bytes.NewReader([]byte(in)), buf)
	if status := d.Run(httpwire.ParseAll); status != httpwire.MessageComplete {
		t.Fatalf("status = %v, want MessageComplete", status)
	}
	if len(body.buf) != 0 {
		t.Fatalf("body = %q, want empty (skip-body mode)", body.buf)
	}
	if framing, _, _ := p.TakeFraming(); framing != httpwire.FramingNone {
		t.Fatalf("framing = %v, want FramingNone", framing)
	}
}

func TestHeaderTooLarge(t *testing.T) {
	in := "GET / HTTP/1.1\r\nX-Long: " + strings.Repeat("a", 64) + "\r\n\r\n"
	sink := &recSink{}
	body := &recBody{}
	p := httpwire.NewParser(httpwire.DirRequest, sink, body)
	p.SetHeaderLimits(16, 0)
	buf := httpwire.NewBuffer(nil)
	d := httpwire.NewDriver(p, body, bytes.NewReader([]byte(in)), buf)
	if status := d.Run(httpwire.ParseAll); status != httpwire.ErrHeaderTooLarge {
		t.Fatalf("status = %v, want ErrHeaderTooLarge", status)
	}
}

func TestBareLFRejectedInStrictMode(t *testing.T) {
	const in = "GET / HTTP/1.1\nUser-Agent: x\r\n\r\n"
	_, _, status := runOnce(t, httpwire.DirRequest, bytes.NewReader([]byte(in)))
	if !status.Terminal() {
		t.Fatalf("status = %v, want a terminal error for bare LF", status)
	}
}

func TestShortReadMidBody(t *testing.T) {
	const in = "HTTP/1.0 200 OK\r\nContent-Length: 10\r\n\r\n12345"
	_, _, status := runOnce(t, httpwire.DirResponse, bytes.NewReader([]byte(in)))
	if status != httpwire.ErrShortRead {
		t.Fatalf("status = %v, want ErrShortRead", status)
	}
}

func TestRequestNoBodyByDefault(t *testing.T) {
	const in = "POST /x HTTP/1.1\r\nHost: a\r\n\r\n"
	_, body, status := runOnce(t, httpwire.DirRequest, bytes.NewReader([]byte(in)))
	if status != httpwire.MessageComplete {
		t.Fatalf("status = %v", status)
	}
	if len(body.buf) != 0 || !body.finished {
		t.Fatalf("body = %q finished=%v, want empty+finished (no CL/TE on request)", body.buf, body.finished)
	}
}

func TestUntilEOFResponseBody(t *testing.T) {
	const in = "HTTP/1.0 200 OK\r\nServer: x\r\n\r\nhello world"
	_, body, status := runOnce(t, httpwire.DirResponse, bytes.NewReader([]byte(in)))
	if status != httpwire.MessageComplete {
		t.Fatalf("status = %v", status)
	}
	if string(body.buf) != "hello world" {
		t.Fatalf("body = %q", body.buf)
	}
}
