// Copyright 2024 The httpwire Authors. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE file in the root of the source tree.

package httpwire_test

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/sync/errgroup"

	"github.com/intuitivelabs/httpwire"
)

// TestConcurrentParserInstances drives many independent Parser/Driver pairs
// at once to exercise §5's claim that distinct instances share no state:
// if they did, running them under the race detector concurrently would
// surface it.
func TestConcurrentParserInstances(t *testing.T) {
	const n = 64
	var g errgroup.Group
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			in := fmt.Sprintf("GET /item/%d HTTP/1.1\r\nX-Seq: %d\r\n\r\n", i, i)
			sink := &recSink{}
			body := &recBody{}
			p := httpwire.NewParser(httpwire.DirRequest, sink, body)
			buf := httpwire.NewBuffer(nil)
			d := httpwire.NewDriver(p, body, bytes.NewReader([]byte(in)), buf)
			status := d.Run(httpwire.ParseAll)
			if status != httpwire.MessageComplete {
				return fmt.Errorf("instance %d: status = %v", i, status)
			}
			wantPath := fmt.Sprintf("/item/%d", i)
			if sink.path != wantPath {
				return fmt.Errorf("instance %d: path = %q, want %q", i, sink.path, wantPath)
			}
			return nil
		})
	}
	assert.NoError(t, g.Wait())
}

// TestDriverParseSomeStopsAtHeaderComplete checks that ParseSome mode
// returns as soon as the header block is done, without touching the body.
func TestDriverParseSomeStopsAtHeaderComplete(t *testing.T) {
	const in = "HTTP/1.0 200 OK\r\nContent-Length: 5\r\n\r\n*****"
	sink := &recSink{}
	body := &recBody{}
	p := httpwire.NewParser(httpwire.DirResponse, sink, body)
	buf := httpwire.NewBuffer(nil)
	d := httpwire.NewDriver(p, body, bytes.NewReader([]byte(in)), buf)

	status := d.Run(httpwire.ParseSome)
	assert.Equal(t, httpwire.HeaderComplete, status)
	assert.Empty(t, body.buf)

	framing, length, ferr := p.TakeFraming()
	assert.Equal(t, httpwire.ErrNone, ferr)
	assert.Equal(t, httpwire.FramingContentLength, framing)
	assert.EqualValues(t, 5, length)

	status = d.Run(httpwire.ParseAll)
	assert.Equal(t, httpwire.MessageComplete, status)
	assert.Equal(t, "*****", string(body.buf))
}

// directReadBody implements DirectReader to exercise the driver's
// content-length bypass path.
type directReadBody struct {
	recBody
	used bool
}

func (d *directReadBody) Prepare(n int) ([]byte, httpwire.Error) {
	d.used = true
	return d.recBody.Prepare(n)
}

func (d *directReadBody) DirectRead() bool { return true }

func TestDriverDirectReadPath(t *testing.T) {
	const in = "HTTP/1.0 200 OK\r\nContent-Length: 11\r\n\r\nhello world"
	sink := &recSink{}
	body := &directReadBody{}
	p := httpwire.NewParser(httpwire.DirResponse, sink, body)
	buf := httpwire.NewBuffer(nil)
	d := httpwire.NewDriver(p, body, bytes.NewReader([]byte(in)), buf)

	status := d.Run(httpwire.ParseAll)
	assert.Equal(t, httpwire.MessageComplete, status)
	assert.True(t, body.used, "direct-read path should still call Prepare/Commit on the sink")
	assert.Equal(t, "hello world", string(body.buf))
}

func TestDriverReadHint(t *testing.T) {
	const in = "GET / HTTP/1.1\r\n\r\n"
	sink := &recSink{}
	body := &recBody{}
	p := httpwire.NewParser(httpwire.DirRequest, sink, body)
	buf := httpwire.NewBuffer(nil)
	d := httpwire.NewDriver(p, body, bytes.NewReader([]byte(in)), buf)
	d.SetReadHint(1)
	status := d.Run(httpwire.ParseAll)
	assert.Equal(t, httpwire.MessageComplete, status)
	assert.Equal(t, "GET", sink.method)
}
