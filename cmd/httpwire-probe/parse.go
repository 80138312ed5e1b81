// Copyright 2024 The httpwire Authors. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE file in the root of the source tree.

package main

import (
	"context"
	"os"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/intuitivelabs/httpwire"
	"github.com/intuitivelabs/httpwire/internal/wirelog"
	"github.com/intuitivelabs/httpwire/message"
)

var parseCmd = &cobra.Command{
	Use:   "parse [files...]",
	Short: "Parse one or more byte streams concurrently, one Parser instance per file",
	Long: "Each file is parsed by its own Parser/Driver/Buffer instance, run in its own " +
		"goroutine — demonstrating that distinct Parser instances share no state and can " +
		"run concurrently without coordination.",
	Args: cobra.MinimumNArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	dir := httpwire.DirRequest
	if direction == "response" {
		dir = httpwire.DirResponse
	}

	g, _ := errgroup.WithContext(context.Background())
	for _, path := range args {
		path := path
		g.Go(func() error {
			return probeFile(path, dir)
		})
	}
	return g.Wait()
}

func probeFile(path string, dir httpwire.Direction) error {
	id := uuid.New().String()

	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "probe[%s]: open %s", id, path)
	}
	defer f.Close()

	buf := httpwire.NewBuffer(nil)
	defer buf.Release()

	for n := 0; ; n++ {
		msg := &message.Message{}
		bsink := &message.BufferBodySink{}
		sink := message.NewHeaderCollector(msg)

		p := httpwire.NewParser(dir, sink, bsink)
		d := httpwire.NewDriver(p, bsink, f, buf)

		status := d.Run(httpwire.ParseAll)
		switch {
		case status == httpwire.MessageComplete && messageStarted(dir, msg):
			messagesParsed.WithLabelValues(direction).Inc()
			wirelog.Debugf("probe[%s]: message %d complete: %s %s", id, n, msg.Method, msg.Path)
			bytesParsed.Add(float64(len(bsink.Bytes())))
			continue
		case status == httpwire.MessageComplete:
			// nothing was parsed this round: a clean EOF between messages
			wirelog.Debugf("probe[%s]: %d message(s), clean EOF", id, n)
			return nil
		default:
			parseErrors.WithLabelValues(status.Error()).Inc()
			return errors.Wrapf(status, "probe[%s]: %s: message %d", id, path, n)
		}
	}
}

// messageStarted reports whether anything was actually parsed into msg,
// distinguishing a real message from the clean, nothing-in-flight EOF
// Driver.Run also reports as MessageComplete.
func messageStarted(dir httpwire.Direction, msg *message.Message) bool {
	if dir == httpwire.DirRequest {
		return msg.Method != ""
	}
	return msg.Status != 0
}
