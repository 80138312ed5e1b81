// Copyright 2024 The httpwire Authors. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE file in the root of the source tree.

package main

import (
	"github.com/spf13/cobra"

	"github.com/intuitivelabs/httpwire/internal/wirelog"
)

var (
	logLevel  string
	direction string
)

var rootCmd = &cobra.Command{
	Use:   "httpwire-probe",
	Short: "Drive the httpwire parser over request/response byte streams",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		wirelog.SetOptions(wirelog.Options{Stdout: true, Level: wirelog.Level(logLevel)})
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&direction, "direction", "request", "message direction to parse: request or response")
}
