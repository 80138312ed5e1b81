// Copyright 2024 The httpwire Authors. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE file in the root of the source tree.

package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "httpwire_probe"

var (
	messagesParsed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "messages_parsed_total",
			Help:      "Messages fully parsed, by direction",
		},
		[]string{"direction"},
	)

	bytesParsed = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "bytes_parsed_total",
			Help:      "Body octets of fully parsed messages",
		},
	)

	parseErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "parse_errors_total",
			Help:      "Terminal parse errors, by error kind",
		},
		[]string{"kind"},
	)
)
