/*
Copyright (C) 2026 Skoglund

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package telemetry exposes process metrics and a small status surface.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics holds Prometheus counters and gauges for the daily cycle.
type Metrics struct {
	registry *prometheus.Registry

	DownloadsTotal         prometheus.Counter
	ResolveFailuresTotal   prometheus.Counter
	TranscodeFailuresTotal prometheus.Counter
	DeletionsTotal         prometheus.Counter
	BellsPlayedTotal       prometheus.Counter
	InventorySize          prometheus.Gauge
}

// NewMetrics creates and registers the bellhop metrics.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		DownloadsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bellhop_downloads_total",
			Help: "Total number of clips successfully materialized",
		}),
		ResolveFailuresTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bellhop_resolve_failures_total",
			Help: "Total number of links that failed URL resolution",
		}),
		TranscodeFailuresTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bellhop_transcode_failures_total",
			Help: "Total number of transcode processes that exited non-zero",
		}),
		DeletionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bellhop_deletions_total",
			Help: "Total number of stale clips removed",
		}),
		BellsPlayedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bellhop_bells_played_total",
			Help: "Total number of bells rung",
		}),
		InventorySize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "bellhop_inventory_size",
			Help: "Number of materialized clips in the media directory",
		}),
	}

	registry.MustRegister(
		m.DownloadsTotal,
		m.ResolveFailuresTotal,
		m.TranscodeFailuresTotal,
		m.DeletionsTotal,
		m.BellsPlayedTotal,
		m.InventorySize,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}
