// This Source Code Form is subject to the terms of the MIT License.
// If a copy of the MIT License was not distributed with this
// file, you can obtain one at https://opensource.org/licenses/MIT.
//
// Copyright (c) DUSK NETWORK. All rights reserved.

package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/commonwarexyz/battleware/pkg/config"
	"github.com/commonwarexyz/battleware/pkg/core/mempool"
	"github.com/commonwarexyz/battleware/pkg/util/nativeutils/logging"
)

func main() {
	defer handlePanic()

	configPath := flag.String("config", "", "path to battleware.toml")
	flag.Parse()

	if err := config.Load(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	cfg := config.Get()

	if err := logging.Setup(cfg.Logging); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	pool := mempool.NewLockedWithLimits(registry, mempool.Limits{
		MaxTransactions: cfg.Mempool.MaxTransactions,
		MaxBacklog:      cfg.Mempool.MaxBacklog,
	})

	go summarizeForever(pool)

	http.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	log.WithField("addr", cfg.Metrics.ListenAddress).Info("serving metrics")
	if err := http.ListenAndServe(cfg.Metrics.ListenAddress, nil); err != nil {
		log.Fatal(err)
	}
}

// summarizeForever periodically logs the mempool's state as a cheap
// human-readable heartbeat alongside the prometheus gauges.
func summarizeForever(pool *mempool.LockedMempool) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for range ticker.C {
		pool.LogSummary(log.WithFields(log.Fields{"prefix": "node"}))
	}
}

func handlePanic() {
	if r := recover(); r != nil {
		fmt.Fprintln(os.Stderr, fmt.Errorf("%+v", r), "battleware node panic")
	}
	time.Sleep(time.Second)
}
