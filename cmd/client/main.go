// This Source Code Form is subject to the terms of the MIT License.
// If a copy of the MIT License was not distributed with this
// file, you can obtain one at https://opensource.org/licenses/MIT.
//
// Copyright (c) DUSK NETWORK. All rights reserved.

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/commonwarexyz/battleware/pkg/client/events"
	"github.com/commonwarexyz/battleware/pkg/client/stream"
	"github.com/commonwarexyz/battleware/pkg/config"
	"github.com/commonwarexyz/battleware/pkg/util/nativeutils/logging"
)

func main() {
	defer handlePanic()

	configPath := flag.String("config", "", "path to battleware.toml")
	identityFlag := flag.String("identity", "", "hex-encoded consensus identity (overrides config)")
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

	identityHex := cfg.Client.Identity
	if *identityFlag != "" {
		identityHex = *identityFlag
	}

	var s *stream.Stream[events.Update]
	conn, _, err := websocket.DefaultDialer.Dial(cfg.Client.NodeAddress, nil)
	if err != nil {
		log.WithError(err).Fatal("dialing node")
	}
	transport := stream.NewWebSocketTransport(conn)

	if identityHex != "" {
		identity, err := events.ParseIdentity(identityHex)
		if err != nil {
			log.WithError(err).Fatal("parsing identity")
		}
		s = stream.NewWithVerifier[events.Update](transport, events.DecodeUpdate, identity)
	} else {
		s = stream.New[events.Update](transport, events.DecodeUpdate)
	}
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	consume(ctx, s)
}

// consume drains the stream until a terminal error (or context
// cancellation) ends the connection, logging per-frame errors without
// stopping.
func consume(ctx context.Context, s *stream.Stream[events.Update]) {
	for {
		update, err := s.Next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if errors.Is(err, stream.ErrClosed) {
				log.Info("stream closed")
				return
			}
			var serr *stream.Error
			if errors.As(err, &serr) {
				if serr.Terminal() {
					log.WithError(serr).Error("stream ended")
					return
				}
				log.WithError(serr).Warn("dropped frame")
				continue
			}
			log.WithError(err).Error("unexpected stream error")
			return
		}

		switch update.Kind {
		case events.UpdateSeed:
			log.WithFields(log.Fields{"round": update.Seed.Round}).Info("seed")
		case events.UpdateEvents:
			log.WithFields(log.Fields{"round": update.Events.Round, "count": len(update.Events.Items)}).Info("events")
		case events.UpdateFilteredEvents:
			log.WithFields(log.Fields{"round": update.FilteredEvents.Round, "count": len(update.FilteredEvents.Items)}).Info("filtered events")
		}
	}
}

func handlePanic() {
	if r := recover(); r != nil {
		fmt.Fprintln(os.Stderr, fmt.Errorf("%+v", r), "battleware client panic")
	}
	time.Sleep(time.Second)
}
