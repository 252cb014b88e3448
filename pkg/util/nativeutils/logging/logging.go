// This Source Code Form is subject to the terms of the MIT License.
// If a copy of the MIT License was not distributed with this
// file, you can obtain one at https://opensource.org/licenses/MIT.
//
// Copyright (c) DUSK NETWORK. All rights reserved.

// Package logging wires the process-wide logrus logger: a prefixed text
// formatter for terminals, with an optional lumberjack-rotated file sink
// when configured.
package logging

import (
	"io"
	"os"
	"strings"

	prefixed "github.com/x-cray/logrus-prefixed-formatter"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/sirupsen/logrus"

	"github.com/commonwarexyz/battleware/pkg/config"
)

// Setup configures logrus's standard logger from cfg. Callers obtain a
// package-scoped logger afterward with logrus.WithFields(logrus.Fields{
// "prefix": "<pkg>"}), as the mempool and stream packages do.
func Setup(cfg config.LoggingConfig) error {
	level, err := logrus.ParseLevel(levelOrDefault(cfg.Level))
	if err != nil {
		return err
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&prefixed.TextFormatter{
		FullTimestamp: true,
	})

	var out io.Writer = os.Stdout
	switch strings.ToLower(cfg.Output) {
	case "stderr":
		out = os.Stderr
	case "file":
		out = &lumberjack.Logger{
			Filename:   fileOrDefault(cfg.File),
			MaxSize:    sizeOrDefault(cfg.MaxSizeMB),
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
		}
	}
	logrus.SetOutput(out)
	return nil
}

func levelOrDefault(level string) string {
	if level == "" {
		return "info"
	}
	return level
}

func fileOrDefault(file string) string {
	if file == "" {
		return "battleware.log"
	}
	return file
}

func sizeOrDefault(sizeMB int) int {
	if sizeMB <= 0 {
		return 100
	}
	return sizeMB
}
