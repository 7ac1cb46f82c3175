// seehuhn.de/go/raster - convert rendered pages to CUPS raster data
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Imagetoraster is a CUPS filter which converts images to CUPS raster
// data.
//
// The filter is called with the usual CUPS filter arguments:
//
//	imagetoraster job-id user title copies options [file]
//
// The printer description is read from the file given by --printer, or
// from $PRINTER_DESCRIPTION.  If no file is given, the image is read from
// standard input.  The raster stream is written to standard output.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "imagetoraster job-id user title copies options [file]",
	Short:         "Convert images to CUPS raster data",
	Args:          cobra.RangeArgs(5, 6),
	RunE:          runConvert,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "ERROR:", err)
		os.Exit(1)
	}
}

// newLogger returns a logger for the CUPS error log.  CUPS collects
// the standard error output of filters.
func newLogger(level string) (*slog.Logger, error) {
	lvl, err := parseLevel(level)
	if err != nil {
		return nil, err
	}
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	return slog.New(h), nil
}

// parseLevel understands the CUPS LogLevel names as well as the slog
// level names.
func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "", "warn", "notice":
		return slog.LevelWarn, nil
	case "debug2":
		return slog.LevelDebug, nil
	case "none", "emerg", "alert", "crit":
		return slog.LevelError + 4, nil
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log level %q", s)
	}
	return lvl, nil
}
