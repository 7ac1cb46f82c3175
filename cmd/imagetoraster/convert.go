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

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"seehuhn.de/go/raster/cms"
	"seehuhn.de/go/raster/job"
	"seehuhn.de/go/raster/printer"
	"seehuhn.de/go/raster/source"
)

func init() {
	flags := rootCmd.Flags()
	flags.String("printer", "", "printer description file (default $PRINTER_DESCRIPTION)")
	flags.String("profile", "", "ICC profile for the printer, overrides the description")
	flags.StringP("output", "o", "", "output file (default standard output)")
	flags.Int("test-pages", 0, "print this many test pages instead of an image")
	flags.Float64("image-dpi", 0, "image resolution, 0 fits images to the paper")
	flags.String("log-level", "", "log level (default $LogLevel)")
}

func runConvert(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	logLevel, _ := flags.GetString("log-level")
	if logLevel == "" {
		logLevel = os.Getenv("LogLevel")
	}
	logger, err := newLogger(logLevel)
	if err != nil {
		return err
	}

	descPath, _ := flags.GetString("printer")
	if descPath == "" {
		descPath = os.Getenv("PRINTER_DESCRIPTION")
	}
	if descPath == "" {
		return errors.New("no printer description, use --printer or set PRINTER_DESCRIPTION")
	}
	desc, err := printer.LoadDescription(descPath)
	if err != nil {
		return err
	}

	opts, err := jobOptions(args[3], args[4])
	if err != nil {
		return err
	}
	settings, err := printer.Configure(desc, opts)
	if err != nil {
		return err
	}
	logger.Debug("job",
		"id", args[0],
		"user", args[1],
		"title", args[2],
		"printer", desc.Name,
		"colorModel", settings.ColorModel,
		"copies", settings.Copies)

	cfg := job.Config{Settings: settings, Logger: logger}
	if path, _ := flags.GetString("profile"); path != "" {
		cfg.Profile, err = cms.LoadProfile(path)
		if err != nil {
			return err
		}
	}

	var doc source.Document
	if n, _ := flags.GetInt("test-pages"); n > 0 {
		doc = &source.TestPage{Pages: n}
	} else {
		in := os.Stdin
		if len(args) == 6 {
			in, err = os.Open(args[5])
			if err != nil {
				return err
			}
			defer in.Close()
		}
		img, err := source.DecodeImages(in)
		if err != nil {
			return err
		}
		img.DPI, _ = flags.GetFloat64("image-dpi")
		doc = img
	}

	outputPath, _ := flags.GetString("output")
	out, closeOut, err := openOutput(outputPath)
	if err != nil {
		return err
	}

	j, err := job.New(cfg)
	if err != nil {
		closeOut()
		return err
	}
	err = j.Run(cmd.Context(), doc, j.NewWriter(out))
	err = errors.Join(err, j.Close(), closeOut())
	if err == nil {
		logger.Info("conversion complete", "pages", doc.NumPages())
	}
	return err
}

// jobOptions parses the options argument.  The copies argument is used
// unless the options contain a "copies" value.
func jobOptions(copies, options string) (printer.Options, error) {
	opts, err := printer.ParseOptions(options)
	if err != nil {
		return nil, err
	}
	if _, ok := opts.Lookup("copies"); !ok {
		n, err := strconv.Atoi(copies)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid number of copies %q", copies)
		}
		opts = append(opts, printer.Option{Name: "copies", Values: []string{copies}})
	}
	return opts, nil
}

func openOutput(path string) (io.Writer, func() error, error) {
	if path == "" {
		if term.IsTerminal(int(os.Stdout.Fd())) {
			return nil, nil, errors.New("refusing to write raster data to a terminal")
		}
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}
