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

// Package job converts all pages of a document into a CUPS raster
// stream.
//
// A [Job] holds the state which is fixed for the whole document: the
// raster format, the duplex orientation, the color transform and the
// conversion pipeline.
package job

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"seehuhn.de/go/raster"
	"seehuhn.de/go/raster/cms"
	"seehuhn.de/go/raster/cupsraster"
	"seehuhn.de/go/raster/duplex"
	"seehuhn.de/go/raster/page"
	"seehuhn.de/go/raster/pipeline"
	"seehuhn.de/go/raster/printer"
	"seehuhn.de/go/raster/source"
)

// Config holds the parameters for a new Job.
type Config struct {
	Settings *printer.Settings

	// Profile, if not nil, is used instead of the profile named in the
	// settings.
	Profile *cms.Profile

	// Engine builds color transforms.  If nil, cms.ICC is used.
	Engine cms.Engine

	// Logger receives debug messages and warnings.  If nil,
	// slog.Default() is used.
	Logger *slog.Logger
}

// Job converts documents for one printer configuration.
// A Job is not safe for concurrent use.
type Job struct {
	desc        *raster.Descriptor
	orientation duplex.Orientation
	transform   cms.Transform
	pipeline    *pipeline.Pipeline
	emitter     *page.Emitter
	sizes       []page.PageSize
	custom      [4]float64
	compressed  bool
	logger      *slog.Logger

	writers []*cupsraster.Writer
}

// New sets up a job.  Configuration problems are reported as
// *raster.ConfigError.
func New(cfg Config) (*Job, error) {
	s := cfg.Settings
	d := s.Descriptor
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}

	var o duplex.Orientation
	if d.Duplex {
		o = duplex.Resolve(s.Duplex)
		logger.Debug("duplex",
			"backSide", s.Duplex.BackSide,
			"tumble", s.Duplex.Tumble,
			"swapImageX", o.SwapImageX,
			"swapImageY", o.SwapImageY,
			"swapMarginX", o.SwapMarginX,
			"swapMarginY", o.SwapMarginY)
	}

	profile := cfg.Profile
	if profile == nil && s.ProfilePath != "" {
		var err error
		profile, err = cms.LoadProfile(s.ProfilePath)
		if err != nil {
			return nil, configError(d, err)
		}
	}
	if profile != nil && d.BitsPerColor != 8 && d.BitsPerColor != 16 {
		logger.Warn("ICC profile ignored",
			"profile", profile.Name,
			"bitsPerColor", d.BitsPerColor)
	}

	ccfg, err := cms.Plan(d, profile, s.Intent)
	if err != nil {
		return nil, configError(d, err)
	}
	var xf cms.Transform
	if ccfg != nil {
		xf, err = cms.Open(cfg.Engine, ccfg)
		if err != nil {
			return nil, configError(d, err)
		}
		dest := "CIELab D65"
		if ccfg.Dest != nil {
			dest = ccfg.Dest.Name
		}
		logger.Debug("color management",
			"space", ccfg.Space,
			"destination", dest,
			"intent", ccfg.Intent)
	} else {
		logger.Debug("color management", "space", d.ColorSpace, "transform", false)
	}

	p, err := pipeline.Select(d, o, xf)
	if err != nil {
		if xf != nil {
			xf.Close()
		}
		return nil, err
	}
	logger.Debug("pipeline",
		"space", d.ColorSpace,
		"bitsPerColor", d.BitsPerColor,
		"order", d.ColorOrder,
		"shortcut", p.Shortcut,
		"converter", p.Converter.Kind,
		"quantizer", p.Quantizer.Kind,
		"packer", p.Packer.Kind,
		"source", p.SourceFormat)

	template := cupsraster.Header{
		MediaType:           s.MediaType,
		NumCopies:           uint32(s.Copies),
		Collate:             s.Collate,
		CUPSMarkerType:      s.MarkerType,
		CUPSRenderingIntent: s.Intent.String(),
	}

	j := &Job{
		desc:        d,
		orientation: o,
		transform:   xf,
		pipeline:    p,
		emitter: &page.Emitter{
			Pipeline:    p,
			Orientation: o,
			Template:    template,
			Logger:      logger,
		},
		sizes:      s.PageSizes,
		custom:     s.CustomMargins,
		compressed: s.Compressed,
		logger:     logger,
	}
	return j, nil
}

// Pipeline returns the conversion pipeline selected for the job.
func (j *Job) Pipeline() *pipeline.Pipeline {
	return j.pipeline
}

// NewWriter returns a raster stream writer for out, using the
// compression configured for the printer.  The writer is flushed by
// [Job.Close].
func (j *Job) NewWriter(out io.Writer) *cupsraster.Writer {
	w := cupsraster.NewWriter(out, &cupsraster.Options{Compressed: j.compressed})
	j.writers = append(j.writers, w)
	return w
}

// Run converts all pages of doc and writes them to w.  The first error
// aborts the conversion.
func (j *Job) Run(ctx context.Context, doc source.Document, w page.RowWriter) error {
	numPages := doc.NumPages()
	j.logger.Debug("document", "pages", numPages)
	for n := 1; n <= numPages; n++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		size, err := doc.PageSize(ctx, n)
		if err != nil {
			return renderError(n, err)
		}
		l := page.ComputeLayout(size, j.sizes, j.custom, j.desc, j.orientation, n)
		j.logger.Debug("layout",
			"page", n,
			"mediaBox", size,
			"paper", l.Paper,
			"sizeName", l.SizeName,
			"landscape", l.Landscape,
			"margins", l.Margins)

		width, height := l.RenderSize()
		bm, err := doc.Render(ctx, n, width, height, l.Landscape, j.pipeline.SourceFormat)
		if err != nil {
			return renderError(n, err)
		}
		if err := j.emitter.WritePage(ctx, w, n, l, bm); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the color transform and flushes the writers returned
// by [Job.NewWriter].
func (j *Job) Close() error {
	var errs []error
	for _, w := range j.writers {
		if err := w.Close(); err != nil {
			errs = append(errs, &raster.IOError{Op: "close", Err: err})
		}
	}
	j.writers = nil
	if j.transform != nil {
		if err := j.transform.Close(); err != nil {
			errs = append(errs, err)
		}
		j.transform = nil
	}
	return errors.Join(errs...)
}

func renderError(pageNo int, err error) error {
	var rerr *raster.RenderError
	if errors.As(err, &rerr) || errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &raster.RenderError{Page: pageNo, Err: err}
}

func configError(d *raster.Descriptor, err error) error {
	var cerr *raster.ConfigError
	if errors.As(err, &cerr) {
		return err
	}
	return &raster.ConfigError{
		Space:        d.ColorSpace,
		BitsPerColor: d.BitsPerColor,
		Order:        d.ColorOrder,
		Err:          err,
	}
}
