package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rbright/marker/internal/audio"
	"github.com/rbright/marker/internal/catalog"
	"github.com/rbright/marker/internal/cli"
	"github.com/rbright/marker/internal/config"
	"github.com/rbright/marker/internal/doctor"
	"github.com/rbright/marker/internal/export"
	"github.com/rbright/marker/internal/preview"
	"github.com/rbright/marker/internal/record"
)

func (r Runner) commandScan(parsed cli.Parsed, cfg config.Config) int {
	cat, err := catalog.Scan(parsed.Args[0], cfg.Catalog.Extensions, !parsed.All)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	graded := 0
	for _, sub := range cat.Items() {
		status := "pending"
		if sub.Graded() {
			status = "graded"
			graded++
		}
		fmt.Fprintf(r.Stdout, "%-7s %s\n", status, sub.Name)
	}

	if parsed.All {
		fmt.Fprintf(r.Stdout, "%d submission(s), %d graded, %d pending in %s\n", cat.Len(), graded, cat.Len()-graded, cat.Dir)
	} else {
		fmt.Fprintf(r.Stdout, "%d pending submission(s) in %s\n", cat.Len(), cat.Dir)
	}
	return 0
}

func (r Runner) commandShow(parsed cli.Parsed, cfg config.Config) int {
	sub, err := catalog.Lookup(parsed.Args[0], cfg.Catalog.Extensions)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	p, err := preview.Describe(sub, preview.DefaultExcerpt)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	fmt.Fprint(r.Stdout, preview.Render(p))

	rec, ok, err := record.Load(sub)
	switch {
	case errors.Is(err, record.ErrCorruptRecord):
		fmt.Fprintf(r.Stderr, "warning: %s: %v\n", sub.SidecarPath(), err)
	case err != nil:
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	case !ok:
		fmt.Fprintln(r.Stdout, "\nrecord:   not graded")
	default:
		fmt.Fprintf(r.Stdout, "\nrecord:   code=%s text=%s total=%s\n", rec.Mark.Code, rec.Mark.Text, rec.Mark.Total)
		if rec.Comment != "" {
			fmt.Fprintf(r.Stdout, "comment:  %s\n", rec.Comment)
		}
	}
	return 0
}

func (r Runner) commandExport(parsed cli.Parsed, cfg config.Config, logger *slog.Logger) int {
	cat, err := catalog.Scan(parsed.Args[0], cfg.Catalog.Extensions, false)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	summary, err := export.Run(cat, parsed.Output, logger)
	for _, name := range summary.Corrupt {
		fmt.Fprintf(r.Stderr, "warning: skipped unreadable record for %s\n", name)
	}
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	fmt.Fprintf(r.Stdout, "wrote %s (%d graded, %d ungraded)\n", summary.Output, summary.Graded, summary.Ungraded)
	return 0
}

func (r Runner) commandDoctor(ctx context.Context, cfg config.Loaded) int {
	report := doctor.Run(ctx, cfg, doctor.Options{})
	fmt.Fprintln(r.Stdout, report.String())
	if report.OK() {
		return 0
	}
	return 1
}

func (r Runner) commandDevices(ctx context.Context) int {
	devices, err := audio.ListDevices(ctx)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	if len(devices) == 0 {
		fmt.Fprintln(r.Stdout, "no audio devices found")
		return 1
	}

	for _, device := range devices {
		defaultMark := " "
		if device.Default {
			defaultMark = "*"
		}
		availability := "yes"
		if !device.Available {
			availability = "no"
		}
		muted := "no"
		if device.Muted {
			muted = "yes"
		}
		fmt.Fprintf(
			r.Stdout,
			"%s id=%s | description=%q | state=%s | available=%s | muted=%s\n",
			defaultMark,
			device.ID,
			device.Description,
			device.State,
			availability,
			muted,
		)
	}

	return 0
}
