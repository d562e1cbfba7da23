package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/panbanda/churnscope/internal/output"
	"github.com/panbanda/churnscope/internal/remote"
	"github.com/panbanda/churnscope/internal/report"
	"github.com/panbanda/churnscope/internal/service/analysis"
	"github.com/urfave/cli/v2"
)

func reportCmd() *cli.Command {
	return &cli.Command{
		Name:      "report",
		Aliases:   []string{"r"},
		Usage:     "Report change frequency and contributor risk",
		ArgsUsage: "[path | owner/repo[@ref] | url]",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "days",
				Aliases: []string{"d"},
				Usage:   "Days of history to analyze (default from config)",
			},
			&cli.IntFlag{
				Name:    "top",
				Aliases: []string{"n"},
				Usage:   "Number of files in each top list (default from config)",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: text, json, markdown, toon (default from config)",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write output to file",
			},
			&cli.BoolFlag{
				Name:  "no-cache",
				Usage: "Collect history even if a cached copy exists",
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "Hide progress output",
			},
		},
		Action: runReportCmd,
	}
}

func runReportCmd(c *cli.Context) error {
	if c.Args().Len() > 1 {
		return fmt.Errorf("report takes at most one path, got %d", c.Args().Len())
	}
	path := "."
	if c.Args().Present() {
		path = c.Args().First()
	}
	if c.Int("days") < 0 || c.Int("top") < 0 {
		return fmt.Errorf("--days and --top must not be negative")
	}

	loaded, err := loadConfig(c)
	if err != nil {
		return err
	}
	cfg := loaded.Config
	logger := newLogger(c, cfg)
	if loaded.Source != "" {
		logger.Debugf("using config %s", loaded.Source)
	}

	format := c.String("format")
	if format == "" {
		format = cfg.Output.Format
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	src, err := remote.Parse(path)
	if err != nil {
		return err
	}
	if src != nil {
		var progress io.Writer
		if !c.Bool("quiet") {
			progress = c.App.ErrWriter
			fmt.Fprintf(progress, "Cloning %s\n", src.URL)
		}
		if err := src.Clone(ctx, progress); err != nil {
			return err
		}
		defer src.Cleanup()
		path = src.CloneDir
	}

	svc := analysis.New(
		analysis.WithConfig(cfg),
		analysis.WithLogger(logger),
		analysis.WithProgress(!c.Bool("quiet")),
	)
	result, err := svc.AnalyzeChangeFrequency(ctx, path, analysis.ReportOptions{
		Days:    c.Int("days"),
		Top:     c.Int("top"),
		NoCache: c.Bool("no-cache"),
	})
	if err != nil {
		return err
	}
	if result.Dirty {
		warn(c, "Working tree has uncommitted changes; only committed history is reported.")
	}
	if n := len(result.Unreadable); n > 0 {
		warn(c, "%d source files could not be read and were skipped.", n)
	}

	formatter := output.NewWriterFormatter(output.ParseFormat(format), c.App.Writer, cfg.Output.Color)
	if out := c.String("output"); out != "" {
		formatter, err = output.NewFormatter(output.ParseFormat(format), out, false)
		if err != nil {
			return err
		}
		defer formatter.Close()
	}

	return formatter.Output(report.Build(result.Report))
}
