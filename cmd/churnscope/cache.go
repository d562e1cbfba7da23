package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/panbanda/churnscope/internal/cache"
	"github.com/panbanda/churnscope/internal/output"
	"github.com/panbanda/churnscope/internal/service/analysis"
	"github.com/urfave/cli/v2"
)

func cacheCmd() *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Inspect or clear the history cache",
		Description: `History collected for a report is cached per repository, keyed by the
HEAD commit and the history window. These commands operate on the cache of
the repository containing [path] (default: current directory).`,
		Subcommands: []*cli.Command{
			{
				Name:      "stats",
				Usage:     "Show cache entries and size",
				ArgsUsage: "[path]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Output format: text, json, markdown, toon",
						Value:   "text",
					},
				},
				Action: runCacheStats,
			},
			{
				Name:      "clear",
				Usage:     "Delete all cached history",
				ArgsUsage: "[path]",
				Action:    runCacheClear,
			},
		},
	}
}

func openCache(c *cli.Context) (*cache.Cache, error) {
	path := "."
	if c.Args().Present() {
		path = c.Args().First()
	}
	loaded, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	return analysis.New(analysis.WithConfig(loaded.Config)).Cache(path)
}

func runCacheStats(c *cli.Context) error {
	hc, err := openCache(c)
	if err != nil {
		return err
	}
	if !hc.Enabled() {
		fmt.Fprintln(c.App.Writer, color.YellowString("Cache is disabled in the configuration."))
		return nil
	}
	stats, err := hc.Stats()
	if err != nil {
		return err
	}

	row := []string{
		stats.Dir,
		strconv.Itoa(stats.Entries),
		strconv.FormatInt(stats.TotalSize, 10),
		stats.OldestAge.Round(time.Second).String(),
		stats.NewestAge.Round(time.Second).String(),
	}
	table := output.NewTable("History Cache",
		[]string{"Dir", "Entries", "Bytes", "Oldest", "Newest"},
		[][]string{row}, nil, stats)
	return output.NewWriterFormatter(output.ParseFormat(c.String("format")), c.App.Writer, false).Output(table)
}

func runCacheClear(c *cli.Context) error {
	hc, err := openCache(c)
	if err != nil {
		return err
	}
	if !hc.Enabled() {
		fmt.Fprintln(c.App.Writer, color.YellowString("Cache is disabled in the configuration."))
		return nil
	}
	if err := hc.Clear(); err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	fmt.Fprintln(c.App.Writer, color.GreenString("Cleared %s", hc.Dir()))
	return nil
}
