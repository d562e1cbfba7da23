package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/panbanda/churnscope/internal/logging"
	"github.com/panbanda/churnscope/pkg/config"
	"github.com/urfave/cli/v2"
)

var (
	version = "dev"
	commit  = "none"    //nolint:unused // set via ldflags at build time
	date    = "unknown" //nolint:unused // set via ldflags at build time
)

func newApp() *cli.App {
	return &cli.App{
		Name:    "churnscope",
		Usage:   "Change frequency and contributor risk report for git repositories",
		Version: version,
		Description: `churnscope reads the recent git history of a repository, counts on how many
days each source file changed and how many people changed it, and classifies
the files into five risk buckets. Distributions are reported overall, per file
extension and per configured logical component, together with the most changed
files and correlations between size, contributors and change frequency.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file (TOML, YAML, or JSON)",
				EnvVars: []string{"CHURNSCOPE_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Diagnostic log level: debug, info, warn, error",
				EnvVars: []string{"CHURNSCOPE_LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "Diagnostic log format: text or json",
			},
		},
		Commands: []*cli.Command{
			reportCmd(),
			configCmd(),
			initCmd(),
			cacheCmd(),
			mcpCmd(),
		},
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

// loadConfig loads the file named by --config or the first one found in
// the default locations.
func loadConfig(c *cli.Context) (*config.LoadResult, error) {
	var opts []config.LoadOption
	if path := c.String("config"); path != "" {
		opts = append(opts, config.WithPath(path))
	}
	return config.LoadConfig(opts...)
}

// newLogger builds the diagnostic logger. Flags override the config file.
func newLogger(c *cli.Context, cfg *config.Config) *logging.Logger {
	level := cfg.Log.Level
	if v := c.String("log-level"); v != "" {
		level = v
	}
	format := cfg.Log.Format
	if v := c.String("log-format"); v != "" {
		format = v
	}
	return logging.NewWithWriter(c.App.ErrWriter, level, format)
}

func warn(c *cli.Context, format string, args ...any) {
	fmt.Fprintln(c.App.ErrWriter, color.YellowString(format, args...))
}
