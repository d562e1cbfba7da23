package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/panbanda/churnscope/pkg/config"
	"github.com/pelletier/go-toml"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

func initCmd() *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Initialize a new churnscope configuration file",
		Description: `Creates a configuration file with the default settings.

Examples:
  churnscope init                          # Creates churnscope.toml
  churnscope init --format yaml            # Creates churnscope.yaml
  churnscope init -o .churnscope/churnscope.toml
  churnscope init --force                  # Overwrite an existing file`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output file path (default churnscope.<format>)",
			},
			&cli.StringFlag{
				Name:  "format",
				Value: "toml",
				Usage: "File format: toml or yaml",
			},
			&cli.BoolFlag{
				Name:  "force",
				Usage: "Overwrite existing config file",
			},
		},
		Action: runInit,
	}
}

func runInit(c *cli.Context) error {
	format := strings.ToLower(c.String("format"))
	if format == "yml" {
		format = "yaml"
	}
	if format != "toml" && format != "yaml" {
		return fmt.Errorf("unsupported config format %q (use toml or yaml)", format)
	}

	outputPath := c.String("output")
	if outputPath == "" {
		outputPath = "churnscope." + format
	}

	if _, err := os.Stat(outputPath); err == nil && !c.Bool("force") {
		return fmt.Errorf("config file %q already exists (use --force to overwrite)", outputPath)
	}

	if dir := filepath.Dir(outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %q: %w", dir, err)
		}
	}

	content, err := generateDefaultConfig(format)
	if err != nil {
		return err
	}
	if err := os.WriteFile(outputPath, content, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Fprintln(c.App.Writer, color.GreenString("Created %s", outputPath))
	return nil
}

func generateDefaultConfig(format string) ([]byte, error) {
	cfg := config.DefaultConfig()

	var (
		body []byte
		err  error
	)
	switch format {
	case "yaml":
		body, err = yaml.Marshal(cfg)
	default:
		body, err = toml.Marshal(cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to %s: %w", strings.ToUpper(format), err)
	}

	var buf strings.Builder
	buf.WriteString("# churnscope configuration\n")
	buf.WriteString("# Documentation: https://github.com/panbanda/churnscope\n\n")
	buf.Write(body)
	return []byte(buf.String()), nil
}
