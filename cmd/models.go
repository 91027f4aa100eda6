package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/Zenoooe/ai-crm/internal/config"
	"github.com/Zenoooe/ai-crm/internal/provider"
	providerfactory "github.com/Zenoooe/ai-crm/internal/provider/factory"
)

const modelsUsage = `Usage:
  ai-crm models [--config <path>]

Flags:
  --config string   Path to YAML configuration file (built-in defaults when omitted)`

func listModels(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("models", flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, modelsUsage)
	}

	var cfgPath string
	fs.StringVar(&cfgPath, "config", "", "path to configuration file")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return fmt.Errorf("parse models flags: %w", err)
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	registry, err := providerfactory.BuildRegistry(cfg, os.Getenv)
	if err != nil {
		return err
	}

	return printModels(os.Stdout, registry)
}

func printModels(w io.Writer, registry *provider.Registry) error {
	defaultID := ""
	if d, err := registry.Default(); err == nil {
		defaultID = d.ID
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tUPSTREAM\tFAMILY\tAVAILABLE\tDESCRIPTION")
	for _, d := range registry.Models() {
		id := d.ID
		if id == defaultID {
			id += " *"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%t\t%s\n", id, d.Model, d.Family, d.Configured(), d.Description)
	}
	return tw.Flush()
}
