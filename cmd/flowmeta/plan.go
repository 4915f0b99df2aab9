package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/flowmeta/flowmeta/internal/adapter"
	"github.com/flowmeta/flowmeta/internal/config"
	"github.com/flowmeta/flowmeta/internal/engine"
	"github.com/flowmeta/flowmeta/internal/report"
)

type planOptions struct {
	ManifestPath string
	Kind         string
	Prune        bool
	PauseAll     bool
	Verbose      bool
}

var planCmdRunner = runPlan

func newPlanCmd(root *rootFlags) *cobra.Command {
	opts := planOptions{}

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Preview the changes a manifest would make",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Verbose = root.verbose

			if err := validateManifestPath(opts.ManifestPath); err != nil {
				return err
			}

			return planCmdRunner(opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ManifestPath, "manifest", "m", "", "Path to the manifest file")
	cmd.MarkFlagRequired("manifest") //nolint:errcheck
	cmd.Flags().StringVarP(&opts.Kind, "kind", "k", "", "Override the manifest's metadata_type")
	cmd.Flags().BoolVar(&opts.Prune, "prune", false, "Include deletes for unmanaged objects")
	cmd.Flags().BoolVar(&opts.PauseAll, "pause-all", false, "Force is_paused on every DAG in the manifest")

	return cmd
}

func runPlan(opts planOptions) error {
	manifest, err := loadManifest(opts.ManifestPath, opts.Kind, opts.PauseAll)
	if err != nil {
		return err
	}

	ad, err := adapter.Get(manifest.Kind)
	if err != nil {
		return err
	}

	settings, err := config.LoadSettings()
	if err != nil {
		return err
	}

	log, err := newRunLogger(opts.Verbose)
	if err != nil {
		return err
	}

	eng, err := newEngine(settings, log)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	plan, _, err := eng.Reconcile(ctx, ad, manifest.Objects, engine.Options{Prune: opts.Prune})
	if err != nil {
		return err
	}

	report.RenderPlan(os.Stdout, plan)
	return nil
}
