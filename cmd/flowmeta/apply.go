package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/flowmeta/flowmeta/internal/adapter"
	"github.com/flowmeta/flowmeta/internal/config"
	"github.com/flowmeta/flowmeta/internal/engine"
	"github.com/flowmeta/flowmeta/internal/model"
	"github.com/flowmeta/flowmeta/internal/report"
)

type applyOptions struct {
	ManifestPath string
	Kind         string
	Prune        bool
	PauseAll     bool
	Workers      int
	Yes          bool
	Verbose      bool
}

var applyCmdRunner = runApply

func newApplyCmd(root *rootFlags) *cobra.Command {
	opts := applyOptions{}

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Converge the platform to a manifest",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Verbose = root.verbose

			if err := validateManifestPath(opts.ManifestPath); err != nil {
				return err
			}

			return applyCmdRunner(opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ManifestPath, "manifest", "m", "", "Path to the manifest file")
	cmd.MarkFlagRequired("manifest") //nolint:errcheck
	cmd.Flags().StringVarP(&opts.Kind, "kind", "k", "", "Override the manifest's metadata_type")
	cmd.Flags().BoolVar(&opts.Prune, "prune", false, "Delete unmanaged objects absent from the manifest")
	cmd.Flags().BoolVar(&opts.PauseAll, "pause-all", false, "Force is_paused on every DAG in the manifest")
	cmd.Flags().IntVar(&opts.Workers, "workers", 0, "Concurrent operations per phase (0 uses the configured default)")
	cmd.Flags().BoolVarP(&opts.Yes, "yes", "y", false, "Skip the delete confirmation prompt")

	return cmd
}

func runApply(opts applyOptions) error {
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
	if opts.Workers > 0 {
		settings.Workers = opts.Workers
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

	engOpts := engine.Options{Prune: opts.Prune, Workers: settings.Workers}

	plan, _, err := eng.Reconcile(ctx, ad, manifest.Objects, engOpts)
	if err != nil {
		return err
	}

	if plan.Empty() {
		report.RenderPlan(os.Stdout, plan)
		return nil
	}

	if len(plan.Delete) > 0 && !opts.Yes {
		if err := confirmDeletes(plan); err != nil {
			return err
		}
	}

	result, applyErr := eng.Apply(ctx, ad, manifest.Objects, plan, engOpts)
	if result != nil {
		report.RenderApply(os.Stdout, result)
	}
	if applyErr != nil {
		return applyErr
	}
	if failed := result.Summary().Failed; failed > 0 {
		return fmt.Errorf("%d operations failed", failed)
	}

	return nil
}

// loadManifest parses the manifest and applies the CLI overrides. The
// kind override serves legacy manifests whose metadata_type predates the
// self-describing format.
func loadManifest(path, kind string, pauseAll bool) (*config.Manifest, error) {
	manifest, err := config.ParseManifest(path)
	if err != nil {
		return nil, err
	}

	if kind != "" {
		manifest.Kind = kind
	}

	if pauseAll {
		if manifest.Kind != "dags" {
			return nil, fmt.Errorf("--pause-all applies to dags manifests, got %s", manifest.Kind)
		}
		for _, id := range manifest.Objects.Identifiers() {
			obj, _ := manifest.Objects.Get(id)
			obj.Attributes["is_paused"] = true
			manifest.Objects.Put(obj)
		}
	}

	return manifest, nil
}

// confirmDeletes asks before destroying anything. Non-interactive runs
// must pass --yes explicitly.
func confirmDeletes(plan *model.Plan) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return fmt.Errorf("refusing to delete %d objects without --yes in a non-interactive session", len(plan.Delete))
	}

	fmt.Fprintf(os.Stdout, "About to delete %d %s: %s\n", len(plan.Delete), plan.Kind, strings.Join(plan.Delete, ", "))
	fmt.Fprint(os.Stdout, "Proceed? [y/N]: ")

	reader := bufio.NewReader(os.Stdin)
	answer, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("read confirmation: %w", err)
	}

	answer = strings.ToLower(strings.TrimSpace(answer))
	if answer != "y" && answer != "yes" {
		return fmt.Errorf("aborted")
	}

	return nil
}
