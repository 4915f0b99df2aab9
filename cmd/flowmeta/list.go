package main

import (
	"context"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/flowmeta/flowmeta/internal/adapter"
	"github.com/flowmeta/flowmeta/internal/config"
	"github.com/flowmeta/flowmeta/internal/report"
)

var listCmdRunner = runList

func newListCmd(root *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list <kind>",
		Short: "List the remote objects of a kind",
		Long:  "List the remote objects of a kind. Kinds: " + strings.Join(adapter.Kinds(), ", ") + ".",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return listCmdRunner(args[0], root.verbose)
		},
	}

	return cmd
}

func runList(kind string, verbose bool) error {
	ad, err := adapter.Get(kind)
	if err != nil {
		return err
	}

	settings, err := config.LoadSettings()
	if err != nil {
		return err
	}

	log, err := newRunLogger(verbose)
	if err != nil {
		return err
	}

	eng, err := newEngine(settings, log)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	set, err := eng.FetchAll(ctx, ad)
	if err != nil {
		return err
	}

	report.RenderObjects(os.Stdout, kind, ad.Metadata().IdentifierField, set)
	return nil
}
