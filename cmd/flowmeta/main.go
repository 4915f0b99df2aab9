package main

import (
	"fmt"
	"os"

	"github.com/flowmeta/flowmeta/internal/adapter"
	connectionsadapter "github.com/flowmeta/flowmeta/internal/adapters/connections"
	dagsadapter "github.com/flowmeta/flowmeta/internal/adapters/dags"
	poolsadapter "github.com/flowmeta/flowmeta/internal/adapters/pools"
	rolesadapter "github.com/flowmeta/flowmeta/internal/adapters/roles"
	variablesadapter "github.com/flowmeta/flowmeta/internal/adapters/variables"
)

func main() {
	if err := registerAdapters(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to prepare adapters: %v\n", err)
		os.Exit(1)
	}

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// registerAdapters wires every supported metadata kind. Registration is
// explicit so the binary's capabilities are visible in one place.
func registerAdapters() error {
	for _, ad := range []adapter.Adapter{
		connectionsadapter.New(),
		dagsadapter.New(),
		poolsadapter.New(),
		rolesadapter.New(),
		variablesadapter.New(),
	} {
		if err := adapter.Register(ad); err != nil {
			return err
		}
	}
	return nil
}
