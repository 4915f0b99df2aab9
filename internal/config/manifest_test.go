package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	flowerrors "github.com/flowmeta/flowmeta/pkg/errors"
)

func writeManifest(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseManifestConnections(t *testing.T) {
	t.Parallel()

	path := writeManifest(t, "connections.yaml", `
project_id: acme-prod
environment_name: orchestrator-prod
metadata_type: connections
data:
  warehouse:
    conn_type: postgres
    host: db.internal
    port: 5432
  blob_store:
    conn_type: gcs
`)

	manifest, err := ParseManifest(path)
	require.NoError(t, err)
	require.Equal(t, "acme-prod", manifest.ProjectID)
	require.Equal(t, "orchestrator-prod", manifest.EnvironmentName)
	require.Equal(t, "connections", manifest.Kind)
	require.Equal(t, []string{"warehouse", "blob_store"}, manifest.Objects.Identifiers())

	warehouse, ok := manifest.Objects.Get("warehouse")
	require.True(t, ok)
	require.Equal(t, "postgres", warehouse.Attributes["conn_type"])
	require.Equal(t, 5432, warehouse.Attributes["port"])
}

func TestParseManifestPreservesDeclarationOrder(t *testing.T) {
	t.Parallel()

	path := writeManifest(t, "pools.yaml", `
metadata_type: pools
data:
  zeta: {slots: 1}
  alpha: {slots: 2}
  mid: {slots: 3}
`)

	manifest, err := ParseManifest(path)
	require.NoError(t, err)
	require.Equal(t, []string{"zeta", "alpha", "mid"}, manifest.Objects.Identifiers())
}

func TestParseManifestJSON(t *testing.T) {
	t.Parallel()

	path := writeManifest(t, "variables.json", `{
  "metadata_type": "variables",
  "data": {
    "env": "prod",
    "batch_size": 500
  }
}`)

	manifest, err := ParseManifest(path)
	require.NoError(t, err)
	require.Equal(t, "variables", manifest.Kind)
	require.Equal(t, []string{"env", "batch_size"}, manifest.Objects.Identifiers())
}

func TestParseManifestWrapsScalarValues(t *testing.T) {
	t.Parallel()

	path := writeManifest(t, "variables.yaml", `
metadata_type: variables
data:
  region: europe-west1
  retries: 3
  feature_flags:
    enabled: true
`)

	manifest, err := ParseManifest(path)
	require.NoError(t, err)

	region, _ := manifest.Objects.Get("region")
	require.Equal(t, map[string]any{"value": "europe-west1"}, region.Attributes)

	retries, _ := manifest.Objects.Get("retries")
	require.Equal(t, map[string]any{"value": 3}, retries.Attributes)

	// Mapping values pass through untouched.
	flags, _ := manifest.Objects.Get("feature_flags")
	require.Equal(t, map[string]any{"enabled": true}, flags.Attributes)
}

func TestParseManifestDefaultsToDags(t *testing.T) {
	t.Parallel()

	// The envelope-less format: every top-level key except the header
	// fields names a DAG.
	path := writeManifest(t, "dags.yaml", `
project_id: acme-prod
environment_name: orchestrator-prod
daily_ingest:
  is_paused: false
nightly_cleanup:
  is_paused: true
`)

	manifest, err := ParseManifest(path)
	require.NoError(t, err)
	require.Equal(t, "dags", manifest.Kind)
	require.Equal(t, []string{"daily_ingest", "nightly_cleanup"}, manifest.Objects.Identifiers())

	cleanup, _ := manifest.Objects.Get("nightly_cleanup")
	require.Equal(t, true, cleanup.Attributes["is_paused"])
}

func TestParseManifestRejectsUnknownKind(t *testing.T) {
	t.Parallel()

	path := writeManifest(t, "bad.yaml", `
metadata_type: datasets
data: {}
`)

	_, err := ParseManifest(path)

	var valErr *flowerrors.ValidationError
	require.True(t, errors.As(err, &valErr))
	require.Contains(t, err.Error(), "datasets")
}

func TestParseManifestMissingFile(t *testing.T) {
	t.Parallel()

	_, err := ParseManifest(filepath.Join(t.TempDir(), "absent.yaml"))

	var parseErr *flowerrors.ParseError
	require.True(t, errors.As(err, &parseErr))
}

func TestParseManifestMalformedYAML(t *testing.T) {
	t.Parallel()

	path := writeManifest(t, "broken.yaml", "data:\n  x: [unclosed\n")

	_, err := ParseManifest(path)

	var parseErr *flowerrors.ParseError
	require.True(t, errors.As(err, &parseErr))
}

func TestParseManifestRejectsNonMappingData(t *testing.T) {
	t.Parallel()

	path := writeManifest(t, "list.yaml", `
metadata_type: pools
data:
  - name: a
  - name: b
`)

	_, err := ParseManifest(path)

	var parseErr *flowerrors.ParseError
	require.True(t, errors.As(err, &parseErr))
	require.Contains(t, err.Error(), "mapping")
}

func TestParseManifestEmptyData(t *testing.T) {
	t.Parallel()

	path := writeManifest(t, "empty.yaml", `
metadata_type: roles
data: {}
`)

	manifest, err := ParseManifest(path)
	require.NoError(t, err)
	require.Equal(t, 0, manifest.Objects.Len())
}
