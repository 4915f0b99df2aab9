package adapter

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/flowmeta/flowmeta/internal/model"
)

type fakeAdapter struct {
	kind string
}

func (f *fakeAdapter) Metadata() Metadata {
	return Metadata{Kind: f.kind, Collection: f.kind, Envelope: f.kind, IdentifierField: "id", SupportsCreate: true, SupportsDelete: true}
}

func (f *fakeAdapter) Identifier(record map[string]any) (string, error) {
	id, _ := StringField(record, "id")
	return id, nil
}

func (f *fakeAdapter) Normalize(attrs map[string]any) map[string]any { return Canonical(attrs) }

func (f *fakeAdapter) CreatePayload(obj model.Object) (map[string]any, error) {
	return obj.Attributes, nil
}

func (f *fakeAdapter) UpdatePayload(obj model.Object) (map[string]any, error) {
	return obj.Attributes, nil
}

func (f *fakeAdapter) UpdateQuery(string) url.Values { return nil }

func TestRegisterAndGet(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	require.NoError(t, Register(&fakeAdapter{kind: "widgets"}))

	got, err := Get("widgets")
	require.NoError(t, err)
	require.Equal(t, "widgets", got.Metadata().Kind)
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	require.NoError(t, Register(&fakeAdapter{kind: "widgets"}))
	require.Error(t, Register(&fakeAdapter{kind: "widgets"}))
}

func TestRegisterRejectsNilAndEmptyKind(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	require.Error(t, Register(nil))
	require.Error(t, Register(&fakeAdapter{kind: ""}))
}

func TestGetUnknownKind(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	_, err := Get("gadgets")
	require.Error(t, err)
}

func TestKindsAreSorted(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	require.NoError(t, Register(&fakeAdapter{kind: "pools"}))
	require.NoError(t, Register(&fakeAdapter{kind: "connections"}))
	require.NoError(t, Register(&fakeAdapter{kind: "variables"}))

	require.Equal(t, []string{"connections", "pools", "variables"}, Kinds())
}

func TestCanonicalWidensNumbers(t *testing.T) {
	t.Parallel()

	in := map[string]any{
		"slots":  4,
		"ratio":  float32(0.5),
		"nested": map[string]any{"port": int64(5432)},
		"list":   []any{1, "two"},
	}

	out := Canonical(in)
	require.Equal(t, float64(4), out["slots"])
	require.Equal(t, float64(0.5), out["ratio"])
	require.Equal(t, float64(5432), out["nested"].(map[string]any)["port"])
	require.Equal(t, []any{float64(1), "two"}, out["list"])
}
