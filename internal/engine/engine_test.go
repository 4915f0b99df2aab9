package engine

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/flowmeta/flowmeta/internal/adapter"
	"github.com/flowmeta/flowmeta/internal/api"
	"github.com/flowmeta/flowmeta/internal/model"
	flowerrors "github.com/flowmeta/flowmeta/pkg/errors"
)

// testAdapter is a minimal kind with a single compared attribute "x".
type testAdapter struct {
	kind           string
	protected      []string
	supportsCreate bool
	supportsDelete bool
	preflightErr   error
}

func newTestAdapter() *testAdapter {
	return &testAdapter{kind: "widgets", supportsCreate: true, supportsDelete: true}
}

func (a *testAdapter) Metadata() adapter.Metadata {
	return adapter.Metadata{
		Kind:            a.kind,
		Collection:      a.kind,
		Envelope:        a.kind,
		IdentifierField: "id",
		Protected:       a.protected,
		SupportsCreate:  a.supportsCreate,
		SupportsDelete:  a.supportsDelete,
	}
}

func (a *testAdapter) Identifier(record map[string]any) (string, error) {
	id, ok := adapter.StringField(record, "id")
	if !ok {
		return "", flowerrors.NewAdapterError(a.kind, fmt.Errorf("record missing id"))
	}
	return id, nil
}

func (a *testAdapter) Normalize(attrs map[string]any) map[string]any {
	return map[string]any{"x": adapter.CanonicalValue(attrs["x"])}
}

func (a *testAdapter) CreatePayload(obj model.Object) (map[string]any, error) {
	return map[string]any{"id": obj.Identifier, "x": obj.Attributes["x"]}, nil
}

func (a *testAdapter) UpdatePayload(obj model.Object) (map[string]any, error) {
	return map[string]any{"id": obj.Identifier, "x": obj.Attributes["x"]}, nil
}

func (a *testAdapter) UpdateQuery(string) url.Values { return nil }

func (a *testAdapter) Preflight(ctx context.Context, _ api.Doer) error {
	return a.preflightErr
}

// fakeAPI is an in-memory stand-in for the platform's widgets endpoints.
type fakeAPI struct {
	mu      sync.Mutex
	order   []string
	objects map[string]map[string]any

	// failWith injects an error for a "METHOD /path" key; it wins over
	// normal handling.
	failWith map[string]error
	calls    []string
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{objects: make(map[string]map[string]any), failWith: make(map[string]error)}
}

func (f *fakeAPI) seed(id string, x any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.objects[id]; !exists {
		f.order = append(f.order, id)
	}
	f.objects[id] = map[string]any{"id": id, "x": x}
}

func (f *fakeAPI) Do(ctx context.Context, method, path string, query url.Values, body any) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, flowerrors.NewNetworkError(method+" "+path, err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, method+" "+path)

	if err, ok := f.failWith[method+" "+path]; ok {
		return nil, err
	}

	switch {
	case method == http.MethodGet && path == "/widgets":
		return f.list(query)
	case method == http.MethodPost && path == "/widgets":
		return f.create(body)
	case method == http.MethodPatch && strings.HasPrefix(path, "/widgets/"):
		return f.update(method, path, body)
	case method == http.MethodDelete && strings.HasPrefix(path, "/widgets/"):
		return f.delete(method, path)
	}
	return nil, flowerrors.NewHTTPError(method, path, http.StatusNotFound, "no such route")
}

func (f *fakeAPI) list(query url.Values) ([]byte, error) {
	offset, _ := strconv.Atoi(query.Get("offset"))
	limit, _ := strconv.Atoi(query.Get("limit"))
	if limit <= 0 {
		limit = len(f.order)
	}

	page := make([]string, 0, limit)
	for i := offset; i < len(f.order) && i < offset+limit; i++ {
		page = append(page, f.order[i])
	}

	var b strings.Builder
	b.WriteString(`{"widgets":[`)
	for i, id := range page {
		if i > 0 {
			b.WriteString(",")
		}
		fmt.Fprintf(&b, `{"id":%q,"x":%v}`, id, jsonValue(f.objects[id]["x"]))
	}
	fmt.Fprintf(&b, `],"total_entries":%d}`, len(f.order))
	return []byte(b.String()), nil
}

func (f *fakeAPI) create(body any) ([]byte, error) {
	record, _ := body.(map[string]any)
	id, _ := record["id"].(string)
	if _, exists := f.objects[id]; exists {
		return nil, flowerrors.NewHTTPError(http.MethodPost, "/widgets", http.StatusConflict, "already exists")
	}
	f.order = append(f.order, id)
	f.objects[id] = map[string]any{"id": id, "x": record["x"]}
	return []byte(`{}`), nil
}

func (f *fakeAPI) update(method, path string, body any) ([]byte, error) {
	id := strings.TrimPrefix(path, "/widgets/")
	if _, exists := f.objects[id]; !exists {
		return nil, flowerrors.NewHTTPError(method, path, http.StatusNotFound, "not found")
	}
	record, _ := body.(map[string]any)
	f.objects[id] = map[string]any{"id": id, "x": record["x"]}
	return []byte(`{}`), nil
}

func (f *fakeAPI) delete(method, path string) ([]byte, error) {
	id := strings.TrimPrefix(path, "/widgets/")
	if _, exists := f.objects[id]; !exists {
		return nil, flowerrors.NewHTTPError(method, path, http.StatusNotFound, "not found")
	}
	delete(f.objects, id)
	for i, existing := range f.order {
		if existing == id {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
	return nil, nil
}

func jsonValue(v any) string {
	switch typed := v.(type) {
	case string:
		return fmt.Sprintf("%q", typed)
	default:
		return fmt.Sprintf("%v", typed)
	}
}

func desiredSet(pairs ...[2]any) *model.Set {
	set := model.NewSet()
	for _, pair := range pairs {
		set.Put(model.Object{
			Kind:       "widgets",
			Identifier: pair[0].(string),
			Attributes: map[string]any{"x": pair[1]},
		})
	}
	return set
}
