// Package content backs the visual editor: page documents (blocks +
// styles) are flattened into key/value rows for storage, and the media
// index is refreshed only when the object listing actually changed.
package content

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
)

var (
	ErrNotObject    = errors.New("page document must be a JSON object")
	ErrPageNotFound = errors.New("page not found")
)

type PageStore interface {
	SavePage(ctx context.Context, slug string, rows map[string]string) error
	GetPage(ctx context.Context, slug string) (map[string]string, error)
	ListPages(ctx context.Context) ([]string, error)
}

// Flatten turns a page document into dot-path rows. Nested objects are
// descended into; scalars and arrays are leaves, stored as their compact
// JSON encoding so Unflatten can restore types exactly. Keys must not
// contain dots.
func Flatten(doc json.RawMessage) (map[string]string, error) {
	var root any
	if err := json.Unmarshal(doc, &root); err != nil {
		return nil, err
	}
	obj, ok := root.(map[string]any)
	if !ok {
		return nil, ErrNotObject
	}

	rows := make(map[string]string)
	var walk func(prefix string, v any)
	walk = func(prefix string, v any) {
		if m, ok := v.(map[string]any); ok && len(m) > 0 {
			for k, vv := range m {
				walk(join(prefix, k), vv)
			}
			return
		}
		b, _ := json.Marshal(v)
		rows[prefix] = string(b)
	}
	for k, v := range obj {
		walk(k, v)
	}
	return rows, nil
}

// Unflatten rebuilds the page document from stored rows.
func Unflatten(rows map[string]string) (json.RawMessage, error) {
	root := make(map[string]any)

	keys := make([]string, 0, len(rows))
	for k := range rows {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		var v any
		if err := json.Unmarshal([]byte(rows[k]), &v); err != nil {
			return nil, err
		}
		insert(root, strings.Split(k, "."), v)
	}
	return json.Marshal(root)
}

func insert(m map[string]any, segs []string, v any) {
	if len(segs) == 1 {
		m[segs[0]] = v
		return
	}
	child, ok := m[segs[0]].(map[string]any)
	if !ok {
		child = make(map[string]any)
		m[segs[0]] = child
	}
	insert(child, segs[1:], v)
}

func join(prefix, k string) string {
	if prefix == "" {
		return k
	}
	return prefix + "." + k
}

// Pages is the page-config service used by the admin handlers.
type Pages struct {
	store PageStore
}

func NewPages(store PageStore) *Pages {
	return &Pages{store: store}
}

func (p *Pages) Save(ctx context.Context, slug string, doc json.RawMessage) error {
	rows, err := Flatten(doc)
	if err != nil {
		return err
	}
	return p.store.SavePage(ctx, slug, rows)
}

func (p *Pages) Get(ctx context.Context, slug string) (json.RawMessage, error) {
	rows, err := p.store.GetPage(ctx, slug)
	if err != nil {
		return nil, err
	}
	return Unflatten(rows)
}

func (p *Pages) List(ctx context.Context) ([]string, error) {
	return p.store.ListPages(ctx)
}
