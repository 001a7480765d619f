package content

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlattenProducesDotPaths(t *testing.T) {
	doc := json.RawMessage(`{
		"hero": {"title": "DOM Realce", "cta": {"label": "Orçamento", "href": "/contacto"}},
		"ordem": 3,
		"ativo": true,
		"blocos": [{"tipo": "galeria"}, {"tipo": "texto"}]
	}`)

	rows, err := Flatten(doc)
	require.NoError(t, err)

	assert.Equal(t, `"DOM Realce"`, rows["hero.title"])
	assert.Equal(t, `"Orçamento"`, rows["hero.cta.label"])
	assert.Equal(t, "3", rows["ordem"])
	assert.Equal(t, "true", rows["ativo"])
	// arrays stay as single leaves, not one row per element
	assert.JSONEq(t, `[{"tipo":"galeria"},{"tipo":"texto"}]`, rows["blocos"])
	assert.NotContains(t, rows, "blocos.0")
}

func TestFlattenRejectsNonObjects(t *testing.T) {
	for _, doc := range []string{`[]`, `"texto"`, `42`, `null`} {
		_, err := Flatten(json.RawMessage(doc))
		assert.ErrorIs(t, err, ErrNotObject, "doc %s", doc)
	}

	_, err := Flatten(json.RawMessage(`{not json`))
	assert.Error(t, err)
}

func TestFlattenUnflattenRoundTrip(t *testing.T) {
	doc := json.RawMessage(`{
		"seo": {"title": "Lonas e Telas", "keywords": ["lona", "tela"]},
		"hero": {"subtitle": "Impressão de grande formato", "preco": 12.5},
		"visivel": false
	}`)

	rows, err := Flatten(doc)
	require.NoError(t, err)

	back, err := Unflatten(rows)
	require.NoError(t, err)
	assert.JSONEq(t, string(doc), string(back))
}

func TestPagesServiceSaveGetList(t *testing.T) {
	p := NewPages(NewMemoryStore())
	ctx := context.Background()

	require.NoError(t, p.Save(ctx, "home", json.RawMessage(`{"hero":{"title":"Olá"}}`)))
	require.NoError(t, p.Save(ctx, "contacto", json.RawMessage(`{"email":"geral@example.pt"}`)))

	doc, err := p.Get(ctx, "home")
	require.NoError(t, err)
	assert.JSONEq(t, `{"hero":{"title":"Olá"}}`, string(doc))

	slugs, err := p.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"contacto", "home"}, slugs)

	_, err = p.Get(ctx, "nope")
	assert.ErrorIs(t, err, ErrPageNotFound)

	assert.ErrorIs(t, p.Save(ctx, "home", json.RawMessage(`[]`)), ErrNotObject)
}
