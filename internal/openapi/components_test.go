package openapi

import (
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComponentsMergeLastWriteWins(t *testing.T) {
	first := &openapi3.SchemaRef{Ref: "./first.json"}
	second := &openapi3.SchemaRef{Ref: "./second.json"}

	var acc Components
	var a, b Components
	a.Set("Pet", first)
	b.Set("Pet", second)
	b.Set("Owner", &openapi3.SchemaRef{Ref: "./owner.json"})

	assert.Empty(t, acc.Merge(a))
	assert.Equal(t, []string{"Pet"}, acc.Merge(b))

	got, ok := acc.Get("Pet")
	require.True(t, ok)
	assert.Same(t, second, got)
	assert.Equal(t, []string{"Owner", "Pet"}, acc.Names())
	assert.Equal(t, 2, acc.Len())
}

func TestComponentsMergeReportsInternalOverwrite(t *testing.T) {
	var src Components
	src.Set("Pet", &openapi3.SchemaRef{Ref: "a"})
	src.Set("Pet", &openapi3.SchemaRef{Ref: "b"})

	var acc Components
	assert.Equal(t, []string{"Pet"}, acc.Merge(src))
	got, _ := acc.Get("Pet")
	assert.Equal(t, "b", got.Ref)
}

func TestComponentsSchemasNeverNil(t *testing.T) {
	var c Components
	assert.NotNil(t, c.Schemas())
	assert.Empty(t, c.Schemas())
}
