package openapi

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mark3labs/serverless-openapi/internal/spec"
)

func TestCanonicalName(t *testing.T) {
	cases := []struct {
		entry spec.SchemaEntry
		want  string
	}{
		{spec.SchemaEntry{Name: "pet"}, "Pet"},
		{spec.SchemaEntry{Name: "pet", CustomName: "petResponse"}, "PetResponse"},
		{spec.SchemaEntry{Name: "ignored", CustomName: "already"}, "Already"},
		{spec.SchemaEntry{Name: "camelCaseRest"}, "CamelCaseRest"},
		{spec.SchemaEntry{Name: "éclair"}, "Éclair"},
		{spec.SchemaEntry{}, ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, CanonicalName(tc.entry), "entry %+v", tc.entry)
	}
}

func TestSchemaRef(t *testing.T) {
	assert.Equal(t, "#/components/schemas/Pet", SchemaRef("Pet"))
}
