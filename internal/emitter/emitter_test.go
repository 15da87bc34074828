package emitter

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func sampleDoc() *openapi3.T {
	desc := "OK"
	return &openapi3.T{
		OpenAPI: "3.0.0",
		Info:    &openapi3.Info{Title: "Sample", Version: "1.0.0"},
		Paths: openapi3.Paths{
			"/hello": &openapi3.PathItem{Get: &openapi3.Operation{
				OperationID: "hello",
				Responses: openapi3.Responses{
					"200": &openapi3.ResponseRef{Value: &openapi3.Response{Description: &desc}},
				},
			}},
		},
	}
}

func TestFormatFor(t *testing.T) {
	assert.Equal(t, YAML, FormatFor("openapi.yaml"))
	assert.Equal(t, YAML, FormatFor("docs/OPENAPI.YML"))
	assert.Equal(t, JSON, FormatFor("openapi.json"))
	assert.Equal(t, JSON, FormatFor("openapi"))
	assert.Equal(t, JSON, FormatFor("openapi.yaml.bak"))
}

func TestRenderJSONIndent(t *testing.T) {
	out, err := Render(sampleDoc(), JSON)
	require.NoError(t, err)
	s := string(out)
	assert.True(t, strings.HasPrefix(s, "{\n  \""), "two-space indent expected:\n%s", s)
	assert.True(t, strings.HasSuffix(s, "}\n"))
	var back map[string]any
	require.NoError(t, json.Unmarshal(out, &back))
	assert.Equal(t, "3.0.0", back["openapi"])
}

func TestRenderYAML(t *testing.T) {
	out, err := Render(sampleDoc(), YAML)
	require.NoError(t, err)
	s := string(out)
	assert.Contains(t, s, "openapi: 3.0.0\n")
	assert.Contains(t, s, "\n  /hello:\n")
	assert.Contains(t, s, `"200":`)
	assert.NotContains(t, s, "{\"")

	var back map[string]any
	require.NoError(t, yaml.Unmarshal(out, &back))
	assert.Equal(t, "Sample", back["info"].(map[string]any)["title"])
}

func TestEmitWritesByExtension(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"out/openapi.json", "out/openapi.yml"} {
		p := filepath.Join(dir, name)
		res, err := Emit(context.Background(), sampleDoc(), Options{Out: p})
		require.NoError(t, err)
		assert.True(t, res.Written)
		data, err := os.ReadFile(p)
		require.NoError(t, err)
		assert.Equal(t, res.Planned.Size, len(data))
		if res.Planned.Format == JSON {
			assert.True(t, json.Valid(data))
		} else {
			assert.Equal(t, YAML, res.Planned.Format)
			assert.Contains(t, string(data), "openapi: 3.0.0")
		}
	}
	entries, err := os.ReadDir(filepath.Join(dir, "out"))
	require.NoError(t, err)
	assert.Len(t, entries, 2, "no temp files left behind")
}

func TestEmitDryRunWritesNothing(t *testing.T) {
	p := filepath.Join(t.TempDir(), "openapi.json")
	res, err := Emit(context.Background(), sampleDoc(), Options{Out: p, DryRun: true})
	require.NoError(t, err)
	assert.False(t, res.Written)
	assert.Greater(t, res.Planned.Size, 0)
	_, statErr := os.Stat(p)
	assert.True(t, os.IsNotExist(statErr))
}

func TestEmitRequiresInputs(t *testing.T) {
	_, err := Emit(context.Background(), nil, Options{Out: "x.json"})
	assert.Error(t, err)
	_, err = Emit(context.Background(), sampleDoc(), Options{})
	assert.Error(t, err)
}
