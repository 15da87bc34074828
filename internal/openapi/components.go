package openapi

import (
	"sort"

	"github.com/getkin/kin-openapi/openapi3"
)

// Components accumulates component schemas produced by one resolution step.
// Writes under an existing name replace the earlier value and are remembered
// so the caller can surface them.
type Components struct {
	schemas  openapi3.Schemas
	replaced []string
}

// Set stores s under name, replacing any earlier value.
func (c *Components) Set(name string, s *openapi3.SchemaRef) {
	if c.schemas == nil {
		c.schemas = openapi3.Schemas{}
	}
	if _, ok := c.schemas[name]; ok {
		c.replaced = append(c.replaced, name)
	}
	c.schemas[name] = s
}

func (c *Components) Get(name string) (*openapi3.SchemaRef, bool) {
	s, ok := c.schemas[name]
	return s, ok
}

func (c *Components) Len() int { return len(c.schemas) }

// Names returns the registered names in sorted order.
func (c *Components) Names() []string {
	out := make([]string, 0, len(c.schemas))
	for name := range c.schemas {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Merge copies src into c, last write wins. It returns every name that was
// overwritten, either inside src or against what c already held.
func (c *Components) Merge(src Components) []string {
	overwritten := append([]string(nil), src.replaced...)
	for _, name := range src.Names() {
		if _, ok := c.schemas[name]; ok {
			overwritten = append(overwritten, name)
		}
		if c.schemas == nil {
			c.schemas = openapi3.Schemas{}
		}
		c.schemas[name] = src.schemas[name]
	}
	return overwritten
}

// Schemas returns the accumulated table, never nil.
func (c *Components) Schemas() openapi3.Schemas {
	if c.schemas == nil {
		return openapi3.Schemas{}
	}
	return c.schemas
}
