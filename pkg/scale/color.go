package scale

import (
	"hash/fnv"
	"slices"
)

// Tableau10 is the default categorical palette.
var Tableau10 = []string{
	"#4e79a7", "#f28e2c", "#e15759", "#76b7b2", "#59a14f",
	"#edc949", "#af7aa1", "#ff9da7", "#9c755f", "#bab0ab",
}

// Colors maps categories onto a cyclic palette.
// Known categories cycle in domain order; unknown ones are placed by hash
// so a given name always gets the same color.
type Colors struct {
	categories []string
	index      map[string]int
	palette    []string
}

// NewColors returns a color scale over categories. An empty palette selects
// Tableau10.
func NewColors(categories []string, palette []string) *Colors {
	if len(palette) == 0 {
		palette = Tableau10
	}
	c := &Colors{
		categories: slices.Clone(categories),
		index:      make(map[string]int, len(categories)),
		palette:    slices.Clone(palette),
	}
	for i, cat := range categories {
		if _, ok := c.index[cat]; !ok {
			c.index[cat] = i
		}
	}
	return c
}

// Color returns the palette entry for category.
func (c *Colors) Color(category string) string {
	if i, ok := c.index[category]; ok {
		return c.palette[i%len(c.palette)]
	}
	h := fnv.New32a()
	h.Write([]byte(category))
	return c.palette[int(h.Sum32()%uint32(len(c.palette)))]
}

// Categories returns the known categories in domain order.
func (c *Colors) Categories() []string { return slices.Clone(c.categories) }

// Palette returns the palette.
func (c *Colors) Palette() []string { return slices.Clone(c.palette) }
