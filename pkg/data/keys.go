package data

import "github.com/matzehuels/chartkit/pkg/errors"

// Keys names the fields a chart reads from each point.
type Keys struct {
	Category string `json:"category,omitempty" toml:"category" bson:"category,omitempty"` // Categorical key (bars, node id, leaf name)
	Value    string `json:"value,omitempty" toml:"value" bson:"value,omitempty"`          // Primary numeric value
	Series   string `json:"series,omitempty" toml:"series" bson:"series,omitempty"`       // Optional grouping key
	X        string `json:"x,omitempty" toml:"x" bson:"x,omitempty"`                      // Ordering/x field for line, area, scatter, contour
	Y        string `json:"y,omitempty" toml:"y" bson:"y,omitempty"`                      // Y field for scatter and contour
	Size     string `json:"size,omitempty" toml:"size" bson:"size,omitempty"`             // Optional scatter radius field
	Links    string `json:"links,omitempty" toml:"links" bson:"links,omitempty"`          // Link list for network and bundle
	Order    string `json:"order,omitempty" toml:"order" bson:"order,omitempty"`          // Optional numeric ordering of line and area points
}

// DefaultKeys returns the field names used when a config leaves them empty.
func DefaultKeys() Keys {
	return Keys{Category: "category", Value: "value", Links: "links"}
}

// WithDefaults fills empty names from DefaultKeys.
func (k Keys) WithDefaults() Keys {
	d := DefaultKeys()
	if k.Category == "" {
		k.Category = d.Category
	}
	if k.Value == "" {
		k.Value = d.Value
	}
	if k.Links == "" {
		k.Links = d.Links
	}
	return k
}

// Validate checks every non-empty field name.
func (k Keys) Validate() error {
	for _, f := range []string{k.Category, k.Value, k.Series, k.X, k.Y, k.Size, k.Links, k.Order} {
		if f == "" {
			continue
		}
		if err := errors.ValidateFieldName(f); err != nil {
			return err
		}
	}
	return nil
}

// XOrCategory returns the x field, falling back to the category field.
func (k Keys) XOrCategory() string {
	if k.X != "" {
		return k.X
	}
	return k.Category
}

// YOrValue returns the y field, falling back to the value field.
func (k Keys) YOrValue() string {
	if k.Y != "" {
		return k.Y
	}
	return k.Value
}
