package formation

import "strings"

// Category is a formation variant. The zero value is [Block].
type Category int

const (
	Block Category = iota
	Stunts
	Pyramid
	Wide
)

var categoryNames = map[Category]string{
	Block:   "block",
	Stunts:  "stunts",
	Pyramid: "pyramid",
	Wide:    "wide",
}

var categoryDescriptions = map[Category]string{
	Block:   "Rows of six athletes",
	Stunts:  "4-person stunt pods, three per mat row",
	Pyramid: "Pods stacked 3-2-1",
	Wide:    "Rows of eight athletes",
}

// legacyCodes maps the numeric visual codes of older routine forms
// (band chant, cheer, fight song) onto the row formations they degrade to.
var legacyCodes = map[string]Category{
	"1": Block,
	"2": Block,
	"3": Wide,
}

// Categories returns the canonical categories in display order.
func Categories() []Category {
	return []Category{Stunts, Pyramid, Block, Wide}
}

// ParseCategory maps a category name or legacy numeric code to a Category.
// Matching ignores case and surrounding space. Unrecognized input falls
// back to [Block].
func ParseCategory(s string) Category {
	s = strings.ToLower(strings.TrimSpace(s))
	if c, ok := legacyCodes[s]; ok {
		return c
	}
	for c, name := range categoryNames {
		if name == s {
			return c
		}
	}
	return Block
}

// IsKnown reports whether s names a category or legacy code exactly,
// without falling back to the default.
func IsKnown(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	if _, ok := legacyCodes[s]; ok {
		return true
	}
	for _, name := range categoryNames {
		if name == s {
			return true
		}
	}
	return false
}

// String returns the canonical lowercase name.
func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return categoryNames[Block]
}

// Description returns a short human-readable summary.
func (c Category) Description() string {
	if d, ok := categoryDescriptions[c]; ok {
		return d
	}
	return categoryDescriptions[Block]
}

// MarshalText implements encoding.TextMarshaler.
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler with the same
// fallback rules as ParseCategory.
func (c *Category) UnmarshalText(text []byte) error {
	*c = ParseCategory(string(text))
	return nil
}
