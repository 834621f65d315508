// Package waste defines the fixed waste categories, the classification result
// shared by the text and image resolvers, and the per-category disposal advice.
package waste

import "strings"

// Category is one of the four fixed waste classes, or Unknown.
type Category string

const (
	Recyclable Category = "可回收垃圾"
	Hazardous  Category = "有害垃圾"
	Kitchen    Category = "厨余垃圾"
	Other      Category = "其他垃圾"
	Unknown    Category = "未知"
)

// Categories returns the four fixed categories in display order.
func Categories() []Category {
	return []Category{Recyclable, Hazardous, Kitchen, Other}
}

var aliases = map[string]Category{
	"recyclable": Recyclable,
	"hazardous":  Hazardous,
	"kitchen":    Kitchen,
	"food":       Kitchen,
	"other":      Other,
	"residual":   Other,
}

// ParseCategory accepts a Chinese category label or an English alias.
// The second return value is false when s names none of the four categories.
func ParseCategory(s string) (Category, bool) {
	s = strings.TrimSpace(s)
	for _, c := range Categories() {
		if s == string(c) {
			return c, true
		}
	}
	if c, ok := aliases[strings.ToLower(s)]; ok {
		return c, true
	}
	return Unknown, false
}

// Valid reports whether c is one of the four fixed categories.
func (c Category) Valid() bool {
	switch c {
	case Recyclable, Hazardous, Kitchen, Other:
		return true
	}
	return false
}

func (c Category) String() string { return string(c) }
