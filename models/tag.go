package models

import "time"

// DefaultTagColor is used for tags without an explicit or predefined color.
const DefaultTagColor = "#e9ecef"

// Tag is a shared label users can attach to library movies.
type Tag struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Color     string    `json:"color,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// PredefinedTag is a suggested tag with a display color.
type PredefinedTag struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// PredefinedTags is the built-in tag palette offered in the UI. User-created
// tags outside this list fall back to DefaultTagColor.
var PredefinedTags = []PredefinedTag{
	{Name: "Classic", Color: "#fff2cc"},
	{Name: "I May Have Cried", Color: "#fce7f3"},
	{Name: "Unique!", Color: "#f0e7ff"},
	{Name: "Deep", Color: "#e3f2f2"},
	{Name: "Feel-Good", Color: "#f0f9f0"},
	{Name: "Laugh-Out-Loud", Color: "#ffe4e6"},
	{Name: "Slow Burn", Color: "#f3e8ff"},
	{Name: "Edge-of-Your-Seat", Color: "#ffe4e6"},
	{Name: "Visual Feast", Color: "#e0f2fe"},
	{Name: "Mind-Bender", Color: "#f0e7ff"},
	{Name: "Comfort Watch", Color: "#f0f9f0"},
	{Name: "Underrated Gem", Color: "#fff2cc"},
	{Name: "Action", Color: "#ffe4e6"},
	{Name: "Comedy", Color: "#e3f2f2"},
	{Name: "Drama", Color: "#f3e8ff"},
	{Name: "Horror", Color: "#ffe4e6"},
	{Name: "Romance", Color: "#fce7f3"},
	{Name: "Thriller", Color: "#f0f9f0"},
}

// PredefinedColor returns the palette color for name, or "" when the name is
// not part of the palette.
func PredefinedColor(name string) string {
	for _, t := range PredefinedTags {
		if t.Name == name {
			return t.Color
		}
	}
	return ""
}

// DisplayColor resolves the effective color for the tag: explicit color first,
// then the predefined palette, then the neutral default.
func (t Tag) DisplayColor() string {
	if t.Color != "" {
		return t.Color
	}
	if c := PredefinedColor(t.Name); c != "" {
		return c
	}
	return DefaultTagColor
}
