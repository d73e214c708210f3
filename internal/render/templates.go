package render

import "fmt"

type rgb struct{ r, g, b int }

// Style is one resume layout. All layouts are single-column and use core PDF
// fonts so every ATS parser can extract the text.
type Style struct {
	ID            string
	Font          string
	NameSize      float64
	HeadingSize   float64
	BodySize      float64
	Accent        rgb
	CenterHeader  bool
	UpperHeadings bool
	HeadingRule   bool
	ShadedHeader  bool
}

var styles = []Style{
	{
		ID:          "minimal",
		Font:        "Helvetica",
		NameSize:    20,
		HeadingSize: 11,
		BodySize:    10,
		Accent:      rgb{40, 40, 40},
	},
	{
		ID:          "modern",
		Font:        "Helvetica",
		NameSize:    24,
		HeadingSize: 12,
		BodySize:    10,
		Accent:      rgb{31, 97, 141},
		HeadingRule: true,
	},
	{
		ID:            "classic",
		Font:          "Times",
		NameSize:      22,
		HeadingSize:   12,
		BodySize:      11,
		Accent:        rgb{0, 0, 0},
		CenterHeader:  true,
		UpperHeadings: true,
		HeadingRule:   true,
	},
	{
		ID:            "corporate",
		Font:          "Arial",
		NameSize:      22,
		HeadingSize:   11,
		BodySize:      10,
		Accent:        rgb{22, 54, 92},
		UpperHeadings: true,
		ShadedHeader:  true,
	},
}

// Templates returns the identifiers of every layout.
func Templates() []string {
	out := make([]string, 0, len(styles))
	for _, s := range styles {
		out = append(out, s.ID)
	}
	return out
}

// Lookup returns the layout with the given identifier.
func Lookup(id string) (Style, error) {
	for _, s := range styles {
		if s.ID == id {
			return s, nil
		}
	}
	return Style{}, fmt.Errorf("unknown template %q", id)
}
