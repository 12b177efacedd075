package view

// Palette is a named sequential color scheme.
type Palette struct {
	Name   string
	Colors []string
}

// CARTO sequential schemes. Teal marks absolute counts, Purp marks
// population-normalized rates.
var (
	Teal = Palette{
		Name: "Teal",
		Colors: []string{
			"rgb(209, 238, 234)", "rgb(168, 219, 217)", "rgb(133, 196, 201)",
			"rgb(104, 171, 184)", "rgb(79, 144, 166)", "rgb(59, 115, 143)",
			"rgb(42, 86, 116)",
		},
	}
	Purp = Palette{
		Name: "Purp",
		Colors: []string{
			"rgb(243, 224, 247)", "rgb(228, 199, 241)", "rgb(209, 175, 232)",
			"rgb(185, 152, 221)", "rgb(159, 130, 206)", "rgb(130, 109, 186)",
			"rgb(99, 88, 159)",
		},
	}
)

// Scale spreads the palette colors evenly over [0, 1].
func (p Palette) Scale() Colorscale {
	n := len(p.Colors)
	out := make(Colorscale, n)
	for i, c := range p.Colors {
		pos := 0.0
		if n > 1 {
			pos = float64(i) / float64(n-1)
		}
		out[i] = ColorStop{Pos: pos, Color: c}
	}
	return out
}

// PaletteFor returns the palette of the given mode.
func PaletteFor(normalize bool) Palette {
	if normalize {
		return Purp
	}
	return Teal
}
