// Package palette holds the fixed set of output colors a quantized sprite
// may use, together with the palette's precomputed OKLAB projection.
package palette

import (
	"fmt"
	"image/color"
	"os"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/DonAyers/pixegen/okcolor"
)

// Palette is an ordered set of unique colors, immutable after construction.
// The OKLAB cache is computed once by the constructor and shared read-only,
// so a single Palette value can serve any number of concurrent pipeline
// invocations without locking.
type Palette struct {
	colors []color.NRGBA
	lab    []okcolor.Lab
	depth  int // bits per channel when quantizing by truncation; 0 when colors are explicit
}

// New builds a palette from an explicit color list. Duplicate entries are
// dropped, first occurrence wins, order is otherwise preserved.
func New(cols []color.NRGBA) (*Palette, error) {
	if len(cols) == 0 {
		return nil, fmt.Errorf("palette: need at least one color")
	}

	seen := make(map[color.NRGBA]struct{}, len(cols))
	p := &Palette{colors: make([]color.NRGBA, 0, len(cols))}
	for _, c := range cols {
		c.A = 0xFF
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		p.colors = append(p.colors, c)
	}

	p.lab = make([]okcolor.Lab, len(p.colors))
	for i, c := range p.colors {
		p.lab[i] = okcolor.FromRGB8(c.R, c.G, c.B)
	}

	return p, nil
}

// NewBitDepth builds a palette defined by per-channel bit depth rather than
// an explicit color list, for hardware that truncates each channel.
func NewBitDepth(bits int) (*Palette, error) {
	if bits < 1 || bits > 8 {
		return nil, fmt.Errorf("palette: bit depth out of range: %d", bits)
	}
	return &Palette{depth: bits}, nil
}

// Len returns the number of colors; 0 for bit-depth palettes.
func (p *Palette) Len() int {
	return len(p.colors)
}

// Depth returns the per-channel bit depth, 0 for explicit-color palettes.
func (p *Palette) Depth() int {
	return p.depth
}

// At returns the i-th palette color.
func (p *Palette) At(i int) color.NRGBA {
	return p.colors[i]
}

// Colors returns the palette as a color.Palette for code working against
// image/color. The slice is freshly allocated on every call.
func (p *Palette) Colors() color.Palette {
	pal := make(color.Palette, len(p.colors))
	for i, c := range p.colors {
		pal[i] = c
	}
	return pal
}

// NearestLab returns the index of the palette entry closest to lc in OKLAB.
// Ties resolve to the lowest index.
func (p *Palette) NearestLab(lc okcolor.Lab) int {
	ret, bestSum := 0, float64(0)
	for i, v := range p.lab {
		sum := lc.DistanceSquared(v)
		if i == 0 || sum < bestSum {
			if sum == 0 {
				return i
			}
			ret, bestSum = i, sum
		}
	}
	return ret
}

var profiles = map[string][]string{
	"gameboy": {"#0f380f", "#306230", "#8bac0f", "#9bbc0f"},
	"gray4":   {"#000000", "#555555", "#aaaaaa", "#ffffff"},
	"cga":     {"#000000", "#55ffff", "#ff55ff", "#ffffff"},
	"pico8": {
		"#000000", "#1d2b53", "#7e2553", "#008751",
		"#ab5236", "#5f574f", "#c2c3c7", "#fff1e8",
		"#ff004d", "#ffa300", "#ffec27", "#00e436",
		"#29adff", "#83769c", "#ff77a8", "#ffccaa",
	},
	"sweetie16": {
		"#1a1c2c", "#5d275d", "#b13e53", "#ef7d57",
		"#ffcd75", "#a7f070", "#38b764", "#257179",
		"#29366f", "#3b5dc9", "#41a6f6", "#73eff7",
		"#f4f4f4", "#94b0c2", "#566c86", "#333c57",
	},
}

var depthProfiles = map[string]int{
	"rgb333": 3,
	"rgb555": 5,
}

// Names lists the built-in profile names.
func Names() []string {
	names := make([]string, 0, len(profiles)+len(depthProfiles))
	for name := range profiles {
		names = append(names, name)
	}
	for name := range depthProfiles {
		names = append(names, name)
	}
	return names
}

// Load resolves name as a built-in console profile or, failing that, as a
// path to a RIFF PAL file.
func Load(name string) (*Palette, error) {
	key := strings.ToLower(name)

	if bits, ok := depthProfiles[key]; ok {
		return NewBitDepth(bits)
	}

	if hexes, ok := profiles[key]; ok {
		cols := make([]color.NRGBA, len(hexes))
		for i, h := range hexes {
			c, err := colorful.Hex(h)
			if err != nil {
				return nil, fmt.Errorf("palette: bad profile color %q: %w", h, err)
			}
			r, g, b := c.RGB255()
			cols[i] = color.NRGBA{R: r, G: g, B: b, A: 0xFF}
		}
		return New(cols)
	}

	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("palette: %q is not a built-in profile or a readable file: %w", name, err)
	}
	defer f.Close()

	cols, err := readRIFF(f)
	if err != nil {
		return nil, fmt.Errorf("palette: could not load %q: %w", name, err)
	}
	return New(cols)
}
