package huectl

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// RandomColor is the pseudo color name resolved to one of the fixed colors.
const RandomColor = "random"

var (
	ErrUnknownColor = errors.New("Unknown color")
	ErrColorArgs    = errors.New("Color must be a color or rgb values")
)

// RGB is an 8-bit color triple. Components are not range checked.
type RGB struct {
	R, G, B int
}

func (c RGB) String() string {
	return fmt.Sprintf("(%d, %d, %d)", c.R, c.G, c.B)
}

var fixedColorNames = []string{"red", "green", "blue", "lime", "yellow", "cyan", "purple"}

var fixedColors = map[string]RGB{
	"red":    {255, 0, 0},
	"green":  {0, 128, 0},
	"blue":   {0, 0, 255},
	"lime":   {0, 255, 0},
	"yellow": {255, 255, 0},
	"cyan":   {0, 255, 255},
	"purple": {128, 0, 128},
}

// FixedColors returns the built-in color names in a stable order.
func FixedColors() []string {
	return append([]string(nil), fixedColorNames...)
}

// Palette resolves color names: the fixed colors, "random", and any custom
// colors configured by the user.
type Palette struct {
	custom map[string]RGB
	intn   func(n int) int
}

// NewPalette builds a palette from custom name to hex mappings such as
// {"sunset": "#fa5f3c"}. Custom names never replace a fixed color.
func NewPalette(custom map[string]string) (*Palette, error) {
	p := &Palette{
		custom: make(map[string]RGB),
		intn:   rand.Intn,
	}
	for name, hex := range custom {
		name = strings.ToLower(name)
		if _, ok := fixedColors[name]; ok || name == RandomColor {
			log.WithField("color", name).Warn("Ignoring palette entry shadowing a built-in color.")
			continue
		}
		rgb, err := parseHex(hex)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid palette color %s", name)
		}
		p.custom[name] = rgb
	}
	return p, nil
}

// WithRand replaces the random source used for "random".
func (p *Palette) WithRand(intn func(n int) int) *Palette {
	p.intn = intn
	return p
}

func (p *Palette) Lookup(name string) (RGB, error) {
	if name == RandomColor {
		return fixedColors[fixedColorNames[p.intn(len(fixedColorNames))]], nil
	}
	if rgb, ok := fixedColors[name]; ok {
		return rgb, nil
	}
	if rgb, ok := p.custom[name]; ok {
		return rgb, nil
	}
	return RGB{}, ErrUnknownColor
}

// Names returns the custom color names.
func (p *Palette) Names() []string {
	names := make([]string, 0, len(p.custom))
	for name := range p.custom {
		names = append(names, name)
	}
	return names
}

type colorKind int

const (
	namedColor colorKind = iota
	explicitColor
)

// ColorSpec is a color argument as given on the command line: either a name
// to be looked up in a palette or explicit components.
type ColorSpec struct {
	kind colorKind
	name string
	rgb  RGB
}

func Named(name string) ColorSpec {
	return ColorSpec{kind: namedColor, name: name}
}

func Explicit(r, g, b int) ColorSpec {
	return ColorSpec{kind: explicitColor, rgb: RGB{r, g, b}}
}

// ParseColorArgs accepts a single name, a single #rrggbb value, or three
// integer components.
func ParseColorArgs(args []string) (ColorSpec, error) {
	switch len(args) {
	case 1:
		if strings.HasPrefix(args[0], "#") {
			rgb, err := parseHex(args[0])
			if err != nil {
				return ColorSpec{}, err
			}
			return Explicit(rgb.R, rgb.G, rgb.B), nil
		}
		return Named(args[0]), nil
	case 3:
		components := make([]int, 3)
		for i, arg := range args {
			v, err := strconv.Atoi(arg)
			if err != nil {
				return ColorSpec{}, errors.Wrapf(ErrColorArgs, "invalid component %q", arg)
			}
			components[i] = v
		}
		return Explicit(components[0], components[1], components[2]), nil
	default:
		return ColorSpec{}, ErrColorArgs
	}
}

func (c ColorSpec) Resolve(p *Palette) (RGB, error) {
	if c.kind == explicitColor {
		return c.rgb, nil
	}
	return p.Lookup(c.name)
}

func (c ColorSpec) String() string {
	if c.kind == explicitColor {
		return c.rgb.String()
	}
	return c.name
}

func parseHex(hex string) (RGB, error) {
	color, err := colorful.Hex(hex)
	if err != nil {
		return RGB{}, errors.Wrapf(ErrUnknownColor, "invalid hex color %s", hex)
	}
	r, g, b := color.Clamped().RGB255()
	return RGB{int(r), int(g), int(b)}, nil
}
