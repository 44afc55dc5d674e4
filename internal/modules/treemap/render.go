package treemap

import (
	"bytes"
	"fmt"
	"image/color"
	"io"
	"os"
	"strings"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
)

const (
	DefaultWidth    = 1200
	DefaultHeight   = 800
	defaultFontSize = 13
)

type Config struct {
	Width  int
	Height int
	// FontPath is an optional TTF; the built-in bitmap face is used otherwise.
	FontPath string
	FontSize float64
}

// Renderer draws treemaps as PNG images.
type Renderer struct {
	width   int
	height  int
	face    font.Face
	lineH   float64
	palette []color.NRGBA
}

var palette = []color.NRGBA{
	{R: 0x63, G: 0x6e, B: 0xfa, A: 0xff},
	{R: 0xef, G: 0x55, B: 0x3b, A: 0xff},
	{R: 0x00, G: 0xcc, B: 0x96, A: 0xff},
	{R: 0xab, G: 0x63, B: 0xfa, A: 0xff},
	{R: 0xff, G: 0xa1, B: 0x5a, A: 0xff},
	{R: 0x19, G: 0xd3, B: 0xf3, A: 0xff},
	{R: 0xff, G: 0x66, B: 0x92, A: 0xff},
	{R: 0xb6, G: 0xe8, B: 0x80, A: 0xff},
	{R: 0xff, G: 0x97, B: 0xff, A: 0xff},
	{R: 0xfe, G: 0xcb, B: 0x52, A: 0xff},
}

func NewRenderer(cfg Config) (*Renderer, error) {
	r := &Renderer{
		width:   cfg.Width,
		height:  cfg.Height,
		lineH:   defaultFontSize + 3,
		palette: palette,
	}
	if r.width <= 0 {
		r.width = DefaultWidth
	}
	if r.height <= 0 {
		r.height = DefaultHeight
	}
	if p := strings.TrimSpace(cfg.FontPath); p != "" {
		size := cfg.FontSize
		if size <= 0 {
			size = defaultFontSize
		}
		face, err := loadFontFace(p, size)
		if err != nil {
			return nil, fmt.Errorf("could not load treemap font: %w", err)
		}
		r.face = face
		r.lineH = size * 1.3
	}
	return r, nil
}

func loadFontFace(fontPath string, size float64) (font.Face, error) {
	fontBytes, err := os.ReadFile(fontPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read font file: %w", err)
	}
	parsedFont, err := truetype.Parse(fontBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TTF: %w", err)
	}
	return truetype.NewFace(parsedFont, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	}), nil
}

// Render returns root as an encoded PNG.
func (r *Renderer) Render(root *Node) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.WritePNG(&buf, root); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (r *Renderer) WritePNG(w io.Writer, root *Node) error {
	dc := gg.NewContext(r.width, r.height)
	if r.face != nil {
		dc.SetFontFace(r.face)
	}
	dc.SetColor(color.White)
	dc.Clear()

	tiles := Layout(root, Rect{W: float64(r.width), H: float64(r.height)}, Options{Header: r.lineH + 4, Padding: 2})
	fills := map[*Node]color.NRGBA{}
	for _, t := range tiles {
		fill := r.fillFor(t, tiles, fills)
		fills[t.Node] = fill
		dc.SetColor(fill)
		dc.DrawRectangle(t.Rect.X, t.Rect.Y, t.Rect.W, t.Rect.H)
		dc.Fill()
		dc.SetColor(color.White)
		dc.SetLineWidth(1)
		dc.DrawRectangle(t.Rect.X, t.Rect.Y, t.Rect.W, t.Rect.H)
		dc.Stroke()
		r.drawLabel(dc, t)
	}

	if err := dc.EncodePNG(w); err != nil {
		return fmt.Errorf("failed to encode PNG: %w", err)
	}
	return nil
}

// fillFor gives each top-level group a palette colour; deeper tiles lighten
// their parent's colour.
func (r *Renderer) fillFor(t Tile, tiles []Tile, fills map[*Node]color.NRGBA) color.NRGBA {
	switch t.Depth {
	case 0:
		return color.NRGBA{R: 0xe5, G: 0xec, B: 0xf6, A: 0xff}
	case 1:
		idx := 0
		for _, o := range tiles {
			if o.Depth != 1 {
				continue
			}
			if o.Node == t.Node {
				break
			}
			idx++
		}
		return r.palette[idx%len(r.palette)]
	default:
		for _, o := range tiles {
			if o.Depth == t.Depth-1 && contains(o.Node, t.Node) {
				return lighten(fills[o.Node], 0.25)
			}
		}
		return r.palette[0]
	}
}

func contains(parent, child *Node) bool {
	for _, c := range parent.Children {
		if c == child {
			return true
		}
	}
	return false
}

func lighten(c color.NRGBA, f float64) color.NRGBA {
	mix := func(v uint8) uint8 { return uint8(float64(v) + (255-float64(v))*f) }
	return color.NRGBA{R: mix(c.R), G: mix(c.G), B: mix(c.B), A: c.A}
}

func (r *Renderer) drawLabel(dc *gg.Context, t Tile) {
	const pad = 4
	maxW := t.Rect.W - 2*pad
	if maxW < 20 || t.Rect.H < r.lineH+pad {
		return
	}
	textColor := color.Black
	if t.Depth == 1 {
		textColor = color.White
	}
	dc.SetColor(textColor)

	var lines []string
	if t.Node.Detail != "" && len(t.Node.Children) == 0 {
		lines = append(lines, dc.WordWrap(t.Node.Detail, maxW)...)
	}
	lines = append(lines, dc.WordWrap(t.Node.Label, maxW)...)
	if len(t.Node.Children) > 0 && len(lines) > 1 {
		lines = lines[:1]
	}

	y := t.Rect.Y + pad
	for _, line := range lines {
		if y+r.lineH > t.Rect.Y+t.Rect.H {
			break
		}
		dc.DrawStringAnchored(line, t.Rect.X+pad, y, 0, 1)
		y += r.lineH
	}
}
