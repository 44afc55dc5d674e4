package treemap

import (
	"math"
	"sort"
)

// Node is one rectangle of a treemap. Leaves carry Value; a parent's size is
// the sum of its leaves.
type Node struct {
	Label    string  `json:"label"`
	Detail   string  `json:"detail,omitempty"`
	Value    float64 `json:"value"`
	Children []*Node `json:"children,omitempty"`
}

// Size returns the area weight of n. Negative values count as zero.
func (n *Node) Size() float64 {
	if n == nil {
		return 0
	}
	if len(n.Children) == 0 {
		return math.Max(n.Value, 0)
	}
	var s float64
	for _, c := range n.Children {
		s += c.Size()
	}
	return s
}

type Rect struct {
	X, Y, W, H float64
}

func (r Rect) shortSide() float64 { return math.Min(r.W, r.H) }

// Tile is a positioned node. Depth 0 is the root.
type Tile struct {
	Node  *Node
	Rect  Rect
	Depth int
}

// Options controls the nesting geometry.
type Options struct {
	// Header is the band reserved at the top of every parent for its label.
	Header float64
	// Padding insets children inside their parent.
	Padding float64
}

// Layout places root inside bounds with the squarified algorithm and returns
// tiles parents-first. Zero-sized nodes are omitted.
func Layout(root *Node, bounds Rect, opts Options) []Tile {
	if root == nil || root.Size() <= 0 || bounds.W <= 0 || bounds.H <= 0 {
		return nil
	}
	var out []Tile
	var walk func(n *Node, r Rect, depth int)
	walk = func(n *Node, r Rect, depth int) {
		out = append(out, Tile{Node: n, Rect: r, Depth: depth})
		if len(n.Children) == 0 {
			return
		}
		inner := Rect{
			X: r.X + opts.Padding,
			Y: r.Y + opts.Header + opts.Padding,
			W: r.W - 2*opts.Padding,
			H: r.H - opts.Header - 2*opts.Padding,
		}
		if inner.W <= 0 || inner.H <= 0 {
			return
		}
		kids := make([]*Node, 0, len(n.Children))
		for _, c := range n.Children {
			if c.Size() > 0 {
				kids = append(kids, c)
			}
		}
		sort.SliceStable(kids, func(i, j int) bool { return kids[i].Size() > kids[j].Size() })
		for i, rect := range squarify(sizes(kids), inner) {
			walk(kids[i], rect, depth+1)
		}
	}
	walk(root, bounds, 0)
	return out
}

func sizes(nodes []*Node) []float64 {
	out := make([]float64, len(nodes))
	for i, n := range nodes {
		out[i] = n.Size()
	}
	return out
}

// squarify splits r among values (sorted descending) keeping aspect ratios
// close to 1. The result is parallel to values.
func squarify(values []float64, r Rect) []Rect {
	out := make([]Rect, 0, len(values))
	var total float64
	for _, v := range values {
		total += v
	}
	if total <= 0 {
		return out
	}
	scale := r.W * r.H / total
	areas := make([]float64, len(values))
	for i, v := range values {
		areas[i] = v * scale
	}

	for len(areas) > 0 {
		side := r.shortSide()
		n := 1
		for n < len(areas) && worst(areas[:n+1], side) <= worst(areas[:n], side) {
			n++
		}
		var rowArea float64
		for _, a := range areas[:n] {
			rowArea += a
		}
		if r.W >= r.H {
			// column on the left
			w := rowArea / r.H
			y := r.Y
			for _, a := range areas[:n] {
				h := a / w
				out = append(out, Rect{X: r.X, Y: y, W: w, H: h})
				y += h
			}
			r = Rect{X: r.X + w, Y: r.Y, W: r.W - w, H: r.H}
		} else {
			// row along the top
			h := rowArea / r.W
			x := r.X
			for _, a := range areas[:n] {
				w := a / h
				out = append(out, Rect{X: x, Y: r.Y, W: w, H: h})
				x += w
			}
			r = Rect{X: r.X, Y: r.Y + h, W: r.W, H: r.H - h}
		}
		areas = areas[n:]
	}
	return out
}

// worst is the largest aspect ratio of row laid along a side of length side.
func worst(row []float64, side float64) float64 {
	var sum, lo, hi float64
	lo = math.Inf(1)
	for _, a := range row {
		sum += a
		lo = math.Min(lo, a)
		hi = math.Max(hi, a)
	}
	if sum <= 0 || lo <= 0 {
		return math.Inf(1)
	}
	s2 := side * side
	sum2 := sum * sum
	return math.Max(s2*hi/sum2, sum2/(s2*lo))
}
