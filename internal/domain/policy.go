package domain

import "strings"

// Lens is a way of grouping policies.
type Lens string

const (
	LensDomain     Lens = "domain"
	LensCapability Lens = "capability"
	LensPackage    Lens = "package"
)

// ParseLens accepts the lens names and the catalogue column names (lens_1, lens_2).
func ParseLens(raw string) (Lens, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "domain", "lens_1":
		return LensDomain, true
	case "capability", "lens_2":
		return LensCapability, true
	case "package", "region":
		return LensPackage, true
	default:
		return "", false
	}
}

var DomainCategories = []string{
	"Mandatory Activities",
	"EOP",
	"STS",
	"HRE",
	"NAV",
	"CSC",
	"TEC",
	"Space Safety",
	"CIC",
}

var CapabilityCategories = []string{
	"Misc",
	"Space Domain Awareness",
	"Space Transportation",
	"Earth Applications",
	"In-Orbit Applications",
	"Space Science",
	"Space Exploration and Human Spaceflight",
}

// Categories returns the fixed category list of a lens; package has none.
func (l Lens) Categories() []string {
	switch l {
	case LensDomain:
		return DomainCategories
	case LensCapability:
		return CapabilityCategories
	default:
		return nil
	}
}

// Flag marks whether a policy can be scaled across tiers.
type Flag string

const (
	FlagScalable Flag = "scalable"
	FlagAwaiting Flag = "awaiting"
)

// Policy is one row of the policy catalogue. Costs are in €mn; a nil tier has no figure.
type Policy struct {
	ID         string              `json:"id"`
	Label      string              `json:"label"`
	Flag       Flag                `json:"flag"`
	Costs      map[Option]*float64 `json:"costs"`
	Domain     string              `json:"domain"`
	Capability string              `json:"capability"`
	Default    bool                `json:"default"`
}

func (p Policy) Scalable() bool { return p.Flag == FlagScalable }

// Category returns the policy's value for a lens.
func (p Policy) Category(l Lens) string {
	switch l {
	case LensCapability:
		return p.Capability
	default:
		return p.Domain
	}
}

// Cost returns the cost of tier o. Non-scalable policies are always priced at medium.
func (p Policy) Cost(o Option) (float64, bool) {
	if !p.Scalable() {
		o = OptionMedium
	}
	c := p.Costs[o]
	if c == nil {
		return 0, false
	}
	return *c, true
}

// PolicyID derives an id from a catalogue label: lowercased, spaces replaced by "-".
func PolicyID(label string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(label)), " ", "-")
}
