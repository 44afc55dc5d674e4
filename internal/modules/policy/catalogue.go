package policy

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/yungbote/scorecard-dashboard/internal/domain"
	"github.com/yungbote/scorecard-dashboard/internal/platform/fileformat"
)

// DefaultCatalogueKey is the object key of the policy cost sheet.
const DefaultCatalogueKey = "policy_costs_scalable.csv"

const (
	colLabel      = "policy_options"
	colID         = "id"
	colFlag       = "flag"
	colDomain     = "lens_1"
	colCapability = "lens_2"
	colDefault    = "default"
)

// Catalogue is the current set of policies with their tier costs.
type Catalogue struct {
	Policies []domain.Policy
	byID     map[string]int
}

// NewCatalogue indexes policies by id. Later duplicates are dropped.
func NewCatalogue(policies []domain.Policy) *Catalogue {
	c := &Catalogue{byID: make(map[string]int, len(policies))}
	for _, p := range policies {
		if _, dup := c.byID[p.ID]; dup || p.ID == "" {
			continue
		}
		c.byID[p.ID] = len(c.Policies)
		c.Policies = append(c.Policies, p)
	}
	return c
}

// ParseCatalogue reads a cost sheet. Rows without a label are skipped; the id
// is derived from the label when the sheet has no id column or the cell is blank.
func ParseCatalogue(t *fileformat.Table) (*Catalogue, error) {
	if !t.HasColumn(colLabel) {
		return nil, fmt.Errorf("policy catalogue has no %q column", colLabel)
	}
	policies := make([]domain.Policy, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		label := strings.TrimSpace(t.Cell(i, colLabel))
		if label == "" {
			continue
		}
		id := strings.TrimSpace(t.Cell(i, colID))
		if id == "" {
			id = domain.PolicyID(label)
		}
		p := domain.Policy{
			ID:         id,
			Label:      label,
			Flag:       domain.Flag(strings.ToLower(strings.TrimSpace(t.Cell(i, colFlag)))),
			Costs:      make(map[domain.Option]*float64, len(domain.Options)),
			Domain:     cleanCategory(t.Cell(i, colDomain)),
			Capability: cleanCategory(t.Cell(i, colCapability)),
		}
		for _, o := range domain.Options {
			v, err := parseCost(t.Cell(i, string(o)))
			if err != nil {
				return nil, fmt.Errorf("policy %q %s cost: %w", label, o, err)
			}
			p.Costs[o] = v
		}
		def, err := domain.ParseBool(t.Cell(i, colDefault))
		if err != nil {
			return nil, fmt.Errorf("policy %q default: %w", label, err)
		}
		p.Default = def
		policies = append(policies, p)
	}
	return NewCatalogue(policies), nil
}

func cleanCategory(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.EqualFold(s, "nan") {
		return ""
	}
	return s
}

// parseCost returns nil for a blank cell. Thousands separators and a leading € are tolerated.
func parseCost(raw string) (*float64, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "€")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" || strings.EqualFold(s, "nan") {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (c *Catalogue) Get(id string) (domain.Policy, bool) {
	i, ok := c.byID[id]
	if !ok {
		return domain.Policy{}, false
	}
	return c.Policies[i], true
}

func (c *Catalogue) Len() int { return len(c.Policies) }

// Search returns the policies whose id contains query, lowercased with spaces
// replaced by "-". A blank query matches everything.
func (c *Catalogue) Search(query string) []domain.Policy {
	q := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(query)), " ", "-")
	if q == "" {
		return append([]domain.Policy(nil), c.Policies...)
	}
	var out []domain.Policy
	for _, p := range c.Policies {
		if strings.Contains(p.ID, q) {
			out = append(out, p)
		}
	}
	return out
}

// Table renders the catalogue back into the cost sheet layout.
func (c *Catalogue) Table() *fileformat.Table {
	cols := []string{colID, colLabel, colFlag}
	for _, o := range domain.Options {
		cols = append(cols, string(o))
	}
	cols = append(cols, colDomain, colCapability, colDefault)
	t := fileformat.NewTable(cols...)
	for _, p := range c.Policies {
		row := []string{p.ID, p.Label, string(p.Flag)}
		for _, o := range domain.Options {
			if v := p.Costs[o]; v != nil {
				row = append(row, strconv.FormatFloat(*v, 'f', -1, 64))
			} else {
				row = append(row, "")
			}
		}
		row = append(row, p.Domain, p.Capability, domain.FormatBool(p.Default))
		t.Append(row...)
	}
	return t
}

// Categories lists the groups of lens in display order: the fixed list first,
// then any category found in the catalogue but missing from it, sorted.
func (c *Catalogue) Categories(lens domain.Lens) []string {
	fixed := lens.Categories()
	out := append([]string(nil), fixed...)
	known := make(map[string]bool, len(fixed))
	for _, k := range fixed {
		known[k] = true
	}
	var extra []string
	for _, p := range c.Policies {
		cat := p.Category(lens)
		if cat == "" || known[cat] {
			continue
		}
		known[cat] = true
		extra = append(extra, cat)
	}
	sort.Strings(extra)
	return append(out, extra...)
}
