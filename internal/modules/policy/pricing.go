package policy

import (
	"math"

	"github.com/yungbote/scorecard-dashboard/internal/domain"
)

// Line is one switched-on policy priced at its chosen tier.
type Line struct {
	ID         string        `json:"id"`
	Label      string        `json:"label"`
	Flag       domain.Flag   `json:"flag"`
	Option     domain.Option `json:"option"`
	Cost       float64       `json:"cost"`
	Priced     bool          `json:"priced"`
	Domain     string        `json:"domain"`
	Capability string        `json:"capability"`
}

// Share is one category's slice of a priced selection.
type Share struct {
	Category string  `json:"category"`
	Percent  int     `json:"percent"`
	Euro     float64 `json:"euro"`
}

type Pricing struct {
	Lines     []Line      `json:"lines"`
	Total     float64     `json:"total"`
	Lens      domain.Lens `json:"lens"`
	Breakdown []Share     `json:"breakdown"`
}

// Price joins the switched-on records to the catalogue. Unknown ids are
// dropped; a tier without a figure prices at zero with Priced=false.
func (c *Catalogue) Price(records []domain.ScorecardRecord, lens domain.Lens) Pricing {
	if lens == domain.LensPackage || lens == "" {
		lens = domain.LensDomain
	}
	res := Pricing{Lens: lens}
	var total float64
	for _, r := range records {
		if !r.OnOff {
			continue
		}
		p, ok := c.Get(r.ID)
		if !ok {
			continue
		}
		opt := r.Option
		if !opt.Valid() || !p.Scalable() {
			opt = domain.OptionMedium
		}
		cost, priced := p.Cost(opt)
		res.Lines = append(res.Lines, Line{
			ID:         p.ID,
			Label:      p.Label,
			Flag:       p.Flag,
			Option:     opt,
			Cost:       cost,
			Priced:     priced,
			Domain:     p.Domain,
			Capability: p.Capability,
		})
		total += cost
	}
	res.Total = round1(total)
	res.Breakdown = c.breakdown(res.Lines, lens, total)
	return res
}

// breakdown reports every category of lens, zero when nothing was selected in it.
func (c *Catalogue) breakdown(lines []Line, lens domain.Lens, total float64) []Share {
	sums := map[string]float64{}
	for _, l := range lines {
		cat := l.Domain
		if lens == domain.LensCapability {
			cat = l.Capability
		}
		sums[cat] += l.Cost
	}
	cats := c.Categories(lens)
	out := make([]Share, 0, len(cats))
	for _, cat := range cats {
		sum := sums[cat]
		s := Share{Category: cat, Euro: round1(sum)}
		if total > 0 {
			s.Percent = int(math.Round(sum / total * 100))
		}
		out = append(out, s)
	}
	return out
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }

func round2(v float64) float64 { return math.Round(v*100) / 100 }
