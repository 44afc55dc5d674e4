package policy

import (
	"github.com/yungbote/scorecard-dashboard/internal/domain"
)

// State is a catalogue policy with the user's current choice applied.
type State struct {
	domain.Policy
	OnOff  bool          `json:"on_off"`
	Option domain.Option `json:"option"`
}

// Group is the policies of one lens category, in catalogue order.
type Group struct {
	Category string  `json:"category"`
	Policies []State `json:"policies"`
}

// Merge lays a saved selection over the catalogue. Policies missing from the
// saved set are off at medium; a saved option that is blank or unknown falls
// back to medium. Saved ids no longer in the catalogue are ignored.
func (c *Catalogue) Merge(saved []domain.ScorecardRecord) []State {
	byID := make(map[string]domain.ScorecardRecord, len(saved))
	for _, r := range saved {
		byID[r.ID] = r
	}
	out := make([]State, 0, len(c.Policies))
	for _, p := range c.Policies {
		s := State{Policy: p, Option: domain.OptionMedium}
		if r, ok := byID[p.ID]; ok {
			s.OnOff = r.OnOff
			if r.Option.Valid() {
				s.Option = r.Option
			}
		}
		out = append(out, s)
	}
	return out
}

// Defaults is the cleared selection: each policy at its catalogue default, medium tier.
func (c *Catalogue) Defaults() []State {
	out := make([]State, 0, len(c.Policies))
	for _, p := range c.Policies {
		out = append(out, State{Policy: p, OnOff: p.Default, Option: domain.OptionMedium})
	}
	return out
}

// Records converts states back to the records a scorecard stores.
func Records(states []State) []domain.ScorecardRecord {
	out := make([]domain.ScorecardRecord, 0, len(states))
	for _, s := range states {
		out = append(out, domain.ScorecardRecord{ID: s.ID, OnOff: s.OnOff, Option: s.Option})
	}
	return out
}

// GroupStates buckets states by the categories of lens. Categories with no
// policy are kept so the caller can render an empty heading.
func (c *Catalogue) GroupStates(states []State, lens domain.Lens) []Group {
	cats := c.Categories(lens)
	idx := make(map[string]int, len(cats))
	groups := make([]Group, len(cats))
	for i, cat := range cats {
		idx[cat] = i
		groups[i] = Group{Category: cat}
	}
	for _, s := range states {
		i, ok := idx[s.Category(lens)]
		if !ok {
			continue
		}
		groups[i].Policies = append(groups[i].Policies, s)
	}
	return groups
}

// FilterStates keeps states whose id matches query the way Search does.
func (c *Catalogue) FilterStates(states []State, query string) []State {
	keep := map[string]bool{}
	for _, p := range c.Search(query) {
		keep[p.ID] = true
	}
	out := make([]State, 0, len(states))
	for _, s := range states {
		if keep[s.ID] {
			out = append(out, s)
		}
	}
	return out
}
