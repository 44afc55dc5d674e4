package policy

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/yungbote/scorecard-dashboard/internal/domain"
	"github.com/yungbote/scorecard-dashboard/internal/modules/treemap"
)

// TotalGroup labels the summary row of a comparison's group table.
const TotalGroup = "Total"

// ComparedPolicy is one policy of one compared package.
type ComparedPolicy struct {
	Package      string        `json:"package"`
	PackageLabel string        `json:"package_label"`
	ID           string        `json:"id"`
	Label        string        `json:"label"`
	Display      string        `json:"display"`
	Group        string        `json:"group"`
	Domain       string        `json:"domain"`
	Capability   string        `json:"capability"`
	Flag         domain.Flag   `json:"flag"`
	Option       domain.Option `json:"option"`
	Cost         float64       `json:"cost"`
	Percent      float64       `json:"percent"`
}

type GroupRow struct {
	Group   string  `json:"group"`
	Cost    float64 `json:"cost"`
	Percent float64 `json:"percent"`
	Total   bool    `json:"total,omitempty"`
}

type PackageSummary struct {
	Filename string  `json:"filename"`
	Name     string  `json:"name"`
	Total    float64 `json:"total"`
	Label    string  `json:"label"`
}

// Comparison prices several saved scorecards against the current catalogue.
type Comparison struct {
	GroupBy  domain.Lens      `json:"group_by"`
	Total    float64          `json:"total"`
	Packages []PackageSummary `json:"packages"`
	Groups   []GroupRow       `json:"groups"`
	Policies []ComparedPolicy `json:"policies"`
}

// comparePackages builds a Comparison from loaded scorecards, in input order.
// Only the saved tier is reused: costs come from the current catalogue, and
// policies no longer in it or without both lens values are dropped.
func (c *Catalogue) comparePackages(cards []domain.Scorecard, filenames []string, groupBy domain.Lens) Comparison {
	res := Comparison{GroupBy: groupBy}
	var all []ComparedPolicy
	for i, sc := range cards {
		var rows []ComparedPolicy
		var pkgTotal float64
		for _, r := range sc.On() {
			p, ok := c.Get(r.ID)
			if !ok || p.Domain == "" || p.Capability == "" {
				continue
			}
			opt := r.Option
			if !opt.Valid() {
				opt = domain.OptionMedium
			}
			cost, _ := p.Cost(opt)
			if !p.Scalable() {
				opt = domain.OptionMedium
			}
			rows = append(rows, ComparedPolicy{
				Package:    sc.Metadata.Name,
				ID:         p.ID,
				Label:      p.Label,
				Display:    p.Label,
				Domain:     p.Domain,
				Capability: p.Capability,
				Flag:       p.Flag,
				Option:     opt,
				Cost:       cost,
			})
			pkgTotal += cost
		}
		label := fmt.Sprintf("%s (%s)", sc.Metadata.Name, euro(round1(pkgTotal)))
		for j := range rows {
			rows[j].PackageLabel = label
			rows[j].Group = groupKey(rows[j], groupBy)
		}
		res.Packages = append(res.Packages, PackageSummary{
			Filename: filenames[i],
			Name:     sc.Metadata.Name,
			Total:    round1(pkgTotal),
			Label:    label,
		})
		all = append(all, rows...)
	}

	var total float64
	for _, p := range all {
		total += p.Cost
	}
	res.Total = round1(total)

	markDuplicates(all, groupBy)
	for i := range all {
		all[i].Percent = percent(all[i].Cost, total)
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].Cost > all[j].Cost })
	res.Policies = all
	res.Groups = groupRows(all, total)
	return res
}

func groupKey(p ComparedPolicy, groupBy domain.Lens) string {
	switch groupBy {
	case domain.LensPackage:
		return p.PackageLabel
	case domain.LensCapability:
		return p.Capability
	default:
		return p.Domain
	}
}

// markDuplicates tags policies that appear under the same group in more than
// one package so their treemap tiles can be told apart.
func markDuplicates(rows []ComparedPolicy, groupBy domain.Lens) {
	if groupBy == domain.LensPackage {
		return
	}
	type key struct{ group, label string }
	counts := map[key]int{}
	for _, r := range rows {
		counts[key{r.Group, r.Label}]++
	}
	for i, r := range rows {
		if counts[key{r.Group, r.Label}] > 1 {
			rows[i].Display = fmt.Sprintf("%s (*%s package)", r.Label, r.Package)
		}
	}
}

// groupRows sums rows per group, largest first, after a leading total row.
func groupRows(rows []ComparedPolicy, total float64) []GroupRow {
	sums := map[string]float64{}
	var order []string
	for _, r := range rows {
		if _, seen := sums[r.Group]; !seen {
			order = append(order, r.Group)
		}
		sums[r.Group] += r.Cost
	}
	groups := make([]GroupRow, 0, len(order))
	for _, g := range order {
		groups = append(groups, GroupRow{Group: g, Cost: round2(sums[g]), Percent: percent(sums[g], total)})
	}
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].Cost > groups[j].Cost })
	return append([]GroupRow{{Group: TotalGroup, Cost: round2(total), Total: true}}, groups...)
}

func percent(part, total float64) float64 {
	if total == 0 {
		return 0
	}
	return round1(part / total * 100)
}

// Tree nests the comparison as Total → group → policy.
func (cmp Comparison) Tree() *treemap.Node {
	root := &treemap.Node{Label: fmt.Sprintf("%s (%s)", TotalGroup, euro(cmp.Total))}
	byGroup := map[string]*treemap.Node{}
	for _, g := range cmp.Groups {
		if g.Total {
			continue
		}
		label := g.Group
		if cmp.GroupBy != domain.LensPackage {
			label = fmt.Sprintf("%s - %s (%s%%)", g.Group, euro(round1(g.Cost)), formatNumber(g.Percent))
		}
		n := &treemap.Node{Label: label}
		byGroup[g.Group] = n
		root.Children = append(root.Children, n)
	}
	for _, p := range cmp.Policies {
		parent := byGroup[p.Group]
		if parent == nil {
			continue
		}
		parent.Children = append(parent.Children, leaf(p.Display, p.Cost, p.Flag, p.Option))
	}
	return root
}

// Tree nests a priced selection as Total → policy.
func (pr Pricing) Tree() *treemap.Node {
	root := &treemap.Node{Label: fmt.Sprintf("%s (%s)", TotalGroup, euro(pr.Total))}
	for _, l := range pr.Lines {
		root.Children = append(root.Children, leaf(l.Label, l.Cost, l.Flag, l.Option))
	}
	return root
}

func leaf(label string, cost float64, flag domain.Flag, opt domain.Option) *treemap.Node {
	detail := euro(round1(cost))
	if flag == domain.FlagScalable {
		detail += " (" + titleOption(opt) + ")"
	}
	return &treemap.Node{Label: label, Detail: detail, Value: cost}
}

func titleOption(o domain.Option) string {
	s := string(o)
	if s == "" {
		return ""
	}
	parts := strings.Split(s, "-")
	for i, p := range parts {
		if p != "" {
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, "-")
}

// euro formats an amount in €mn the way the dashboard prints it, e.g. "€12.0mn".
func euro(v float64) string {
	return "€" + formatNumber(v) + "mn"
}

func formatNumber(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
