package domain

import "testing"

func TestParseOption(t *testing.T) {
	cases := map[string]Option{
		"":         OptionMedium,
		"nan":      OptionMedium,
		" High ":   OptionHigh,
		"very-low": OptionVeryLow,
		"LOW":      OptionLow,
	}
	for in, want := range cases {
		got, err := ParseOption(in)
		if err != nil {
			t.Fatalf("ParseOption(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseOption(%q): want=%q got=%q", in, want, got)
		}
	}
	if _, err := ParseOption("extreme"); err == nil {
		t.Fatalf("expected error for unknown option")
	}
}

func TestParseBool(t *testing.T) {
	for _, in := range []string{"True", "true", "1", "1.0", "yes"} {
		if v, err := ParseBool(in); err != nil || !v {
			t.Fatalf("ParseBool(%q): want=true got=%v err=%v", in, v, err)
		}
	}
	for _, in := range []string{"False", "0", "", "no"} {
		if v, err := ParseBool(in); err != nil || v {
			t.Fatalf("ParseBool(%q): want=false got=%v err=%v", in, v, err)
		}
	}
	if _, err := ParseBool("maybe"); err == nil {
		t.Fatalf("expected error for %q", "maybe")
	}
}

func TestParsedDate(t *testing.T) {
	m := ScorecardMetadata{Date: "2024-02-01 10:00:00"}
	at, err := m.ParsedDate()
	if err != nil {
		t.Fatalf("ParsedDate: %v", err)
	}
	if at.Month() != 2 || at.Hour() != 10 {
		t.Fatalf("ParsedDate: got=%v", at)
	}
	if _, err := (ScorecardMetadata{Date: "2024-02-01"}).ParsedDate(); err == nil {
		t.Fatalf("expected error for date without time")
	}
}

func TestScorecardOn(t *testing.T) {
	sc := Scorecard{Records: []ScorecardRecord{{ID: "a", OnOff: true}, {ID: "b"}, {ID: "c", OnOff: true}}}
	on := sc.On()
	if len(on) != 2 || on[0].ID != "a" || on[1].ID != "c" {
		t.Fatalf("On: got=%v", on)
	}
}

func TestPolicyCost(t *testing.T) {
	low, med := 1.5, 4.0
	p := Policy{Flag: FlagScalable, Costs: map[Option]*float64{OptionLow: &low, OptionMedium: &med}}
	if c, ok := p.Cost(OptionLow); !ok || c != 1.5 {
		t.Fatalf("scalable low: got=%v ok=%v", c, ok)
	}
	if _, ok := p.Cost(OptionHigh); ok {
		t.Fatalf("scalable high: expected no figure")
	}
	p.Flag = FlagAwaiting
	if c, ok := p.Cost(OptionLow); !ok || c != 4.0 {
		t.Fatalf("non-scalable uses medium: got=%v ok=%v", c, ok)
	}
}

func TestParseLensAndPolicyID(t *testing.T) {
	if l, ok := ParseLens("lens_2"); !ok || l != LensCapability {
		t.Fatalf("ParseLens(lens_2): got=%q ok=%v", l, ok)
	}
	if l, ok := ParseLens(""); !ok || l != LensDomain {
		t.Fatalf("ParseLens(blank): got=%q ok=%v", l, ok)
	}
	if _, ok := ParseLens("region-x"); ok {
		t.Fatalf("ParseLens(region-x): expected failure")
	}
	if got := PolicyID(" Space Safety Programme "); got != "space-safety-programme" {
		t.Fatalf("PolicyID: got=%q", got)
	}
}
