package domain

import (
	"fmt"
	"strings"
	"time"
)

// MetadataDateLayout is the layout of ScorecardMetadata.Date.
const MetadataDateLayout = "2006-01-02 15:04:05"

// UnknownUser is recorded when no caller identity could be resolved.
const UnknownUser = "Unknown user"

// Option is a spend tier chosen for a scalable policy.
type Option string

const (
	OptionVeryLow Option = "very-low"
	OptionLow     Option = "low"
	OptionMedium  Option = "medium"
	OptionHigh    Option = "high"
)

// Options lists every tier from cheapest to most expensive.
var Options = []Option{OptionVeryLow, OptionLow, OptionMedium, OptionHigh}

// ParseOption trims and lowercases raw; blank means medium.
func ParseOption(raw string) (Option, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" || s == "nan" {
		return OptionMedium, nil
	}
	for _, o := range Options {
		if string(o) == s {
			return o, nil
		}
	}
	return "", fmt.Errorf("invalid option %q", raw)
}

func (o Option) Valid() bool {
	_, err := ParseOption(string(o))
	return err == nil && o != ""
}

// ScorecardRecord is one policy choice within a scorecard.
type ScorecardRecord struct {
	ID     string `json:"id"`
	OnOff  bool   `json:"on_off"`
	Option Option `json:"option"`
}

// ScorecardMetadata is the JSON sidecar stored next to each scorecard data file.
type ScorecardMetadata struct {
	Name        string `json:"name"`
	Filename    string `json:"filename"`
	Description string `json:"description"`
	Date        string `json:"date"`
	User        string `json:"user"`
}

// ParsedDate parses Date with MetadataDateLayout.
func (m ScorecardMetadata) ParsedDate() (time.Time, error) {
	return time.Parse(MetadataDateLayout, strings.TrimSpace(m.Date))
}

// Scorecard is a loaded data file together with its live metadata.
type Scorecard struct {
	Metadata ScorecardMetadata `json:"metadata"`
	Records  []ScorecardRecord `json:"records"`
}

// On returns the records that are switched on.
func (s Scorecard) On() []ScorecardRecord {
	out := make([]ScorecardRecord, 0, len(s.Records))
	for _, r := range s.Records {
		if r.OnOff {
			out = append(out, r)
		}
	}
	return out
}

// FormatBool renders a flag the way saved scorecards store it.
func FormatBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

// ParseBool accepts the spellings found in saved files; blank is false.
func ParseBool(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "1", "1.0", "yes", "y", "t":
		return true, nil
	case "false", "0", "0.0", "no", "n", "f", "", "nan":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean %q", raw)
	}
}
