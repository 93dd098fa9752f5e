// Package address extracts structured fields from free-text addresses with
// deterministic rules. No geocoding, no external calls; the same input
// always yields the same output.
package address

import (
	"regexp"
	"strings"
)

// Fields is the parser output. Empty string means the rule did not fire.
type Fields struct {
	Premise   string `json:"premise,omitempty"`
	Street    string `json:"street,omitempty"`
	Community string `json:"community,omitempty"`
	Area      string `json:"area,omitempty"`
	District  string `json:"district,omitempty"`
	City      string `json:"city,omitempty"`
	State     string `json:"state,omitempty"`
	Country   string `json:"country,omitempty"`
}

var (
	premiseRe   = regexp.MustCompile(`^(\d+[-\w]*)\b`)
	streetRe    = regexp.MustCompile(`(?i)\b(?:street|st\.?|road|rd\.?|avenue|ave\.?|lane|dr\.?|boulevard|blvd\.?|way)\b`)
	communityRe = regexp.MustCompile(`(?i)\b(?:estate|quarter|quarters|village|camp|community)\b`)
	areaRe      = regexp.MustCompile(`(?i)\b(?:roundabout|junction|axis|landmark|power line|quarry|near|opposite|beside)\b`)
	districtRe  = regexp.MustCompile(`(?i)\b(?:district|suburb|lga|town)\b`)
	segmentRe   = regexp.MustCompile(`[,;]`)
)

// Parse decomposes raw into structured fields. Unparsable input, including
// the empty string, yields the zero Fields; Parse never fails.
func Parse(raw string) Fields {
	var out Fields
	s := strings.TrimSpace(raw)
	if s == "" {
		return out
	}

	if m := premiseRe.FindStringSubmatch(s); m != nil {
		out.Premise = m[1]
	}

	out.Street = firstSegment(s, streetRe)
	out.Community = firstSegment(s, communityRe)
	out.Area = firstSegment(s, areaRe)

	// Tail heuristic: the last comma part names, by token count, either a
	// country, a "State Country" pair, or a "City ... State Country" triple.
	parts := commaParts(s)
	if len(parts) > 0 {
		tokens := strings.Fields(parts[len(parts)-1])
		switch {
		case len(tokens) == 1:
			out.Country = tokens[0]
		case len(tokens) == 2:
			out.State = tokens[0]
			out.Country = tokens[1]
		case len(tokens) >= 3:
			out.City = strings.Join(tokens[:len(tokens)-2], " ")
			out.State = tokens[len(tokens)-2]
			out.Country = tokens[len(tokens)-1]
		}
	}

	for _, p := range parts {
		if districtRe.MatchString(p) {
			out.District = p
			break
		}
	}

	return out
}

// Count returns how many fields the parser populated.
func (f Fields) Count() int {
	n := 0
	for _, v := range []string{f.Premise, f.Street, f.Community, f.Area, f.District, f.City, f.State, f.Country} {
		if v != "" {
			n++
		}
	}
	return n
}

// Confidence maps populated-field count to a 0-100 score: 10 points per
// field, capped at 100. Kept out of Parse so the parser stays a pure
// extraction step.
func Confidence(f Fields) int {
	c := f.Count() * 10
	if c > 100 {
		c = 100
	}
	return c
}

// firstSegment returns the first comma/semicolon-delimited segment of s
// matching re, or "" when none does.
func firstSegment(s string, re *regexp.Regexp) string {
	if !re.MatchString(s) {
		return ""
	}
	for _, seg := range segmentRe.Split(s, -1) {
		if re.MatchString(seg) {
			return strings.TrimSpace(seg)
		}
	}
	return ""
}

func commaParts(s string) []string {
	var parts []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}
