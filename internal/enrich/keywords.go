package enrich

import (
	"strings"

	"github.com/soleview/worklens/internal/model"
)

// KeywordRule maps location text containing any of its keywords to a tag
// code. Rules are evaluated in order; the first match wins.
type KeywordRule struct {
	Code     model.TagCode
	Keywords []string
}

// DefaultLocationRules is the ordered location-text rule table. Gate rules
// sit above the generic corridor rule so "speed gate in" is never swallowed
// by a broader match. Anything unmatched defaults to G1.
func DefaultLocationRules() []KeywordRule {
	return []KeywordRule{
		{Code: model.TagG3, Keywords: []string{"meeting", "conference"}},
		{Code: model.TagG4, Keywords: []string{"education", "training", "lecture", "univ"}},
		{Code: model.TagG2, Keywords: []string{"locker", "gowning", "changing", "powder"}},
		{Code: model.TagN1, Keywords: []string{"rest", "lounge", "nursing", "nap", "smoking"}},
		{Code: model.TagN2, Keywords: []string{"medical", "pharmacy", "fitness", "salon", "laundry", "amenity"}},
		{Code: model.TagT2, Keywords: []string{"gate in", "entry gate", "main entrance"}},
		{Code: model.TagT3, Keywords: []string{"gate out", "exit gate", "main exit"}},
		{Code: model.TagT1, Keywords: []string{"corridor", "bridge", "stairs", "passage", "hallway"}},
	}
}

// mapLocation resolves location text to a canonical tag code using the
// ordered rule table. Unmatched locations are treated as general work area.
func mapLocation(rules []KeywordRule, location string) model.TagCode {
	lower := strings.ToLower(location)
	for _, rule := range rules {
		for _, kw := range rule.Keywords {
			if strings.Contains(lower, kw) {
				return rule.Code
			}
		}
	}
	return model.TagG1
}

// meetingKindCode routes a meeting/education booking by its kind text.
func meetingKindCode(kind string) model.TagCode {
	lower := strings.ToLower(kind)
	switch {
	case strings.Contains(lower, "education"), strings.Contains(lower, "training"):
		return model.TagG4
	case strings.Contains(lower, "meeting"), strings.Contains(lower, "review"), strings.Contains(lower, "report"):
		return model.TagG3
	default:
		return model.TagG1
	}
}
