package extract

import "strings"

// Rule maps description keywords to an OFX transaction type. Rules are
// evaluated in order against the upper-cased description; the first match
// wins. A rule matches when the description contains any of Contains or
// starts with any of StartsWith.
type Rule struct {
	Contains   []string
	StartsWith []string
	Type       string
}

// classifyRules applies an ordered rule list to a description. No match
// yields "OTHER".
func classifyRules(rules []Rule, description string) string {
	upper := strings.ToUpper(description)
	for _, r := range rules {
		for _, kw := range r.Contains {
			if strings.Contains(upper, strings.ToUpper(kw)) {
				return r.Type
			}
		}
		for _, kw := range r.StartsWith {
			if strings.HasPrefix(upper, strings.ToUpper(kw)) {
				return r.Type
			}
		}
	}
	return "OTHER"
}
