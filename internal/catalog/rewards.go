package catalog

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ResolveReward maps a reward type code to its display asset. Lookup order:
// the event's own asset override, then the shared registry, then a label
// synthesized from the code. Either map may be nil.
func ResolveReward(typeCode string, assets map[string]RewardAsset, shared map[string]SharedItem) RewardAsset {
	if a, ok := assets[typeCode]; ok {
		return a
	}
	if s, ok := shared[typeCode]; ok {
		label := s.Label
		if label == "" {
			label = s.FallbackLabel
		}
		if label == "" {
			label = FormatRewardLabel(typeCode)
		}
		return RewardAsset{Label: label, Icon: s.Icon}
	}
	return RewardAsset{Label: FormatRewardLabel(typeCode)}
}

// FormatRewardLabel turns a type code such as "wish_tokens" into
// "Wish Tokens". Only the first letter of each token is changed.
func FormatRewardLabel(code string) string {
	tokens := strings.FieldsFunc(code, func(r rune) bool {
		return r == '_' || r == '-' || r == '.' || unicode.IsSpace(r)
	})
	caser := cases.Title(language.Und, cases.NoLower)
	for i, tok := range tokens {
		tokens[i] = caser.String(tok)
	}
	return strings.Join(tokens, " ")
}
