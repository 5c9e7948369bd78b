package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ruleByName(t *testing.T, rules []VariantRule, name string) VariantRule {
	t.Helper()
	for _, r := range rules {
		if r.Name == name {
			return r
		}
	}
	require.Failf(t, "rule not found", "%s", name)
	return VariantRule{}
}

func TestVariantRules(t *testing.T) {
	tests := []struct {
		rule string
		a, b string
		want bool
	}{
		{"strip-final-he", "חדרה", "חדר", true},
		{"strip-final-he", "חדרה", "חדרה", true},
		{"strip-final-he", "שרה", "שרי", false},
		{"strip-final-yod", "רמי", "רמ", true},
		{"yod-to-vav", "שלים", "שלום", true},
		{"yod-to-vav", "אבג", "דהו", false},
		{"yin-to-nun", "פינחס", "פנחס", true},
		{"het-qof-to-he-qof", "יצחק", "יצהק", true},
		{"final-vav-mem", "שלום", "שלם", true},
		{"collapse-doubles", "וייצמן", "ויצמן", true},
	}

	for _, tt := range tests {
		t.Run(tt.rule+"/"+tt.a+"/"+tt.b, func(t *testing.T) {
			rule := ruleByName(t, ExtendedVariantRules, tt.rule)
			assert.Equal(t, tt.want, rule.Matches(tt.a, tt.b))
			assert.Equal(t, tt.want, rule.Matches(tt.b, tt.a), "rules are symmetric")
		})
	}
}

func TestDefaultVariantRules_Names(t *testing.T) {
	names := make([]string, 0, len(DefaultVariantRules))
	for _, r := range DefaultVariantRules {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{"strip-final-he", "strip-final-yod", "yod-to-vav", "yin-to-nun"}, names)
	assert.Len(t, ExtendedVariantRules, len(DefaultVariantRules)+3)
}

func TestCollapseDoubles(t *testing.T) {
	assert.Equal(t, "ויצמן", collapseDoubles("וייצמן"))
	assert.Equal(t, "abc", collapseDoubles("aabbbc"))
	assert.Equal(t, "", collapseDoubles(""))
}

func TestVariantMatcher_ReportsRule(t *testing.T) {
	m := variantMatcher{rules: DefaultVariantRules}
	name, ok := m.match("פינחס", "פנחס")
	assert.True(t, ok)
	assert.Equal(t, "yin-to-nun", name)

	_, ok = m.match("ביאליק", "ביאלק")
	assert.False(t, ok)

	m.maxEditDelta = 1
	name, ok = m.match("ביאליק", "ביאלק")
	assert.True(t, ok)
	assert.Equal(t, "edit-distance", name)
}

func TestNewScorer_CustomRuleTable(t *testing.T) {
	// A street-type rule that treats "שד" as "שדרות".
	rules := []VariantRule{replaceRule("sderot-abbrev", "^שד$", "שדרות")}
	s := NewScorer(rules, 0)

	assert.InDelta(t, 0.9, s.Similarity("שד' רוטשילד", "שדרות רוטשילד"), scoreDelta)
	assert.InDelta(t, 0.5, Similarity("שד' רוטשילד", "שדרות רוטשילד"), scoreDelta)
}
