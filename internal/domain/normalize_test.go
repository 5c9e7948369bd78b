package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"whitespace only", "   \t ", ""},
		{"collapses spaces", "  רמת   גן ", "רמת גן"},
		{"ascii hyphen", "תל-אביב יפו", "תל אביב יפו"},
		{"maqaf", "רחוב־הרצל", "רחוב הרצל"},
		{"geresh abbreviation", "שד' רוטשילד", "שד רוטשילד"},
		{"ascii double quote", `צה"ל`, "צהל"},
		{"gershayim", "צה״ל", "צהל"},
		{"hebrew geresh", "ז׳בוטינסקי", "זבוטינסקי"},
		{"typographic apostrophe", "שד\u2019 רוטשילד", "שד רוטשילד"},
		{"typographic double quotes", "\u201Cצה\u201Dל\u2018\u2019", "צהל"},
		{"en dash", "תל\u2013אביב", "תל אביב"},
		{"latin lower-cased", "Herzl  Street", "herzl street"},
		{"tabs and newlines", "אבן\tגבירול\n", "אבן גבירול"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	for _, s := range []string{"תל-אביב  יפו", `צה"ל`, "Kfar Saba"} {
		once := Normalize(s)
		assert.Equal(t, once, Normalize(once), s)
	}
}
