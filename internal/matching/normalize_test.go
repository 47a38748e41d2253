package matching

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
		{"lowercases", "What Are Your HOURS?", "what are your hours"},
		{"folds punctuation", "do you do walk-ins?!", "do you do walk ins"},
		{"collapses whitespace", "  how   much \t is a cut  ", "how much is a cut"},
		{"empty", "", ""},
		{"only punctuation", "?!...", ""},
		{"digits kept", "open at 9AM?", "open at 9am"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"What are your business hours?",
		"  Do you   take WALK-INS?! ",
		"",
		"çà et là — déjà vu",
		"a?b!c",
	}
	for _, s := range inputs {
		once := Normalize(s)
		assert.Equal(t, once, Normalize(once), "input %q", s)
	}
}

func TestTokens(t *testing.T) {
	assert.Equal(t, []string{"what", "are", "your", "hours?"}, Tokens("What are YOUR hours?"))
	assert.Empty(t, Tokens("   "))
}
