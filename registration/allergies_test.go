package registration

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAllergies(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"empty", "", []string{}},
		{"whitespace only", "   ", []string{}},
		{"single", "nuts", []string{"nuts"}},
		{"trims and keeps order", "nuts, soy ,  shellfish", []string{"nuts", "soy", "shellfish"}},
		{"trailing comma", "peanuts, gluten,", []string{"peanuts", "gluten"}},
		{"empty segments", ",, dairy ,,", []string{"dairy"}},
		{"inner spaces kept", "tree nuts, sesame seeds", []string{"tree nuts", "sesame seeds"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseAllergies(tc.raw)
			assert.NotNil(t, got)
			assert.Equal(t, tc.want, got)
		})
	}
}
