package cleaner

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/David-Botos/plant-clean/pkg/model"
)

func TestClassify(t *testing.T) {
	rules := model.DefaultRules().MustCompile()

	tests := []struct {
		name string
		year interface{}
		want Decision
	}{
		{"four digit year", "1985", Keep},
		{"bytes year", []byte("2001"), Keep},
		{"empty", "", Drop},
		{"nil", nil, Drop},
		{"two digits", "85", Drop},
		{"five digits", "19855", Drop},
		{"text", "19xx", Drop},
		{"padded", " 1985", Drop},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Classify(rules, model.Row{"yr_constructed": tt.year})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := Classify(rules, model.Row{"yr_constructed": 1985})
	assert.True(t, errors.Is(err, model.ErrMalformedRow))
}

func TestDecisionString(t *testing.T) {
	assert.Equal(t, "keep", Keep.String())
	assert.Equal(t, "drop", Drop.String())
	assert.Equal(t, "unknown", Decision(9).String())
}
