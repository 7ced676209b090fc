package trajectory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructKey(t *testing.T) {
	key := ConstructKey([]string{"Participant", "Condition"}, []string{"p07", "dark"})
	assert.Equal(t, "Participant=p07:Condition=dark", key)
}

func TestDeconstructKeyRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		cols   []string
		values []string
	}{
		{"single", []string{"Trial"}, []string{"3"}},
		{"ordered", []string{"B", "A", "C"}, []string{"2", "1", "3"}},
		{"empty value", []string{"A", "B"}, []string{"", "x"}},
		{"value with equals", []string{"Expr"}, []string{"a=b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cols, values, err := DeconstructKey(ConstructKey(tt.cols, tt.values))
			require.NoError(t, err)
			assert.Equal(t, tt.cols, cols)
			assert.Equal(t, tt.values, values)
		})
	}
}

func TestDeconstructKeyRejectsPlainName(t *testing.T) {
	_, _, err := DeconstructKey("walk.csv")
	assert.Error(t, err)
}
