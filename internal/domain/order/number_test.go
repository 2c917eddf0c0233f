package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextNumber(t *testing.T) {
	tests := []struct {
		last string
		want string
	}{
		{last: "", want: "000001"},
		{last: "000001", want: "000002"},
		{last: "000005", want: "000006"},
		{last: "000099", want: "000100"},
		{last: "000999", want: "001000"},
		{last: "999999", want: "1000000"},
	}

	for _, tt := range tests {
		got, err := NextNumber(tt.last)
		require.NoError(t, err, "last=%q", tt.last)
		assert.Equal(t, tt.want, got, "last=%q", tt.last)
	}
}

func TestNextNumber_Garbage(t *testing.T) {
	_, err := NextNumber("not-a-number")
	require.Error(t, err)
}
