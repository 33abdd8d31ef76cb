package food

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/remyvnkhiemtruong/traixuan/app/apperr"
)

func TestParsePrice(t *testing.T) {
	cases := map[string]int{
		"25000":      25000,
		"25.000":     25000,
		"25,000":     25000,
		" 1.250.000": 1250000,
		"0":          0,
	}
	for raw, want := range cases {
		got, err := ParsePrice(raw)
		require.NoError(t, err, raw)
		require.Equal(t, want, got, raw)
	}
}

func TestParsePrice_Rejects(t *testing.T) {
	for _, raw := range []string{"", " ", "abc", "-5", "12k", "1e5", "99999999999"} {
		_, err := ParsePrice(raw)
		require.Equal(t, apperr.KindValidation, apperr.KindOf(err), raw)
		require.Equal(t, msgBadPrice, apperr.UserMessage(err), raw)
	}
}

func TestOptional(t *testing.T) {
	require.Nil(t, optional("  "))
	require.Equal(t, "cay", *optional(" cay "))
}
