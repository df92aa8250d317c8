package masker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaskUnmaskRoundTrip(t *testing.T) {
	m := New([]string{"Katowice", "Łódź Kaliska", "Kraków Główny"})

	texts := []string{
		"Train to Katowice departs",
		"Łódź Kaliska, then Kraków Główny.",
		"no names at all",
		"",
		"Katowice Katowice",
	}
	for _, text := range texts {
		masked := m.Mask(text)
		assert.Equal(t, text, masked.Unmask(masked.Text), "round trip of %q", text)
	}
}

func TestMaskLongestFirst(t *testing.T) {
	m := New([]string{"Kraków", "Kraków Główny"})

	masked := m.Mask("Kraków Główny and Kraków")

	require.Len(t, masked.Tokens, 2)
	assert.Equal(t, Token("Kraków Główny")+" and "+Token("Kraków"), masked.Text)
	assert.NotContains(t, masked.Text, "Główny")
}

func TestMaskWholeWordOnly(t *testing.T) {
	m := New([]string{"Ko"})

	masked := m.Mask("Kolo Ko, _Ko Ko2 (Ko)")

	assert.Equal(t, "Kolo "+Token("Ko")+", _Ko Ko2 ("+Token("Ko")+")", masked.Text)
}

func TestMaskCaseSensitive(t *testing.T) {
	m := New([]string{"Tarnów"})

	masked := m.Mask("tarnów TARNÓW")

	assert.Empty(t, masked.Tokens)
	assert.Equal(t, "tarnów TARNÓW", masked.Text)
}

func TestTokenDeterministic(t *testing.T) {
	assert.Equal(t, Token("Katowice"), Token("Katowice"))
	assert.NotEqual(t, Token("Katowice"), Token("Kraków"))
	assert.True(t, strings.HasPrefix(Token("Katowice"), "__SCENERY_"))
}

func TestUnmaskLostToken(t *testing.T) {
	m := New([]string{"Katowice"})
	masked := m.Mask("to Katowice")

	// backend dropped the token entirely
	assert.Equal(t, "nach", masked.Unmask("nach"))
}

func TestNewDedupesAndTrims(t *testing.T) {
	m := New([]string{" A ", "A", "", "  ", "BB"})
	assert.Equal(t, 2, m.Len())

	var nilMasker *Masker
	assert.Equal(t, "x", nilMasker.Mask("x").Text)
}
