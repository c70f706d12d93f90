package manufacturer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		make string
		want Group
	}{
		{"Volkswagen", VAG},
		{"VW", VAG},
		{"audi", VAG},
		{"SEAT", VAG},
		{"Skoda", VAG},
		{"Porsche", VAG},
		{"BMW", BMW},
		{"MINI", BMW},
		{"Rolls-Royce", BMW},
		{"Toyota", Toyota},
		{"Lexus", Toyota},
		{"Chevrolet", GM},
		{"chevy", GM},
		{"GMC", GM},
		{"Ford", Ford},
		{"Lincoln", Ford},
		{"Jeep", Stellantis},
		{"Alfa Romeo", Stellantis},
		{"Honda", Honda},
		{"Acura", Honda},
		{"Infiniti", Nissan},
		{"Kia", Hyundai},
		{"Genesis", Hyundai},
		{"Mercedes-Benz", Mercedes},
		{"smart", Mercedes},
		{"Tesla", Generic},
		{"", Generic},
		{"   ", Generic},
	}
	for _, tt := range tests {
		t.Run(tt.make, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.make))
		})
	}
}

func TestClassifyMatchesSubstrings(t *testing.T) {
	// Free-text makes from scan tools often carry model or trim noise.
	assert.Equal(t, VAG, Classify("Volkswagen Golf GTI"))
	assert.Equal(t, BMW, Classify("BMW 335i"))
	assert.Equal(t, Mercedes, Classify("  mercedes  "))
}

func TestClassifyOrderIsStable(t *testing.T) {
	// "vw" appears inside other strings too; the VAG check runs first and
	// must keep winning.
	assert.Equal(t, VAG, Classify("vw"))
}

func TestParse(t *testing.T) {
	g, err := Parse("vag")
	assert.NoError(t, err)
	assert.Equal(t, VAG, g)

	g, err = Parse(" GENERIC ")
	assert.NoError(t, err)
	assert.Equal(t, Generic, g)

	_, err = Parse("audi") // free text is Classify's job, not Parse's
	assert.Error(t, err)

	_, err = Parse("")
	assert.Error(t, err)
}

func TestVINPrefix(t *testing.T) {
	assert.Equal(t, "WVWZZZ1KZAW", VINPrefix("WVWZZZ1KZAW123456"))
	assert.Equal(t, "WVWZZZ1KZAW", VINPrefix("wvwzzz1kzaw123456"))
	assert.Equal(t, "SHORT", VINPrefix("short"))
	assert.Equal(t, "", VINPrefix(""))
	assert.Equal(t, "ABCDEFGHIJK", VINPrefix(" abcdefghijklmnop "))
}
