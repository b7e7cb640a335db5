package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChips(t *testing.T) {
	cases := map[int64]string{
		0:        "0",
		999:      "999",
		30000:    "30 000",
		1000000:  "1 000 000",
		-2500000: "-2 500 000",
	}
	for in, want := range cases {
		assert.Equal(t, want, Chips(in), "Chips(%d)", in)
	}
}

func TestHUF(t *testing.T) {
	assert.Equal(t, "15 000 Ft", HUF(15000))
	assert.Equal(t, "500 Ft", HUF(500))
}
