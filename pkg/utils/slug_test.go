package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"PHP Tips":               "php-tips",
		"continuous integration": "continuous-integration",
		"  multi   word ":        "multi-word",
		"slow_burn":              "slow-burn",
		"Café Crème":             "cafe-creme",
		"--leading--":            "leading",
		"go/gin":                 "go-gin",
		"c++ & rust!":            "c-rust",
		"":                       "",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), "input %q", in)
	}
}

func TestPasswordRoundTrip(t *testing.T) {
	h, err := HashPassword("john1234")
	assert.NoError(t, err)
	assert.NotEqual(t, "john1234", h)
	assert.True(t, CheckPassword("john1234", h))
	assert.False(t, CheckPassword("wrong-one", h))
}
