package util

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMaskIdentifier(t *testing.T) {
	cases := map[string]string{
		"":                 "",
		"bob":              "***",
		" Admin ":          "a…n",
		"ada@example.com":  "a…@e….com",
		"x@y.org":          "x@y.org",
		"operator@corp.io": "o…@c….io",
	}
	for in, want := range cases {
		require.Equal(t, want, MaskIdentifier(in), in)
	}
}
