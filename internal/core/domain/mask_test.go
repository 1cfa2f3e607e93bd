package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskCPF(t *testing.T) {
	cases := map[string]string{
		"":                "",
		"123":             "123",
		"1234":            "123.4",
		"1234567":         "123.456.7",
		"123456789":       "123.456.789",
		"1234567890":      "123.456.789-0",
		"12345678901":     "123.456.789-01",
		"123.456.789-01":  "123.456.789-01",
		"123456789012345": "123.456.789-01",
		"abc12x3":         "123",
	}

	for in, want := range cases {
		assert.Equal(t, want, MaskCPF(in), "input %q", in)
	}
}

func TestMaskPhone(t *testing.T) {
	cases := map[string]string{
		"1":               "1",
		"123":             "(12) 3",
		"1234567":         "(12) 34567",
		"1234567890":      "(12) 34567-890",
		"11987654321":     "(11) 98765-4321",
		"(11) 98765-4321": "(11) 98765-4321",
	}

	for in, want := range cases {
		assert.Equal(t, want, MaskPhone(in), "input %q", in)
	}
}
