package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatAmount(t *testing.T) {
	cases := []struct {
		amount int64
		want   string
	}{
		{0, "Rp 0"},
		{500, "Rp 500"},
		{2500, "Rp 2.500"},
		{27500, "Rp 27.500"},
		{1250000, "Rp 1.250.000"},
		{-12345, "Rp -12.345"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, FormatAmount(tc.amount))
	}
}
