package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetect(t *testing.T) {
	cases := []struct {
		in   string
		want Command
	}{
		{"#humano", HumanTakeover},
		{"  #HUMANO  ", HumanTakeover},
		{"# humano", HumanTakeover},
		{"#ia", AIResume},
		{"#IA", AIResume},
		{" # ia ", AIResume},
		{"quero falar com humano", None},
		{"#humano por favor", None},
		{"", None},
		{"oi", None},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Detect(tc.in), "input %q", tc.in)
	}
}
