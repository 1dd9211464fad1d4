package chain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petasbytes/chain-tools/chain"
)

func TestParseTemplate_Format(t *testing.T) {
	tests := []struct {
		name     string
		template string
		input    string
		want     string
		variable string
	}{
		{"single slot", "Input: {prompt}\nAnswer: ", "hi", "Input: hi\nAnswer: ", "prompt"},
		{"repeated slot", "{x} and {x}", "a", "a and a", "x"},
		{"slot only", "{prompt}", "raw", "raw", "prompt"},
		{"escaped braces", "{{json}} {prompt} }}", "v", "{json} v }", "prompt"},
		{"padded name", "[{ prompt }]", "v", "[v]", "prompt"},
		{"input with braces", "<{prompt}>", "{not a slot}", "<{not a slot}>", "prompt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl, err := chain.ParseTemplate(tt.template)
			require.NoError(t, err)
			assert.Equal(t, tt.want, tmpl.Format(tt.input))
			assert.Equal(t, tt.variable, tmpl.Variable())
			assert.Equal(t, tt.template, tmpl.String())
		})
	}
}

func TestParseTemplate_Errors(t *testing.T) {
	for _, s := range []string{
		"no slot at all",
		"",
		"{a} {b}",
		"unclosed {prompt",
		"empty {} slot",
		"stray } brace {prompt}",
		"{two words}",
	} {
		_, err := chain.ParseTemplate(s)
		assert.ErrorIs(t, err, chain.ErrTemplate, "template %q", s)
	}
}

func TestMustParseTemplate_Panics(t *testing.T) {
	assert.Panics(t, func() { chain.MustParseTemplate("nothing") })
	assert.NotPanics(t, func() { chain.MustParseTemplate("{prompt}") })
}
