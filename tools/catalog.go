package tools

import (
	"strings"

	"github.com/petasbytes/chain-tools/chain"
)

const uppercaseLabel = "The string in uppercase is: "

// Uppercase returns the fixed-function uppercase tool.
func Uppercase() chain.Tool {
	return chain.NewTransformTool("uppercase-tool", "Converts input text to uppercase", func(s string) string {
		return uppercaseLabel + strings.ToUpper(s)
	})
}

// Catalog builds the built-in text tools. Model-backed tools send their
// prompts through c.
func Catalog(c chain.Completer) ([]chain.Tool, error) {
	legal, err := promptTool("legal-talk", "Converts input text to legal talk",
		"Input: {prompt}\nAnswer: This prompt in legal talk is: ", c)
	if err != nil {
		return nil, err
	}

	pun, err := promptTool("pun-converter", "Converts input text to puns",
		"Add in and convert as much of the input into puns as you can.\n"+
			"Input: {prompt}\n"+
			"Answer: This prompt in pun talk is: ", c)
	if err != nil {
		return nil, err
	}

	cool, err := chain.NewChainTool("cool-function", "Make the input text much cooler.", []chain.Step{
		{Template: "Make the input into a rap.\nInput: {prompt}\nRap: "},
		{Template: "Format the input into stanzas using \n characters.\nInput: {prompt}\nAnswer: "},
		{Template: "Add some catchy zingers in.\nInput: {prompt}\nAnswer: "},
	}, c)
	if err != nil {
		return nil, err
	}

	return []chain.Tool{Uppercase(), legal, pun, cool}, nil
}

func promptTool(name, description, template string, c chain.Completer) (chain.Tool, error) {
	b, err := chain.NewPromptBinding(template, chain.DefaultModel, chain.DefaultTemperature)
	if err != nil {
		return chain.Tool{}, err
	}
	return chain.NewPromptTool(name, description, b, c), nil
}
