// Package provider connects the chain package to the Anthropic Messages API.
package provider
