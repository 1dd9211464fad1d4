package chain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrTemplate is returned for templates that cannot be parsed or that do not
// have exactly one distinct substitution variable.
var ErrTemplate = errors.New("invalid prompt template")

// Template is a parsed prompt template. Placeholders are written `{name}`;
// `{{` and `}}` produce literal braces.
type Template struct {
	raw      string
	variable string
	parts    []templatePart // literal text and slot markers, in order
}

type templatePart struct {
	text   string
	isSlot bool
}

// ParseTemplate parses s. The template must reference exactly one variable
// name, which may appear more than once.
func ParseTemplate(s string) (*Template, error) {
	t := &Template{raw: s}
	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			t.parts = append(t.parts, templatePart{text: lit.String()})
			lit.Reset()
		}
	}

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '{':
			if i+1 < len(s) && s[i+1] == '{' {
				lit.WriteByte('{')
				i++
				continue
			}
			end := strings.IndexByte(s[i+1:], '}')
			if end < 0 {
				return nil, fmt.Errorf("%w: unclosed '{' at offset %d", ErrTemplate, i)
			}
			name := strings.TrimSpace(s[i+1 : i+1+end])
			if name == "" {
				return nil, fmt.Errorf("%w: empty placeholder at offset %d", ErrTemplate, i)
			}
			if strings.ContainsAny(name, "{ \t\n") {
				return nil, fmt.Errorf("%w: malformed placeholder %q", ErrTemplate, name)
			}
			if t.variable != "" && t.variable != name {
				return nil, fmt.Errorf("%w: more than one variable (%q, %q)", ErrTemplate, t.variable, name)
			}
			t.variable = name
			flush()
			t.parts = append(t.parts, templatePart{isSlot: true})
			i += end + 1
		case '}':
			if i+1 < len(s) && s[i+1] == '}' {
				lit.WriteByte('}')
				i++
				continue
			}
			return nil, fmt.Errorf("%w: single '}' at offset %d", ErrTemplate, i)
		default:
			lit.WriteByte(c)
		}
	}
	flush()

	if t.variable == "" {
		return nil, fmt.Errorf("%w: no substitution slot", ErrTemplate)
	}
	return t, nil
}

// MustParseTemplate is like ParseTemplate but panics on error. Use only with
// literal templates.
func MustParseTemplate(s string) *Template {
	t, err := ParseTemplate(s)
	if err != nil {
		panic(err)
	}
	return t
}

// Variable returns the name of the template's substitution slot.
func (t *Template) Variable() string { return t.variable }

// String returns the template source.
func (t *Template) String() string { return t.raw }

// Format substitutes input into every slot.
func (t *Template) Format(input string) string {
	var sb strings.Builder
	for _, p := range t.parts {
		if p.isSlot {
			sb.WriteString(input)
			continue
		}
		sb.WriteString(p.text)
	}
	return sb.String()
}
