package form

import (
	"fmt"
	"strings"
)

var templateDelims = [][2]string{{"{{", "}}"}, {"{%", "%}"}, {"{#", "#}"}}

// CheckTemplate reports unbalanced Jinja2 delimiters and unterminated quoted
// strings inside a tag.
func CheckTemplate(tpl string) error {
	for i := 0; i < len(tpl); {
		open, closing, ok := opensTag(tpl[i:])
		if !ok {
			i++
			continue
		}
		end, err := tagEnd(tpl, i+len(open), open, closing)
		if err != nil {
			return err
		}
		i = end
	}
	return nil
}

func opensTag(s string) (string, string, bool) {
	for _, d := range templateDelims {
		if strings.HasPrefix(s, d[0]) {
			return d[0], d[1], true
		}
	}
	return "", "", false
}

// tagEnd returns the offset just past the closing delimiter of the tag whose
// body starts at from. Comments are not scanned for strings.
func tagEnd(tpl string, from int, open, closing string) (int, error) {
	var quote byte
	for i := from; i < len(tpl); i++ {
		c := tpl[i]
		if quote != 0 {
			switch c {
			case '\\':
				i++
			case quote:
				quote = 0
			}
			continue
		}
		if strings.HasPrefix(tpl[i:], closing) {
			return i + len(closing), nil
		}
		if open == "{#" {
			continue
		}
		if c == '"' || c == '\'' {
			quote = c
			continue
		}
		if o, _, ok := opensTag(tpl[i:]); ok {
			return 0, fmt.Errorf("%q opened inside %q at offset %d", o, open, i)
		}
	}
	if quote != 0 {
		return 0, fmt.Errorf("unterminated string in %q at offset %d", open, from-len(open))
	}
	return 0, fmt.Errorf("unclosed %q at offset %d", open, from-len(open))
}
