package redis

import "fmt"

var closers = map[rune]rune{'(': ')', '[': ']', '{': '}'}

// validateRaw checks that brackets nest and quotes close, honoring backslash escapes.
func validateRaw(q string) error {
	var stack []rune
	var quote rune
	escaped := false

	for i, r := range q {
		switch {
		case escaped:
			escaped = false
		case r == '\\':
			escaped = true
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '"' || r == '\'':
			quote = r
		case closers[r] != 0:
			stack = append(stack, closers[r])
		case r == ')' || r == ']' || r == '}':
			if len(stack) == 0 || stack[len(stack)-1] != r {
				return fmt.Errorf("unexpected %q at offset %d", r, i)
			}
			stack = stack[:len(stack)-1]
		}
	}

	switch {
	case escaped:
		return fmt.Errorf("dangling escape")
	case quote != 0:
		return fmt.Errorf("unterminated %c quote", quote)
	case len(stack) > 0:
		return fmt.Errorf("missing %q", stack[len(stack)-1])
	}
	return nil
}
