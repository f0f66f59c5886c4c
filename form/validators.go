package form

import (
	"errors"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

func NotEmpty(message string) Validator {
	return func(value any, _ Values) (any, error) {
		s, ok := value.(string)
		if ok && strings.TrimSpace(s) == "" {
			return nil, errors.New(message)
		}
		return value, nil
	}
}

func StartsWithLetter(message string) Validator {
	return func(value any, _ Values) (any, error) {
		s, ok := value.(string)
		if !ok {
			return nil, errors.New(message)
		}
		r, _ := utf8.DecodeRuneInString(s)
		if r == utf8.RuneError || !unicode.IsLetter(r) {
			return nil, errors.New(message)
		}
		return value, nil
	}
}

// Capitalize upper-cases the first letter and lower-cases the rest.
func Capitalize() Validator {
	return func(value any, _ Values) (any, error) {
		s, ok := value.(string)
		if !ok || s == "" {
			return value, nil
		}
		r, size := utf8.DecodeRuneInString(s)
		return string(unicode.ToUpper(r)) + strings.ToLower(s[size:]), nil
	}
}

func Lower() Validator {
	return func(value any, _ Values) (any, error) {
		s, ok := value.(string)
		if !ok {
			return value, nil
		}
		return strings.ToLower(s), nil
	}
}

// Matches panics if pattern does not compile.
func Matches(pattern, message string) Validator {
	return MatchesRegexp(regexp.MustCompile(pattern), message)
}

func MatchesRegexp(re *regexp.Regexp, message string) Validator {
	return func(value any, _ Values) (any, error) {
		s, ok := value.(string)
		if !ok || !re.MatchString(s) {
			return nil, errors.New(message)
		}
		return value, nil
	}
}

func MinInt(min int, message string) Validator {
	return func(value any, _ Values) (any, error) {
		i, ok := value.(int)
		if !ok || i < min {
			return nil, errors.New(message)
		}
		return value, nil
	}
}

func MaxInt(max int, message string) Validator {
	return func(value any, _ Values) (any, error) {
		i, ok := value.(int)
		if !ok || i > max {
			return nil, errors.New(message)
		}
		return value, nil
	}
}

// MinLength counts runes.
func MinLength(n int, message string) Validator {
	return func(value any, _ Values) (any, error) {
		s, ok := value.(string)
		if !ok || utf8.RuneCountInString(s) < n {
			return nil, errors.New(message)
		}
		return value, nil
	}
}

func MustBeTrue(message string) Validator {
	return func(value any, _ Values) (any, error) {
		b, ok := value.(bool)
		if !ok || !b {
			return nil, errors.New(message)
		}
		return value, nil
	}
}

func OneOf(message string, options ...string) Validator {
	return func(value any, _ Values) (any, error) {
		s, ok := value.(string)
		if ok {
			for _, opt := range options {
				if strings.EqualFold(s, opt) {
					return opt, nil
				}
			}
		}
		return nil, errors.New(message)
	}
}
