package render

import (
	"strings"
	"unicode"
)

// splitWords breaks s at separators and at case and letter/digit boundaries.
func splitWords(s string) []string {
	var (
		words   []string
		current []rune
		prev    rune
	)
	flush := func() {
		if len(current) > 0 {
			words = append(words, string(current))
			current = current[:0]
		}
	}

	for i, r := range s {
		switch {
		case r == ' ' || r == '_' || r == '-' || r == '.':
			flush()
		case !unicode.IsLetter(r) && !unicode.IsDigit(r):
			// dropped
		case i > 0 && unicode.IsUpper(r) && (unicode.IsLower(prev) || unicode.IsDigit(prev)),
			i > 0 && unicode.IsDigit(r) != unicode.IsDigit(prev) && (unicode.IsLetter(prev) || unicode.IsDigit(prev)):
			flush()
			current = append(current, r)
		default:
			current = append(current, r)
		}
		prev = r
	}
	flush()
	return words
}

func capitalize(word string) string {
	runes := []rune(strings.ToLower(word))
	if len(runes) > 0 {
		runes[0] = unicode.ToUpper(runes[0])
	}
	return string(runes)
}

func toPascalCase(s string) string {
	var b strings.Builder
	for _, word := range splitWords(s) {
		b.WriteString(capitalize(word))
	}
	return b.String()
}

func toCamelCase(s string) string {
	words := splitWords(s)
	if len(words) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(strings.ToLower(words[0]))
	for _, word := range words[1:] {
		b.WriteString(capitalize(word))
	}
	return b.String()
}

func toSnakeCase(s string) string {
	return strings.ToLower(strings.Join(splitWords(s), "_"))
}

func toKebabCase(s string) string {
	return strings.ToLower(strings.Join(splitWords(s), "-"))
}

var irregularPlurals = map[string]string{
	"person":    "people",
	"man":       "men",
	"woman":     "women",
	"child":     "children",
	"mouse":     "mice",
	"datum":     "data",
	"medium":    "media",
	"criterion": "criteria",
	"index":     "indices",
}

// pluralize returns the English plural of word, keeping the case of its first
// letter.
func pluralize(word string) string {
	if word == "" {
		return ""
	}
	lower := strings.ToLower(word)
	if plural, ok := irregularPlurals[lower]; ok {
		return matchCase(word, plural)
	}

	switch {
	case hasAnySuffix(lower, "s", "x", "z", "ch", "sh"):
		return word + "es"
	case strings.HasSuffix(lower, "y") && len(lower) > 1 && !strings.ContainsRune("aeiou", rune(lower[len(lower)-2])):
		return word[:len(word)-1] + "ies"
	case strings.HasSuffix(lower, "fe"):
		return word[:len(word)-2] + "ves"
	case strings.HasSuffix(lower, "f"):
		return word[:len(word)-1] + "ves"
	}
	return word + "s"
}

func singularize(word string) string {
	if word == "" {
		return ""
	}
	lower := strings.ToLower(word)
	for singular, plural := range irregularPlurals {
		if lower == plural {
			return matchCase(word, singular)
		}
	}

	switch {
	case strings.HasSuffix(lower, "ies") && len(lower) > 3:
		return word[:len(word)-3] + "y"
	case strings.HasSuffix(lower, "ves") && len(lower) > 3:
		return word[:len(word)-3] + "f"
	case strings.HasSuffix(lower, "es") && hasAnySuffix(lower[:len(lower)-2], "s", "x", "z", "ch", "sh"):
		return word[:len(word)-2]
	case strings.HasSuffix(lower, "s") && !strings.HasSuffix(lower, "ss"):
		return word[:len(word)-1]
	}
	return word
}

func hasAnySuffix(s string, suffixes ...string) bool {
	for _, suffix := range suffixes {
		if strings.HasSuffix(s, suffix) {
			return true
		}
	}
	return false
}

func matchCase(original, replacement string) string {
	if original != "" && unicode.IsUpper([]rune(original)[0]) {
		return capitalize(replacement)
	}
	return replacement
}

// identifier turns s into a valid C# or Go identifier.
func identifier(s string) string {
	id := toPascalCase(s)
	if id == "" {
		return "_"
	}
	if unicode.IsDigit([]rune(id)[0]) {
		return "_" + id
	}
	return id
}

// comment prefixes every line of text with prefix and a space.
func comment(prefix, text string) string {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(prefix+" "+line, " ")
	}
	return strings.Join(lines, "\n")
}

// indentLines indents every non-blank line of text by width spaces.
func indentLines(width int, text string) string {
	pad := strings.Repeat(" ", width)
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) != "" {
			lines[i] = pad + line
		}
	}
	return strings.Join(lines, "\n")
}
