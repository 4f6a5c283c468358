package dialect

import "strings"

// phoneticSubstitutions are letter groups that commonly sound alike in English
var phoneticSubstitutions = [][2]string{
	{"ph", "f"},
	{"f", "ph"},
	{"c", "k"},
	{"k", "c"},
	{"s", "z"},
	{"z", "s"},
	{"i", "y"},
	{"y", "i"},
}

// PhoneticVariants returns the LIKE patterns that approximate a sounds-like
// match of term: the term itself, one spelling variant per substitution and,
// for terms longer than three characters, a prefix and a suffix pattern.
func PhoneticVariants(term string) []string {
	term = strings.ToLower(term)

	var (
		variants []string
		seen     = make(map[string]bool)
	)
	add := func(v string) {
		if v != "" && !seen[v] {
			seen[v] = true
			variants = append(variants, v)
		}
	}

	add(term)
	for _, sub := range phoneticSubstitutions {
		if strings.Contains(term, sub[0]) {
			add(strings.ReplaceAll(term, sub[0], sub[1]))
		}
	}

	runes := []rune(term)
	if len(runes) > 3 {
		add(string(runes[:len(runes)-1]) + "%")
		add("%" + string(runes[1:]))
	}

	return variants
}
