// Package terms splits raw search input into the terms matched by the union
// searcher.
package terms

import (
	"encoding/csv"
	"strings"
)

// Options controls how raw input becomes terms
type Options struct {
	// ParseTerm splits the input on spaces. When false the whole input is one term.
	ParseTerm     bool
	IgnoreCase    bool
	BeginWildcard bool
	EndWildcard   bool
	// SoundsLike disables wildcards; the phonetic operator matches whole terms.
	SoundsLike bool
}

// Terms is the parsed form of one search input
type Terms struct {
	// Raw is the untouched input, used for full-text matching
	Raw              string
	Original         []string
	WithoutWildcards []string
	WithWildcards    []string
}

// Empty reports whether no usable term was found
func (t Terms) Empty() bool {
	return len(t.Original) == 0
}

// Parse converts raw input into terms according to opts
func Parse(raw string, opts Options) Terms {
	t := Terms{Raw: raw}

	if opts.ParseTerm {
		t.Original = Split(raw)
	} else if strings.TrimSpace(raw) != "" {
		t.Original = []string{raw}
	}

	t.WithoutWildcards = make([]string, len(t.Original))
	t.WithWildcards = make([]string, len(t.Original))

	for i, term := range t.Original {
		if opts.IgnoreCase {
			term = strings.ToLower(term)
		}
		t.WithoutWildcards[i] = term

		if !opts.SoundsLike {
			if opts.BeginWildcard {
				term = "%" + term
			}
			if opts.EndWildcard {
				term += "%"
			}
		}
		t.WithWildcards[i] = term
	}

	return t
}

// Split breaks raw input on spaces, keeping double-quoted phrases together
// and dropping empty tokens.
func Split(raw string) []string {
	r := csv.NewReader(strings.NewReader(strings.TrimSpace(raw)))
	r.Comma = ' '
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	var terms []string
	for {
		record, err := r.Read()
		if err != nil {
			break
		}
		for _, field := range record {
			if field = strings.TrimSpace(field); field != "" {
				terms = append(terms, field)
			}
		}
	}
	return terms
}
