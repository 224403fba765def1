package translate

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"sort"
	"strings"

	"pptx-translator/internal/language"
)

// Glossary is a parsed terminology CSV: a header row of language codes
// followed by one row per term, one column per language.
type Glossary struct {
	languages []string
	rows      [][]string
}

// ParseGlossary validates and parses terminology CSV data.
func ParseGlossary(data []byte) (*Glossary, error) {
	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, []byte("\ufeff"))))
	r.TrimLeadingSpace = true
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse terminology csv: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("terminology csv needs a header row and at least one term")
	}
	header := records[0]
	if len(header) < 2 {
		return nil, fmt.Errorf("terminology csv header needs at least two language columns")
	}
	langs := make([]string, len(header))
	for i, h := range header {
		langs[i] = language.Canonical(h)
		if langs[i] == "" {
			return nil, fmt.Errorf("terminology csv header column %d is empty", i+1)
		}
	}
	return &Glossary{languages: langs, rows: records[1:]}, nil
}

// Languages returns the header language codes.
func (g *Glossary) Languages() []string {
	return append([]string(nil), g.languages...)
}

// Len returns the number of term rows.
func (g *Glossary) Len() int { return len(g.rows) }

// Matches returns source -> target pairs whose source term occurs in text
// (case-insensitive), longest source terms first. An unknown language
// column yields no matches. With source "auto" every non-target column is
// searched.
func (g *Glossary) Matches(text, source, target string) [][2]string {
	if g == nil {
		return nil
	}
	tgt := g.column(target)
	if tgt < 0 {
		return nil
	}
	var sources []int
	if source == AutoSource {
		for i := range g.languages {
			if i != tgt {
				sources = append(sources, i)
			}
		}
	} else if src := g.column(source); src >= 0 {
		sources = []int{src}
	}

	lower := strings.ToLower(text)
	seen := map[string]bool{}
	var out [][2]string
	for _, row := range g.rows {
		for _, src := range sources {
			term := strings.TrimSpace(row[src])
			if term == "" || seen[term] || !strings.Contains(lower, strings.ToLower(term)) {
				continue
			}
			seen[term] = true
			out = append(out, [2]string{term, strings.TrimSpace(row[tgt])})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return len(out[i][0]) > len(out[j][0]) })
	return out
}

func (g *Glossary) column(code string) int {
	want := strings.ToLower(language.Canonical(code))
	for i, l := range g.languages {
		if strings.ToLower(l) == want {
			return i
		}
	}
	return -1
}
