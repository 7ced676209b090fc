package summary

import (
	"math"
	"strconv"
	"strings"

	"github.com/banshee-data/walkthrough.report/internal/tabular"
	"github.com/banshee-data/walkthrough.report/internal/trajectory"
)

// NotComputed marks hit ratio cells when no attention analysis ran.
const NotComputed = "not computed"

// Column names of a hit count table.
const (
	HitKeyColumn      = "key"
	HitCategoryColumn = "category"
	HitCountColumn    = "hits"
)

// HitProvider holds raw attention hit counts per trajectory key and category.
type HitProvider map[string]map[string]int

// Add accumulates n hits for key and category.
func (h HitProvider) Add(key, category string, n int) {
	m, ok := h[key]
	if !ok {
		m = make(map[string]int)
		h[key] = m
	}
	m[category] += n
}

// Ratios normalizes key's hits per category by key's total hits across all
// categories, including ones not listed. A key with no hits yields NaN.
func (h HitProvider) Ratios(key string, categories []string) map[string]float64 {
	counts := h[key]
	total := 0
	for _, n := range counts {
		total += n
	}
	out := make(map[string]float64, len(categories))
	for _, c := range categories {
		if total == 0 {
			out[c] = math.NaN()
			continue
		}
		out[c] = float64(counts[c]) / float64(total)
	}
	return out
}

// hitCategories lists the values of column col in first-seen order.
func hitCategories(t tabular.Table, col int) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range t.Rows {
		if c := r[col]; !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}

// LoadHits reads a key;category;hits table. Repeated key and category
// pairs are summed. It also returns the categories in first-seen order.
func LoadHits(t tabular.Table) (HitProvider, []string, error) {
	idx := make(map[string]int, 3)
	for _, name := range []string{HitKeyColumn, HitCategoryColumn, HitCountColumn} {
		i := t.Index(name)
		if i < 0 {
			return nil, nil, &trajectory.MissingColumnError{Column: name, Available: t.Columns}
		}
		idx[name] = i
	}
	hits := make(HitProvider)
	for r, row := range t.Rows {
		raw := row[idx[HitCountColumn]]
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil || n < 0 {
			return nil, nil, &trajectory.MalformedValueError{
				Column: HitCountColumn, Value: raw, Row: r + 1,
				Reason: "not a non-negative integer",
			}
		}
		hits.Add(row[idx[HitKeyColumn]], row[idx[HitCategoryColumn]], n)
	}
	return hits, hitCategories(t, idx[HitCategoryColumn]), nil
}
