// Copyright 2025 Magnus Pierre
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package filter implements row filters for datatable models and the
// query language typed into a table's filter entry.
package filter

import (
	"fmt"
	"strconv"
	"strings"

	"nwbview/datatable"
)

// CompOp is a comparison operator.
type CompOp int

const (
	OpEqual CompOp = iota
	OpNotEqual
	OpGreater
	OpLess
	OpGreaterEqual
	OpLessEqual
	OpContains
)

var opSymbols = []struct {
	op     CompOp
	symbol string
}{
	{OpGreaterEqual, ">="},
	{OpLessEqual, "<="},
	{OpNotEqual, "!="},
	{OpEqual, "="},
	{OpGreater, ">"},
	{OpLess, "<"},
	{OpContains, "~"},
}

func (op CompOp) String() string {
	for _, s := range opSymbols {
		if s.op == op {
			return s.symbol
		}
	}
	return fmt.Sprintf("op(%d)", op)
}

// Comparison tests one column against a literal. An empty Column with
// OpContains searches every column.
type Comparison struct {
	Column string
	Op     CompOp
	Value  string
}

// Description implements datatable.Filter.
func (c *Comparison) Description() string {
	if c.Column == "" {
		return fmt.Sprintf("any ~ %s", c.Value)
	}
	return fmt.Sprintf("%s %s %s", c.Column, c.Op, c.Value)
}

// Evaluate implements datatable.Filter.
func (c *Comparison) Evaluate(row []datatable.Value, columnNames []string) (bool, error) {
	if c.Column == "" {
		needle := strings.ToLower(c.Value)
		for _, v := range row {
			if strings.Contains(strings.ToLower(v.Formatted), needle) {
				return true, nil
			}
		}
		return false, nil
	}

	idx := -1
	for i, name := range columnNames {
		if strings.EqualFold(name, c.Column) {
			idx = i
			break
		}
	}
	if idx < 0 || idx >= len(row) {
		return false, fmt.Errorf("%w: %s", datatable.ErrColumnNotFound, c.Column)
	}
	cell := row[idx]
	if cell.IsNull {
		return false, nil
	}

	switch c.Op {
	case OpContains:
		return strings.Contains(strings.ToLower(cell.Formatted), strings.ToLower(c.Value)), nil
	case OpEqual:
		return c.compare(cell) == 0, nil
	case OpNotEqual:
		return c.compare(cell) != 0, nil
	case OpGreater:
		return c.compare(cell) > 0, nil
	case OpLess:
		return c.compare(cell) < 0, nil
	case OpGreaterEqual:
		return c.compare(cell) >= 0, nil
	case OpLessEqual:
		return c.compare(cell) <= 0, nil
	}
	return false, fmt.Errorf("%w: unknown operator %d", datatable.ErrInvalidFilter, c.Op)
}

// compare orders cell against the literal, numerically when both are
// numbers and case-insensitively as text otherwise.
func (c *Comparison) compare(cell datatable.Value) int {
	if f, ok := cell.Float(); ok {
		if lit, err := strconv.ParseFloat(c.Value, 64); err == nil {
			switch {
			case f < lit:
				return -1
			case f > lit:
				return 1
			default:
				return 0
			}
		}
	}
	return strings.Compare(strings.ToLower(cell.Formatted), strings.ToLower(c.Value))
}

// Query is a parsed filter in disjunctive form. A row passes when every
// comparison of at least one term passes. A query without terms passes
// every row.
type Query struct {
	Terms [][]*Comparison
}

// Evaluate implements datatable.Filter. Terms are tried in order and the
// first failing comparison ends its term.
func (q *Query) Evaluate(row []datatable.Value, columnNames []string) (bool, error) {
	if len(q.Terms) == 0 {
		return true, nil
	}
	for _, term := range q.Terms {
		pass := true
		for _, c := range term {
			ok, err := c.Evaluate(row, columnNames)
			if err != nil {
				return false, err
			}
			if !ok {
				pass = false
				break
			}
		}
		if pass {
			return true, nil
		}
	}
	return false, nil
}

// Description implements datatable.Filter. It renders the query with the
// table's own column names, e.g. "Value > 2 AND Index < 3 OR any ~ x".
func (q *Query) Description() string {
	if len(q.Terms) == 0 {
		return "all rows"
	}
	terms := make([]string, len(q.Terms))
	for i, term := range q.Terms {
		parts := make([]string, len(term))
		for j, c := range term {
			parts[j] = c.Description()
		}
		terms[i] = strings.Join(parts, " AND ")
	}
	return strings.Join(terms, " OR ")
}

// Columns returns the distinct columns the query compares, in first-use
// order. Searches across every column are not listed.
func (q *Query) Columns() []string {
	var cols []string
	seen := make(map[string]bool)
	for _, term := range q.Terms {
		for _, c := range term {
			if c.Column != "" && !seen[c.Column] {
				seen[c.Column] = true
				cols = append(cols, c.Column)
			}
		}
	}
	return cols
}

// Parse compiles a query such as "index > 100 AND value < 3.5 OR value ~ x"
// against columns. AND binds tighter than OR. Column names match in any
// case and are stored as spelled in columns. Text without an operator
// searches every column. An empty query returns a nil filter.
func Parse(query string, columns []string) (*Query, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}

	known := make(map[string]string, len(columns))
	for _, c := range columns {
		known[strings.ToLower(c)] = c
	}

	var terms [][]*Comparison
	var current []*Comparison
	expectExpr := true
	for _, part := range splitByLogicOps(query) {
		if part.isOperator {
			if expectExpr {
				return nil, fmt.Errorf("%w: unexpected %s", datatable.ErrInvalidFilter, part.text)
			}
			if part.text == "OR" {
				terms = append(terms, current)
				current = nil
			}
			expectExpr = true
			continue
		}
		if !expectExpr {
			return nil, fmt.Errorf("%w: missing operator before %q", datatable.ErrInvalidFilter, part.text)
		}
		cmp, err := parseExpression(part.text, known)
		if err != nil {
			return nil, err
		}
		current = append(current, cmp)
		expectExpr = false
	}
	if expectExpr {
		return nil, fmt.Errorf("%w: query ends with an operator", datatable.ErrInvalidFilter)
	}
	terms = append(terms, current)
	return &Query{Terms: terms}, nil
}

// parseExpression parses "column op value", taking the leftmost operator
// (the longer symbol when two start at the same position).
func parseExpression(text string, known map[string]string) (*Comparison, error) {
	at, width := -1, 0
	var op CompOp
	for _, s := range opSymbols {
		idx := strings.Index(text, s.symbol)
		if idx <= 0 {
			continue
		}
		if at < 0 || idx < at || (idx == at && len(s.symbol) > width) {
			at, width, op = idx, len(s.symbol), s.op
		}
	}
	if at < 0 {
		return &Comparison{Op: OpContains, Value: strings.Trim(text, "\"'")}, nil
	}

	typed := strings.TrimSpace(text[:at])
	value := strings.Trim(strings.TrimSpace(text[at+width:]), "\"'")
	column, ok := known[strings.ToLower(typed)]
	if !ok {
		return nil, fmt.Errorf("%w: %w: %s", datatable.ErrInvalidFilter, datatable.ErrColumnNotFound, typed)
	}
	return &Comparison{Column: column, Op: op, Value: value}, nil
}

type queryPart struct {
	text       string
	isOperator bool
}

// splitByLogicOps splits a query on whitespace-delimited AND/OR keywords
// (any case), keeping the keywords as operator parts.
func splitByLogicOps(query string) []queryPart {
	var parts []queryPart
	var current strings.Builder

	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			parts = append(parts, queryPart{text: s})
		}
		current.Reset()
	}

	for i := 0; i < len(query); {
		if kw := keywordAt(query, i); kw != "" {
			flush()
			parts = append(parts, queryPart{text: kw, isOperator: true})
			i += len(kw)
			continue
		}
		current.WriteByte(query[i])
		i++
	}
	flush()
	return parts
}

func keywordAt(s string, i int) string {
	for _, kw := range []string{"AND", "OR"} {
		end := i + len(kw)
		if end > len(s) || !strings.EqualFold(s[i:end], kw) {
			continue
		}
		if (i == 0 || isWhitespace(s[i-1])) && (end == len(s) || isWhitespace(s[end])) {
			return kw
		}
	}
	return ""
}

func isWhitespace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
