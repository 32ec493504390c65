// Package upkeep computes per-turn structure upkeep for a hex from a
// name→cost table. The calculation is pure and read-only; the table comes
// from an external CSV and degrades to empty on bad input rather than
// failing the application.
package upkeep

import (
	"encoding/csv"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/hexhaven/factionledger/internal/faction"
)

// Cost is a per-turn resource cost. Only these four resources carry
// structure upkeep.
type Cost struct {
	Food  int `json:"food"`
	Wood  int `json:"wood"`
	Stone int `json:"stone"`
	Gold  int `json:"gold"`
}

// Add returns the element-wise sum of two costs.
func (c Cost) Add(o Cost) Cost {
	return Cost{
		Food:  c.Food + o.Food,
		Wood:  c.Wood + o.Wood,
		Stone: c.Stone + o.Stone,
		Gold:  c.Gold + o.Gold,
	}
}

// Table maps a structure name to its per-turn cost.
type Table map[string]Cost

// Calc sums the upkeep of every structure on the hex. Names missing from
// the table contribute zero — an unknown structure is not an error. The
// result is independent of structure order.
func Calc(h faction.Hex, t Table) Cost {
	var total Cost
	for _, name := range h.StructureList() {
		total = total.Add(t[name])
	}
	return total
}

// Required header columns, in the order the canonical table ships them.
var headerCols = []string{"Upgrade", "Food", "Wood", "Stone", "Gold"}

// LoadTable parses a headered CSV of structure upkeep costs. A missing or
// short header yields an empty table; unparseable rows are skipped. Either
// way upkeep simply displays as zero — the table never blocks the app.
func LoadTable(r io.Reader) Table {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return Table{}
	}
	col := columnIndex(header)
	if col == nil {
		slog.Warn("upkeep table header unrecognized, using empty table", "header", strings.Join(header, ","))
		return Table{}
	}

	t := Table{}
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}
		name, cost, ok := parseRow(row, col)
		if !ok {
			continue
		}
		t[name] = cost
	}
	return t
}

// columnIndex maps required column names to their positions, or nil when
// any is missing. Matching is case-insensitive.
func columnIndex(header []string) map[string]int {
	idx := map[string]int{}
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	col := map[string]int{}
	for _, want := range headerCols {
		i, ok := idx[strings.ToLower(want)]
		if !ok {
			return nil
		}
		col[want] = i
	}
	return col
}

func parseRow(row []string, col map[string]int) (string, Cost, bool) {
	get := func(name string) (string, bool) {
		i := col[name]
		if i >= len(row) {
			return "", false
		}
		return strings.TrimSpace(row[i]), true
	}

	name, ok := get("Upgrade")
	if !ok || name == "" {
		return "", Cost{}, false
	}

	var cost Cost
	for _, f := range []struct {
		col string
		dst *int
	}{
		{"Food", &cost.Food},
		{"Wood", &cost.Wood},
		{"Stone", &cost.Stone},
		{"Gold", &cost.Gold},
	} {
		s, ok := get(f.col)
		if !ok {
			return "", Cost{}, false
		}
		if s == "" {
			continue
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return "", Cost{}, false
		}
		*f.dst = n
	}
	return name, cost, true
}
