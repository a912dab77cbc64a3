// Package schema defines the document catalog types the compiler
// produces: tables, columns, and the read declarations that become
// dependency edges.
package schema

import (
	"fmt"

	"github.com/rowgraph/rowgraph/internal/relation"
)

// DocumentSpec is a compiled document catalog.
type DocumentSpec struct {
	Tables []TableSpec `json:"tables"`
}

// TableSpec describes one table and its columns.
type TableSpec struct {
	Name    string       `json:"name"`
	Columns []ColumnSpec `json:"columns"`
}

// ColumnSpec describes one column. Formula columns declare the columns
// their formula reads; raw data columns never do.
type ColumnSpec struct {
	Name    string     `json:"name"`
	Type    string     `json:"type"`
	Formula bool       `json:"formula"`
	Reads   []ReadSpec `json:"reads,omitempty"`
}

// ReadSpec declares one dependency: this formula column reads
// (Table, Column) through a relation of the given kind.
type ReadSpec struct {
	Table    string `json:"table"`
	Column   string `json:"column"`
	Relation string `json:"relation"`
}

// ValidColumnTypes lists the accepted column value types.
var ValidColumnTypes = map[string]bool{
	"int":  true,
	"text": true,
	"bool": true,
	"ref":  true,
	"date": true,
}

// Validate checks structural consistency: unique table/column names,
// known column types and relation kinds, read targets that resolve,
// and reads declared only on formula columns.
func (d *DocumentSpec) Validate() error {
	tables := make(map[string]map[string]*ColumnSpec, len(d.Tables))
	for ti := range d.Tables {
		table := &d.Tables[ti]
		if table.Name == "" {
			return fmt.Errorf("tables[%d]: name is required", ti)
		}
		if _, dup := tables[table.Name]; dup {
			return fmt.Errorf("duplicate table %q", table.Name)
		}
		cols := make(map[string]*ColumnSpec, len(table.Columns))
		for ci := range table.Columns {
			col := &table.Columns[ci]
			if col.Name == "" {
				return fmt.Errorf("table %q: columns[%d]: name is required", table.Name, ci)
			}
			if _, dup := cols[col.Name]; dup {
				return fmt.Errorf("table %q: duplicate column %q", table.Name, col.Name)
			}
			if col.Type != "" && !ValidColumnTypes[col.Type] {
				return fmt.Errorf("table %q, column %q: unknown type %q", table.Name, col.Name, col.Type)
			}
			if !col.Formula && len(col.Reads) > 0 {
				return fmt.Errorf("table %q, column %q: only formula columns declare reads", table.Name, col.Name)
			}
			cols[col.Name] = col
		}
		tables[table.Name] = cols
	}

	// Read targets resolve against the full catalog, so resolve after
	// every table is registered (forward references are legal).
	for _, table := range d.Tables {
		for _, col := range table.Columns {
			for ri, read := range col.Reads {
				if !relation.ValidKinds[relation.Kind(read.Relation)] {
					return fmt.Errorf("table %q, column %q: reads[%d]: unknown relation kind %q",
						table.Name, col.Name, ri, read.Relation)
				}
				targetCols, ok := tables[read.Table]
				if !ok {
					return fmt.Errorf("table %q, column %q: reads[%d]: unknown table %q",
						table.Name, col.Name, ri, read.Table)
				}
				if _, ok := targetCols[read.Column]; !ok {
					return fmt.Errorf("table %q, column %q: reads[%d]: unknown column %q.%q",
						table.Name, col.Name, ri, read.Table, read.Column)
				}
			}
		}
	}

	return nil
}

// Canonical converts the spec to plain maps for canonical JSON output.
func (d *DocumentSpec) Canonical() map[string]any {
	tables := make([]any, len(d.Tables))
	for i, table := range d.Tables {
		cols := make([]any, len(table.Columns))
		for j, col := range table.Columns {
			c := map[string]any{
				"name":    col.Name,
				"type":    col.Type,
				"formula": col.Formula,
			}
			if len(col.Reads) > 0 {
				reads := make([]any, len(col.Reads))
				for k, read := range col.Reads {
					reads[k] = map[string]any{
						"table":    read.Table,
						"column":   read.Column,
						"relation": read.Relation,
					}
				}
				c["reads"] = reads
			}
			cols[j] = c
		}
		tables[i] = map[string]any{
			"name":    table.Name,
			"columns": cols,
		}
	}
	return map[string]any{"tables": tables}
}
