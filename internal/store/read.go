package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrPassNotFound is returned when a pass token is not in the journal.
var ErrPassNotFound = errors.New("pass not found")

// ReadPass loads one pass and its entries by token.
func (s *Store) ReadPass(ctx context.Context, token string) (Pass, error) {
	var p Pass
	var includeSelf int

	err := s.db.QueryRowContext(ctx, `
		SELECT token, source_table, source_col, rows, include_self, seq
		FROM passes WHERE token = ?
	`, token).Scan(&p.Token, &p.SourceTable, &p.SourceCol, &p.Rows, &includeSelf, &p.Seq)
	if errors.Is(err, sql.ErrNoRows) {
		return Pass{}, fmt.Errorf("read pass %s: %w", token, ErrPassNotFound)
	}
	if err != nil {
		return Pass{}, fmt.Errorf("read pass %s: %w", token, err)
	}
	p.IncludeSelf = includeSelf != 0
	p.Source = p.SourceTable + "." + p.SourceCol

	rows, err := s.db.QueryContext(ctx, `
		SELECT node_table, node_col, rows
		FROM pass_entries WHERE pass_token = ?
		ORDER BY idx
	`, token)
	if err != nil {
		return Pass{}, fmt.Errorf("read pass %s: entries: %w", token, err)
	}
	defer rows.Close()

	for rows.Next() {
		var e PassEntry
		if err := rows.Scan(&e.NodeTable, &e.NodeCol, &e.Rows); err != nil {
			return Pass{}, fmt.Errorf("read pass %s: scan entry: %w", token, err)
		}
		p.Entries = append(p.Entries, e)
	}
	if err := rows.Err(); err != nil {
		return Pass{}, fmt.Errorf("read pass %s: iterate entries: %w", token, err)
	}

	return p, nil
}

// ListPasses returns all recorded passes without entries, ordered by
// logical clock then token.
func (s *Store) ListPasses(ctx context.Context) ([]Pass, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT token, source_table, source_col, rows, include_self, seq
		FROM passes
		ORDER BY seq, token
	`)
	if err != nil {
		return nil, fmt.Errorf("list passes: %w", err)
	}
	defer rows.Close()

	var passes []Pass
	for rows.Next() {
		var p Pass
		var includeSelf int
		if err := rows.Scan(&p.Token, &p.SourceTable, &p.SourceCol, &p.Rows, &includeSelf, &p.Seq); err != nil {
			return nil, fmt.Errorf("list passes: scan: %w", err)
		}
		p.IncludeSelf = includeSelf != 0
		p.Source = p.SourceTable + "." + p.SourceCol
		passes = append(passes, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list passes: iterate: %w", err)
	}

	return passes, nil
}
