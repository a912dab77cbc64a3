package store

import (
	"context"
	"fmt"
)

// WritePass inserts a pass and its entries in a single transaction.
// Uses ON CONFLICT(token) DO NOTHING for idempotency: replaying the
// same pass token is silently ignored and reported via inserted=false.
func (s *Store) WritePass(ctx context.Context, p Pass) (inserted bool, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("write pass: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	includeSelf := 0
	if p.IncludeSelf {
		includeSelf = 1
	}

	result, err := tx.ExecContext(ctx, `
		INSERT INTO passes
		(token, source_table, source_col, rows, include_self, seq)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(token) DO NOTHING
	`,
		p.Token,
		p.SourceTable,
		p.SourceCol,
		p.Rows,
		includeSelf,
		p.Seq,
	)
	if err != nil {
		return false, fmt.Errorf("write pass %s: %w", p.Token, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("write pass %s: rows affected: %w", p.Token, err)
	}
	if affected == 0 {
		// Pass already journaled; leave the original intact.
		return false, tx.Commit()
	}

	for idx, entry := range p.Entries {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO pass_entries
			(pass_token, idx, node_table, node_col, rows)
			VALUES (?, ?, ?, ?, ?)
		`,
			p.Token,
			idx,
			entry.NodeTable,
			entry.NodeCol,
			entry.Rows,
		)
		if err != nil {
			return false, fmt.Errorf("write pass %s: entry %d: %w", p.Token, idx, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("write pass %s: commit: %w", p.Token, err)
	}

	return true, nil
}
