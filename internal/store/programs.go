package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/surrealdb/surrealdb.go"
)

// programColumns is the projection shared by program reads.
const programColumns = "id, name, slug, setup, text, model, revision, op_count, material, shape, created, updated"

// listColumns leaves out the two heavyweight string fields.
const listColumns = "id, name, slug, model, revision, op_count, material, shape, created, updated"

// UpsertProgram creates or updates a program by ID.
// Returns (record, wasCreated, error).
func (c *Client) UpsertProgram(ctx context.Context, id string, in ProgramInput) (*ProgramRecord, bool, error) {
	if in.Setup == nil {
		return nil, false, fmt.Errorf("upsert program: nil setup")
	}
	setupJSON, err := json.Marshal(in.Setup)
	if err != nil {
		return nil, false, fmt.Errorf("encode setup: %w", err)
	}
	revision := in.Revision
	if revision < 1 {
		revision = 1
	}

	existsSQL := `SELECT count() AS c FROM type::record("program", $id)`
	existsResult, err := surrealdb.Query[[]struct{ C int }](ctx, c.db, existsSQL, map[string]any{"id": id})
	if err != nil {
		return nil, false, fmt.Errorf("check program exists: %w", err)
	}

	wasCreated := true
	if existsResult != nil && len(*existsResult) > 0 && len((*existsResult)[0].Result) > 0 {
		wasCreated = (*existsResult)[0].Result[0].C == 0
	}

	// created survives updates; updated always moves.
	sql := `
		UPSERT type::record("program", $id) SET
			name = $name,
			slug = $slug,
			setup = $setup,
			text = $text,
			model = $model,
			revision = $revision,
			op_count = $op_count,
			material = $material,
			shape = $shape,
			updated = time::now(),
			created = IF created THEN created ELSE time::now() END
		RETURN AFTER
	`

	results, err := surrealdb.Query[[]ProgramRecord](ctx, c.db, sql, map[string]any{
		"id":       id,
		"name":     in.Name,
		"slug":     Slugify(in.Name),
		"setup":    string(setupJSON),
		"text":     in.Text,
		"model":    in.Model,
		"revision": revision,
		"op_count": len(in.Setup.Operations),
		"material": in.Setup.Stock.Material,
		"shape":    in.Setup.Stock.Shape.String(),
	})
	if err != nil {
		return nil, false, wrapQueryError(err)
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, false, fmt.Errorf("upsert program: no result returned")
	}
	return &(*results)[0].Result[0], wasCreated, nil
}

// GetProgram retrieves a program by ID. Returns nil if not found.
func (c *Client) GetProgram(ctx context.Context, id string) (*ProgramRecord, error) {
	results, err := surrealdb.Query[[]ProgramRecord](ctx, c.db, fmt.Sprintf(`
		SELECT %s FROM type::record("program", $id)
	`, programColumns), map[string]any{"id": id})
	if err != nil {
		return nil, fmt.Errorf("get program: %w", err)
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, nil
	}
	return &(*results)[0].Result[0], nil
}

// GetProgramBySlug retrieves a program by its slug. Returns nil if not found.
func (c *Client) GetProgramBySlug(ctx context.Context, slug string) (*ProgramRecord, error) {
	results, err := surrealdb.Query[[]ProgramRecord](ctx, c.db, fmt.Sprintf(`
		SELECT %s FROM program WHERE slug = $slug LIMIT 1
	`, programColumns), map[string]any{"slug": slug})
	if err != nil {
		return nil, fmt.Errorf("get program by slug: %w", err)
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, nil
	}
	return &(*results)[0].Result[0], nil
}

// ListPrograms returns programs ordered by last update, newest first.
// The setup and text bodies are omitted; fetch by ID for the full record.
func (c *Client) ListPrograms(ctx context.Context, limit int) ([]ProgramRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	results, err := surrealdb.Query[[]ProgramRecord](ctx, c.db, fmt.Sprintf(`
		SELECT %s FROM program ORDER BY updated DESC LIMIT $limit
	`, listColumns), map[string]any{"limit": limit})
	if err != nil {
		return nil, fmt.Errorf("list programs: %w", err)
	}

	if results == nil || len(*results) == 0 {
		return []ProgramRecord{}, nil
	}
	return (*results)[0].Result, nil
}

// SearchPrograms runs a BM25 full-text search over program names.
func (c *Client) SearchPrograms(ctx context.Context, query string, limit int) ([]ProgramRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	results, err := surrealdb.Query[[]ProgramRecord](ctx, c.db, fmt.Sprintf(`
		SELECT %s FROM program WHERE name @0@ $q LIMIT $limit
	`, listColumns), map[string]any{"q": query, "limit": limit})
	if err != nil {
		return nil, fmt.Errorf("search programs: %w", err)
	}

	if results == nil || len(*results) == 0 {
		return []ProgramRecord{}, nil
	}
	return (*results)[0].Result, nil
}

// DeleteProgram deletes programs by ID.
// Returns the count actually deleted (0 if none found, idempotent).
func (c *Client) DeleteProgram(ctx context.Context, ids ...string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	recordIDs := make([]string, len(ids))
	for i, id := range ids {
		recordIDs[i] = "program:" + id
	}

	results, err := surrealdb.Query[[]ProgramRecord](ctx, c.db, `
		DELETE program WHERE id IN $ids RETURN BEFORE
	`, map[string]any{"ids": recordIDs})
	if err != nil {
		return 0, fmt.Errorf("delete program: %w", err)
	}

	if results == nil || len(*results) == 0 {
		return 0, nil
	}
	return len((*results)[0].Result), nil
}

// Stats summarizes the stored programs for reporting.
type Stats struct {
	Programs   int `json:"programs"`
	Operations int `json:"operations"`
	Sessions   int `json:"sessions"`
}

// ProgramStats returns aggregate counts across the store.
func (c *Client) ProgramStats(ctx context.Context) (*Stats, error) {
	type row struct {
		C   int `json:"c"`
		Ops int `json:"ops"`
	}
	results, err := surrealdb.Query[[]row](ctx, c.db, `
		SELECT count() AS c, math::sum(op_count) AS ops FROM program GROUP ALL
	`, nil)
	if err != nil {
		return nil, fmt.Errorf("program stats: %w", err)
	}

	stats := &Stats{}
	if results != nil && len(*results) > 0 && len((*results)[0].Result) > 0 {
		stats.Programs = (*results)[0].Result[0].C
		stats.Operations = (*results)[0].Result[0].Ops
	}

	type countRow struct {
		C int `json:"c"`
	}
	sessionResults, err := surrealdb.Query[[]countRow](ctx, c.db, `
		SELECT count() AS c FROM session GROUP ALL
	`, nil)
	if err != nil {
		return nil, fmt.Errorf("session stats: %w", err)
	}
	if sessionResults != nil && len(*sessionResults) > 0 && len((*sessionResults)[0].Result) > 0 {
		stats.Sessions = (*sessionResults)[0].Result[0].C
	}

	return stats, nil
}
