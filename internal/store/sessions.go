package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/surrealdb/surrealdb.go"
)

// UpsertSession creates or updates a generation session by ID.
func (c *Client) UpsertSession(ctx context.Context, id string, in SessionInput) (*SessionRecord, error) {
	if in.Setup == nil {
		return nil, fmt.Errorf("upsert session: nil setup")
	}
	setupJSON, err := json.Marshal(in.Setup)
	if err != nil {
		return nil, fmt.Errorf("encode setup: %w", err)
	}
	prompts := in.Prompts
	if prompts == nil {
		prompts = []string{}
	}

	sql := `
		UPSERT type::record("session", $id) SET
			prompts = $prompts,
			setup = $setup,
			revision = $revision,
			program = IF $program THEN type::record("program", $program) ELSE NONE END,
			updated = time::now(),
			created = IF created THEN created ELSE time::now() END
		RETURN AFTER
	`

	vars := map[string]any{
		"id":       id,
		"prompts":  prompts,
		"setup":    string(setupJSON),
		"revision": in.Revision,
		"program":  nil,
	}
	if in.ProgramID != nil {
		vars["program"] = *in.ProgramID
	}

	results, err := surrealdb.Query[[]SessionRecord](ctx, c.db, sql, vars)
	if err != nil {
		return nil, wrapQueryError(err)
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, fmt.Errorf("upsert session: no result returned")
	}
	return &(*results)[0].Result[0], nil
}

// GetSession retrieves a session by ID. Returns nil if not found.
func (c *Client) GetSession(ctx context.Context, id string) (*SessionRecord, error) {
	results, err := surrealdb.Query[[]SessionRecord](ctx, c.db, `
		SELECT * FROM type::record("session", $id)
	`, map[string]any{"id": id})
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, nil
	}
	return &(*results)[0].Result[0], nil
}

// ListSessions returns sessions ordered by last update, newest first.
func (c *Client) ListSessions(ctx context.Context, limit int) ([]SessionRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	results, err := surrealdb.Query[[]SessionRecord](ctx, c.db, `
		SELECT * FROM session ORDER BY updated DESC LIMIT $limit
	`, map[string]any{"limit": limit})
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	if results == nil || len(*results) == 0 {
		return []SessionRecord{}, nil
	}
	return (*results)[0].Result, nil
}

// DeleteSession deletes a session by ID.
// Returns the count deleted (0 if not found, idempotent).
func (c *Client) DeleteSession(ctx context.Context, id string) (int, error) {
	results, err := surrealdb.Query[[]SessionRecord](ctx, c.db, `
		DELETE type::record("session", $id) RETURN BEFORE
	`, map[string]any{"id": id})
	if err != nil {
		return 0, fmt.Errorf("delete session: %w", err)
	}

	if results == nil || len(*results) == 0 {
		return 0, nil
	}
	return len((*results)[0].Result), nil
}
