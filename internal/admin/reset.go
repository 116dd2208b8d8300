// Package admin provides administrative operations for database management.
package admin

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/sidoarjo/callcenter/internal/core"
	"github.com/sidoarjo/callcenter/internal/logging"
)

// ResetTimeout is the maximum duration for a reset.
const ResetTimeout = 30 * time.Second

// Select returns the schemas named by keys, or every schema when keys is empty.
func Select(keys []string) ([]core.Schema, error) {
	if len(keys) == 0 {
		return core.All(), nil
	}
	out := make([]core.Schema, 0, len(keys))
	for _, k := range keys {
		s, err := core.Lookup(k)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// Reset empties the tables of schemas in one statement, so either all of
// them are cleared or none is. This is destructive.
func Reset(ctx context.Context, db core.DBTX, schemas []core.Schema) error {
	if len(schemas) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, ResetTimeout)
	defer cancel()

	if _, err := db.Exec(ctx, resetSQL(schemas)); err != nil {
		return fmt.Errorf("reset: %w", err)
	}

	keys := make([]string, len(schemas))
	for i, s := range schemas {
		keys[i] = s.Key
	}
	logging.FromContext(ctx).Warn("tables reset", "tables", keys, "user", core.UserFromContext(ctx))
	return nil
}

func resetSQL(schemas []core.Schema) string {
	names := make([]string, len(schemas))
	for i, s := range schemas {
		names[i] = pgx.Identifier{s.Key}.Sanitize()
	}
	return "TRUNCATE TABLE " + strings.Join(names, ", ") + " RESTART IDENTITY"
}
