package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sidoarjo/callcenter/internal/core"
	"github.com/sidoarjo/callcenter/internal/database"
	"github.com/spf13/cobra"
)

// importer is the part of core.Service the import command uses.
type importer interface {
	Import(ctx context.Context, schemaKey, fileName string, r io.Reader) (*core.ImportResult, error)
}

func newImportCommand() *cobra.Command {
	var schema string

	cmd := &cobra.Command{
		Use:   "import --schema <key> <file.csv>...",
		Short: "Import CSV files into a table",
		Args:  cobra.MinimumNArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := core.Lookup(schema); err != nil {
				return fmt.Errorf("%w (known: %s)", err, strings.Join(core.Keys(), ", "))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			pool, err := database.Connect(cmd.Context(), cfg.Database)
			if err != nil {
				return err
			}
			defer pool.Close()

			service, err := core.NewService(pool, cfg)
			if err != nil {
				return err
			}
			ctx := core.ContextWithUser(cmd.Context(), currentUser())
			return importFiles(ctx, service, schema, args, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVarP(&schema, "schema", "s", "", "Target table: "+strings.Join(core.Keys(), ", "))
	_ = cmd.MarkFlagRequired("schema")
	return cmd
}

// importFiles imports each file in turn and stops at the first failure.
// Files already imported stay committed.
func importFiles(ctx context.Context, svc importer, schema string, paths []string, out io.Writer) error {
	var inserted, duplicates int
	for _, path := range paths {
		res, err := importFile(ctx, svc, schema, path)
		if err != nil {
			return fmt.Errorf("%s: %s", path, core.FormatUserError(err))
		}
		inserted += res.Inserted
		duplicates += res.Duplicates
		fmt.Fprintf(out, "%s: %d rows, %d inserted, %d duplicates\n",
			filepath.Base(path), res.Rows, res.Inserted, res.Duplicates)
	}
	if len(paths) > 1 {
		fmt.Fprintf(out, "total: %d inserted, %d duplicates\n", inserted, duplicates)
	}
	return nil
}

func importFile(ctx context.Context, svc importer, schema, path string) (*core.ImportResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return svc.Import(ctx, schema, filepath.Base(path), f)
}

func currentUser() string {
	if u := os.Getenv("USER"); u != "" {
		return "cli:" + u
	}
	return "cli"
}
