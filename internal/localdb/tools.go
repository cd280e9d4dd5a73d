package localdb

import (
	"context"

	"github.com/bobmcallan/hubgate/internal/tools"
)

// Tools returns the local-database tool catalog backed by this store.
func Tools(s *Store) []*tools.Descriptor {
	return []*tools.Descriptor{
		{
			Name:        "list_tables",
			Description: "List user tables in schema catalog order.",
			Params:      []tools.Param{},
			Handler: func(ctx context.Context, args map[string]any) (any, error) {
				return s.ListTables(ctx)
			},
		},
		{
			Name:        "describe_table",
			Description: "Describe a table's columns: name, type, nullability, default, primary key.",
			Params: []tools.Param{
				{Name: "name", Type: tools.TypeString, Description: "Table name", Required: true},
			},
			Handler: func(ctx context.Context, args map[string]any) (any, error) {
				name, _ := args["name"].(string)
				return s.DescribeTable(ctx, name)
			},
		},
		{
			Name:        "run_query",
			Description: "Run a read-only SELECT statement and return columns, rows, and row count. Write statements are rejected.",
			Params: []tools.Param{
				{Name: "sql", Type: tools.TypeString, Description: "SELECT statement to execute", Required: true},
			},
			Handler: func(ctx context.Context, args map[string]any) (any, error) {
				query, _ := args["sql"].(string)
				return s.RunQuery(ctx, query)
			},
		},
		{
			Name:        "database_info",
			Description: "Report the database file path, size, table count, and engine version.",
			Params:      []tools.Param{},
			Handler: func(ctx context.Context, args map[string]any) (any, error) {
				return s.DatabaseInfo(ctx)
			},
		},
	}
}
