package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"

	"discovery-api/internal/config"
	"discovery-api/internal/repository"

	"github.com/jackc/pgx/v5"
)

// DocumentRow is one document ready for COPY.
type DocumentRow struct {
	ID  string
	Doc []byte
}

func main() {
	file := flag.String("file", "", "Path to the JSON dump to import")
	replace := flag.Bool("replace", false, "Truncate the document tables before importing; without it existing ids fail the import")
	flag.Parse()

	if *file == "" {
		fmt.Println("Error: --file flag is required")
		os.Exit(1)
	}

	fmt.Printf("Starting import from file: %s\n", *file)

	dump, err := repository.LoadDump(*file)
	if err != nil {
		fmt.Printf("Error reading dump: %v\n", err)
		os.Exit(1)
	}

	tables := map[string][]json.RawMessage{
		repository.TableRestaurants: dump.Restaurants,
		repository.TableReviews:     dump.Reviews,
		repository.TableMenuItems:   dump.MenuItems,
	}
	rows := make(map[string][]DocumentRow, len(tables))
	for table, docs := range tables {
		parsed, err := parseDocuments(table, docs)
		if err != nil {
			fmt.Printf("Error parsing %s: %v\n", table, err)
			os.Exit(1)
		}
		rows[table] = parsed
		fmt.Printf("Parsed %d %s\n", len(parsed), table)
	}

	// Load config
	cfg, err := config.LoadConfig("configs")
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	// Connect to DB
	conn, err := pgx.Connect(ctx, cfg.DBSource)
	if err != nil {
		fmt.Printf("Error connecting to database: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close(ctx)

	if err := repository.EnsureSchema(ctx, conn); err != nil {
		fmt.Printf("Error creating tables: %v\n", err)
		os.Exit(1)
	}

	if err := importDocuments(ctx, conn, rows, *replace); err != nil {
		fmt.Printf("Error inserting documents: %v\n", err)
		os.Exit(1)
	}

	if err := verifyImport(ctx, conn, rows, *replace); err != nil {
		fmt.Printf("Error verifying import: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Import finished")
}

// parseDocuments extracts ids and drops duplicates, keeping the last copy.
func parseDocuments(table string, docs []json.RawMessage) ([]DocumentRow, error) {
	index := make(map[string]int, len(docs))
	rows := make([]DocumentRow, 0, len(docs))
	for i, raw := range docs {
		id, err := repository.DocumentID(raw)
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", i, err)
		}
		if at, ok := index[id]; ok {
			fmt.Printf("Warning: duplicate %s id %q, keeping the last one\n", table, id)
			rows[at].Doc = raw
			continue
		}
		index[id] = len(rows)
		rows = append(rows, DocumentRow{ID: id, Doc: raw})
	}
	return rows, nil
}

func importDocuments(ctx context.Context, conn *pgx.Conn, rows map[string][]DocumentRow, replace bool) error {
	tx, err := conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for table, docs := range rows {
		if replace {
			if _, err := tx.Exec(ctx, "TRUNCATE "+pgx.Identifier{table}.Sanitize()); err != nil {
				return fmt.Errorf("failed to truncate %s: %w", table, err)
			}
		}

		// Use CopyFrom for bulk insert
		n, err := tx.CopyFrom(
			ctx,
			pgx.Identifier{table},
			[]string{"id", "doc"},
			pgx.CopyFromSlice(len(docs), func(i int) ([]any, error) {
				return []any{docs[i].ID, docs[i].Doc}, nil
			}),
		)
		if err != nil {
			return fmt.Errorf("failed to copy %s: %w", table, err)
		}
		fmt.Printf("Imported %d %s\n", n, table)
	}

	return tx.Commit(ctx)
}

func verifyImport(ctx context.Context, conn *pgx.Conn, rows map[string][]DocumentRow, replace bool) error {
	for table, docs := range rows {
		var count int
		query := "SELECT COUNT(*) FROM " + pgx.Identifier{table}.Sanitize()
		if err := conn.QueryRow(ctx, query).Scan(&count); err != nil {
			return fmt.Errorf("failed to count %s: %w", table, err)
		}

		if replace && count != len(docs) {
			return fmt.Errorf("%s count mismatch: expected %d, got %d", table, len(docs), count)
		}
		if count < len(docs) {
			return fmt.Errorf("%s count mismatch: expected at least %d, got %d", table, len(docs), count)
		}
	}

	// Check a sample document
	var name string
	err := conn.QueryRow(ctx, "SELECT COALESCE(doc->>'name', '') FROM restaurants LIMIT 1").Scan(&name)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("failed to check sample restaurant: %w", err)
	}

	fmt.Printf("Sample restaurant: %s\n", name)
	return nil
}
