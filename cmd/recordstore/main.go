/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Command recordstore is a thin operational CLI over the record store:
// ingest interchange documents, look records up, run data queries, link and
// delete. Not a client library; use the recordstore package for that.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/suparena/recordstore"
	"github.com/suparena/recordstore/config"
	"github.com/suparena/recordstore/datastore"
	"github.com/suparena/recordstore/datastore/ddb"
	"github.com/suparena/recordstore/records"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:           "recordstore",
		Short:         "Store and query record documents and relationships",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "recordstore.yaml", "path to YAML config")

	root.AddCommand(
		newIngestCmd(),
		newGetCmd(),
		newQueryCmd(),
		newDeleteCmd(),
		newLinkCmd(),
		newVersionCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func openStore(ctx context.Context) (*recordstore.Store, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	backend, err := ddb.New(ctx, ddb.Config{
		Table:    cfg.Table,
		Region:   cfg.Region,
		Endpoint: cfg.Endpoint,
		EnvFile:  cfg.EnvFile,
	})
	if err != nil {
		return nil, err
	}
	return recordstore.New(backend), nil
}

func newIngestCmd() *cobra.Command {
	var overwrite bool
	cmd := &cobra.Command{
		Use:   "ingest <document.json>",
		Short: "Ingest a records+relationships document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			doc, err := records.ParseDocument(data)
			if err != nil {
				return fmt.Errorf("failed to parse document: %w", err)
			}
			for _, rec := range doc.Records {
				if rec.ID == "" {
					rec.ID = uuid.NewString()
				}
			}

			store, err := openStore(ctx)
			if err != nil {
				return err
			}
			if err := store.PutRecords(ctx, doc.Records, overwrite); err != nil {
				return err
			}
			for _, rel := range doc.Relationships {
				if err := store.Link(ctx, rel.Subject, rel.Predicate, rel.Object); err != nil {
					return err
				}
			}
			fmt.Printf("Ingested %d records and %d relationships at %s\n",
				len(doc.Records), len(doc.Relationships), strfmt.DateTime(time.Now().UTC()))
			return nil
		},
	}
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "replace records that already exist")
	return cmd
}

func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <record-id>",
		Short: "Print a record's full document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := openStore(ctx)
			if err != nil {
				return err
			}
			rec, err := store.GetRecord(ctx, args[0])
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(rec, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}
}

func newQueryCmd() *cobra.Command {
	var (
		recordType string
		strEqs     []string
		scalarEqs  []string
		ranges     []string
		uriPattern string
	)
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Find record ids by type, data criteria, or file uri",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := openStore(ctx)
			if err != nil {
				return err
			}

			var ids []string
			switch {
			case recordType != "":
				ids, err = store.RecordIDsOfType(ctx, recordType)
			case uriPattern != "":
				ids, err = store.RecordIDsWithFileURI(ctx, uriPattern)
			default:
				criteria, cerr := buildCriteria(strEqs, scalarEqs, ranges)
				if cerr != nil {
					return cerr
				}
				ids, err = store.DataQuery(ctx, criteria...)
			}
			if err != nil {
				return err
			}
			for _, id := range ids {
				fmt.Println(id)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&recordType, "type", "", "list all records of this type")
	cmd.Flags().StringArrayVar(&strEqs, "string", nil, "string equality criterion, name=value")
	cmd.Flags().StringArrayVar(&scalarEqs, "scalar", nil, "scalar equality criterion, name=value")
	cmd.Flags().StringArrayVar(&ranges, "range", nil, "inclusive scalar range criterion, name=min:max")
	cmd.Flags().StringVar(&uriPattern, "uri", "", "file uri pattern, % is a wildcard")
	return cmd
}

func buildCriteria(strEqs, scalarEqs, ranges []string) ([]datastore.Criterion, error) {
	var criteria []datastore.Criterion
	for _, kv := range strEqs {
		name, value, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --string criterion %q, want name=value", kv)
		}
		criteria = append(criteria, datastore.StringEquals(name, value))
	}
	for _, kv := range scalarEqs {
		name, raw, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --scalar criterion %q, want name=value", kv)
		}
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid --scalar value %q: %w", raw, err)
		}
		criteria = append(criteria, datastore.ScalarEquals(name, value))
	}
	for _, kv := range ranges {
		name, raw, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --range criterion %q, want name=min:max", kv)
		}
		lo, hi, ok := strings.Cut(raw, ":")
		if !ok {
			return nil, fmt.Errorf("invalid --range bounds %q, want min:max", raw)
		}
		min, err := strconv.ParseFloat(lo, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid --range min %q: %w", lo, err)
		}
		max, err := strconv.ParseFloat(hi, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid --range max %q: %w", hi, err)
		}
		criteria = append(criteria, datastore.ScalarBetween(name, min, max))
	}
	if len(criteria) == 0 {
		return nil, fmt.Errorf("no criteria given; use --type, --uri, --string, --scalar, or --range")
	}
	return criteria, nil
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <record-id>...",
		Short: "Delete records and all their projections atomically",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := openStore(ctx)
			if err != nil {
				return err
			}
			if err := store.DeleteRecords(ctx, args...); err != nil {
				return err
			}
			fmt.Printf("Deleted %d records\n", len(args))
			return nil
		},
	}
}

func newLinkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "link <subject> <predicate> <object>",
		Short: "Insert a relationship triple",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := openStore(ctx)
			if err != nil {
				return err
			}
			return store.Link(ctx, args[0], args[1], args[2])
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			info := recordstore.GetVersionInfo()
			fmt.Printf("RecordStore version %s\n", info.Version)
			fmt.Printf("Git commit: %s\n", info.GitCommit)
			fmt.Printf("Build date: %s\n", info.BuildDate)
			fmt.Printf("Go version: %s\n", info.GoVersion)
		},
	}
}
