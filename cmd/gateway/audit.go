package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"alpharesearch/gateway/pkg/audit"
	"alpharesearch/gateway/pkg/audit/storage"
	"alpharesearch/gateway/pkg/cli"
	"alpharesearch/gateway/pkg/config"
)

var auditFlags struct {
	requestID string
	traceID   string
	operation string
	since     string
	until     string
	limit     int
	format    string
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Inspect the audit trail",
	Long: `Query the gateway's audit trail of proxied requests.

Subcommands:
  query  - Query audit records with filters

Examples:
  # Last 100 records
  gateway audit query

  # Find the request behind a backend trace ID
  gateway audit query --trace-id a3b5c7d9

  # All article generations in a time window
  gateway audit query --operation generate_article --since 2026-08-27T00:00:00Z

  # Export to JSON
  gateway audit query --format json`,
}

var auditQueryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query audit records",
	RunE:  queryAudit,
}

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.AddCommand(auditQueryCmd)

	auditQueryCmd.Flags().StringVar(&auditFlags.requestID, "request-id", "", "filter by gateway request ID")
	auditQueryCmd.Flags().StringVar(&auditFlags.traceID, "trace-id", "", "filter by backend trace ID")
	auditQueryCmd.Flags().StringVar(&auditFlags.operation, "operation", "", "filter by operation name")
	auditQueryCmd.Flags().StringVar(&auditFlags.since, "since", "", "records at or after this RFC3339 time")
	auditQueryCmd.Flags().StringVar(&auditFlags.until, "until", "", "records before this RFC3339 time")
	auditQueryCmd.Flags().IntVar(&auditFlags.limit, "limit", 100, "maximum records to return")
	auditQueryCmd.Flags().StringVar(&auditFlags.format, "format", "table", "output format: table, json")
}

// auditResult adapts records for table output.
type auditResult struct {
	Records []*audit.Record `json:"records"`
	Count   int             `json:"count"`
}

func (r *auditResult) TableHeaders() []string {
	return []string{"RECORDED", "OPERATION", "STATUS", "OUTCOME", "LATENCY", "TRACE ID", "ERROR"}
}

func (r *auditResult) TableRows() [][]string {
	rows := make([][]string, 0, len(r.Records))
	for _, record := range r.Records {
		errMsg := record.ErrorMessage
		if len(errMsg) > 60 {
			errMsg = errMsg[:57] + "..."
		}
		rows = append(rows, []string{
			record.RecordedAt.Format(time.RFC3339),
			record.Operation,
			strconv.Itoa(record.Status),
			record.Outcome,
			fmt.Sprintf("%dms", record.LatencyMS),
			record.TraceID,
			errMsg,
		})
	}
	return rows
}

func queryAudit(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return cli.NewConfigError("", err.Error())
	}
	if !cfg.Audit.Enabled {
		return fmt.Errorf("audit trail is disabled in %s", cfgFile)
	}

	sqliteConfig := storage.DefaultSQLiteConfig()
	sqliteConfig.Driver = cfg.Audit.Driver
	sqliteConfig.Path = cfg.Audit.Path

	store, err := storage.NewSQLiteStorage(sqliteConfig)
	if err != nil {
		return cli.NewCommandError("audit query", fmt.Errorf("failed to open audit store: %w", err))
	}
	defer store.Close()

	query := audit.Query{
		RequestID: auditFlags.requestID,
		TraceID:   auditFlags.traceID,
		Operation: auditFlags.operation,
		Limit:     auditFlags.limit,
	}

	if auditFlags.since != "" {
		since, err := time.Parse(time.RFC3339, auditFlags.since)
		if err != nil {
			return fmt.Errorf("invalid --since time: %w", err)
		}
		query.Since = since
	}
	if auditFlags.until != "" {
		until, err := time.Parse(time.RFC3339, auditFlags.until)
		if err != nil {
			return fmt.Errorf("invalid --until time: %w", err)
		}
		query.Until = until
	}

	records, err := store.Find(context.Background(), query)
	if err != nil {
		return cli.NewCommandError("audit query", fmt.Errorf("query failed: %w", err))
	}

	if len(records) == 0 {
		fmt.Println("No audit records found.")
		return nil
	}

	result := &auditResult{Records: records, Count: len(records)}

	var format cli.OutputFormat
	switch auditFlags.format {
	case "json":
		format = cli.FormatJSON
	case "table":
		format = cli.FormatTable
	default:
		return fmt.Errorf("unsupported format: %s", auditFlags.format)
	}

	formatter := cli.NewFormatter(format)
	if format == cli.FormatJSON {
		return formatter.FormatTo(os.Stdout, result)
	}
	if err := formatter.FormatTo(os.Stdout, result); err != nil {
		return err
	}
	fmt.Printf("\nTotal records: %d\n", result.Count)
	return nil
}
