package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/tournaija/tournaija/internal/security"
)

// BigQueryAudit stores agent audit events in a BigQuery table.
type BigQueryAudit struct {
	client    *bigquery.Client
	projectID string
	location  string
	dataset   string
	table     string
}

// auditRow is the warehouse row for one security.AuditEvent.
type auditRow struct {
	Timestamp   time.Time `bigquery:"timestamp"`
	RequestID   string    `bigquery:"request_id"`
	SessionID   string    `bigquery:"session_id"`
	Flow        string    `bigquery:"flow"`
	PromptHash  string    `bigquery:"prompt_hash"`
	APIKeyHash  string    `bigquery:"api_key_hash"`
	ToolCalls   []string  `bigquery:"tool_calls"`
	ModelCalls  int64     `bigquery:"model_calls"`
	Outcome     string    `bigquery:"outcome"`
	ExecutionMs int64     `bigquery:"execution_ms"`
}

func newAuditRow(evt security.AuditEvent) *auditRow {
	return &auditRow{
		Timestamp:   evt.Timestamp,
		RequestID:   evt.RequestID,
		SessionID:   evt.SessionID,
		Flow:        evt.Flow,
		PromptHash:  evt.PromptHash,
		APIKeyHash:  evt.APIKeyHash,
		ToolCalls:   evt.ToolCalls,
		ModelCalls:  int64(evt.ModelCalls),
		Outcome:     evt.Outcome,
		ExecutionMs: evt.ExecutionMs,
	}
}

// NewBigQueryAudit creates a new BigQuery client for the audit table
func NewBigQueryAudit(ctx context.Context, projectID, credentialsFile, location, dataset, table string) (*BigQueryAudit, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := bigquery.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("bigquery.NewClient: %w", err)
	}
	client.Location = location

	return &BigQueryAudit{
		client:    client,
		projectID: projectID,
		location:  location,
		dataset:   dataset,
		table:     table,
	}, nil
}

// Close releases the BigQuery client
func (s *BigQueryAudit) Close() error {
	return s.client.Close()
}

// TestConnection verifies BigQuery connectivity
func (s *BigQueryAudit) TestConnection(ctx context.Context) error {
	q := s.client.Query("SELECT 1")
	job, err := q.Run(ctx)
	if err != nil {
		return fmt.Errorf("query run: %w", err)
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("job wait: %w", err)
	}
	return status.Err()
}

// EnsureTable creates the audit table, partitioned by day, if it does not exist.
func (s *BigQueryAudit) EnsureTable(ctx context.Context) error {
	sch, err := bigquery.InferSchema(auditRow{})
	if err != nil {
		return fmt.Errorf("infer audit schema: %w", err)
	}
	meta := &bigquery.TableMetadata{
		Schema:           sch,
		TimePartitioning: &bigquery.TimePartitioning{Field: "timestamp"},
		Description:      "TourNaija agent audit events",
	}
	err = s.client.Dataset(s.dataset).Table(s.table).Create(ctx, meta)
	if err != nil && !isAlreadyExists(err) {
		return fmt.Errorf("create table %s.%s: %w", s.dataset, s.table, err)
	}
	return nil
}

// WriteAudit streams one event into the audit table.
func (s *BigQueryAudit) WriteAudit(ctx context.Context, evt security.AuditEvent) error {
	ins := s.client.Dataset(s.dataset).Table(s.table).Inserter()
	if err := ins.Put(ctx, newAuditRow(evt)); err != nil {
		return fmt.Errorf("insert audit row: %w", err)
	}
	return nil
}

// AuditSummary aggregates recent audit events for one flow.
type AuditSummary struct {
	Flow        string  `bigquery:"flow" json:"flow"`
	Requests    int64   `bigquery:"requests" json:"requests"`
	Failures    int64   `bigquery:"failures" json:"failures"`
	AvgLatency  float64 `bigquery:"avg_latency_ms" json:"avgLatencyMs"`
	AvgToolRuns float64 `bigquery:"avg_tool_calls" json:"avgToolCalls"`
}

// SummarizeAudit returns per-flow counts for the last `since` window.
func (s *BigQueryAudit) SummarizeAudit(ctx context.Context, since time.Duration) ([]AuditSummary, error) {
	sql := fmt.Sprintf(
		"SELECT flow, COUNT(*) AS requests, COUNTIF(outcome != 'ok') AS failures, "+
			"AVG(execution_ms) AS avg_latency_ms, AVG(ARRAY_LENGTH(tool_calls)) AS avg_tool_calls "+
			"FROM `%s.%s.%s` WHERE timestamp >= @since GROUP BY flow ORDER BY requests DESC",
		s.projectID, s.dataset, s.table)
	q := s.client.Query(sql)
	q.Parameters = []bigquery.QueryParameter{{Name: "since", Value: time.Now().UTC().Add(-since)}}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("query audit summary: %w", err)
	}
	var out []AuditSummary
	for {
		var row AuditSummary
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		out = append(out, row)
	}
	log.Debug().Int("flows", len(out)).Dur("since", since).Msg("audit summary")
	return out, nil
}

func isAlreadyExists(err error) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == http.StatusConflict
	}
	return strings.Contains(err.Error(), "Already Exists")
}
