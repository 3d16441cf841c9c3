// Package remotestore is the HTTP client for the remote SQL-over-REST
// endpoint: a Cloudflare D1-style query API that accepts one {sql, params}
// envelope — where sql may carry many semicolon-joined statements — and
// returns a JSON result per statement.
package remotestore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/bevalc-intelligence/cola-engine/internal/platform/config"
	coreerror "github.com/bevalc-intelligence/cola-engine/foundation/core/error"
)

// Client issues batched SQL statements against the remote database over
// HTTP, retrying transient failures with exponential backoff.
type Client struct {
	creds      config.RemoteCredentials
	httpClient *http.Client
	maxRetries uint64
}

// New builds a Client from already-loaded credentials.
func New(creds config.RemoteCredentials) *Client {
	return &Client{
		creds:      creds,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		maxRetries: 3,
	}
}

// Statement is one parameterized SQL statement in a batch request.
type Statement struct {
	SQL    string        `json:"sql"`
	Params []interface{} `json:"params,omitempty"`
}

type queryRequest struct {
	SQL    string        `json:"sql"`
	Params []interface{} `json:"params,omitempty"`
}

// Result is the decoded outcome of one statement.
type Result struct {
	Success bool                     `json:"success"`
	Results []map[string]interface{} `json:"results"`
	Meta    ResultMeta               `json:"meta"`
	Errors  []string                 `json:"errors,omitempty"`
}

// ResultMeta carries row-count bookkeeping the D1-style envelope reports.
type ResultMeta struct {
	RowsRead    int `json:"rows_read"`
	RowsWritten int `json:"rows_written"`
}

type envelope struct {
	Success bool     `json:"success"`
	Result  []Result `json:"result"`
	Errors  []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// Exec runs a single statement and returns its result.
func (c *Client) Exec(ctx context.Context, sql string, params ...interface{}) (Result, error) {
	results, err := c.ExecBatch(ctx, []Statement{{SQL: sql, Params: params}})
	if err != nil {
		return Result{}, err
	}
	if len(results) == 0 {
		return Result{}, coreerror.New("remote database returned no results for statement").
			WithCode(coreerror.CodeExternalServiceError).WithOperation("remotestore.Exec")
	}
	return results[0], nil
}

// ExecBatch sends one or more statements in a single HTTP round trip,
// retrying the whole batch on transient network or 5xx failures.
func (c *Client) ExecBatch(ctx context.Context, statements []Statement) ([]Result, error) {
	req0, err := joinStatements(statements)
	if err != nil {
		return nil, err
	}

	var out []Result

	operation := func() error {
		results, err := c.doBatch(ctx, req0)
		if err != nil {
			if isPermanent(err) {
				return backoff.Permanent(err)
			}
			return err
		}
		out = results
		return nil
	}

	policy := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.maxRetries)
	policy = backoff.WithContext(policy, ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, coreerror.Wrap(err, "remote batch request failed after retries").
			WithCode(coreerror.CodeExternalServiceError).
			WithOperation("remotestore.ExecBatch").
			WithDetail("statement_count", len(statements))
	}
	return out, nil
}

// joinStatements folds a batch into the endpoint's single request envelope.
// Parameter binding is per-request, so it is only available when the batch
// holds exactly one statement; multi-statement batches must carry their
// values inline (see Literal).
func joinStatements(statements []Statement) (queryRequest, error) {
	if len(statements) == 1 {
		return queryRequest{SQL: statements[0].SQL, Params: statements[0].Params}, nil
	}

	parts := make([]string, len(statements))
	for i, s := range statements {
		if len(s.Params) > 0 {
			return queryRequest{}, coreerror.New("parameter binding is only available for single-statement requests").
				WithCode(coreerror.CodeInvalidInput).WithOperation("remotestore.joinStatements")
		}
		parts[i] = s.SQL
	}
	return queryRequest{SQL: strings.Join(parts, ";\n")}, nil
}

func (c *Client) doBatch(ctx context.Context, req0 queryRequest) ([]Result, error) {
	body, err := json.Marshal(req0)
	if err != nil {
		return nil, coreerror.Wrap(err, "failed to encode batch request").
			WithCode(coreerror.CodeInvalidInput).WithOperation("remotestore.doBatch")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.creds.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, coreerror.Wrap(err, "failed to build batch request").
			WithCode(coreerror.CodeInvalidInput).WithOperation("remotestore.doBatch")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.creds.APIToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, coreerror.Wrap(err, "batch request transport error").
			WithCode(coreerror.CodeNetworkError).WithOperation("remotestore.doBatch")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, coreerror.Wrap(err, "failed to read batch response").
			WithCode(coreerror.CodeNetworkError).WithOperation("remotestore.doBatch")
	}

	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("remote database returned %d: %s", resp.StatusCode, string(respBody))
	}
	if resp.StatusCode >= 400 {
		return nil, permanentError{fmt.Errorf("remote database rejected batch with %d: %s", resp.StatusCode, string(respBody))}
	}

	var env envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		return nil, coreerror.Wrap(err, "failed to decode batch response").
			WithCode(coreerror.CodeExternalServiceError).WithOperation("remotestore.doBatch")
	}
	if !env.Success {
		msg := "remote database reported failure"
		if len(env.Errors) > 0 {
			msg = env.Errors[0].Message
		}
		return nil, permanentError{fmt.Errorf("%s", msg)}
	}
	return env.Result, nil
}

// permanentError marks a failure that retrying will not fix (4xx, explicit
// success=false envelope).
type permanentError struct{ err error }

func (p permanentError) Error() string { return p.err.Error() }
func (p permanentError) Unwrap() error { return p.err }

func isPermanent(err error) bool {
	_, ok := err.(permanentError)
	return ok
}
