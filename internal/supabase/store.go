// Package supabase implements license.Store on top of a Supabase
// (PostgREST) table reached with the project URL and service-role key.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/licensegate/licensegate/internal/license"
	"github.com/licensegate/licensegate/internal/model"
)

// CodeNoRows is the PostgREST error code for a single-object request that
// matched zero rows.
const CodeNoRows = "PGRST116"

// maxErrorBody bounds how much of an error response is read.
const maxErrorBody = 64 << 10

// Config holds the connection settings for a Store.
type Config struct {
	URL            string
	ServiceRoleKey string
	Table          string
	HTTPClient     *http.Client
}

// licenseRow is the projection read and written through PostgREST. Only the
// key column is selected so store-side column types never affect decoding.
type licenseRow struct {
	Email string `json:"email"`
}

// Store is a PostgREST-backed license store.
type Store struct {
	endpoint string
	key      string
	client   *http.Client
}

// APIError is an error body returned by PostgREST.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	if e.Code != "" {
		return fmt.Sprintf("%s (%s)", msg, e.Code)
	}
	return msg
}

// New creates a Store. It returns license.ErrNotConfigured when the URL or
// service-role key is missing.
func New(cfg Config) (*Store, error) {
	if strings.TrimSpace(cfg.URL) == "" || strings.TrimSpace(cfg.ServiceRoleKey) == "" {
		return nil, license.ErrNotConfigured
	}

	base, err := url.Parse(strings.TrimSuffix(cfg.URL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, errors.New("invalid supabase URL")
	}

	table := cfg.Table
	if table == "" {
		table = "licenses"
	}

	client := cfg.HTTPClient
	if client == nil {
		client = NewHTTPClient(DefaultTimeout)
	}

	return &Store{
		endpoint: base.String() + "/rest/v1/" + url.PathEscape(table),
		key:      cfg.ServiceRoleKey,
		client:   client,
	}, nil
}

// Lookup fetches the record for email. It returns license.ErrNotFound when
// PostgREST reports zero rows.
func (s *Store) Lookup(ctx context.Context, email string) (*model.License, error) {
	q := url.Values{}
	q.Set("select", "email")
	q.Set("email", "eq."+email)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, license.NewStoreError("lookup", err)
	}
	s.setHeaders(req)
	req.Header.Set("Accept", singleObjectMediaType)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, license.NewStoreError("lookup", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		apiErr := readAPIError(resp)
		if apiErr.Code == CodeNoRows {
			return nil, license.ErrNotFound
		}
		return nil, license.NewStoreError("lookup", apiErr)
	}

	var row licenseRow
	if err := json.NewDecoder(resp.Body).Decode(&row); err != nil {
		return nil, license.NewStoreError("lookup", fmt.Errorf("decode license: %w", err))
	}
	if row.Email == "" {
		row.Email = email
	}

	return &model.License{Email: row.Email}, nil
}

// Upsert inserts the record for email, merging into an existing row on
// conflict.
func (s *Store) Upsert(ctx context.Context, email string) error {
	body, err := json.Marshal([]licenseRow{{Email: email}})
	if err != nil {
		return license.NewStoreError("upsert", err)
	}

	q := url.Values{}
	q.Set("on_conflict", "email")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint+"?"+q.Encode(), bytes.NewReader(body))
	if err != nil {
		return license.NewStoreError("upsert", err)
	}
	s.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(HeaderPrefer, "resolution=merge-duplicates,return=minimal")

	return s.exec(req, "upsert")
}

// Delete removes the record for email. Deleting a missing email succeeds.
func (s *Store) Delete(ctx context.Context, email string) error {
	q := url.Values{}
	q.Set("email", "eq."+email)

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, s.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return license.NewStoreError("delete", err)
	}
	s.setHeaders(req)
	req.Header.Set(HeaderPrefer, "return=minimal")

	return s.exec(req, "delete")
}

// Ping checks that the table endpoint is reachable with the configured key.
func (s *Store) Ping(ctx context.Context) error {
	q := url.Values{}
	q.Set("select", "email")
	q.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, s.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return err
	}
	s.setHeaders(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		return fmt.Errorf("supabase responded %d", resp.StatusCode)
	}
	return nil
}

func (s *Store) exec(req *http.Request, op string) error {
	resp, err := s.client.Do(req)
	if err != nil {
		return license.NewStoreError(op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return license.NewStoreError(op, readAPIError(resp))
	}
	_, _ = io.Copy(io.Discard, resp.Body)

	return nil
}

func readAPIError(resp *http.Response) *APIError {
	apiErr := &APIError{Status: resp.StatusCode}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(data) == 0 {
		return apiErr
	}

	if err := json.Unmarshal(data, apiErr); err != nil {
		apiErr.Message = strings.TrimSpace(string(data))
	}
	apiErr.Status = resp.StatusCode

	return apiErr
}

// IsNoRows reports whether err is a PostgREST zero-row error.
func IsNoRows(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == CodeNoRows
}
