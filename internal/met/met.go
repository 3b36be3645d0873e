/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package met is a small client for the Metropolitan Museum of Art
// collection API.
package met

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "https://collectionapi.metmuseum.org/public/collection/v1"
	DefaultTimeout = 10 * time.Second
)

var ErrNotFound = errors.New("object not found")

// APIError is returned for any non-2xx response.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("API error (%d)", e.StatusCode)
	}
	return fmt.Sprintf("API error (%d): %s", e.StatusCode, e.Message)
}

// Department is a collection category.
type Department struct {
	ID          int    `json:"departmentId"`
	DisplayName string `json:"displayName"`
}

// Object is a single artwork record. BeginDate is nil when the field is
// absent from the response.
type Object struct {
	ID                int    `json:"objectID"`
	Title             string `json:"title"`
	ArtistDisplayName string `json:"artistDisplayName"`
	Department        string `json:"department"`
	ObjectDate        string `json:"objectDate"`
	BeginDate         *int   `json:"objectBeginDate,omitempty"`
	EndDate           *int   `json:"objectEndDate,omitempty"`
	PrimaryImage      string `json:"primaryImage"`
	PrimaryImageSmall string `json:"primaryImageSmall"`
}

// ImageURL returns the small image when there is one, falling back to the
// full-size image. An empty result means the record can't be shown.
func (o Object) ImageURL() string {
	if s := strings.TrimSpace(o.PrimaryImageSmall); s != "" {
		return s
	}
	return strings.TrimSpace(o.PrimaryImage)
}

type SearchParams struct {
	Query        string
	DepartmentID int
	HasImages    bool
}

type Options struct {
	BaseURL    string
	HTTPClient *http.Client
	Timeout    time.Duration
	UserAgent  string
}

type Client struct {
	baseURL   string
	http      *http.Client
	userAgent string
}

func NewClient(opts Options) *Client {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}

	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}

	return &Client{
		baseURL:   base,
		http:      hc,
		userAgent: opts.UserAgent,
	}
}

type departmentsResponse struct {
	Departments []Department `json:"departments"`
}

type searchResponse struct {
	Total     int   `json:"total"`
	ObjectIDs []int `json:"objectIDs"`
}

func (c *Client) Departments(ctx context.Context) ([]Department, error) {
	resp, err := getJSON[departmentsResponse](ctx, c, c.baseURL+"/departments")
	if err != nil {
		return nil, fmt.Errorf("departments: %w", err)
	}
	return resp.Departments, nil
}

func (c *Client) Search(ctx context.Context, p SearchParams) ([]int, error) {
	q := url.Values{}

	query := strings.TrimSpace(p.Query)
	if query == "" {
		query = "*"
	}
	q.Set("q", query)

	if p.DepartmentID > 0 {
		q.Set("departmentId", strconv.Itoa(p.DepartmentID))
	}
	if p.HasImages {
		q.Set("hasImages", "true")
	}

	resp, err := getJSON[searchResponse](ctx, c, c.baseURL+"/search?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	if resp.ObjectIDs == nil {
		return []int{}, nil
	}
	return resp.ObjectIDs, nil
}

func (c *Client) Object(ctx context.Context, id int) (Object, error) {
	resp, err := getJSON[Object](ctx, c, c.baseURL+"/objects/"+strconv.Itoa(id))
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return Object{}, fmt.Errorf("object %d: %w", id, ErrNotFound)
		}
		return Object{}, fmt.Errorf("object %d: %w", id, err)
	}
	return *resp, nil
}

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func getJSON[T any](ctx context.Context, c *Client, rawURL string) (*T, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}

		var eb errorBody
		if json.Unmarshal(body, &eb) == nil {
			apiErr.Message = eb.Message
			if apiErr.Message == "" {
				apiErr.Message = eb.Error
			}
		}
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}

		return nil, apiErr
	}

	var result T
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return &result, nil
}
