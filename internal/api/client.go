package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/banshee-data/scatter.report/internal/httputil"
	"github.com/banshee-data/scatter.report/internal/store"
	"github.com/banshee-data/scatter.report/internal/sweep"
)

// Client is a typed HTTP client for the scatter API. The CLI's remote mode
// uses it to drive a running daemon instead of clustering in-process.
type Client struct {
	BaseURL string
	http    httputil.HTTPClient
}

// NewClient creates a client for the API at baseURL. Passing a nil
// HTTPClient selects the standard library client; tests pass a
// httputil.MockHTTPClient.
func NewClient(baseURL string, hc httputil.HTTPClient) *Client {
	if hc == nil {
		hc = httputil.NewStandardClient(nil)
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		http:    hc,
	}
}

// decodeError turns a non-2xx response into an error carrying the server's
// JSON error message when one is present.
func decodeError(resp *http.Response) error {
	defer resp.Body.Close()
	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Error != "" {
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, body.Error)
	}
	return fmt.Errorf("server returned %d", resp.StatusCode)
}

func (c *Client) getJSON(path string, out interface{}) error {
	resp, err := c.http.Get(c.BaseURL + path)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	defer resp.Body.Close()
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) postJSON(path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	resp, err := c.http.Post(c.BaseURL+path, "application/json", body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	defer resp.Body.Close()
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Cluster runs the engine on the server and returns the full response.
func (c *Client) Cluster(req ClusterRequest) (*ClusterResponse, error) {
	var resp ClusterResponse
	if err := c.postJSON("/api/cluster", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Runs lists recent run headers, newest first. A non-positive limit uses the
// server default.
func (c *Client) Runs(limit int) ([]store.Run, error) {
	path := "/api/runs"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var resp RunListResponse
	if err := c.getJSON(path, &resp); err != nil {
		return nil, err
	}
	return resp.Runs, nil
}

// Run fetches one stored run with its result and metrics.
func (c *Client) Run(id string) (*store.StoredRun, error) {
	var stored store.StoredRun
	if err := c.getJSON("/api/runs/get?id="+url.QueryEscape(id), &stored); err != nil {
		return nil, err
	}
	return &stored, nil
}

// DeleteRun removes a stored run.
func (c *Client) DeleteRun(id string) error {
	return c.postJSON("/api/runs/delete?id="+url.QueryEscape(id), nil, nil)
}

// Sweep evaluates a parameter grid synchronously on the server.
func (c *Client) Sweep(req SweepStartRequest) (*SweepResponse, error) {
	var resp SweepResponse
	if err := c.postJSON("/api/sweep", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// StartSweep launches a background sweep on the server.
func (c *Client) StartSweep(req SweepStartRequest) error {
	return c.postJSON("/api/sweep/start", req, nil)
}

// SweepStatus reports the server's current sweep state.
func (c *Client) SweepStatus() (*sweep.SweepState, error) {
	var state sweep.SweepState
	if err := c.getJSON("/api/sweep/status", &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// StopSweep cancels the server's running sweep.
func (c *Client) StopSweep() error {
	return c.postJSON("/api/sweep/stop", nil, nil)
}

// Health fetches the server's status and version stamp.
func (c *Client) Health() (map[string]string, error) {
	var health map[string]string
	if err := c.getJSON("/api/health", &health); err != nil {
		return nil, err
	}
	return health, nil
}
