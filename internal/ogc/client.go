// Package ogc implements the Process API Gateway: a thin HTTP client for the
// subset of OGC API Processes used by the pattern lifecycle (deploy, execute,
// job status, job/process deletion, discovery).
package ogc

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/ZOO-Project/ogc-app-package-patterns-tester/internal/models"
	"github.com/ZOO-Project/ogc-app-package-patterns-tester/types"
)

// cleanupTimeout bounds the short-lived requests issued during best-effort
// cleanup so a wedged server can't stall teardown.
const cleanupTimeout = 5 * time.Second

// Client talks to one OGC API Processes endpoint.
type Client struct {
	baseURL string
	cfg     types.ServerConfig

	httpClient *http.Client
	// cleanupClient carries a short timeout for list/delete calls made while
	// tearing down, per-request timeout vs. monitoring timeout being distinct
	// concerns.
	cleanupClient *http.Client
}

// NewClient builds a gateway client from a validated server configuration.
func NewClient(cfg types.ServerConfig) *Client {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	return &Client{
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		cfg:           cfg,
		httpClient:    &http.Client{Timeout: timeout},
		cleanupClient: &http.Client{Timeout: cleanupTimeout},
	}
}

// BaseURL returns the server endpoint the client was configured with.
func (c *Client) BaseURL() string { return c.baseURL }

// JobURL returns the browsable status URL for a job, for "check manually"
// messages.
func (c *Client) JobURL(jobID string) string {
	return fmt.Sprintf("%s/jobs/%s", c.baseURL, jobID)
}

// addAuthHeader injects the configured credential as an Authorization header.
func (c *Client) addAuthHeader(req *http.Request) {
	switch {
	case c.cfg.Username != "" && c.cfg.Password != "":
		credentials := base64.StdEncoding.EncodeToString([]byte(c.cfg.Username + ":" + c.cfg.Password))
		req.Header.Set("Authorization", "Basic "+credentials)
	case c.cfg.AuthToken != "":
		req.Header.Set("Authorization", "Bearer "+c.cfg.AuthToken)
	case c.cfg.APIKey != "":
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	c.addAuthHeader(req)
	return req, nil
}

// statusInfo is the wire shape of a job status document.
type statusInfo struct {
	JobID     string         `json:"jobID"`
	ProcessID string         `json:"processID"`
	Status    string         `json:"status"`
	Progress  *int           `json:"progress"`
	Message   string         `json:"message"`
	Outputs   map[string]any `json:"outputs"`
}

// DeployProcess deploys a CWL workflow file as a process. A 409 from the
// server means the process already exists and is treated as success, the same
// way a re-deploy race is.
func (c *Client) DeployProcess(ctx context.Context, processID, cwlPath string) (*models.ProcessInfo, error) {
	raw, err := os.ReadFile(cwlPath)
	if err != nil {
		return nil, fmt.Errorf("CWL file not found: %w", err)
	}

	// Pull the workflow label out for a display title; the body is sent
	// verbatim as CWL YAML.
	var cwlDoc map[string]any
	title := processID
	if err := yaml.Unmarshal(raw, &cwlDoc); err == nil {
		if label, ok := cwlDoc["label"].(string); ok && label != "" {
			title = label
		}
	}

	log.Info().Str("process_id", processID).Str("server", c.baseURL).Msg("Deploying process")

	req, err := c.newRequest(ctx, http.MethodPost, "/processes", bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/cwl+yaml")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		log.Info().Str("process_id", processID).Msg("✓ Process deployed")
	case http.StatusConflict:
		log.Info().Str("process_id", processID).Msg("✓ Process already exists on server")
	default:
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("deploy of %q failed: HTTP %d: %s", processID, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return &models.ProcessInfo{
		ProcessID:  processID,
		Title:      title,
		Deployed:   true,
		DeployTime: time.Now(),
	}, nil
}

// ExecuteProcess starts an asynchronous execution of a deployed process and
// returns the created job. The job id comes from the Location header, with
// the response body as fallback.
func (c *Client) ExecuteProcess(ctx context.Context, processID string, parameters map[string]any) (*models.JobInfo, error) {
	executeBody := map[string]any{
		"inputs":   parameters,
		"response": "document",
	}
	payload, err := json.Marshal(executeBody)
	if err != nil {
		return nil, err
	}

	log.Info().Str("process_id", processID).Msg("Executing process")

	req, err := c.newRequest(ctx, http.MethodPost, fmt.Sprintf("/processes/%s/execution", processID), bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "respond-async")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("execute of %q failed: HTTP %d: %s", processID, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	jobID := ""
	if location := resp.Header.Get("Location"); location != "" {
		parts := strings.Split(strings.TrimRight(location, "/"), "/")
		jobID = parts[len(parts)-1]
	}

	if jobID == "" {
		var info statusInfo
		if err := json.NewDecoder(resp.Body).Decode(&info); err == nil {
			jobID = info.JobID
		}
	}

	if jobID == "" {
		return nil, fmt.Errorf("no job id in response for process %q", processID)
	}

	log.Info().Str("job_id", jobID).Str("process_id", processID).Msg("✓ Job started")

	return &models.JobInfo{
		JobID:     jobID,
		ProcessID: processID,
		Status:    models.StatusRunning,
	}, nil
}

// GetJobStatus fetches the current status document for a job. Unrecognized
// status strings come back as StatusUnknown, which is never terminal.
func (c *Client) GetJobStatus(ctx context.Context, jobID string) (*models.JobInfo, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/jobs/"+jobID, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status check for job %q failed: HTTP %d", jobID, resp.StatusCode)
	}

	var info statusInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode status for job %q: %w", jobID, err)
	}

	return &models.JobInfo{
		JobID:     jobID,
		ProcessID: info.ProcessID,
		Status:    models.ParseJobStatus(info.Status),
		Progress:  info.Progress,
		Message:   info.Message,
		Outputs:   info.Outputs,
	}, nil
}

// ListJobs returns the ids of jobs scoped to a process. Uses the short
// cleanup timeout: this is only called on teardown paths.
func (c *Client) ListJobs(ctx context.Context, processID string) ([]string, error) {
	path := "/jobs"
	if processID != "" {
		path += "?processID=" + processID
	}

	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.cleanupClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list jobs failed: HTTP %d", resp.StatusCode)
	}

	var jobList struct {
		Jobs []struct {
			JobID string `json:"jobID"`
		} `json:"jobs"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&jobList); err != nil {
		return nil, fmt.Errorf("failed to decode job list: %w", err)
	}

	ids := make([]string, 0, len(jobList.Jobs))
	for _, j := range jobList.Jobs {
		if j.JobID != "" {
			ids = append(ids, j.JobID)
		}
	}

	log.Debug().Int("count", len(ids)).Str("process_id", processID).Msg("Listed jobs")
	return ids, nil
}

// DeleteJob dismisses a job. It always reports continue: an individual job
// deletion failure is logged but must never block the rest of cleanup.
func (c *Client) DeleteJob(ctx context.Context, jobID string) bool {
	log.Info().Str("job_id", jobID).Msg("Deleting job")

	req, err := c.newRequest(ctx, http.MethodDelete, "/jobs/"+jobID, nil)
	if err != nil {
		log.Warn().Err(err).Str("job_id", jobID).Msg("Failed to build job delete request")
		return true
	}

	resp, err := c.cleanupClient.Do(req)
	if err != nil {
		log.Warn().Err(err).Str("job_id", jobID).Msg("Failed to delete job")
		return true
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusNoContent {
		log.Info().Str("job_id", jobID).Msg("✓ Job deleted")
	} else {
		log.Warn().Int("status", resp.StatusCode).Str("job_id", jobID).Msg("Failed to delete job")
	}
	return true
}

// DeleteProcess removes a deployed process from the server.
func (c *Client) DeleteProcess(ctx context.Context, processID string) (bool, error) {
	log.Info().Str("process_id", processID).Msg("Deleting process")

	req, err := c.newRequest(ctx, http.MethodDelete, "/processes/"+processID, nil)
	if err != nil {
		return false, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusNoContent {
		log.Info().Str("process_id", processID).Msg("✓ Process deleted")
		return true, nil
	}

	body, _ := io.ReadAll(resp.Body)
	return false, fmt.Errorf("delete of process %q failed: HTTP %d: %s", processID, resp.StatusCode, strings.TrimSpace(string(body)))
}

// ProcessSummary is one entry of the server's process list.
type ProcessSummary struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Version     string `json:"version"`
}

// ListProcesses returns all processes available on the server.
func (c *Client) ListProcesses(ctx context.Context) ([]ProcessSummary, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/processes", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list processes failed: HTTP %d", resp.StatusCode)
	}

	var processList struct {
		Processes []ProcessSummary `json:"processes"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&processList); err != nil {
		return nil, fmt.Errorf("failed to decode process list: %w", err)
	}

	return processList.Processes, nil
}

// ProcessDescription is the detailed document for a single process.
type ProcessDescription struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Version     string         `json:"version"`
	Inputs      map[string]any `json:"inputs"`
	Outputs     map[string]any `json:"outputs"`
}

// DescribeProcess fetches the full description of a deployed process.
func (c *Client) DescribeProcess(ctx context.Context, processID string) (*ProcessDescription, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/processes/"+processID, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("describe of %q failed: HTTP %d", processID, resp.StatusCode)
	}

	var desc ProcessDescription
	if err := json.NewDecoder(resp.Body).Decode(&desc); err != nil {
		return nil, fmt.Errorf("failed to decode process description: %w", err)
	}
	return &desc, nil
}
