// Package marathon provides a client for the Marathon API behind a DC/OS
// admin router. It covers the small surface the scaler needs: reading an
// application's instance count and task placements, and scaling it.
package marathon

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/mesoscale/mesoscaler/internal/config"
	"github.com/mesoscale/mesoscaler/internal/errors"
)

const (
	// appsPath is the admin-router route to the Marathon apps resource.
	appsPath = "/service/marathon/v2/apps"

	// infoPath is the admin-router route to the Marathon service info.
	infoPath = "/service/marathon/v2/info"

	// maxErrorBody caps how much of an error response body is kept.
	maxErrorBody = 4096
)

// TaskRunning is the Mesos state of a task that is executing.
const TaskRunning = "TASK_RUNNING"

// App is the subset of Marathon application state the scaler reads.
type App struct {
	ID           string `json:"id"`
	Instances    int    `json:"instances"`
	TasksRunning int    `json:"tasksRunning"`
	Tasks        []Task `json:"tasks"`
}

// Task is a single Marathon task placement.
type Task struct {
	ID      string `json:"id"`
	Host    string `json:"host"`
	SlaveID string `json:"slaveId"`
	State   string `json:"state"`
}

// Info describes the Marathon service. Used by connectivity checks.
type Info struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type appResponse struct {
	App App `json:"app"`
}

type scaleRequest struct {
	Instances int `json:"instances"`
}

type deploymentResponse struct {
	DeploymentID string `json:"deploymentId"`
	Version      string `json:"version"`
}

// Client talks to a Marathon endpoint. All methods take a context and
// respect the per-call timeout configured on the underlying HTTP client.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
}

// New creates a Client from Marathon settings. Credentials in the
// configuration select the authentication method; without credentials the
// client talks to Marathon unauthenticated.
func New(cfg *config.MarathonConfig) (*Client, error) {
	httpClient := &http.Client{Timeout: cfg.Timeout()}
	if cfg.InsecureSkipVerify {
		httpClient.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}

	tokens, err := NewTokenSource(cfg, httpClient)
	if err != nil {
		return nil, err
	}

	return &Client{
		baseURL:    strings.TrimSuffix(cfg.URL, "/"),
		httpClient: httpClient,
		tokens:     tokens,
	}, nil
}

// HTTPClient returns the underlying HTTP client so other cluster clients
// can share its timeout and TLS settings.
func (c *Client) HTTPClient() *http.Client {
	return c.httpClient
}

// Tokens returns the token source for sharing with other cluster clients.
// Nil when the cluster is unauthenticated.
func (c *Client) Tokens() TokenSource {
	return c.tokens
}

// App fetches the current state of an application.
func (c *Client) App(ctx context.Context, appID string) (*App, error) {
	resp, err := c.do(ctx, http.MethodGet, appsPath+normalizeAppID(appID), nil, "get_app")
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, errors.NewOrchestratorError("application not found", errors.ErrAppNotFound).
			WithAppID(appID).WithOp("get_app").WithStatusCode(resp.StatusCode)
	default:
		return nil, errors.NewOrchestratorError(readErrorBody(resp.Body), errors.ErrOrchestratorUnavailable).
			WithAppID(appID).WithOp("get_app").WithStatusCode(resp.StatusCode)
	}

	var data appResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, errors.NewOrchestratorError("decode app response",
			fmt.Errorf("%w: %v", errors.ErrOrchestratorUnavailable, err)).
			WithAppID(appID).WithOp("get_app")
	}
	return &data.App, nil
}

// InstanceCount returns the application's current instance count.
// This is the deployed target, not the number of healthy tasks.
func (c *Client) InstanceCount(ctx context.Context, appID string) (int, error) {
	app, err := c.App(ctx, appID)
	if err != nil {
		return 0, err
	}
	return app.Instances, nil
}

// RunningTasks returns the application's running task placements.
// Tasks still staging or already terminal are excluded.
func (c *Client) RunningTasks(ctx context.Context, appID string) ([]Task, error) {
	app, err := c.App(ctx, appID)
	if err != nil {
		return nil, err
	}

	tasks := make([]Task, 0, len(app.Tasks))
	for _, task := range app.Tasks {
		// Older Marathon versions omit the state field; treat missing as running.
		if task.State == "" || task.State == TaskRunning {
			tasks = append(tasks, task)
		}
	}
	return tasks, nil
}

// AppExists reports whether the application is known to Marathon.
func (c *Client) AppExists(ctx context.Context, appID string) (bool, error) {
	_, err := c.App(ctx, appID)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, errors.ErrAppNotFound) {
		return false, nil
	}
	return false, err
}

// Scale sets the application's instance count. Marathon responds with a
// deployment reference; the scaler does not wait for the deployment to
// finish, it observes the result on subsequent cycles.
func (c *Client) Scale(ctx context.Context, appID string, instances int) error {
	body, err := json.Marshal(scaleRequest{Instances: instances})
	if err != nil {
		return errors.NewScaleError("encode scale request", err).WithAppID(appID)
	}

	resp, err := c.do(ctx, http.MethodPut, appsPath+normalizeAppID(appID), body, "scale_app")
	if err != nil {
		return errors.NewScaleError("scale request failed", err).WithAppID(appID)
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
	case http.StatusNotFound:
		return errors.NewScaleError("application not found", errors.ErrAppNotFound).WithAppID(appID)
	case http.StatusConflict:
		// A deployment is already in flight. Marathon refuses overlapping
		// changes without force, and force would cancel the running one.
		return errors.NewScaleError("deployment in progress",
			fmt.Errorf("%w: %s", errors.ErrScaleRequestFailed, readErrorBody(resp.Body))).WithAppID(appID)
	default:
		return errors.NewScaleError(readErrorBody(resp.Body), errors.ErrScaleRequestFailed).WithAppID(appID)
	}

	var deployment deploymentResponse
	_ = json.NewDecoder(resp.Body).Decode(&deployment)
	return nil
}

// Ping verifies that the Marathon endpoint is reachable and responding.
func (c *Client) Ping(ctx context.Context) (*Info, error) {
	resp, err := c.do(ctx, http.MethodGet, infoPath, nil, "info")
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewOrchestratorError(readErrorBody(resp.Body), errors.ErrOrchestratorUnavailable).
			WithOp("info").WithStatusCode(resp.StatusCode)
	}

	var info Info
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, errors.NewOrchestratorError("decode info response",
			fmt.Errorf("%w: %v", errors.ErrOrchestratorUnavailable, err)).WithOp("info")
	}
	return &info, nil
}

// do sends one API request, attaching the ACS token when authentication is
// configured. A 401 response triggers exactly one re-authentication attempt
// with a fresh token; a second 401 is reported as an auth failure.
func (c *Client) do(ctx context.Context, method, path string, body []byte, op string) (*http.Response, error) {
	for attempt := 0; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
		if err != nil {
			return nil, errors.NewOrchestratorError("create request", err).WithOp(op)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")

		if c.tokens != nil {
			token, err := c.tokens.Token(ctx)
			if err != nil {
				return nil, err
			}
			req.Header.Set("Authorization", "token="+token)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, errors.NewOrchestratorError("marathon request failed",
				fmt.Errorf("%w: %v", errors.ErrOrchestratorUnavailable, err)).WithOp(op)
		}

		if resp.StatusCode != http.StatusUnauthorized {
			return resp, nil
		}
		_ = resp.Body.Close()

		if c.tokens == nil || attempt > 0 {
			return nil, errors.NewOrchestratorError("authentication rejected", errors.ErrAuthFailed).
				WithOp(op).WithStatusCode(http.StatusUnauthorized)
		}
		c.tokens.Invalidate()
	}
}

// normalizeAppID ensures the application ID has a leading slash, as the
// Marathon API expects absolute app paths.
func normalizeAppID(appID string) string {
	if strings.HasPrefix(appID, "/") {
		return appID
	}
	return "/" + appID
}

// readErrorBody extracts a bounded, trimmed error message from a response.
func readErrorBody(r io.Reader) string {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil || len(bytes.TrimSpace(body)) == 0 {
		return "unexpected status"
	}
	return string(bytes.TrimSpace(body))
}
