package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/user/twinsim/pkg/twin"
)

// DefaultTimeout bounds every request, including reading the body.
const DefaultTimeout = 30 * time.Second

// Client implements twin.Backend over the simulator's JSON HTTP API.
type Client struct {
	config     *twin.Config
	httpClient *http.Client
}

// New creates a Client. BaseURL must include the API prefix, e.g.
// "http://localhost:8000/api".
func New(config *twin.Config) *Client {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// simulationRequest is the body of POST /simulations.
type simulationRequest struct {
	Profile1ID string `json:"profile1_id"`
	Profile2ID string `json:"profile2_id"`
}

// chatStartRequest is the body of POST /chats/start.
type chatStartRequest struct {
	ProfileID string `json:"profile_id"`
	UserName  string `json:"user_name"`
}

// chatMessageRequest is the body of POST /chats/{id}/message.
type chatMessageRequest struct {
	Message string `json:"message"`
	Context string `json:"context"`
}

func (c *Client) ListProfiles(ctx context.Context) ([]twin.Profile, error) {
	var out []twin.Profile
	if err := c.do(ctx, http.MethodGet, "/profiles", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetProfile(ctx context.Context, id string) (*twin.Profile, error) {
	var out twin.Profile
	if err := c.do(ctx, http.MethodGet, "/profiles/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateSimulation(ctx context.Context, profile1ID, profile2ID string) (*twin.SimulationCreated, error) {
	var out twin.SimulationCreated
	body := simulationRequest{Profile1ID: profile1ID, Profile2ID: profile2ID}
	if err := c.do(ctx, http.MethodPost, "/simulations", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListSimulations(ctx context.Context) ([]twin.SimulationSummary, error) {
	var out []twin.SimulationSummary
	if err := c.do(ctx, http.MethodGet, "/simulations", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetSimulation(ctx context.Context, id string) (json.RawMessage, error) {
	var out json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/simulations/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) DeleteSimulation(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/simulations/"+url.PathEscape(id), nil, nil)
}

func (c *Client) StartChat(ctx context.Context, profileID, userName string) (*twin.ChatStarted, error) {
	var out twin.ChatStarted
	body := chatStartRequest{ProfileID: profileID, UserName: userName}
	if err := c.do(ctx, http.MethodPost, "/chats/start", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SendMessage(ctx context.Context, chatID, message, msgContext string) (*twin.ChatReply, error) {
	var out twin.ChatReply
	body := chatMessageRequest{Message: message, Context: msgContext}
	if err := c.do(ctx, http.MethodPost, "/chats/"+url.PathEscape(chatID)+"/message", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ChatHistory(ctx context.Context, chatID string) (*twin.ChatHistory, error) {
	var out twin.ChatHistory
	if err := c.do(ctx, http.MethodGet, "/chats/"+url.PathEscape(chatID)+"/history", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) EndChat(ctx context.Context, chatID string) (*twin.ChatEnded, error) {
	var out twin.ChatEnded
	if err := c.do(ctx, http.MethodDelete, "/chats/"+url.PathEscape(chatID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// do sends one JSON request and decodes the response into out when out is
// non-nil.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var reqBody io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	endpoint := strings.TrimRight(c.config.BaseURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	requestID := uuid.New().String()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.config.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.Token)
	}

	slog.Debug("api request", "method", method, "path", path, "request_id", requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Warn("api request failed", "method", method, "path", path, "request_id", requestID, "error", err)
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		slog.Warn("api error response", "method", method, "path", path, "request_id", requestID, "status", resp.StatusCode)
		return &twin.APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}
	return nil
}
