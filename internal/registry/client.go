package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// defaultButtonID is assigned when a registration omits the button number.
const defaultButtonID = "1"

// Client handles device registry API communication. It holds no cache: every
// read hits the server, and callers are expected to refetch after mutations.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a new device registry client for the given quiz server
// base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SetToken sets the admin bearer token sent with every request.
func (c *Client) SetToken(token string) {
	c.token = token
}

// do executes a single request and returns the response body. Non-2xx
// responses become a RemoteError carrying the raw body text; transport
// failures become a NetworkError. A 204 returns an empty body.
func (c *Client) do(ctx context.Context, method, path string, payload interface{}) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Op: method + " " + path, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Op: method + " " + path, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &RemoteError{Status: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}

	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}
	return data, nil
}

// Register registers a new hardware device, or returns the existing record if
// the MAC is already known. The MAC address is required; buttonID defaults to
// "1".
func (c *Client) Register(ctx context.Context, macAddress, buttonID, name string) (*Device, error) {
	macAddress = strings.TrimSpace(macAddress)
	if macAddress == "" {
		return nil, &ValidationError{Field: "MAC address", Reason: "is required"}
	}
	if buttonID == "" {
		buttonID = defaultButtonID
	}

	payload := map[string]string{
		"macAddress": CanonicalMAC(macAddress),
		"buttonId":   buttonID,
		"name":       name,
	}

	data, err := c.do(ctx, http.MethodPost, "/quiz/api/button/register", payload)
	if err != nil {
		return nil, err
	}

	var device Device
	if err := json.Unmarshal(data, &device); err != nil {
		return nil, fmt.Errorf("failed to unmarshal device: %w", err)
	}
	return &device, nil
}

// Assign binds a device to a team in a room. The server owns the invariant
// that roomCode and teamId are set together; assigning an already-bound
// device replaces the prior binding.
func (c *Client) Assign(ctx context.Context, macAddress, roomCode, teamID string) (*Device, error) {
	macAddress = strings.TrimSpace(macAddress)
	if macAddress == "" {
		return nil, &ValidationError{Field: "MAC address", Reason: "is required"}
	}
	if roomCode == "" {
		return nil, &ValidationError{Field: "room code", Reason: "is required"}
	}
	if teamID == "" {
		return nil, &ValidationError{Field: "team ID", Reason: "is required"}
	}

	payload := map[string]string{
		"macAddress": CanonicalMAC(macAddress),
		"roomCode":   roomCode,
		"teamId":     teamID,
	}

	data, err := c.do(ctx, http.MethodPost, "/quiz/api/button/assign", payload)
	if err != nil {
		return nil, err
	}

	var device Device
	if err := json.Unmarshal(data, &device); err != nil {
		return nil, fmt.Errorf("failed to unmarshal device: %w", err)
	}
	return &device, nil
}

// Unassign removes a device's team binding. Unassigning a device that is not
// bound is not an error.
func (c *Client) Unassign(ctx context.Context, macAddress string) error {
	macAddress = strings.TrimSpace(macAddress)
	if macAddress == "" {
		return &ValidationError{Field: "MAC address", Reason: "is required"}
	}

	payload := map[string]string{"macAddress": CanonicalMAC(macAddress)}
	_, err := c.do(ctx, http.MethodPost, "/quiz/api/button/unassign", payload)
	return err
}

// Delete removes a device from the registry. Bound devices may be deleted
// without unassigning first.
func (c *Client) Delete(ctx context.Context, macAddress string) error {
	macAddress = strings.TrimSpace(macAddress)
	if macAddress == "" {
		return &ValidationError{Field: "MAC address", Reason: "is required"}
	}

	path := "/quiz/api/button/" + url.PathEscape(CanonicalMAC(macAddress))
	_, err := c.do(ctx, http.MethodDelete, path, nil)
	return err
}

// Get retrieves a single device by MAC address.
func (c *Client) Get(ctx context.Context, macAddress string) (*Device, error) {
	macAddress = strings.TrimSpace(macAddress)
	if macAddress == "" {
		return nil, &ValidationError{Field: "MAC address", Reason: "is required"}
	}

	path := "/quiz/api/button/" + url.PathEscape(CanonicalMAC(macAddress))
	data, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var device Device
	if err := json.Unmarshal(data, &device); err != nil {
		return nil, fmt.Errorf("failed to unmarshal device: %w", err)
	}
	return &device, nil
}

// List retrieves the full device inventory. The response shape is normalized
// before use, see NormalizeDevices.
func (c *Client) List(ctx context.Context) ([]Device, error) {
	data, err := c.do(ctx, http.MethodGet, "/quiz/api/button/list", nil)
	if err != nil {
		return nil, err
	}
	return NormalizeDevices(data), nil
}

// ListByRoom retrieves the devices currently assigned into a room.
func (c *Client) ListByRoom(ctx context.Context, roomCode string) ([]Device, error) {
	if roomCode == "" {
		return nil, &ValidationError{Field: "room code", Reason: "is required"}
	}

	data, err := c.do(ctx, http.MethodGet, "/quiz/api/button/room/"+url.PathEscape(roomCode), nil)
	if err != nil {
		return nil, err
	}
	return NormalizeDevices(data), nil
}

// Press reports a button press on behalf of a device. Used by operators to
// test a binding end to end; real devices hit the same endpoint themselves.
func (c *Client) Press(ctx context.Context, macAddress, buttonID string) (*PressResult, error) {
	macAddress = strings.TrimSpace(macAddress)
	if macAddress == "" {
		return nil, &ValidationError{Field: "MAC address", Reason: "is required"}
	}

	payload := map[string]string{"macAddress": CanonicalMAC(macAddress)}
	if buttonID != "" {
		payload["buttonId"] = buttonID
	}

	data, err := c.do(ctx, http.MethodPost, "/quiz/api/button/press", payload)
	if err != nil {
		return nil, err
	}

	var result PressResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal press result: %w", err)
	}
	return &result, nil
}
