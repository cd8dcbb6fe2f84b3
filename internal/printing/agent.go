package printing

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
)

// Client is the interface to the local printer agent, the small
// daemon that owns the OS-level printers.  Print sends a raw ESC/POS
// payload to one named device; Printers lists the device names the
// agent discovered.  The coordinator depends on this interface, not
// on the HTTP transport, so tests inject fakes.
type Client interface {
	Print(ctx context.Context, device string, payload []byte) error
	Printers(ctx context.Context) ([]string, error)
}

// AgentClient talks to the printer agent over its local HTTP API.
type AgentClient struct {
	baseURL string
	httpc   *http.Client
}

// NewAgentClient constructs an AgentClient for the agent at baseURL
// (e.g. http://127.0.0.1:9100).  Per-call deadlines come from the
// caller's context, so the embedded client carries no timeout of its
// own.
func NewAgentClient(baseURL string) *AgentClient {
	return &AgentClient{baseURL: baseURL, httpc: &http.Client{}}
}

// Print posts a payload to one device.  The ESC/POS bytes travel
// base64-encoded because control codes do not survive JSON strings.
// A non-2xx response or a transport error both count as a failed
// target; the coordinator aggregates these per target.
func (a *AgentClient) Print(ctx context.Context, device string, payload []byte) error {
	body, err := json.Marshal(map[string]string{
		"printer": device,
		"data":    base64.StdEncoding.EncodeToString(payload),
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/print", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := a.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("printer agent returned status %d for device %s", resp.StatusCode, device)
	}
	return nil
}

// Printers queries the agent for the installed device names.
func (a *AgentClient) Printers(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/printers", nil)
	if err != nil {
		return nil, err
	}
	resp, err := a.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("printer agent returned status %d", resp.StatusCode)
	}
	var out struct {
		Printers []string `json:"printers"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return out.Printers, nil
}
