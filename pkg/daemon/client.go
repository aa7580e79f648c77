package daemon

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/websocket"
	"github.com/grovetools/leader/errors"
	"github.com/grovetools/leader/pkg/leader"
	"github.com/grovetools/leader/pkg/paths"
)

// baseURL is the dummy host used for unix socket requests.
const baseURL = "http://unix"

// Client calls the daemon API over its unix socket.
type Client struct {
	httpClient *http.Client
	socketPath string
}

// NewClient returns a Client for socketPath, or for the default socket when
// socketPath is empty. It does not connect.
func NewClient(socketPath string) *Client {
	if socketPath == "" {
		socketPath = paths.SocketPath()
	}
	transport := &http.Transport{
		DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
			var d net.Dialer
			return d.DialContext(ctx, "unix", socketPath)
		},
		MaxIdleConns:    10,
		IdleConnTimeout: 90 * time.Second,
	}
	return &Client{
		httpClient: &http.Client{Transport: transport, Timeout: 10 * time.Second},
		socketPath: socketPath,
	}
}

// Connect returns a Client after checking the daemon answers. It fails with
// DAEMON_NOT_RUNNING otherwise.
func Connect(socketPath string) (*Client, error) {
	c := NewClient(socketPath)
	if _, err := os.Stat(c.socketPath); err != nil {
		return nil, errors.DaemonNotRunning(c.socketPath)
	}
	if !c.IsRunning() {
		return nil, errors.DaemonNotRunning(c.socketPath)
	}
	return c, nil
}

// SocketPath returns the socket the client dials.
func (c *Client) SocketPath() string {
	return c.socketPath
}

// IsRunning reports whether the daemon answers its health check.
func (c *Client) IsRunning() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+RouteHealth, nil)
	if err != nil {
		return false
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// Status returns the daemon status.
func (c *Client) Status(ctx context.Context) (*Status, error) {
	var s Status
	if err := c.do(ctx, http.MethodGet, RouteStatus, nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Table returns the table the next activation will use.
func (c *Client) Table(ctx context.Context) (*Table, error) {
	var t Table
	if err := c.do(ctx, http.MethodGet, RouteTable, nil, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// Activate presses the leader key.
func (c *Client) Activate(ctx context.Context) (leader.State, error) {
	var s leader.State
	err := c.do(ctx, http.MethodPost, RouteActivate, nil, &s)
	return s, err
}

// Key types one character into the active session.
func (c *Client) Key(ctx context.Context, key string) (leader.State, error) {
	var s leader.State
	err := c.do(ctx, http.MethodPost, RouteKey, KeyRequest{Key: key}, &s)
	return s, err
}

// End ends the active session.
func (c *Client) End(ctx context.Context) (leader.State, error) {
	var s leader.State
	err := c.do(ctx, http.MethodPost, RouteEnd, nil, &s)
	return s, err
}

// Reload asks the daemon to re-read its config file.
func (c *Client) Reload(ctx context.Context) (*ReloadResult, error) {
	var r ReloadResult
	if err := c.do(ctx, http.MethodPost, RouteReload, nil, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// Events streams machine events until ctx is cancelled or the daemon goes
// away. The channel is closed when the stream ends.
func (c *Client) Events(ctx context.Context) (<-chan leader.Event, error) {
	dialer := websocket.Dialer{
		NetDialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
			var d net.Dialer
			return d.DialContext(ctx, "unix", c.socketPath)
		},
		HandshakeTimeout: 5 * time.Second,
	}
	conn, resp, err := dialer.DialContext(ctx, "ws://unix"+RouteEvents, nil)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		return nil, fmt.Errorf("failed to connect to event stream: %w", err)
	}

	ch := make(chan leader.Event, 16)
	go func() {
		<-ctx.Done()
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
		conn.Close()
	}()
	go func() {
		defer close(ch)
		for {
			var ev leader.Event
			if err := conn.ReadJSON(&ev); err != nil {
				return
			}
			select {
			case ch <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch, nil
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

func (c *Client) do(ctx context.Context, method, route string, body, out interface{}) error {
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		r = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, baseURL+route, r)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDaemonNotRunning, "failed to reach daemon").
			WithDetail("socket", c.socketPath)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var e ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&e); err != nil || e.Code == "" {
			return fmt.Errorf("daemon returned status %d", resp.StatusCode)
		}
		return errors.New(errors.ErrorCode(e.Code), e.Message)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", route, err)
	}
	return nil
}
