// Package chatclient wraps a chat WebSocket connection with the client-side
// reconnection policy: a bounded number of redial attempts at a fixed delay.
package chatclient

import (
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// DefaultRetries is the number of reconnection attempts made after an
	// unexpected disconnect before giving up.
	DefaultRetries = 3
	// DefaultRetryDelay is the fixed pause between attempts. No backoff,
	// no jitter.
	DefaultRetryDelay = 1000 * time.Millisecond
)

// Heartbeat markers mirrored from the server protocol.
const (
	HeartbeatPing = "ping"
	HeartbeatPong = "pong"
)

// Options configures a Client. Zero values fall back to the defaults above.
type Options struct {
	Retries    int
	RetryDelay time.Duration

	// OnMessage is invoked for every text frame received from the server.
	OnMessage func(data []byte)
	// OnFailed is invoked once when reconnection attempts are exhausted.
	OnFailed func()
}

// Client is a chat connection that survives transient disconnects by
// redialing the same URL. It never refreshes the token embedded in the URL;
// fetching a fresh one is the caller's responsibility.
type Client struct {
	url  string
	opts Options

	conn     *websocket.Conn
	mu       sync.RWMutex
	done     chan struct{}
	doneOnce sync.Once
	wg       sync.WaitGroup
}

// Dial connects to the chat endpoint and starts the receive loop.
func Dial(rawURL string, opts Options) (*Client, error) {
	if opts.Retries == 0 {
		opts.Retries = DefaultRetries
	}
	if opts.RetryDelay == 0 {
		opts.RetryDelay = DefaultRetryDelay
	}

	c := &Client{
		url:  rawURL,
		opts: opts,
		done: make(chan struct{}),
	}
	if err := c.connect(); err != nil {
		return nil, err
	}

	c.wg.Add(1)
	go c.receiveLoop()
	return c, nil
}

func (c *Client) connect() error {
	conn, _, err := websocket.DefaultDialer.Dial(c.url, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to chat server: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
	return nil
}

// Send writes one text frame to the server.
func (c *Client) Send(text string) error {
	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()

	if conn == nil {
		return fmt.Errorf("not connected to chat server")
	}
	return conn.WriteMessage(websocket.TextMessage, []byte(text))
}

// SendHeartbeat sends the application-level liveness probe.
func (c *Client) SendHeartbeat() error {
	return c.Send(HeartbeatPing)
}

// IsConnected reports whether a connection is currently open.
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.conn != nil
}

// Close shuts the client down and waits for the receive loop to exit.
func (c *Client) Close() {
	c.doneOnce.Do(func() {
		close(c.done)
	})

	c.mu.Lock()
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.mu.Unlock()

	c.wg.Wait()
}

func (c *Client) receiveLoop() {
	defer c.wg.Done()

	for {
		c.mu.RLock()
		conn := c.conn
		c.mu.RUnlock()
		if conn == nil {
			return
		}

		_, data, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-c.done:
				return
			default:
			}

			if !c.reconnect() {
				if c.opts.OnFailed != nil {
					c.opts.OnFailed()
				}
				return
			}
			continue
		}

		if c.opts.OnMessage != nil {
			c.opts.OnMessage(data)
		}
	}
}

// reconnect redials up to Retries times, RetryDelay apart. It reports
// whether a connection was re-established. Each attempt repeats the full
// handshake server-side.
func (c *Client) reconnect() bool {
	for attempt := 1; attempt <= c.opts.Retries; attempt++ {
		select {
		case <-c.done:
			return false
		case <-time.After(c.opts.RetryDelay):
		}

		if err := c.connect(); err == nil {
			return true
		}
	}

	c.mu.Lock()
	c.conn = nil
	c.mu.Unlock()
	return false
}
