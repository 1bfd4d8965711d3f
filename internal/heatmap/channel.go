package heatmap

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Channel is a duplex, line-delimited message transport to the analyzer
// service. Implementations carry exactly one request in flight; serialization
// is the Client's job.
type Channel interface {
	Send(line []byte) error
	Receive() ([]byte, error)
	Close() error
}

// Base64-encoded frames can run large; size the reader accordingly.
const maxLineBytes = 32 << 20

// StdioChannel runs the analyzer as a subprocess and exchanges lines over its
// stdin/stdout pipes.
type StdioChannel struct {
	cmd     *exec.Cmd
	stdin   io.WriteCloser
	scanner *bufio.Scanner
	log     zerolog.Logger
}

// NewStdioChannel starts the analyzer subprocess and wires up its pipes.
func NewStdioChannel(ctx context.Context, log zerolog.Logger, command string, args ...string) (*StdioChannel, error) {
	cmd := exec.CommandContext(ctx, command, args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("analyzer stdin: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("analyzer stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start analyzer %q: %w", command, err)
	}
	log.Info().Str("command", command).Int("pid", cmd.Process.Pid).Msg("analyzer subprocess started")

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)
	return &StdioChannel{cmd: cmd, stdin: stdin, scanner: scanner, log: log}, nil
}

// Send writes one request line to the subprocess.
func (c *StdioChannel) Send(line []byte) error {
	if _, err := c.stdin.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("write to analyzer: %w", err)
	}
	return nil
}

// Receive blocks for the next response line. An exited subprocess surfaces as
// a distinguishable channel failure.
func (c *StdioChannel) Receive() ([]byte, error) {
	if !c.scanner.Scan() {
		if err := c.scanner.Err(); err != nil {
			return nil, fmt.Errorf("read from analyzer: %w", err)
		}
		return nil, fmt.Errorf("analyzer closed its output stream")
	}
	line := c.scanner.Bytes()
	out := make([]byte, len(line))
	copy(out, line)
	return out, nil
}

// Close shuts the subprocess down, forcefully if it does not exit on its own.
func (c *StdioChannel) Close() error {
	_ = c.stdin.Close()
	done := make(chan error, 1)
	go func() { done <- c.cmd.Wait() }()
	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		c.log.Warn().Msg("analyzer did not exit, killing")
		_ = c.cmd.Process.Kill()
		return <-done
	}
}

// WebsocketChannel exchanges request/response lines with a remote analyzer
// over a websocket, one message per line.
type WebsocketChannel struct {
	conn *websocket.Conn
}

// DialWebsocket connects to a remote analyzer endpoint.
func DialWebsocket(ctx context.Context, url string) (*WebsocketChannel, error) {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial analyzer %q: %w", url, err)
	}
	conn.SetReadLimit(maxLineBytes)
	return &WebsocketChannel{conn: conn}, nil
}

// Send writes one request message.
func (c *WebsocketChannel) Send(line []byte) error {
	c.conn.SetWriteDeadline(time.Now().Add(30 * time.Second))
	if err := c.conn.WriteMessage(websocket.TextMessage, line); err != nil {
		return fmt.Errorf("write to analyzer: %w", err)
	}
	return nil
}

// Receive blocks for the next response message.
func (c *WebsocketChannel) Receive() ([]byte, error) {
	_, line, err := c.conn.ReadMessage()
	if err != nil {
		return nil, fmt.Errorf("read from analyzer: %w", err)
	}
	return line, nil
}

// Close tears the connection down.
func (c *WebsocketChannel) Close() error {
	return c.conn.Close()
}
