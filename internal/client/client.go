// Package client is a minimal one-shot client for the TCP analysis protocol.
package client

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/guttosm/profitpulse/internal/domain/dto"
)

// Response is a decoded envelope with the payload left raw.
type Response struct {
	Status  dto.Status      `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// OK reports whether the server answered SUCCESS.
func (r Response) OK() bool { return r.Status == dto.StatusSuccess }

// dialer is an indirection for tests.
var dialer = &net.Dialer{Timeout: 5 * time.Second}

// Send opens a connection to addr, writes one request frame and reads the
// single response line. The server closes the connection afterwards.
//
// body may be nil for actions that take none. ctx bounds the whole exchange.
func Send(ctx context.Context, addr, action string, body any) (*Response, error) {
	req := struct {
		Headers dto.RequestHeaders `json:"headers"`
		Body    any                `json:"body,omitempty"`
	}{
		Headers: dto.RequestHeaders{Action: action},
		Body:    body,
	}
	frame, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	defer func() { _ = conn.Close() }()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}
	stop := context.AfterFunc(ctx, func() { _ = conn.SetDeadline(time.Now()) })
	defer stop()

	if _, err := conn.Write(append(frame, '\n')); err != nil {
		return nil, fmt.Errorf("write request: %w", err)
	}

	line, err := bufio.NewReader(conn).ReadBytes('\n')
	if err != nil && len(line) == 0 {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(line, &resp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &resp, nil
}
