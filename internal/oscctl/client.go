package oscctl

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/hypebeast/go-osc/osc"
)

// Client sends playback commands to a running surface.
type Client struct {
	osc    *osc.Client
	prefix string
}

// NewClient creates a client for the surface listening on addr (host:port).
// An empty prefix means DefaultPrefix.
func NewClient(addr, prefix string) (*Client, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, fmt.Errorf("parse osc address %q: %w", addr, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 {
		return nil, fmt.Errorf("parse osc address %q: invalid port", addr)
	}
	if host == "" {
		host = "127.0.0.1"
	}
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Client{
		osc:    osc.NewClient(host, port),
		prefix: "/" + strings.Trim(prefix, "/"),
	}, nil
}

// Advance sends /go.
func (c *Client) Advance() error { return c.send("go") }

// Previous sends /previous.
func (c *Client) Previous() error { return c.send("previous") }

// Reset sends /reset.
func (c *Client) Reset() error { return c.send("reset") }

// Goto sends /goto with the cue number as an int32.
func (c *Client) Goto(seq int) error { return c.send("goto", int32(seq)) }

func (c *Client) send(cmd string, args ...any) error {
	msg := osc.NewMessage(c.prefix + "/" + cmd)
	for _, a := range args {
		msg.Append(a)
	}
	if err := c.osc.Send(msg); err != nil {
		return fmt.Errorf("send %s: %w", msg.Address, err)
	}
	return nil
}
