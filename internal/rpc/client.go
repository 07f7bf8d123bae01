package rpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/obsidianstack/valvecalc/internal/api"
	"github.com/obsidianstack/valvecalc/internal/valve"
)

// Client calls a remote valvecalc.v1.Calculator.
type Client struct {
	conn   grpc.ClientConnInterface
	header string
	key    string
}

// Dial connects to target without TLS. The connection is lazy; errors surface
// on the first call. header and key, when key is non-empty, are sent as
// metadata on every call.
func Dial(target, header, key string) (*Client, func() error, error) {
	conn, err := grpc.NewClient(target, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, nil, fmt.Errorf("rpc: dial %s: %w", target, err)
	}
	return NewClient(conn, header, key), conn.Close, nil
}

// NewClient wraps an existing connection.
func NewClient(conn grpc.ClientConnInterface, header, key string) *Client {
	return &Client{conn: conn, header: header, key: key}
}

// Compute runs a calculation on the remote server.
func (c *Client) Compute(ctx context.Context, req api.ValvesRequest) (*valve.Report, error) {
	var rep valve.Report
	if err := c.invoke(ctx, MethodCompute, req, &rep); err != nil {
		return nil, err
	}
	return &rep, nil
}

// Bypass computes a single split valve on the remote server.
func (c *Client) Bypass(ctx context.Context, req api.BypassRequest) (*api.BypassResponse, error) {
	var resp api.BypassResponse
	if err := c.invoke(ctx, MethodBypass, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) invoke(ctx context.Context, method string, req, resp interface{}) error {
	in, err := toStruct(req)
	if err != nil {
		return err
	}
	if c.key != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, c.header, c.key)
	}
	out := &structpb.Struct{}
	if err := c.conn.Invoke(ctx, method, in, out); err != nil {
		return err
	}
	return fromStruct(out, resp)
}
