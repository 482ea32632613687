package rpc

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"
)

// Client calls a remote jswalk.Evaluator.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// Dial connects to target without transport security. The caller closes
// the returned connection.
func Dial(target string, opts ...grpc.DialOption) (*Client, *grpc.ClientConn, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(target, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("dial %s: %w", target, err)
	}
	return NewClient(conn), conn, nil
}

func (c *Client) Eval(ctx context.Context, program *structpb.Struct, opts ...grpc.CallOption) (*structpb.Value, error) {
	out := new(structpb.Value)
	if err := c.cc.Invoke(ctx, EvalMethod, program, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// EvalJSON sends an ESTree JSON document.
func (c *Client) EvalJSON(ctx context.Context, data []byte, opts ...grpc.CallOption) (*structpb.Value, error) {
	var tree map[string]any
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("parse tree: %w", err)
	}
	program, err := structpb.NewStruct(tree)
	if err != nil {
		return nil, fmt.Errorf("encode tree: %w", err)
	}
	return c.Eval(ctx, program, opts...)
}
