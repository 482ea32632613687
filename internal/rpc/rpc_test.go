package rpc

import (
	"context"
	"net"
	"runtime"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/testing/protocmp"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/funvibe/jswalk/internal/config"
)

const bufSize = 1024 * 1024

func startServer(t *testing.T, cfg *config.Config) *Client {
	t.Helper()
	lis := bufconn.Listen(bufSize)
	gs := grpc.NewServer(grpc.UnaryInterceptor(LoggingInterceptor))
	Register(gs, NewServer(cfg))
	go func() { _ = gs.Serve(lis) }()
	t.Cleanup(gs.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return NewClient(conn)
}

// exportsProgram builds `module.exports = <value>`.
func exportsProgram(value string) []byte {
	return []byte(`{"type": "Program", "body": [{
  "type": "ExpressionStatement",
  "expression": {
    "type": "AssignmentExpression", "operator": "=",
    "left": {"type": "MemberExpression", "computed": false,
      "object": {"type": "Identifier", "name": "module"},
      "property": {"type": "Identifier", "name": "exports"}},
    "right": ` + value + `
  }
}]}`)
}

func TestEvalRoundTrip(t *testing.T) {
	client := startServer(t, nil)
	got, err := client.EvalJSON(context.Background(), exportsProgram(`{
  "type": "ObjectExpression",
  "properties": [
    {"type": "Property", "kind": "init", "key": {"type": "Identifier", "name": "sum"},
     "value": {"type": "BinaryExpression", "operator": "+",
       "left": {"type": "Literal", "value": 2}, "right": {"type": "Literal", "value": 3}}},
    {"type": "Property", "kind": "init", "key": {"type": "Identifier", "name": "tags"},
     "value": {"type": "ArrayExpression", "elements": [{"type": "Literal", "value": "a"}]}}
  ]
}`))
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	want, _ := structpb.NewValue(map[string]any{"sum": 5.0, "tags": []any{"a"}})
	if diff := cmp.Diff(want, got, protocmp.Transform()); diff != "" {
		t.Errorf("result mismatch (-want +got):\n%s", diff)
	}
}

func TestEvalStatusCodes(t *testing.T) {
	cfg := config.Default()
	cfg.MaxSteps = 500
	client := startServer(t, cfg)

	tests := []struct {
		name string
		tree string
		want codes.Code
	}{
		{
			"unsupported syntax",
			`{"type": "Program", "body": [{"type": "WithStatement", "start": 0, "end": 4}]}`,
			codes.InvalidArgument,
		},
		{
			"uncaught throw",
			`{"type": "Program", "body": [{"type": "ThrowStatement",
			  "argument": {"type": "Literal", "value": "boom"}}]}`,
			codes.Aborted,
		},
		{
			"step budget",
			`{"type": "Program", "body": [{"type": "WhileStatement",
			  "test": {"type": "Literal", "value": true},
			  "body": {"type": "BlockStatement", "body": []}}]}`,
			codes.ResourceExhausted,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.EvalJSON(context.Background(), []byte(tt.tree))
			if got := status.Code(err); got != tt.want {
				t.Errorf("code = %s, want %s (err %v)", got, tt.want, err)
			}
		})
	}
}

func TestRequestsRunUnderStepBudget(t *testing.T) {
	if got := NewServer(nil).cfg.MaxSteps; got != config.DefaultServeMaxSteps {
		t.Errorf("default request budget = %d, want %d", got, config.DefaultServeMaxSteps)
	}

	cfg := config.Default()
	cfg.Serve.MaxSteps = 2000
	client := startServer(t, cfg)
	loop := `{"type": "Program", "body": [{"type": "WhileStatement",
	  "test": {"type": "Literal", "value": true},
	  "body": {"type": "BlockStatement", "body": []}}]}`
	_, err := client.EvalJSON(context.Background(), []byte(loop))
	if got := status.Code(err); got != codes.ResourceExhausted {
		t.Errorf("code = %s, want %s (err %v)", got, codes.ResourceExhausted, err)
	}
}

func TestMalformedTreeIsInvalidArgument(t *testing.T) {
	client := startServer(t, nil)
	tree := `{"type": "Program", "body": [{"type": "ExpressionStatement",
	  "expression": {"type": "MemberExpression",
	    "object": {"type": "Identifier", "name": "module"}}}]}`
	_, err := client.EvalJSON(context.Background(), []byte(tree))
	if got := status.Code(err); got != codes.InvalidArgument {
		t.Errorf("code = %s, want %s (err %v)", got, codes.InvalidArgument, err)
	}
}

func TestServeListenerStops(t *testing.T) {
	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		errc := make(chan error, 1)
		go func() { errc <- ServeListener(ctx, bufconn.Listen(bufSize), NewServer(nil)) }()
		cancel()
		select {
		case err := <-errc:
			if err != nil {
				t.Errorf("ServeListener() = %v, want nil after cancel", err)
			}
		case <-time.After(5 * time.Second):
			t.Fatal("ServeListener did not return after cancel")
		}
	})

	t.Run("listener fails", func(t *testing.T) {
		before := runtime.NumGoroutine()
		lis := bufconn.Listen(bufSize)
		lis.Close()
		if err := ServeListener(context.Background(), lis, NewServer(nil)); err == nil {
			t.Fatal("expected an error from a closed listener")
		}
		deadline := time.Now().Add(5 * time.Second)
		for runtime.NumGoroutine() > before {
			if time.Now().After(deadline) {
				t.Fatalf("goroutines = %d, want at most %d", runtime.NumGoroutine(), before)
			}
			time.Sleep(10 * time.Millisecond)
		}
	})
}
