package rpc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/funvibe/jswalk/internal/ast"
	"github.com/funvibe/jswalk/internal/config"
	"github.com/funvibe/jswalk/internal/evaluator"
	jswalk "github.com/funvibe/jswalk/pkg/embed"
)

// Server evaluates each request in its own interpreter. Every request runs
// under a step budget so a runaway program cannot hold a goroutine forever.
type Server struct {
	cfg *config.Config
}

func NewServer(cfg *config.Config) *Server {
	if cfg == nil {
		cfg = config.Default()
	}
	c := *cfg
	c.MaxSteps = cfg.RequestMaxSteps()
	return &Server{cfg: &c}
}

func (s *Server) Eval(ctx context.Context, program *structpb.Struct) (*structpb.Value, error) {
	session := uuid.NewString()
	logger := log.With("session", session)
	if err := ctx.Err(); err != nil {
		return nil, status.FromContextError(err).Err()
	}

	var out bytes.Buffer
	vm := jswalk.New(jswalk.WithConfig(s.cfg), jswalk.WithWriter(&out), jswalk.WithErrWriter(&out))
	defer vm.Close()

	exports, err := vm.RunTree(program.AsMap())
	if out.Len() > 0 {
		logger.Debug("guest output", "text", out.String())
	}
	if err != nil {
		code := errorCode(err)
		logger.Warn("eval failed", "code", code, "err", err)
		return nil, status.Error(code, err.Error())
	}

	goVal, err := vm.Export(exports)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "export: %v", err)
	}
	val, err := structpb.NewValue(protoCompatible(goVal))
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode result: %v", err)
	}
	logger.Debug("eval done", "steps", vm.Steps())
	return val, nil
}

// errorCode maps evaluation failures onto gRPC status codes.
func errorCode(err error) codes.Code {
	var (
		decodeErr *ast.DecodeError
		syntaxErr *evaluator.UnsupportedSyntaxError
		redeclErr *evaluator.RedeclarationError
	)
	switch {
	case errors.Is(err, evaluator.ErrMaxStepsExceeded), errors.Is(err, evaluator.ErrCallDepthExceeded):
		return codes.ResourceExhausted
	case errors.As(err, &decodeErr), errors.As(err, &syntaxErr), errors.As(err, &redeclErr):
		return codes.InvalidArgument
	}
	return codes.Aborted
}

// protoCompatible replaces values structpb cannot carry, such as guest
// functions, with their display form.
func protoCompatible(v any) any {
	switch v := v.(type) {
	case nil, bool, float64, string:
		return v
	case []any:
		out := make([]any, len(v))
		for i, el := range v {
			out[i] = protoCompatible(el)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, el := range v {
			out[k] = protoCompatible(el)
		}
		return out
	case evaluator.Object:
		return v.Inspect()
	}
	return fmt.Sprint(v)
}

// LoggingInterceptor logs every unary call with its duration and status.
func LoggingInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	log.Debug("rpc", "method", info.FullMethod, "code", status.Code(err), "elapsed", time.Since(start))
	return resp, err
}

// Serve listens on addr and serves until ctx is cancelled.
func Serve(ctx context.Context, addr string, srv EvaluatorServer) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return ServeListener(ctx, lis, srv)
}

// ServeListener serves on lis until ctx is cancelled or lis fails.
func ServeListener(ctx context.Context, lis net.Listener, srv EvaluatorServer) error {
	gs := grpc.NewServer(grpc.UnaryInterceptor(LoggingInterceptor))
	Register(gs, srv)

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			gs.GracefulStop()
		case <-done:
		}
	}()
	log.Info("serving", "addr", lis.Addr().String(), "service", ServiceName)
	if err := gs.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		gs.Stop()
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}
