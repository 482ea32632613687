// Package rpc serves remote evaluation over gRPC. Trees travel as
// google.protobuf.Struct and module.exports comes back as
// google.protobuf.Value, so no generated code is needed.
package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	ServiceName = "jswalk.Evaluator"
	EvalMethod  = "/" + ServiceName + "/Eval"
)

// EvaluatorServer is the server API for the jswalk.Evaluator service.
type EvaluatorServer interface {
	Eval(ctx context.Context, program *structpb.Struct) (*structpb.Value, error)
}

func evalHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(EvaluatorServer).Eval(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: EvalMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(EvaluatorServer).Eval(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// ServiceDesc describes jswalk.Evaluator for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*EvaluatorServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Eval", Handler: evalHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "jswalk/evaluator.proto",
}

// Register attaches srv to s.
func Register(s grpc.ServiceRegistrar, srv EvaluatorServer) {
	s.RegisterService(&ServiceDesc, srv)
}
