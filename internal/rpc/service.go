package rpc

import (
	"context"

	"google.golang.org/grpc"
)

// AgentServer is implemented by the Agent Service and registered
// against a *grpc.Server via RegisterAgentServer.
type AgentServer interface {
	ProcessMessage(ctx context.Context, req *MessageRequest) (*MessageResponse, error)
	StreamMessage(req *MessageRequest, stream StreamMessageServerStream) error
	HealthCheck(ctx context.Context, req *HealthRequest) (*HealthResponse, error)
}

// StreamMessageServerStream is the server-side half of the
// StreamMessage server-streaming call.
type StreamMessageServerStream interface {
	Send(*StreamChunk) error
	Context() context.Context
}

type streamMessageServerStream struct {
	grpc.ServerStream
}

func (s *streamMessageServerStream) Send(chunk *StreamChunk) error {
	return s.ServerStream.SendMsg(chunk)
}

func processMessageHandler(srv any, ctx context.Context, dec func(any) error, _ grpc.UnaryServerInterceptor) (any, error) {
	req := new(MessageRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	return srv.(AgentServer).ProcessMessage(ctx, req)
}

func healthCheckHandler(srv any, ctx context.Context, dec func(any) error, _ grpc.UnaryServerInterceptor) (any, error) {
	req := new(HealthRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	return srv.(AgentServer).HealthCheck(ctx, req)
}

func streamMessageHandler(srv any, stream grpc.ServerStream) error {
	req := new(MessageRequest)
	if err := stream.RecvMsg(req); err != nil {
		return err
	}
	return srv.(AgentServer).StreamMessage(req, &streamMessageServerStream{ServerStream: stream})
}

// serviceDesc wires the three operations into a grpc.ServiceDesc by
// hand, standing in for what protoc would otherwise generate.
var serviceDesc = grpc.ServiceDesc{
	ServiceName: "travelagent.AgentService",
	HandlerType: (*AgentServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "ProcessMessage",
			Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
				return processMessageHandler(srv, ctx, dec, interceptor)
			},
		},
		{
			MethodName: "HealthCheck",
			Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
				return healthCheckHandler(srv, ctx, dec, interceptor)
			},
		},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "StreamMessage",
			Handler:       streamMessageHandler,
			ServerStreams: true,
		},
	},
	Metadata: "travelagent/agent_service.proto",
}

// RegisterAgentServer registers srv against s using the hand-wired
// service descriptor.
func RegisterAgentServer(s *grpc.Server, srv AgentServer) {
	s.RegisterService(&serviceDesc, srv)
}
