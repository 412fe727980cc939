package rpc

import (
	"context"

	"google.golang.org/grpc"
)

// AgentClient is the Gateway Service's view of the Agent Service.
type AgentClient interface {
	ProcessMessage(ctx context.Context, req *MessageRequest) (*MessageResponse, error)
	StreamMessage(ctx context.Context, req *MessageRequest) (StreamMessageClientStream, error)
	HealthCheck(ctx context.Context, req *HealthRequest) (*HealthResponse, error)
}

// StreamMessageClientStream is the client-side half of the
// StreamMessage server-streaming call.
type StreamMessageClientStream interface {
	Recv() (*StreamChunk, error)
}

type agentClient struct {
	conn *grpc.ClientConn
}

// NewAgentClient wraps an established *grpc.ClientConn.
func NewAgentClient(conn *grpc.ClientConn) AgentClient {
	return &agentClient{conn: conn}
}

func (c *agentClient) ProcessMessage(ctx context.Context, req *MessageRequest) (*MessageResponse, error) {
	resp := new(MessageResponse)
	err := c.conn.Invoke(ctx, "/travelagent.AgentService/ProcessMessage", req, resp, callOptions()...)
	return resp, err
}

func (c *agentClient) HealthCheck(ctx context.Context, req *HealthRequest) (*HealthResponse, error) {
	resp := new(HealthResponse)
	err := c.conn.Invoke(ctx, "/travelagent.AgentService/HealthCheck", req, resp, callOptions()...)
	return resp, err
}

func (c *agentClient) StreamMessage(ctx context.Context, req *MessageRequest) (StreamMessageClientStream, error) {
	desc := &grpc.StreamDesc{StreamName: "StreamMessage", ServerStreams: true}
	stream, err := c.conn.NewStream(ctx, desc, "/travelagent.AgentService/StreamMessage", callOptions()...)
	if err != nil {
		return nil, err
	}
	if err := stream.SendMsg(req); err != nil {
		return nil, err
	}
	if err := stream.CloseSend(); err != nil {
		return nil, err
	}
	return &streamMessageClientStream{stream: stream}, nil
}

type streamMessageClientStream struct {
	stream grpc.ClientStream
}

func (s *streamMessageClientStream) Recv() (*StreamChunk, error) {
	chunk := new(StreamChunk)
	if err := s.stream.RecvMsg(chunk); err != nil {
		return nil, err
	}
	return chunk, nil
}

func callOptions() []grpc.CallOption {
	return []grpc.CallOption{grpc.ForceCodec(jsonCodec{})}
}

// DialOptions returns the grpc.DialOption set callers should pass to
// grpc.NewClient when connecting to the Agent Service.
func DialOptions() []grpc.DialOption {
	return []grpc.DialOption{grpc.WithDefaultCallOptions(grpc.ForceCodec(jsonCodec{}))}
}

// ServerOptions returns the grpc.ServerOption set cmd/agentd should
// pass to grpc.NewServer.
func ServerOptions() []grpc.ServerOption {
	return []grpc.ServerOption{}
}
