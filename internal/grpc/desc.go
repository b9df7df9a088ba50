package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name. Requests and
// responses travel as google.protobuf.Struct carrying the same JSON shapes
// the HTTP endpoint uses.
const ServiceName = "chatmock.v1.ChatService"

const (
	ChatCompletionMethod       = "/" + ServiceName + "/ChatCompletion"
	ChatCompletionStreamMethod = "/" + ServiceName + "/ChatCompletionStream"
)

type ChatServiceServer interface {
	ChatCompletion(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ChatCompletionStream(*structpb.Struct, ChatCompletionStreamServer) error
}

// ChatCompletionStreamServer is the server side of ChatCompletionStream.
type ChatCompletionStreamServer interface {
	Send(*structpb.Struct) error
	grpc.ServerStream
}

func RegisterChatServiceServer(s grpc.ServiceRegistrar, srv ChatServiceServer) {
	s.RegisterService(&chatServiceDesc, srv)
}

func chatCompletionHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ChatServiceServer).ChatCompletion(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: ChatCompletionMethod,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ChatServiceServer).ChatCompletion(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func chatCompletionStreamHandler(srv any, stream grpc.ServerStream) error {
	in := new(structpb.Struct)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(ChatServiceServer).ChatCompletionStream(in, &chatCompletionStreamServer{stream})
}

type chatCompletionStreamServer struct {
	grpc.ServerStream
}

func (x *chatCompletionStreamServer) Send(m *structpb.Struct) error {
	return x.ServerStream.SendMsg(m)
}

var chatServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ChatServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "ChatCompletion",
			Handler:    chatCompletionHandler,
		},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "ChatCompletionStream",
			Handler:       chatCompletionStreamHandler,
			ServerStreams: true,
		},
	},
	Metadata: "chatmock/v1/chat.proto",
}
