package proto

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "hellodag.v1.DagService"

// DagServiceServer triggers and inspects workflow runs. Requests and responses
// travel as google.protobuf.Struct; see messages.go for their shape.
type DagServiceServer interface {
	Trigger(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetRun(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListWorkflows(context.Context, *emptypb.Empty) (*structpb.Struct, error)
}

type DagServiceClient interface {
	Trigger(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	GetRun(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	ListWorkflows(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
}
