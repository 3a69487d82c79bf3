package proto

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

type UnimplementedDagServiceServer struct{}

func (UnimplementedDagServiceServer) Trigger(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Trigger not implemented")
}

func (UnimplementedDagServiceServer) GetRun(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetRun not implemented")
}

func (UnimplementedDagServiceServer) ListWorkflows(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ListWorkflows not implemented")
}

func RegisterDagServiceServer(s grpc.ServiceRegistrar, srv DagServiceServer) {
	s.RegisterService(&DagServiceDesc, srv)
}
