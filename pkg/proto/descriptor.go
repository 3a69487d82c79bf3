package proto

import "google.golang.org/grpc"

var DagServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*DagServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Trigger",
			Handler:    triggerHandler,
		},
		{
			MethodName: "GetRun",
			Handler:    getRunHandler,
		},
		{
			MethodName: "ListWorkflows",
			Handler:    listWorkflowsHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "hellodag.proto",
}
