package server

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/maestro/hello-world-dag/internal/application"
	"github.com/maestro/hello-world-dag/internal/domain"
	"github.com/maestro/hello-world-dag/internal/workflow"
	pb "github.com/maestro/hello-world-dag/pkg/proto"
)

// Server exposes the orchestrator over gRPC.
type Server struct {
	pb.UnimplementedDagServiceServer

	orch   *application.Orchestrator
	runCtx context.Context
	logger zerolog.Logger
}

// New returns a server whose triggered runs live as long as runCtx.
func New(runCtx context.Context, orch *application.Orchestrator, logger zerolog.Logger) *Server {
	return &Server{
		orch:   orch,
		runCtx: runCtx,
		logger: logger,
	}
}

func (s *Server) Trigger(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req, err := pb.ParseTriggerRequest(in)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	runID, err := s.orch.TriggerWorkflow(s.runCtx, req.Workflow, req.Params)
	if err != nil {
		return nil, toStatus(err)
	}

	s.logger.Info().
		Str("run_id", runID).
		Str("dag_id", req.Workflow).
		Msg("Run triggered")

	return pb.RunRef{RunID: runID}.ToStruct()
}

func (s *Server) GetRun(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	ref, err := pb.ParseRunRef(in)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	result, ok := s.orch.GetRun(ref.RunID)
	if !ok {
		return nil, status.Errorf(codes.NotFound, "run %s not found", ref.RunID)
	}

	return RunStatus(result).ToStruct()
}

func (s *Server) ListWorkflows(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	return pb.WorkflowList{Workflows: s.orch.ListWorkflows()}.ToStruct()
}

// RunStatus converts a run result to its wire form.
func RunStatus(result *domain.RunResult) pb.RunStatus {
	rs := pb.RunStatus{
		RunID:  result.RunID,
		DagID:  result.DagID,
		Status: result.Status.String(),
		Tasks:  make(map[string]pb.TaskStatus, len(result.Tasks)),
	}

	if result.Error != nil {
		rs.Error = result.Error.Error()
	}
	if !result.StartedAt.IsZero() {
		rs.StartedAt = result.StartedAt.Format(time.RFC3339)
	}
	if !result.CompletedAt.IsZero() {
		rs.CompletedAt = result.CompletedAt.Format(time.RFC3339)
	}

	for id, ti := range result.Tasks {
		ts := pb.TaskStatus{
			State:     ti.State.String(),
			TryNumber: ti.TryNumber,
		}
		if ti.Error != nil {
			ts.Error = ti.Error.Error()
		}
		rs.Tasks[id] = ts
	}

	return rs
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, application.ErrWorkflowNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, workflow.ErrMissingParam),
		errors.Is(err, workflow.ErrInvalidParam),
		errors.Is(err, workflow.ErrUnknownParam):
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

// Register adds the dag service and a health service to g.
func (s *Server) Register(g *grpc.Server) {
	pb.RegisterDagServiceServer(g, s)

	hs := health.NewServer()
	hs.SetServingStatus(pb.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(g, hs)
}

// Serve blocks serving lis until ctx is done, then stops gracefully.
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	g := grpc.NewServer(grpc.UnaryInterceptor(s.logRequests))
	s.Register(g)

	go func() {
		<-ctx.Done()
		g.GracefulStop()
	}()

	s.logger.Info().Str("addr", lis.Addr().String()).Msg("Serving gRPC")
	if err := g.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}

func (s *Server) logRequests(
	ctx context.Context,
	req any,
	info *grpc.UnaryServerInfo,
	handler grpc.UnaryHandler,
) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)

	event := s.logger.Debug()
	if err != nil {
		event = s.logger.Warn().Err(err)
	}
	event.
		Str("method", info.FullMethod).
		Dur("duration", time.Since(start)).
		Msg("Handled request")

	return resp, err
}
