package ports

import (
	"context"

	"github.com/maestro/hello-world-dag/internal/domain"
)

type WorkflowParser interface {
	ParseFile(filename string) (*domain.Workflow, error)
	Parse(data []byte) (*domain.Workflow, error)
}

type WorkflowExecutor interface {
	ExecuteWorkflow(ctx context.Context, name string, params map[string]any) (*domain.RunResult, error)
}

// ObjectReader fetches the raw bytes of a single object. Implementations
// return an error wrapping domain.ErrObjectNotFound for missing objects.
type ObjectReader interface {
	GetObject(ctx context.Context, bucket, key string) ([]byte, error)
}
