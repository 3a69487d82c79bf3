package proto

import (
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"
)

type TriggerRequest struct {
	Workflow string
	Params   map[string]any
}

func (r TriggerRequest) ToStruct() (*structpb.Struct, error) {
	params := r.Params
	if params == nil {
		params = map[string]any{}
	}
	return structpb.NewStruct(map[string]any{
		"workflow": r.Workflow,
		"params":   params,
	})
}

func ParseTriggerRequest(s *structpb.Struct) (TriggerRequest, error) {
	m := s.AsMap()

	name, ok := m["workflow"].(string)
	if !ok || name == "" {
		return TriggerRequest{}, fmt.Errorf("workflow is required")
	}

	req := TriggerRequest{Workflow: name}
	if raw, ok := m["params"]; ok && raw != nil {
		params, ok := raw.(map[string]any)
		if !ok {
			return TriggerRequest{}, fmt.Errorf("params must be an object")
		}
		req.Params = params
	}

	return req, nil
}

type RunRef struct {
	RunID string
}

func (r RunRef) ToStruct() (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{"run_id": r.RunID})
}

func ParseRunRef(s *structpb.Struct) (RunRef, error) {
	id, ok := s.AsMap()["run_id"].(string)
	if !ok || id == "" {
		return RunRef{}, fmt.Errorf("run_id is required")
	}
	return RunRef{RunID: id}, nil
}

type TaskStatus struct {
	State     string
	TryNumber int
	Error     string
}

// RunStatus is the wire view of a run. Timestamps are RFC 3339 strings and
// empty while unset.
type RunStatus struct {
	RunID       string
	DagID       string
	Status      string
	Error       string
	StartedAt   string
	CompletedAt string
	Tasks       map[string]TaskStatus
}

func (r RunStatus) ToStruct() (*structpb.Struct, error) {
	tasks := make(map[string]any, len(r.Tasks))
	for id, t := range r.Tasks {
		tasks[id] = map[string]any{
			"state":      t.State,
			"try_number": t.TryNumber,
			"error":      t.Error,
		}
	}

	return structpb.NewStruct(map[string]any{
		"run_id":       r.RunID,
		"dag_id":       r.DagID,
		"status":       r.Status,
		"error":        r.Error,
		"started_at":   r.StartedAt,
		"completed_at": r.CompletedAt,
		"tasks":        tasks,
	})
}

func ParseRunStatus(s *structpb.Struct) RunStatus {
	m := s.AsMap()

	r := RunStatus{
		RunID:       stringField(m, "run_id"),
		DagID:       stringField(m, "dag_id"),
		Status:      stringField(m, "status"),
		Error:       stringField(m, "error"),
		StartedAt:   stringField(m, "started_at"),
		CompletedAt: stringField(m, "completed_at"),
		Tasks:       make(map[string]TaskStatus),
	}

	tasks, _ := m["tasks"].(map[string]any)
	for id, raw := range tasks {
		t, _ := raw.(map[string]any)
		try, _ := t["try_number"].(float64)
		r.Tasks[id] = TaskStatus{
			State:     stringField(t, "state"),
			TryNumber: int(try),
			Error:     stringField(t, "error"),
		}
	}

	return r
}

type WorkflowList struct {
	Workflows []string
}

func (l WorkflowList) ToStruct() (*structpb.Struct, error) {
	names := make([]any, len(l.Workflows))
	for i, name := range l.Workflows {
		names[i] = name
	}
	return structpb.NewStruct(map[string]any{"workflows": names})
}

func ParseWorkflowList(s *structpb.Struct) WorkflowList {
	raw, _ := s.AsMap()["workflows"].([]any)
	l := WorkflowList{Workflows: make([]string, 0, len(raw))}
	for _, v := range raw {
		if name, ok := v.(string); ok {
			l.Workflows = append(l.Workflows, name)
		}
	}
	return l
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}
