package domain

import (
	"fmt"
	"time"
)

type Workflow struct {
	Name               string           `yaml:"name"`
	Description        string           `yaml:"description,omitempty"`
	Tags               []string         `yaml:"tags,omitempty"`
	Schedule           string           `yaml:"schedule,omitempty"`
	PausedUponCreation bool             `yaml:"paused_upon_creation"`
	RunTimeout         Duration         `yaml:"run_timeout"`
	DefaultArgs        DefaultArgs      `yaml:"default_args"`
	Params             map[string]Param `yaml:"params,omitempty"`
	Tasks              []Task           `yaml:"tasks"`
}

// DefaultArgs apply to every task unless the task overrides them.
type DefaultArgs struct {
	Owner                   string    `yaml:"owner,omitempty"`
	DependsOnPast           bool      `yaml:"depends_on_past"`
	StartDate               time.Time `yaml:"start_date,omitempty"`
	Retries                 int       `yaml:"retries"`
	RetryDelay              Duration  `yaml:"retry_delay"`
	RetryExponentialBackoff bool      `yaml:"retry_exponential_backoff"`
	MaxRetryDelay           Duration  `yaml:"max_retry_delay,omitempty"`
	Email                   []string  `yaml:"email,omitempty"`
	EmailOnFailure          bool      `yaml:"email_on_failure"`
	EmailOnRetry            bool      `yaml:"email_on_retry"`
}

type ParamType string

const (
	ParamTypeString  ParamType = "string"
	ParamTypeInteger ParamType = "integer"
	ParamTypeNumber  ParamType = "number"
	ParamTypeBoolean ParamType = "boolean"
)

// Param is a named input supplied when a run is triggered. A param without a
// default is required.
type Param struct {
	Type        ParamType `yaml:"type"`
	Title       string    `yaml:"title,omitempty"`
	Description string    `yaml:"description,omitempty"`
	Default     any       `yaml:"default,omitempty"`
}

func (p Param) Required() bool {
	return p.Default == nil
}

type Task struct {
	ID         string         `yaml:"id"`
	Operator   string         `yaml:"operator"`
	Upstream   []string       `yaml:"upstream,omitempty"`
	Input      map[string]any `yaml:"input,omitempty"`
	Retries    *int           `yaml:"retries,omitempty"`
	RetryDelay *Duration      `yaml:"retry_delay,omitempty"`
}

// RetryPolicy is the effective retry configuration of a task.
type RetryPolicy struct {
	Retries     int
	Delay       time.Duration
	Exponential bool
	MaxDelay    time.Duration
}

func (t Task) RetryPolicy(args DefaultArgs) RetryPolicy {
	policy := RetryPolicy{
		Retries:     args.Retries,
		Delay:       args.RetryDelay.Duration,
		Exponential: args.RetryExponentialBackoff,
		MaxDelay:    args.MaxRetryDelay.Duration,
	}
	if t.Retries != nil {
		policy.Retries = *t.Retries
	}
	if t.RetryDelay != nil {
		policy.Delay = t.RetryDelay.Duration
	}
	return policy
}

func (w *Workflow) Task(id string) (*Task, bool) {
	for i := range w.Tasks {
		if w.Tasks[i].ID == id {
			return &w.Tasks[i], true
		}
	}
	return nil, false
}

type Duration struct {
	time.Duration
}

func NewDuration(d time.Duration) Duration {
	return Duration{Duration: d}
}

func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	duration, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = duration
	return nil
}

func (d Duration) MarshalYAML() (any, error) {
	return d.Duration.String(), nil
}

type RunResult struct {
	RunID       string
	DagID       string
	Status      RunStatus
	Params      map[string]any
	Tasks       map[string]*TaskInstance
	Error       error
	StartedAt   time.Time
	CompletedAt time.Time
}

type TaskInstance struct {
	TaskID    string
	State     TaskState
	TryNumber int
	Output    any
	Error     error
	StartedAt time.Time
	EndedAt   time.Time
}

type RunStatus int

const (
	RunStatusQueued RunStatus = iota
	RunStatusRunning
	RunStatusSuccess
	RunStatusFailed
	RunStatusCancelled
)

func (s RunStatus) String() string {
	switch s {
	case RunStatusQueued:
		return "queued"
	case RunStatusRunning:
		return "running"
	case RunStatusSuccess:
		return "success"
	case RunStatusFailed:
		return "failed"
	case RunStatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

func (s RunStatus) Finished() bool {
	return s == RunStatusSuccess || s == RunStatusFailed || s == RunStatusCancelled
}

type TaskState int

const (
	TaskStateNone TaskState = iota
	TaskStateRunning
	TaskStateUpForRetry
	TaskStateSuccess
	TaskStateFailed
	TaskStateUpstreamFailed
)

func (s TaskState) String() string {
	switch s {
	case TaskStateNone:
		return "none"
	case TaskStateRunning:
		return "running"
	case TaskStateUpForRetry:
		return "up_for_retry"
	case TaskStateSuccess:
		return "success"
	case TaskStateFailed:
		return "failed"
	case TaskStateUpstreamFailed:
		return "upstream_failed"
	default:
		return "unknown"
	}
}

func IsTemplate(s string) bool {
	return len(s) >= 4 && s[:2] == "{{" && s[len(s)-2:] == "}}"
}
