package context

type Key string

const (
	RunID  Key = "run_id"
	DagID  Key = "dag_id"
	TaskID Key = "task_id"
)
