package executor

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/maestro/hello-world-dag/internal/domain"
)

func (e *Executor) resolveTemplate(tmpl string, data any) (string, error) {
	t, err := template.New("task").Option("missingkey=error").Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return buf.String(), nil
}

// resolveTaskInput renders templated string inputs. Templates see .params,
// .run_id, .dag_id and .task_id.
func (e *Executor) resolveTaskInput(task *domain.Task, rc *RunContext) (map[string]any, error) {
	resolvedInput := make(map[string]any, len(task.Input))

	templateData := map[string]any{
		"params":  rc.Params,
		"run_id":  rc.RunID,
		"dag_id":  rc.Workflow.Name,
		"task_id": task.ID,
	}

	for key, value := range task.Input {
		switch v := value.(type) {
		case string:
			if domain.IsTemplate(v) {
				resolved, err := e.resolveTemplate(v, templateData)
				if err != nil {
					return nil, fmt.Errorf("failed to resolve template for key %s: %w", key, err)
				}
				resolvedInput[key] = resolved
			} else {
				resolvedInput[key] = v
			}
		default:
			resolvedInput[key] = value
		}
	}

	return resolvedInput, nil
}
