// Package dags declares the workflows shipped with the binary.
package dags

import (
	"time"

	"github.com/maestro/hello-world-dag/internal/domain"
	"github.com/maestro/hello-world-dag/internal/operators"
	"github.com/maestro/hello-world-dag/internal/workflow"
)

const (
	HelloWorldID = "hello-world-dag"

	ParamSourceBucket    = "s3SourceBucket"
	ParamSourceBucketKey = "s3SourceBucketKey"

	TaskReadS3Input = "read-s3-input"
	TaskEnd         = "end"
)

// DefaultArgs are shared by the sample workflows.
func DefaultArgs(now time.Time) domain.DefaultArgs {
	return domain.DefaultArgs{
		Owner:          "airflow",
		DependsOnPast:  false,
		StartDate:      now,
		Retries:        1,
		RetryDelay:     domain.NewDuration(5 * time.Minute),
		Email:          []string{"airflow@example.com"},
		EmailOnFailure: false,
		EmailOnRetry:   false,
	}
}

// HelloWorld reads a JSON object from S3, logs it, then reaches end.
func HelloWorld(operatorExists workflow.OperatorLookup) (*domain.Workflow, error) {
	return workflow.New(HelloWorldID).
		Description("Sample DAG to demo S3 object read").
		Tags("ServerlessLand").
		DefaultArgs(DefaultArgs(time.Now())).
		RunTimeout(5*time.Minute).
		PausedUponCreation(false).
		Param(ParamSourceBucket, domain.Param{
			Type:        domain.ParamTypeString,
			Title:       "S3 source bucket name",
			Description: "S3 source bucket name for dag flow configuration file",
		}).
		Param(ParamSourceBucketKey, domain.Param{
			Type:        domain.ParamTypeString,
			Title:       "S3 source bucket key",
			Description: "S3 source bucket key for dag flow configuration file",
		}).
		Task(TaskReadS3Input, operators.S3ReadJSONOperatorName, map[string]any{
			"bucket": "{{ .params." + ParamSourceBucket + " }}",
			"key":    "{{ .params." + ParamSourceBucketKey + " }}",
		}).
		Task(TaskEnd, operators.EmptyOperatorName, nil).
		Chain(TaskReadS3Input, TaskEnd).
		Build(operatorExists)
}
