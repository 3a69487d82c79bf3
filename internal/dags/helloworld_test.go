package dags

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/maestro/hello-world-dag/internal/operators"
	"github.com/maestro/hello-world-dag/internal/workflow"
)

func operatorExists(name string) bool {
	return name == operators.EmptyOperatorName || name == operators.S3ReadJSONOperatorName
}

func TestHelloWorld(t *testing.T) {
	wf, err := HelloWorld(operatorExists)
	require.NoError(t, err)

	require.Equal(t, HelloWorldID, wf.Name)
	require.Equal(t, []string{"ServerlessLand"}, wf.Tags)
	require.Equal(t, 5*time.Minute, wf.RunTimeout.Duration)
	require.Empty(t, wf.Schedule)
	require.False(t, wf.PausedUponCreation)

	args := wf.DefaultArgs
	require.Equal(t, "airflow", args.Owner)
	require.False(t, args.DependsOnPast)
	require.Equal(t, 1, args.Retries)
	require.Equal(t, 5*time.Minute, args.RetryDelay.Duration)
	require.Equal(t, []string{"airflow@example.com"}, args.Email)
	require.False(t, args.EmailOnFailure)
	require.False(t, args.EmailOnRetry)

	require.True(t, wf.Params[ParamSourceBucket].Required())
	require.True(t, wf.Params[ParamSourceBucketKey].Required())

	levels, err := workflow.NewValidator(operatorExists).Levels(wf)
	require.NoError(t, err)
	require.Equal(t, [][]string{{TaskReadS3Input}, {TaskEnd}}, levels)
}

func TestHelloWorldMatchesYAML(t *testing.T) {
	built, err := HelloWorld(operatorExists)
	require.NoError(t, err)

	parsed, err := workflow.NewParser(operatorExists).ParseFile("../../workflows/hello-world-dag.yaml")
	require.NoError(t, err)

	// The YAML file leaves start_date unset.
	parsed.DefaultArgs.StartDate = built.DefaultArgs.StartDate

	require.Equal(t, built, parsed)
}

func TestHelloWorldUnknownOperators(t *testing.T) {
	_, err := HelloWorld(func(string) bool { return false })
	require.ErrorContains(t, err, "unknown operator")
}
