package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const jobTemplate = `
name: harness
description: Cabin harness
processes:
  - operation: Crimp
    standard_time: 10m
  - operation: Visual inspection
    standard_time_seconds: 300
    type: quality
`

type cli struct {
	t      *testing.T
	dbPath string
}

func (c cli) run(args ...string) (string, error) {
	c.t.Helper()

	var stdout, stderr bytes.Buffer
	all := append([]string{"shopfloor", "--no-log", "--db-path", c.dbPath}, args...)
	err := Run(context.Background(), all, strings.NewReader(""), &stdout, &stderr)
	return stdout.String(), err
}

func (c cli) mustRun(args ...string) string {
	c.t.Helper()

	out, err := c.run(args...)
	require.NoError(c.t, err)
	return out
}

func TestRunWorkflow(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	dir := t.TempDir()
	c := cli{t: t, dbPath: filepath.Join(dir, "shopfloor.db")}
	jobFile := filepath.Join(dir, "harness.yaml")
	require.NoError(os.WriteFile(jobFile, []byte(jobTemplate), 0o600))

	c.mustRun("user", "add", "planner", "--role", "planning")
	c.mustRun("user", "add", "tech", "--role", "technician", "--full-name", "Ana Tech")
	c.mustRun("user", "add", "qa", "--role", "quality")

	var users []map[string]any
	require.NoError(json.Unmarshal([]byte(c.mustRun("user", "list", "--role", "quality", "--format", "json")), &users))
	require.Len(users, 1)
	assert.Equal("qa", users[0]["username"])

	out := c.mustRun("job", "import", jobFile)
	assert.Contains(out, "Crimp")

	var order map[string]any
	out = c.mustRun("--user", "planner", "joborder", "create", "JO-7", "--job", "harness", "--title", "Batch",
		"--devices", "2", "--due", "2030-01-01", "--format", "json")
	require.NoError(json.Unmarshal([]byte(out), &order))
	assert.Equal("2030-01-01", order["due_date"])
	assert.Len(order["devices"], 2)

	var tasks []map[string]any
	require.NoError(json.Unmarshal([]byte(c.mustRun("--user", "tech", "task", "list", "--format", "json")), &tasks))
	require.Len(tasks, 2)
	taskID := tasks[0]["id"].(string)
	assert.Equal("Crimp", tasks[0]["operation_name"])

	out = c.mustRun("--user", "tech", "task", "start", taskID)
	assert.Contains(out, taskID)

	var ended []map[string]any
	require.NoError(json.Unmarshal([]byte(c.mustRun("--user", "tech", "task", "end", taskID, "--notes", "done", "--format", "json")), &ended))
	require.Len(ended, 1)
	assert.Equal("pending_qa", ended[0]["status"])
	assert.Equal("done", ended[0]["notes"])

	var ns []map[string]any
	require.NoError(json.Unmarshal([]byte(c.mustRun("--user", "qa", "notification", "list", "--unread", "--format", "json")), &ns))
	require.Len(ns, 1)
	assert.Equal("task_ready_for_inspection", ns[0]["type"])

	out = c.mustRun("--user", "qa", "inspect", taskID, "accepted", "-m", "looks good")
	assert.Contains(out, "pending_tester")

	var sum map[string]int
	require.NoError(json.Unmarshal([]byte(c.mustRun("task", "summary", "--format", "json")), &sum))
	assert.Equal(1, sum["pending_tester"])
	assert.Equal(3, sum["available"])
}

func TestRunErrors(t *testing.T) {
	tests := map[string]struct {
		args []string
	}{
		"An unknown command should fail": {
			args: []string{"fly"},
		},
		"Listing tasks without a user should fail": {
			args: []string{"task", "list"},
		},
		"Adding a user with an unknown role should fail": {
			args: []string{"user", "add", "bob", "--role", "pilot"},
		},
		"An invalid status filter should fail": {
			args: []string{"--user", "bob", "task", "list", "--status", "flying"},
		},
		"Creating a job order with a bad due date should fail": {
			args: []string{"--user", "bob", "joborder", "create", "JO-1", "--title", "x", "--due", "tomorrow"},
		},
		"An unknown user should not list tasks": {
			args: []string{"--user", "ghost", "task", "list"},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			c := cli{t: t, dbPath: filepath.Join(t.TempDir(), "shopfloor.db")}
			_, err := c.run(test.args...)
			assert.Error(t, err)
		})
	}
}
