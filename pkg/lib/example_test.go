package lib_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing/fstest"
	"time"

	"github.com/joddb/shopfloor/pkg/lib"
)

// This example shows a technician working a task and the quality review.
func Example_workflow() {
	ctx := context.Background()

	dir, err := os.MkdirTemp("", "shopfloor-example-*")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(dir)

	client, err := lib.New(ctx, lib.Config{DBPath: filepath.Join(dir, "shopfloor.db")})
	if err != nil {
		panic(err)
	}
	defer client.Close()

	for _, u := range []lib.AddUserOpts{
		{Username: "planner", Role: lib.RolePlanning},
		{Username: "ana", Role: lib.RoleTechnician},
		{Username: "qa-john", Role: lib.RoleQuality},
	} {
		if _, err := client.AddUser(ctx, u); err != nil {
			panic(err)
		}
	}

	jobs := fstest.MapFS{"cable.yaml": {Data: []byte("name: cable\nprocesses:\n  - operation: Crimp\n    standard_time: 15m\n")}}
	if _, err := client.ImportJob(ctx, jobs, "cable.yaml"); err != nil {
		panic(err)
	}
	jo, err := client.CreateJobOrder(ctx, "planner", lib.CreateJobOrderOpts{
		Job: "cable", OrderCode: "CB-1", Title: "Cables", TotalDevices: 1, DueDate: time.Now().AddDate(0, 0, 7),
	})
	if err != nil {
		panic(err)
	}
	fmt.Printf("Device: %s\n", jo.Devices[0].SerialNumber)

	tasks, err := client.ListTasks(ctx, "ana", nil)
	if err != nil {
		panic(err)
	}
	task := tasks[0]

	if _, err := client.StartTasks(ctx, "ana", task.ID); err != nil {
		panic(err)
	}
	ended, err := client.EndTask(ctx, "ana", task.ID, "")
	if err != nil {
		panic(err)
	}
	fmt.Printf("%s: %s\n", ended.OperationName, ended.Status)

	reviewed, err := client.Review(ctx, "qa-john", lib.ReviewOpts{TaskID: task.ID, Decision: lib.DecisionAccepted})
	if err != nil {
		panic(err)
	}
	fmt.Printf("%s: %s\n", reviewed.OperationName, reviewed.Status)

	// Output:
	// Device: CB-1-0001
	// Crimp: pending_qa
	// Crimp: pending_tester
}

// This example shows how to check the SDK errors.
func Example_errorHandling() {
	ctx := context.Background()

	dir, err := os.MkdirTemp("", "shopfloor-example-errors-*")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(dir)

	client, err := lib.New(ctx, lib.Config{DBPath: filepath.Join(dir, "shopfloor.db")})
	if err != nil {
		panic(err)
	}
	defer client.Close()

	_, err = client.TaskTracking(ctx, "missing")
	if errors.Is(err, lib.ErrNotFound) {
		fmt.Println("Task not found")
	}

	_, err = client.ListTasks(ctx, "nobody", nil)
	if errors.Is(err, lib.ErrNotAllowed) {
		fmt.Println("Unknown user")
	}

	// Output:
	// Task not found
	// Unknown user
}
