// Package lib provides a Go SDK to drive the shop floor task workflow programmatically.
//
// It lets applications (line dashboards, MES bridges, scripts) register users, import
// job templates, create job orders and move tasks through the work and review stages
// without shelling out to the shopfloor CLI.
//
// # Quick Start
//
//	client, err := lib.New(ctx, lib.Config{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	tasks, _ := client.ListTasks(ctx, "ana", nil)
//	client.StartTasks(ctx, "ana", tasks[0].ID)
//	client.EndTask(ctx, "ana", tasks[0].ID, "crimped and labeled")
//	client.Review(ctx, "qa-john", lib.ReviewOpts{TaskID: tasks[0].ID, Decision: lib.DecisionAccepted})
//
// Every method that acts on behalf of someone takes the acting user (username or ID)
// as its first argument after the context, the user role decides what is allowed.
//
// # Live Tracking
//
// A task in progress has a live elapsed time, progress and efficiency. Get a single
// reading with [Client.TaskTracking] or stream them with [Client.WatchTask]:
//
//	ch, _ := client.WatchTask(ctx, taskID, 2*time.Second)
//	for tr := range ch {
//	    fmt.Printf("%s %.0f%% (%s)\n", tr.Elapsed, tr.Efficiency, tr.Classification)
//	}
//
// # Error Handling
//
// All methods return errors that can be inspected with [errors.Is]:
//
//   - [ErrNotFound]: Resource does not exist.
//   - [ErrAlreadyExists]: Resource with the same name or code already exists.
//   - [ErrNotValid]: Invalid input or workflow transition (e.g. ending an available task).
//   - [ErrNotAllowed]: The acting user can't do the operation.
//
// # Thread Safety
//
// A [Client] is safe for concurrent use from multiple goroutines. The underlying
// storage uses SQLite with WAL mode.
package lib
