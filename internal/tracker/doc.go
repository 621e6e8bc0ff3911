// Package tracker derives the live elapsed time and efficiency of an in progress task.
//
// All the derived values are a pure function of the task start time, its standard
// time budget and the wall clock. A [Tracker] recomputes them once per period while
// the task is in progress, the ticking is a scoped subscription that is released when
// tracking stops, the context ends or the tracked inputs change.
package tracker
