// Package orchestration runs several searches concurrently (one per target
// and worker count) and aggregates their results for comparison. It is
// decoupled from presentation via the ProgressReporter and ResultPresenter
// interfaces.
package orchestration
