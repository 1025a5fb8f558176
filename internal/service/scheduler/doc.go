// Package scheduler implements the session scheduling core: daily new-item
// quotas, ordered review queues, the session state machine, and
// deterministic history replay.
//
// The package never computes memory states itself. All forgetting-curve math
// lives behind srs.Algorithm; the scheduler decides which items to show,
// in what order, and what to persist.
package scheduler
