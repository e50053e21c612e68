// SPDX-License-Identifier: EPL-2.0

package ambience

type task struct {
	due uint64
	run func()
}

// taskQueue holds work to run at a later control tick.
type taskQueue struct {
	tasks []task
}

func (q *taskQueue) schedule(due uint64, fn func()) {
	q.tasks = append(q.tasks, task{due: due, run: fn})
}

// run executes, in scheduling order, every task due at or before now.
// Tasks scheduled while running wait for a later call.
func (q *taskQueue) run(now uint64) int {
	var due []task

	kept := q.tasks[:0]
	for _, t := range q.tasks {
		if t.due <= now {
			due = append(due, t)
		} else {
			kept = append(kept, t)
		}
	}
	clear(q.tasks[len(kept):])
	q.tasks = kept

	for _, t := range due {
		t.run()
	}
	return len(due)
}

func (q *taskQueue) Len() int { return len(q.tasks) }
