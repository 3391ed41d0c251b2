package parser

import (
	"log/slog"

	"github.com/emersion/go-ical"
)

// Runner dispatches the classification of subcomponents and signals when all
// of them have finished. With a nil Executor every unit runs inline inside
// Submit; otherwise units run on the executor in no particular order.
//
// Submit and Join must be called from one goroutine.
type Runner struct {
	st         *state
	classifier *classifier
	exec       Executor
	logger     *slog.Logger
	seq        int
}

func newRunner(st *state, c *classifier, exec Executor, logger *slog.Logger) *Runner {
	return &Runner{st: st, classifier: c, exec: exec, logger: logger}
}

// Submit queues the classification of node
func (r *Runner) Submit(node *ical.Component) {
	seq := r.seq
	r.seq++

	if r.exec == nil {
		r.st.add(r.run(seq, node))
		return
	}

	r.st.begin()
	r.exec.Execute(func() {
		r.st.finish(r.run(seq, node))
	})
}

// Join registers cb to run once every submitted unit has finished. If that
// is already the case cb runs before Join returns. cb runs at most once.
func (r *Runner) Join(cb func()) {
	r.st.setJoin(cb)
}

// run classifies one unit. Failures, panics included, are logged and turn
// the unit into one that produced nothing.
func (r *Runner) run(seq int, node *ical.Component) (u unit) {
	name := ""
	if node != nil {
		name = node.Name
	}

	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("component classification panicked",
				"component", name,
				"index", seq,
				"panic", rec)
			u = unit{seq: seq, kind: unitNone}
		}
	}()

	u, err := r.classifier.classify(node)
	if err != nil {
		r.logger.Error("failed to classify component",
			"component", name,
			"index", seq,
			"error", err)
		return unit{seq: seq, kind: unitNone}
	}
	u.seq = seq
	return u
}
