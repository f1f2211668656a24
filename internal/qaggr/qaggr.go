// Package qaggr aggregates the results returned by several nodes and picks the one a quorum agrees on
package qaggr

import (
	"context"

	"github.com/UnendingLoop/TextSplitter/internal/model"
	"github.com/UnendingLoop/TextSplitter/internal/processor"
	"github.com/cockroachdb/errors"
)

var (
	ErrNoQuorum  = errors.New("deadline exceeded or cancelled without reaching quorum")
	ErrDisagreed = errors.New("nodes answered but did not agree")
)

// Pending is a task sent to the nodes; Cancel, if set, aborts its outstanding requests
type Pending struct {
	Task   *model.TaskDTO
	Cancel context.CancelFunc
}

type votes struct {
	count  int
	result model.TaskResult
}

// CollectAggregateResults reads results until every task has quorum identical answers, the
// channel is closed or ctx is done. Results whose checksum does not match their output are not
// counted. The accepted results come back in task order.
func CollectAggregateResults(ctx context.Context, ch <-chan model.TaskResult, tasks []*Pending, quorum int) ([]model.TaskResult, error) {
	quorum = max(quorum, 1)

	pending := make(map[string]*Pending, len(tasks))
	for _, t := range tasks {
		pending[t.Task.TaskID] = t
	}

	// [TaskID][HashSumm] -> votes
	tally := make(map[string]map[uint64]*votes, len(tasks))
	reached := make(map[string]model.TaskResult, len(tasks))

	for len(reached) < len(pending) {
		select {
		case <-ctx.Done():
			return nil, errors.Wrapf(ErrNoQuorum, "%d of %d tasks settled", len(reached), len(pending))
		case res, ok := <-ch:
			if !ok {
				return nil, errors.Wrapf(ErrDisagreed, "%d of %d tasks reached quorum %d", len(reached), len(pending), quorum)
			}

			task, known := pending[res.TaskID]
			if !known {
				continue
			}
			if _, done := reached[res.TaskID]; done {
				continue
			}
			if processor.Checksum(res.Output) != res.HashSumm {
				continue
			}

			byHash := tally[res.TaskID]
			if byHash == nil {
				byHash = make(map[uint64]*votes)
				tally[res.TaskID] = byHash
			}
			v := byHash[res.HashSumm]
			if v == nil {
				v = &votes{result: res}
				byHash[res.HashSumm] = v
			}
			v.count++

			if v.count >= quorum {
				if task.Cancel != nil {
					task.Cancel()
				}
				reached[res.TaskID] = v.result
				delete(tally, res.TaskID)
			}
		}
	}

	result := make([]model.TaskResult, 0, len(tasks))
	for _, t := range tasks {
		result = append(result, reached[t.Task.TaskID])
	}
	return result, nil
}
