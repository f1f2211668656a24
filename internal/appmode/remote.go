package appmode

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/UnendingLoop/TextSplitter/internal/apperr"
	"github.com/UnendingLoop/TextSplitter/internal/config"
	"github.com/UnendingLoop/TextSplitter/internal/model"
	"github.com/UnendingLoop/TextSplitter/internal/qaggr"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

const (
	pingBudget    = 5 * time.Second
	resultsBudget = 1 * time.Minute
)

// RunRemote sends the task to every node and returns the result a quorum of them agrees on
func RunRemote(ctx context.Context, cfg *config.Config, task *model.TaskDTO, log *zap.Logger) (*model.TaskResult, error) {
	if len(cfg.Nodes) < cfg.Quorum {
		return nil, apperr.InvalidValue("quorum", errors.Newf("%d nodes cannot reach quorum %d", len(cfg.Nodes), cfg.Quorum))
	}

	client := &http.Client{}

	if err := checkNodesHealth(ctx, client, cfg.Nodes, cfg.Quorum, log); err != nil {
		return nil, err
	}

	results, err := processTasks(ctx, client, cfg.Nodes, []*model.TaskDTO{task}, cfg.Quorum, log)
	if err != nil {
		return nil, err
	}
	return &results[0], nil
}

func nodeURL(addr, path string) string {
	if !strings.Contains(addr, "://") {
		addr = "http://" + addr
	}
	return strings.TrimSuffix(addr, "/") + path
}

func checkNodesHealth(ctx context.Context, client *http.Client, nodes []string, quorum int, log *zap.Logger) error {
	wg := sync.WaitGroup{}
	var goodNodes atomic.Int64
	rCtx, cancel := context.WithTimeout(ctx, pingBudget)
	defer cancel()

	for _, addr := range nodes {
		wg.Go(func() {
			req, err := http.NewRequestWithContext(rCtx, http.MethodGet, nodeURL(addr, "/ping"), nil)
			if err != nil {
				return
			}

			resp, err := client.Do(req)
			if err != nil {
				log.Warn("node is unreachable", zap.String("node", addr), zap.Error(err))
				return
			}
			defer resp.Body.Close()

			if resp.StatusCode == http.StatusOK {
				goodNodes.Add(1)
			}
		})
	}

	wg.Wait()
	if res := goodNodes.Load(); res < int64(quorum) {
		return errors.Newf("only %d nodes are OK to continue, while quorum should be %d", res, quorum)
	}
	return nil
}

// processTasks fans the tasks out to every node. When no quorum forms and some node rejected
// a task, that rejection is returned since it usually explains the failure better.
func processTasks(ctx context.Context, client *http.Client, nodes []string, tasks []*model.TaskDTO, quorum int, log *zap.Logger) ([]model.TaskResult, error) {
	ctx, cancel := context.WithTimeout(ctx, resultsBudget)
	defer cancel()

	// buffered for every answer, so late senders never block once collection is over
	resCollect := make(chan model.TaskResult, len(nodes)*len(tasks))
	pending := make([]*qaggr.Pending, 0, len(tasks))

	var (
		senders  sync.WaitGroup
		mu       sync.Mutex
		rejected error
	)

	for _, task := range tasks {
		raw, err := json.Marshal(task)
		if err != nil {
			return nil, errors.Wrap(err, "marshal task")
		}

		tCtx, tCancel := context.WithCancel(ctx)
		defer tCancel()
		pending = append(pending, &qaggr.Pending{Task: task, Cancel: tCancel})

		for _, addr := range nodes {
			senders.Go(func() {
				if err := sendTaskToNode(tCtx, client, addr, raw, resCollect, log); err != nil {
					mu.Lock()
					if rejected == nil {
						rejected = err
					}
					mu.Unlock()
				}
			})
		}
	}

	go func() {
		senders.Wait()
		close(resCollect)
	}()

	results, err := qaggr.CollectAggregateResults(ctx, resCollect, pending, quorum)
	if err != nil && errors.Is(err, qaggr.ErrDisagreed) {
		mu.Lock()
		defer mu.Unlock()
		if rejected != nil {
			return nil, rejected
		}
	}
	return results, err
}

type nodeError struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// sendTaskToNode reports only a node's explicit rejection; lost or cancelled requests just
// do not vote
func sendTaskToNode(ctx context.Context, client *http.Client, addr string, raw []byte, ch chan<- model.TaskResult, log *zap.Logger) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, nodeURL(addr, "/task"), bytes.NewReader(raw))
	if err != nil {
		log.Warn("failed to build task request", zap.String("node", addr), zap.Error(err))
		return nil
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		if ctx.Err() == nil {
			log.Warn("failed to send task to node", zap.String("node", addr), zap.Error(err))
		}
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		log.Warn("node rejected task", zap.String("node", addr), zap.Int("status", resp.StatusCode), zap.ByteString("body", body))

		var ne nodeError
		if err := json.Unmarshal(body, &ne); err != nil || ne.Error == "" {
			return errors.Newf("node %s answered %d", addr, resp.StatusCode)
		}
		return apperr.FromKind(ne.Kind, ne.Error)
	}

	var result model.TaskResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		log.Warn("failed to decode result from node", zap.String("node", addr), zap.Error(err))
		return nil
	}
	ch <- result
	return nil
}
