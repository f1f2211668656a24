// Package transport exposes the text operations and node settings over HTTP (ginext)
package transport

import (
	"context"
	"net/http"
	"time"

	"github.com/UnendingLoop/TextSplitter/internal/apperr"
	"github.com/UnendingLoop/TextSplitter/internal/model"
	"github.com/UnendingLoop/TextSplitter/internal/settings"
	"github.com/docker/distribution/uuid"
	"github.com/gin-gonic/gin"
	"github.com/wb-go/wbf/ginext"
	"go.uber.org/zap"
)

const RequestIDHeader = "X-Request-ID"

type Processor interface {
	ProcessInput(ctx context.Context, task *model.TaskDTO) (*model.TaskResult, error)
}

type SettingsStore interface {
	Get() settings.Settings
	Set(next settings.Settings) error
}

type handlers struct {
	proc  Processor
	store SettingsStore
	log   *zap.Logger
}

// NewServer wires the routes; settings routes are only served when a store is given
func NewServer(addr string, proc Processor, store SettingsStore, log *zap.Logger) *http.Server {
	if log == nil {
		log = zap.NewNop()
	}
	h := &handlers{proc: proc, store: store, log: log}

	engine := ginext.New("release")
	engine.Use(h.requestID)
	engine.GET("/ping", h.HealthCheck)
	engine.POST("/task", h.ReceiveTask)
	engine.POST("/api/:op", h.RunOperation)
	if store != nil {
		engine.GET("/settings", h.GetSettings)
		engine.PUT("/settings", h.PutSettings)
	}

	return &http.Server{
		Addr:              addr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// requestID tags every request and logs it once it is served
func (h *handlers) requestID(ctx *ginext.Context) {
	rid := ctx.GetHeader(RequestIDHeader)
	if rid == "" {
		rid = uuid.Generate().String()
	}
	ctx.Set("rid", rid)
	ctx.Header(RequestIDHeader, rid)

	start := time.Now()
	ctx.Next()

	h.log.Info("request served",
		zap.String("rid", rid),
		zap.String("method", ctx.Request.Method),
		zap.String("path", ctx.FullPath()),
		zap.Int("status", ctx.Writer.Status()),
		zap.Duration("took", time.Since(start)),
	)
}

func (h *handlers) HealthCheck(ctx *ginext.Context) {
	ctx.Status(http.StatusOK)
}

// ReceiveTask serves complete tasks, as sent by a node running in remote mode
func (h *handlers) ReceiveTask(ctx *ginext.Context) {
	var task model.TaskDTO
	if err := ctx.ShouldBindJSON(&task); err != nil {
		badRequest(ctx, err)
		return
	}

	h.process(ctx, &task)
}

// RunOperation takes the operation from the path and generates the task id
func (h *handlers) RunOperation(ctx *ginext.Context) {
	var req model.OpRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err)
		return
	}

	task := model.TaskDTO{
		TaskID: uuid.Generate().String(),
		Op:     model.Operation(ctx.Param("op")),
		Text:   req.Text,
		Text2:  req.Text2,
		Param:  req.Param,
	}
	h.process(ctx, &task)
}

func (h *handlers) process(ctx *ginext.Context, task *model.TaskDTO) {
	res, err := h.proc.ProcessInput(ctx.Request.Context(), task)
	if err != nil {
		h.log.Warn("task failed",
			zap.String("rid", ctx.GetString("rid")),
			zap.String("tid", task.TaskID),
			zap.String("op", string(task.Op)),
			zap.Error(err),
		)
		failed(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, res)
}

func (h *handlers) GetSettings(ctx *ginext.Context) {
	ctx.JSON(http.StatusOK, h.store.Get())
}

// PutSettings merges the body over the current document, so partial updates are fine
func (h *handlers) PutSettings(ctx *ginext.Context) {
	next := h.store.Get()
	if err := ctx.ShouldBindJSON(&next); err != nil {
		badRequest(ctx, err)
		return
	}
	if err := h.store.Set(next); err != nil {
		failed(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, h.store.Get())
}

func badRequest(ctx *ginext.Context, err error) {
	ctx.JSON(http.StatusBadRequest, gin.H{"error": "failed to parse request body: " + err.Error(), "kind": "InvalidRequest"})
}

func failed(ctx *ginext.Context, err error) {
	ctx.JSON(apperr.HTTPStatus(err), gin.H{"error": err.Error(), "kind": apperr.Kind(err)})
}
