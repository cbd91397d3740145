package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// logHooks implements the observability hooks by writing debug logs. It is
// registered by --verbose.
type logHooks struct {
	logger *log.Logger
}

func newLogHooks(l *log.Logger) *logHooks {
	return &logHooks{logger: l.WithPrefix("hooks")}
}

func (h *logHooks) OnBuildStart(_ context.Context, lines int) {
	h.logger.Debug("build started", "lines", lines)
}

func (h *logHooks) OnBuildComplete(_ context.Context, nodes, edges int, d time.Duration, err error) {
	h.stage("build", d, err, "nodes", nodes, "edges", edges)
}

func (h *logHooks) OnTrianglesComplete(_ context.Context, count int, d time.Duration, err error) {
	h.stage("triangles", d, err, "count", count)
}

func (h *logHooks) OnCliqueComplete(_ context.Context, strategy string, size int, d time.Duration, err error) {
	h.stage("clique", d, err, "strategy", strategy, "size", size)
}

func (h *logHooks) OnRenderStart(_ context.Context, format string) {
	h.logger.Debug("render started", "format", format)
}

func (h *logHooks) OnRenderComplete(_ context.Context, format string, d time.Duration, err error) {
	h.stage("render", d, err, "format", format)
}

func (h *logHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *logHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *logHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *logHooks) OnRequest(_ context.Context, method, route string) {
	h.logger.Debug("request", "method", method, "route", route)
}

func (h *logHooks) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	h.logger.Debug("response", "method", method, "route", route, "status", status, "duration", d)
}

func (h *logHooks) stage(name string, d time.Duration, err error, kv ...any) {
	kv = append(kv, "duration", d)
	if err != nil {
		h.logger.Debug(name+" failed", append(kv, "error", err)...)
		return
	}
	h.logger.Debug(name+" complete", kv...)
}
