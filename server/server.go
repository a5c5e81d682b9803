// Package server 暴露 /ttp 与 /attp 两个贴纸渲染接口。
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/ByLCY/ttp/renderer"
)

// 对外的错误文本固定，不包含内部细节。
const (
	msgMissingText = `O parâmetro "texto" é obrigatório.`
	msgRenderError = "Erro na conversão de texto para imagem."
)

// Server 把 HTTP 请求转交给渲染器。
type Server struct {
	renderers renderer.Set
	logger    *slog.Logger
	timeout   time.Duration
}

// Option 调整 Server 的可选参数。
type Option func(*Server)

// WithTimeout 限制单次渲染的最长时间；0 表示只跟随请求上下文。
func WithTimeout(d time.Duration) Option {
	return func(s *Server) { s.timeout = d }
}

// New 创建 Server。
func New(set renderer.Set, logger *slog.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{renderers: set, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler 返回带请求日志与 CORS 的路由。
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ttp", s.handleRender(renderer.ModeStatic))
	mux.HandleFunc("/attp", s.handleRender(renderer.ModeAnimated))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, http.StatusOK, "text/plain; charset=utf-8", []byte("ok"))
	})
	return s.logRequests(withCORS(mux))
}

func (s *Server) handleRender(mode renderer.Mode) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD, OPTIONS")
			writeText(w, http.StatusMethodNotAllowed, http.StatusText(http.StatusMethodNotAllowed))
			return
		}

		ctx := r.Context()
		if s.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, s.timeout)
			defer cancel()
		}

		req := renderer.Request{Text: r.URL.Query().Get("texto"), Mode: mode}
		data, contentType, err := s.renderers.Render(ctx, req)
		switch {
		case errors.Is(err, renderer.ErrEmptyText):
			writeText(w, http.StatusBadRequest, msgMissingText)
			return
		case err != nil:
			s.logger.Error("渲染请求失败", "mode", mode.String(), "error", err)
			writeText(w, http.StatusInternalServerError, msgRenderError)
			return
		}
		writeBody(w, http.StatusOK, contentType, data)
	}
}

func writeText(w http.ResponseWriter, status int, msg string) {
	writeBody(w, status, "text/plain; charset=utf-8", []byte(msg))
}

func writeBody(w http.ResponseWriter, status int, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil && !errors.Is(err, http.ErrBodyNotAllowed) {
		slog.Debug("写入响应失败", "error", err)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(p []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(p)
	r.bytes += n
	return n, err
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)
		s.logger.Info("请求完成",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"bytes", rec.bytes,
			"duration", time.Since(start))
	})
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Allow-Methods", "GET, HEAD, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
