package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/png"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/ByLCY/ttp/emoji"
	"github.com/ByLCY/ttp/fonts"
	"github.com/ByLCY/ttp/logger"
	"github.com/ByLCY/ttp/renderer"
	canvasrenderer "github.com/ByLCY/ttp/renderer/canvas"
)

type stubRenderer struct {
	contentType string
	err         error
	got         string
}

func (s *stubRenderer) Render(_ context.Context, text string) ([]byte, error) {
	s.got = text
	if s.err != nil {
		return nil, s.err
	}
	return []byte("img:" + text), nil
}

func (s *stubRenderer) ContentType() string { return s.contentType }

func quietLogger() *slog.Logger {
	return slog.New(logger.NewHandler(io.Discard, logger.LevelInfo))
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestRenderEndpoints(t *testing.T) {
	static := &stubRenderer{contentType: "image/png"}
	animated := &stubRenderer{contentType: "image/webp"}
	h := New(renderer.Set{Static: static, Animated: animated}, quietLogger()).Handler()

	rec := get(t, h, "/ttp?texto="+url.QueryEscape("olá mundo"))
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Fatalf("content type %q", ct)
	}
	if rec.Body.String() != "img:olá mundo" || static.got != "olá mundo" {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}
	if cl := rec.Header().Get("Content-Length"); cl != strconv.Itoa(rec.Body.Len()) {
		t.Fatalf("content length %q, body %d", cl, rec.Body.Len())
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatal("missing CORS header")
	}

	rec = get(t, h, "/attp?texto=Loop")
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "image/webp" || animated.got != "Loop" {
		t.Fatalf("unexpected /attp response %d %q", rec.Code, rec.Header().Get("Content-Type"))
	}
}

func TestMissingTextIsBadRequest(t *testing.T) {
	h := New(renderer.Set{Static: &stubRenderer{}, Animated: &stubRenderer{}}, quietLogger()).Handler()
	for _, target := range []string{"/ttp", "/ttp?texto=", "/attp", "/attp?texto="} {
		rec := get(t, h, target)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", target, rec.Code)
		}
		if rec.Body.String() != msgMissingText {
			t.Fatalf("%s: unexpected body %q", target, rec.Body.String())
		}
	}
}

func TestRenderFailureHidesDetails(t *testing.T) {
	failing := &stubRenderer{err: fmt.Errorf("%w: font exploded at /secret/path", renderer.ErrImageConversion)}
	h := New(renderer.Set{Static: failing}, quietLogger()).Handler()
	rec := get(t, h, "/ttp?texto=Hi")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "secret") || rec.Body.String() != msgRenderError {
		t.Fatalf("error details leaked: %q", rec.Body.String())
	}
}

type blockingRenderer struct{}

func (blockingRenderer) Render(ctx context.Context, _ string) ([]byte, error) {
	<-ctx.Done()
	return nil, fmt.Errorf("%w: %v", renderer.ErrImageConversion, ctx.Err())
}

func (blockingRenderer) ContentType() string { return "image/png" }

func TestRenderTimeoutCancelsSlowRender(t *testing.T) {
	h := New(renderer.Set{Static: blockingRenderer{}, Animated: blockingRenderer{}}, quietLogger(), WithTimeout(30*time.Millisecond)).Handler()
	start := time.Now()
	rec := get(t, h, "/ttp?texto=Hi")
	if rec.Code != http.StatusInternalServerError || rec.Body.String() != msgRenderError {
		t.Fatalf("expected 500 after timeout, got %d %q", rec.Code, rec.Body.String())
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Fatalf("render timeout not applied: %s", elapsed)
	}
}

func TestMethodNotAllowedAndPreflight(t *testing.T) {
	h := New(renderer.Set{Static: &stubRenderer{}}, quietLogger()).Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ttp?texto=Hi", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/ttp", nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for preflight, got %d", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	rec := get(t, New(renderer.Set{}, quietLogger()).Handler(), "/healthz")
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("unexpected healthz %d %q", rec.Code, rec.Body.String())
	}
}

func TestRequestsAreLogged(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(logger.NewHandler(&buf, logger.LevelInfo))
	h := New(renderer.Set{Static: &stubRenderer{}}, log).Handler()
	get(t, h, "/ttp")
	if !strings.Contains(buf.String(), "method=GET, path=/ttp, status=400") {
		t.Fatalf("request not logged: %q", buf.String())
	}
}

func TestEndToEndWithCanvasRenderers(t *testing.T) {
	family, err := fonts.Register("impact", fonts.DefaultSrc)
	if err != nil {
		t.Fatalf("register font: %v", err)
	}
	failingEmoji := emoji.ResolverFunc(func(context.Context, rune) (image.Image, error) {
		return nil, errors.New("network down")
	})
	opts := canvasrenderer.Options{Resolver: failingEmoji, Logger: quietLogger()}
	static := canvasrenderer.NewStaticRenderer(family, opts)
	set := renderer.Set{
		Static:   static,
		Animated: canvasrenderer.NewAnimatedRenderer(family, opts),
	}
	srv := httptest.NewServer(New(set, quietLogger()).Handler())
	defer srv.Close()

	fetch := func(path string) (*http.Response, []byte) {
		t.Helper()
		resp, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			t.Fatal(err)
		}
		return resp, body
	}

	for _, path := range []string{"/ttp?texto=", "/attp?texto="} {
		if resp, _ := fetch(path); resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", path, resp.StatusCode)
		}
	}

	resp, body := fetch("/ttp?texto=Hi")
	if resp.StatusCode != http.StatusOK || resp.Header.Get("Content-Type") != "image/png" || len(body) == 0 {
		t.Fatalf("/ttp Hi: %d %q %d bytes", resp.StatusCode, resp.Header.Get("Content-Type"), len(body))
	}
	if _, err := png.Decode(bytes.NewReader(body)); err != nil {
		t.Fatalf("decode png: %v", err)
	}

	if lines := static.Layout("Hello World Test").Lines; len(lines) < 2 {
		t.Fatalf("expected multi-line layout, got %v", lines)
	}
	if resp, _ := fetch("/ttp?texto=" + url.QueryEscape("Hello World Test")); resp.StatusCode != http.StatusOK {
		t.Fatalf("multi-line render failed: %d", resp.StatusCode)
	}

	if resp, _ := fetch("/ttp?texto=" + url.QueryEscape("🔥")); resp.StatusCode != http.StatusOK {
		t.Fatalf("emoji fallback render failed: %d", resp.StatusCode)
	}

	resp, body = fetch("/attp?texto=Loop")
	if resp.StatusCode != http.StatusOK || resp.Header.Get("Content-Type") != "image/webp" {
		t.Fatalf("/attp Loop: %d %q", resp.StatusCode, resp.Header.Get("Content-Type"))
	}
	anim, err := gif.DecodeAll(bytes.NewReader(body))
	if err != nil {
		t.Fatalf("decode animation: %v", err)
	}
	if len(anim.Image) != 7 {
		t.Fatalf("expected 7 frames, got %d", len(anim.Image))
	}
	for i, d := range anim.Delay {
		if d != 20 {
			t.Fatalf("frame %d delay %d", i, d)
		}
	}
}

func TestRunShutsDownOnCancel(t *testing.T) {
	s := New(renderer.Set{}, quietLogger())
	ctx, cancel := context.WithCancel(context.Background())
	ready := make(chan net.Addr, 1)
	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx, RunOptions{
			Addr:              "127.0.0.1:0",
			ReadHeaderTimeout: time.Second,
			ShutdownTimeout:   time.Second,
			Ready:             func(a net.Addr) { ready <- a },
		})
	}()

	var addr net.Addr
	select {
	case addr = <-ready:
	case err := <-done:
		t.Fatalf("Run exited early: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not start")
	}
	resp, err := http.Get("http://" + addr.String() + "/healthz")
	if err != nil {
		t.Fatalf("healthz: %v", err)
	}
	resp.Body.Close()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
