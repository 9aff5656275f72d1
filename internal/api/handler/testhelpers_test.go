package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iconidentify/bskye/internal/service"
)

// testLogger returns a silent logger for tests.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mockEmbedRenderer is a test implementation of EmbedRenderer.
type mockEmbedRenderer struct {
	postDoc    string
	postErr    error
	direct     *service.DirectResult
	directErr  error
	profileDoc string
	profileErr error

	postReqs    []service.PostRequest
	directIdx   []int
	profileReqs []service.ProfileRequest
}

func (m *mockEmbedRenderer) RenderPost(ctx context.Context, req service.PostRequest) (string, error) {
	m.postReqs = append(m.postReqs, req)
	return m.postDoc, m.postErr
}

func (m *mockEmbedRenderer) DirectMedia(ctx context.Context, req service.PostRequest, index int) (*service.DirectResult, error) {
	m.postReqs = append(m.postReqs, req)
	m.directIdx = append(m.directIdx, index)
	return m.direct, m.directErr
}

func (m *mockEmbedRenderer) RenderProfile(ctx context.Context, req service.ProfileRequest) (string, error) {
	m.profileReqs = append(m.profileReqs, req)
	return m.profileDoc, m.profileErr
}

// mockPinger is a test implementation of Pinger.
type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(ctx context.Context) error {
	return m.err
}

// withURLParams attaches chi route parameters to r, as the router would.
func withURLParams(r *http.Request, kv ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(kv); i += 2 {
		rctx.URLParams.Add(kv[i], kv[i+1])
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}
