package log_test

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	slogctx "github.com/veqryn/slog-context"

	"github.com/openkcm/tenancy/internal/log"
	tenancycontext "github.com/openkcm/tenancy/utils/context"
)

func newBufferedLogger(buf *bytes.Buffer) {
	handler := slogctx.NewHandler(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}), nil)
	slog.SetDefault(slog.New(handler))
}

func TestInjectRequestAndTenant(t *testing.T) {
	var buf bytes.Buffer
	newBufferedLogger(&buf)

	req := httptest.NewRequest("GET", "http://acme.example.com/path", nil)
	ctx := tenancycontext.New(t.Context(), tenancycontext.WithRequestID("req-42"))
	ctx = log.InjectRequest(ctx, req)
	ctx = log.InjectTenant(ctx, "acme.example.com", "w-1")

	log.Info(ctx, "resolved")

	out := buf.String()
	assert.Contains(t, out, "requestId=req-42")
	assert.Contains(t, out, "requestData.host=acme.example.com")
	assert.Contains(t, out, "tenant.hostname=acme.example.com")
	assert.Contains(t, out, "tenant.websiteId=w-1")
}

func TestError(t *testing.T) {
	var buf bytes.Buffer
	newBufferedLogger(&buf)

	log.Error(t.Context(), "failed", errors.New("boom"))

	assert.Contains(t, buf.String(), "level=ERROR")
	assert.Contains(t, buf.String(), "boom")
}
