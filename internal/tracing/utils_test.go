package tracing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go/mocktracer"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/customeros/mailtriage/internal/utils"
)

func TestSpanTags(t *testing.T) {
	tracer := mocktracer.New()
	span := tracer.StartSpan("op")

	ctx := utils.WithCustomContext(context.Background(), &utils.CustomContext{BatchId: "batch_1"})
	SetDefaultEngineSpanTags(ctx, span)
	TagMessage(span, "m1")
	TagEntity(span, "")
	TraceErr(span, errors.New("boom"))
	span.Finish()

	finished := tracer.FinishedSpans()
	require.Len(t, finished, 1)
	tags := finished[0].Tags()
	assert.Equal(t, "batch_1", tags[SpanTagBatchId])
	assert.Equal(t, "m1", tags[SpanTagMessageId])
	assert.Equal(t, SpanTagComponentEngine, tags[SpanTagComponent])
	assert.Equal(t, true, tags["error"])
	assert.NotContains(t, tags, SpanTagEntityId)
}

func TestTraceErr_NilSafe(t *testing.T) {
	assert.NotPanics(t, func() {
		TraceErr(nil, errors.New("x"))
		TraceErr(mocktracer.New().StartSpan("op"), nil)
	})
}

func TestRecoveryWithJaeger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tracer := mocktracer.New()

	r := gin.New()
	r.Use(gin.Recovery(), RecoveryWithJaeger(tracer))
	r.GET("/panic", func(c *gin.Context) { panic("kaboom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	finished := tracer.FinishedSpans()
	require.Len(t, finished, 1)
	assert.Equal(t, "panic-recovery", finished[0].OperationName)
	assert.Equal(t, true, finished[0].Tags()["error"])
}
