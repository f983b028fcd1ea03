package utils

import (
	"context"

	"github.com/gin-gonic/gin"
)

type CustomContext struct {
	AppSource string
	BatchId   string
}

type customContextKeyType string

const customContextKey customContextKeyType = "CUSTOM_CONTEXT"

func WithCustomContext(ctx context.Context, customContext *CustomContext) context.Context {
	return context.WithValue(ctx, customContextKey, customContext)
}

func WithCustomContextFromGinRequest(c *gin.Context, appSource string) context.Context {
	return WithCustomContext(c.Request.Context(), &CustomContext{AppSource: appSource})
}

func GetContext(ctx context.Context) *CustomContext {
	customContext, ok := ctx.Value(customContextKey).(*CustomContext)
	if !ok {
		return new(CustomContext)
	}
	return customContext
}

func GetAppSourceFromContext(ctx context.Context) string {
	return GetContext(ctx).AppSource
}

func GetBatchIdFromContext(ctx context.Context) string {
	return GetContext(ctx).BatchId
}

// SetBatchIdInContext returns a child context; the parent's value is untouched.
func SetBatchIdInContext(ctx context.Context, batchId string) context.Context {
	customContext := *GetContext(ctx)
	customContext.BatchId = batchId
	return WithCustomContext(ctx, &customContext)
}
