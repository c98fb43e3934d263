package interceptor

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
)

func TestLoggingInterceptor(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.InfoLevel)

	icpt := NewLoggingInterceptor(&logger, "/grpc.health.v1.Health/Check")

	_, err := icpt(context.Background(), nil,
		&grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"},
		func(ctx context.Context, req any) (any, error) { return "ok", nil },
	)
	require.NoError(t, err)
	assert.Empty(t, buf.String(), "quiet methods log at debug")

	_, err = icpt(context.Background(), nil,
		&grpc.UnaryServerInfo{FullMethod: "/gamefilter.Other/Call"},
		func(ctx context.Context, req any) (any, error) { return nil, errors.New("boom") },
	)
	require.Error(t, err)
	assert.Contains(t, buf.String(), `"method":"/gamefilter.Other/Call"`)
	assert.Contains(t, buf.String(), `"level":"error"`)
}
