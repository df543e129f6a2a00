package audit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/dropDatabas3/adminconsole/internal/observability/logger"
)

func TestLog_UsesContextLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	ctx := logger.ToContext(context.Background(), zap.New(core).With(logger.RequestID("rid-1")))

	Log(ctx, EventLoginOK, logger.Username("admin"))

	require.Equal(t, 1, logs.Len())
	e := logs.All()[0]
	require.Equal(t, EventLoginOK, e.Message)
	require.Equal(t, "audit", e.LoggerName)
	fields := e.ContextMap()
	require.Equal(t, "rid-1", fields["request_id"])
	require.Equal(t, "admin", fields["username"])
	require.Equal(t, EventLoginOK, fields["event"])
}
