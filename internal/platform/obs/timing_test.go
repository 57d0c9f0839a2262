package obs

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestTimeLogsFailureWithRequestID(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	SetLogger(zap.New(core))
	defer SetLogger(nil)

	ctx := WithRequestID(context.Background(), "abc")

	func() (err error) {
		defer Time(ctx, "directions.GetDirections")(&err)
		return errors.New("boom")
	}()

	entries := logs.FilterMessage("op failed").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "abc", fields["req_id"])
	assert.Equal(t, "directions.GetDirections", fields["op"])
	assert.Equal(t, "boom", fields["error"])
}

func TestTimeLogsSuccessAtDebug(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	SetLogger(zap.New(core))
	defer SetLogger(nil)

	func() (err error) {
		defer Time(context.Background(), "route.OptimizeRoute")(&err)
		return nil
	}()

	assert.Equal(t, 1, logs.FilterMessage("op done").Len())
	assert.Equal(t, "", RequestID(context.Background()))
}
