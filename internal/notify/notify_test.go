package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestQueue_SuccessAndDrain(t *testing.T) {
	q := NewQueue(0)
	q.Success(Notification{Content: "ok", Duration: 3 * time.Second})
	q.Push(Notification{Content: "info"})

	got := q.Drain()
	require.Len(t, got, 2)
	require.Equal(t, KindSuccess, got[0].Kind)
	require.Equal(t, int64(3000), got[0].DurationMs)
	require.Equal(t, KindInfo, got[1].Kind)
	require.Empty(t, q.Drain())
}

func TestQueue_DropsOldest(t *testing.T) {
	q := NewQueue(2)
	q.Push(Notification{Content: "1"})
	q.Push(Notification{Content: "2"})
	q.Push(Notification{Content: "3"})

	got := q.Drain()
	require.Equal(t, "2", got[0].Content)
	require.Equal(t, "3", got[1].Content)
}
