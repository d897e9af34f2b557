package ws

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"go-warehouse/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	mu     sync.Mutex
	frames [][]byte
	fail   bool
	closed bool
}

func (f *fakeConn) WriteMessage(_ int, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("broken pipe")
	}
	f.frames = append(f.frames, data)
	return nil
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeConn) received() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]byte(nil), f.frames...)
}

func (f *fakeConn) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func startHub(t *testing.T) (*Hub, context.CancelFunc) {
	t.Helper()
	h := NewHub(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-h.done
	})
	return h, cancel
}

func TestHub_BroadcastsToClients(t *testing.T) {
	h, _ := startHub(t)
	a, b := &fakeConn{}, &fakeConn{}
	h.Register <- a
	h.Register <- b

	h.Publish("stock_adjusted", map[string]int{"quantity": 3})

	require.Eventually(t, func() bool {
		return len(a.received()) == 1 && len(b.received()) == 1
	}, time.Second, 5*time.Millisecond)

	var msg Message
	require.NoError(t, json.Unmarshal(a.received()[0], &msg))
	assert.Equal(t, "stock_adjusted", msg.Type)
	assert.Equal(t, map[string]interface{}{"quantity": float64(3)}, msg.Payload)
}

func TestHub_DropsFailingClient(t *testing.T) {
	h, _ := startHub(t)
	bad, good := &fakeConn{fail: true}, &fakeConn{}
	h.Register <- bad
	h.Register <- good

	h.Publish("ping", nil)

	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, time.Second, 5*time.Millisecond)
	assert.True(t, bad.isClosed())
	assert.False(t, good.isClosed())
}

func TestHub_PublishNeverBlocks(t *testing.T) {
	h := NewHub(zerolog.Nop()) // not running, so nothing drains the queue

	done := make(chan struct{})
	go func() {
		for i := 0; i < broadcastBuffer*2; i++ {
			h.Publish("flood", i)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a full queue")
	}
	assert.Len(t, h.Broadcast, broadcastBuffer)
}

func TestHub_TaskListenerForwardsEvents(t *testing.T) {
	h, _ := startHub(t)
	c := &fakeConn{}
	h.Register <- c

	id := uuid.New()
	listen := h.TaskListener()
	listen(worker.Event{TaskID: id, Kind: worker.KindExportStock, Type: worker.EventProgress, Progress: worker.Progress{Current: 10, Total: 20}})
	listen(worker.Event{TaskID: id, Kind: worker.KindExportStock, Type: worker.EventFinished, Result: &worker.Result{Success: true, Message: "exported 20 products"}})

	require.Eventually(t, func() bool { return len(c.received()) == 2 }, time.Second, 5*time.Millisecond)

	var first, last struct {
		Type    string       `json:"type"`
		Payload worker.Event `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(c.received()[0], &first))
	require.NoError(t, json.Unmarshal(c.received()[1], &last))

	assert.Equal(t, "task_progress", first.Type)
	assert.Equal(t, worker.Progress{Current: 10, Total: 20}, first.Payload.Progress)
	assert.Equal(t, "task_finished", last.Type)
	require.NotNil(t, last.Payload.Result)
	assert.Equal(t, "exported 20 products", last.Payload.Result.Message)
	assert.Equal(t, id, last.Payload.TaskID)
}

func TestHub_RunClosesClientsOnShutdown(t *testing.T) {
	h, cancel := startHub(t)
	c := &fakeConn{}
	h.Register <- c

	cancel()
	<-h.done
	assert.True(t, c.isClosed())
	assert.Equal(t, 0, h.ClientCount())
}

func TestHub_FinishedTaskEventWaitsForQueueSpace(t *testing.T) {
	h := NewHub(zerolog.Nop()) // not running, the test drains the queue by hand
	for i := 0; i < broadcastBuffer; i++ {
		h.Publish("task_progress", i)
	}

	sent := make(chan struct{})
	go func() {
		h.TaskListener()(worker.Event{Type: worker.EventFinished, Result: &worker.Result{Success: true}})
		close(sent)
	}()

	select {
	case <-sent:
		t.Fatal("finished event returned while the queue was still full")
	case <-time.After(50 * time.Millisecond):
	}

	<-h.Broadcast
	select {
	case <-sent:
	case <-time.After(time.Second):
		t.Fatal("finished event was not queued once space freed up")
	}

	var last []byte
	for len(h.Broadcast) > 0 {
		last = <-h.Broadcast
	}
	var msg Message
	require.NoError(t, json.Unmarshal(last, &msg))
	assert.Equal(t, "task_finished", msg.Type)
}
