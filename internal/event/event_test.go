package event

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypeString(t *testing.T) {
	tests := []struct {
		want string
		typ  Type
	}{
		{want: "CopyStarted", typ: CopyStarted},
		{want: "Progress", typ: Progress},
		{want: "TailWritten", typ: TailWritten},
		{want: "CopyCompleted", typ: CopyCompleted},
		{want: "CopyFailed", typ: CopyFailed},
		{want: "FileSkipped", typ: FileSkipped},
		{want: "VerifyStarted", typ: VerifyStarted},
		{want: "VerifyOK", typ: VerifyOK},
		{want: "VerifyFailed", typ: VerifyFailed},
		{want: "SourceDeleted", typ: SourceDeleted},
		{want: "DeleteFailed", typ: DeleteFailed},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.typ.String())
		})
	}
}

func TestTypeStringUnknown(t *testing.T) {
	assert.Equal(t, "Unknown", Type(999).String())
	assert.Equal(t, "Unknown", Type(0).String())
	assert.Equal(t, "Unknown", Type(-1).String())
}

func TestEventZeroValue(t *testing.T) {
	var e Event
	assert.Equal(t, Type(0), e.Type)
	assert.True(t, e.Timestamp.IsZero())
	assert.Empty(t, e.Path)
	assert.Zero(t, e.Size)
	assert.Zero(t, e.Total)
	assert.Zero(t, e.Percent)
	require.NoError(t, e.Error)
}

func TestEmitStampsTimestamp(t *testing.T) {
	ch := make(chan Event, 1)
	before := time.Now()
	Emit(ch, Event{Type: Progress, Size: 1024, Total: 4096, Percent: 25})

	e := <-ch
	assert.Equal(t, Progress, e.Type)
	assert.Equal(t, int64(1024), e.Size)
	assert.InDelta(t, 25.0, e.Percent, 0.001)
	assert.False(t, e.Timestamp.Before(before))
}

func TestEmitNeverBlocks(t *testing.T) {
	ch := make(chan Event, 1)
	Emit(ch, Event{Type: Progress})
	Emit(ch, Event{Type: Progress}) // dropped, buffer full
	Emit(nil, Event{Type: Progress})
	assert.Len(t, ch, 1)
}

func TestSendWaitsForRoom(t *testing.T) {
	ch := make(chan Event, 1)
	Emit(ch, Event{Type: Progress})

	sent := make(chan struct{})
	go func() {
		Send(ch, Event{Type: CopyFailed})
		close(sent)
	}()

	select {
	case <-sent:
		t.Fatal("Send returned while the buffer was full")
	case <-time.After(20 * time.Millisecond):
	}

	assert.Equal(t, Progress, (<-ch).Type)
	select {
	case <-sent:
	case <-time.After(time.Second):
		t.Fatal("Send did not complete after the buffer drained")
	}
	e := <-ch
	assert.Equal(t, CopyFailed, e.Type)
	assert.False(t, e.Timestamp.IsZero())
}

func TestSendNilChannel(t *testing.T) {
	assert.NotPanics(t, func() { Send(nil, Event{Type: CopyCompleted}) })
}
