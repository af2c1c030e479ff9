package debounce

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDebouncer_CoalescesToLastTrigger(t *testing.T) {
	d := New(30 * time.Millisecond)

	var got atomic.Int32
	for i := 1; i <= 5; i++ {
		v := int32(i)
		d.Trigger("qty:v-1", func() { got.Store(v) })
		time.Sleep(5 * time.Millisecond)
	}

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(5), got.Load())
}

func TestDebouncer_KeysAreIndependent(t *testing.T) {
	d := New(20 * time.Millisecond)

	var fired atomic.Int32
	d.Trigger("qty:v-1", func() { fired.Add(1) })
	d.Trigger("qty:v-2", func() { fired.Add(1) })

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(2), fired.Load())
}

func TestDebouncer_Cancel(t *testing.T) {
	d := New(20 * time.Millisecond)

	var fired atomic.Bool
	d.Trigger("qty:v-1", func() { fired.Store(true) })
	d.Cancel("qty:v-1")

	time.Sleep(80 * time.Millisecond)
	assert.False(t, fired.Load())
}

func TestDebouncer_Stop(t *testing.T) {
	d := New(20 * time.Millisecond)

	var fired atomic.Int32
	d.Trigger("a", func() { fired.Add(1) })
	d.Trigger("b", func() { fired.Add(1) })
	d.Stop()

	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, int32(0), fired.Load())
}
