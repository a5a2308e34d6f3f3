package pumproom

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcher_RecoversPanics(t *testing.T) {
	disp, err := newDispatcher(2, quietLogger())
	require.NoError(t, err)
	defer disp.close()

	done := make(chan struct{})
	disp.submit("panicky", func() { panic("boom") })
	disp.submit("normal", func() { close(done) })

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("pool stopped serving after a panic")
	}
}

func TestDispatcher_RunsAfterSaturation(t *testing.T) {
	disp, err := newDispatcher(1, quietLogger())
	require.NoError(t, err)
	defer disp.close()

	block := make(chan struct{})
	disp.submit("blocker", func() { <-block })

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		disp.submit("overflow", func() { wg.Done() })
	}

	waitDone := make(chan struct{})
	go func() { wg.Wait(); close(waitDone) }()

	select {
	case <-waitDone:
	case <-time.After(2 * time.Second):
		t.Fatal("overflow callbacks were dropped")
	}
	close(block)
}

func TestCallbackRegistry_LastWriteWins(t *testing.T) {
	registry := &callbackRegistry{}
	assert.Nil(t, registry.getOnInit())

	var got string
	registry.setOnInit(func(EnvironmentData) { got = "first" })
	registry.setOnInit(func(EnvironmentData) { got = "second" })
	registry.getOnInit()(EnvironmentData{})
	assert.Equal(t, "second", got)

	registry.setOnInit(nil)
	assert.Nil(t, registry.getOnInit())
}
