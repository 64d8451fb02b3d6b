package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublishIsImmediate(t *testing.T) {
	b := NewBus()
	var got []int
	Subscribe(b, func(e GameStarted) { got = append(got, e.Turn) })
	Publish(b, GameStarted{Turn: 3})
	Publish(b, MapReady{Width: 4}) // no subscriber
	assert.Equal(t, []int{3}, got)
	assert.Zero(t, b.Pending())
}

func TestFlushKeepsEmissionOrder(t *testing.T) {
	b := NewBus()
	var log []string
	Subscribe(b, func(e MapReady) { log = append(log, "map") })
	Subscribe(b, func(e TechDiscovered) {
		log = append(log, "tech")
		if e.Tech == 0 {
			Emit(b, GameStarted{Turn: 1})
		}
	})
	Subscribe(b, func(e GameStarted) { log = append(log, "started") })

	Emit(b, TechDiscovered{Player: 1, Tech: 0})
	Emit(b, MapReady{Width: 8, Height: 8})
	assert.Equal(t, 2, b.Pending())
	assert.Empty(t, log)

	b.Flush()
	assert.Equal(t, []string{"tech", "map", "started"}, log)
	assert.Zero(t, b.Pending())
}

func TestDrop(t *testing.T) {
	b := NewBus()
	called := false
	Subscribe(b, func(TechDiscovered) { called = true })
	Emit(b, TechDiscovered{Player: 0, Tech: 1})
	b.Drop()
	b.Flush()
	assert.False(t, called)
}
