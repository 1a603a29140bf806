package host

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBus_DispatchAndUnsubscribe(t *testing.T) {
	var bus Bus
	var got []string
	sub := bus.Subscribe(func(e Event) bool {
		got = append(got, Name(e))
		_, isKey := e.(Key)
		return isKey
	})

	assert.False(t, bus.Dispatch(PreRender{Monitor: 1}))
	assert.True(t, bus.Dispatch(Key{Name: KeyEscape, Pressed: true}))
	assert.Equal(t, []string{"pre-render", "key"}, got)

	sub.Unsubscribe()
	sub.Unsubscribe()
	assert.Equal(t, 0, bus.Len())
	assert.False(t, bus.Dispatch(Key{Name: KeyEscape}))
	assert.Len(t, got, 2)
}

func TestBus_UnsubscribeDuringDispatch(t *testing.T) {
	var bus Bus
	calls := 0
	var second Subscription
	bus.Subscribe(func(Event) bool {
		calls++
		second.Unsubscribe()
		return false
	})
	second = bus.Subscribe(func(Event) bool {
		t.Fatal("unsubscribed handler must not run")
		return false
	})

	bus.Dispatch(ConfigReloaded{})
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, bus.Len())
}

func TestDegenerate(t *testing.T) {
	assert.True(t, Degenerate(nil))
	assert.True(t, Degenerate(sizeImage{0, 4}))
	assert.False(t, Degenerate(sizeImage{2, 4}))
}

type sizeImage struct{ w, h int }

func (s sizeImage) Size() (int, int) { return s.w, s.h }
