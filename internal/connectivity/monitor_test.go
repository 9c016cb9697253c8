package connectivity

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonitor_DefaultsOnline(t *testing.T) {
	assert.True(t, New().IsOnline())
	assert.False(t, New(WithInitial(false)).IsOnline())
}

func TestMonitor_SetOnlineNotifiesOnChangeOnly(t *testing.T) {
	m := New()
	var got []bool
	m.Subscribe(func(online bool) { got = append(got, online) })

	m.SetOnline(true)
	m.SetOnline(false)
	m.SetOnline(false)
	m.SetOnline(true)

	assert.Equal(t, []bool{false, true}, got)
}

func TestMonitor_Toggle(t *testing.T) {
	now := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	m := New(WithClock(func() time.Time { return now }))

	now = now.Add(time.Minute)
	assert.False(t, m.Toggle())
	assert.False(t, m.IsOnline())
	assert.Equal(t, now, m.Status().ChangedAt)

	assert.True(t, m.Toggle())
	assert.True(t, m.IsOnline())
}

func TestMonitor_Unsubscribe(t *testing.T) {
	m := New()
	calls := 0
	unsubscribe := m.Subscribe(func(bool) { calls++ })

	m.Toggle()
	unsubscribe()
	unsubscribe()
	m.Toggle()

	assert.Equal(t, 1, calls)
}

func TestMonitor_ListenersInSubscriptionOrder(t *testing.T) {
	m := New()
	var order []string
	m.Subscribe(func(bool) { order = append(order, "first") })
	m.Subscribe(func(bool) { order = append(order, "second") })

	m.SetOnline(false)
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestMonitor_ListenerMayReadState(t *testing.T) {
	m := New()
	var seen bool
	m.Subscribe(func(bool) { seen = m.IsOnline() })
	m.SetOnline(false)
	assert.False(t, seen)
}

func TestMonitor_ConcurrentAccess(t *testing.T) {
	m := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			m.Toggle()
		}()
		go func() {
			defer wg.Done()
			_ = m.IsOnline()
		}()
	}
	wg.Wait()
	require.True(t, m.IsOnline(), "an even number of toggles restores the initial state")
}
