package cancel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCancelStopsTrackedRequest(t *testing.T) {
	m := New()
	ctx, cancelFn := context.WithCancel(context.Background())
	release := m.Track("req-1", cancelFn)
	defer release()

	assert.True(t, m.Cancel("req-1"))
	assert.Error(t, ctx.Err())
}

func TestCancelUnknownRequestReturnsFalse(t *testing.T) {
	m := New()
	assert.False(t, m.Cancel("no-such-request"))
}

func TestReleaseRemovesFromActive(t *testing.T) {
	m := New()
	_, cancelFn := context.WithCancel(context.Background())
	release := m.Track("req-1", cancelFn)

	assert.Contains(t, m.Active(), "req-1")
	release()
	assert.NotContains(t, m.Active(), "req-1")
}

func TestActiveListsAllTrackedRequests(t *testing.T) {
	m := New()
	_, c1 := context.WithCancel(context.Background())
	_, c2 := context.WithCancel(context.Background())
	defer m.Track("req-1", c1)()
	defer m.Track("req-2", c2)()

	active := m.Active()
	assert.ElementsMatch(t, []string{"req-1", "req-2"}, active)
}
