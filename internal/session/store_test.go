package session

import (
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore() *Store {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return New(logger)
}

func TestCreateGeneratesIDWhenEmpty(t *testing.T) {
	s := newTestStore()
	sess := s.Create("", "My Trip", "openai-gpt4o-mini")
	assert.NotEmpty(t, sess.ID)
	assert.Equal(t, "My Trip", sess.DisplayName)
}

func TestCreateIsIdempotentOnExistingID(t *testing.T) {
	s := newTestStore()
	s.Create("fixed-id", "First Name", "model-a")
	require.NoError(t, s.AppendMessage("fixed-id", Message{Role: RoleUser, Content: "hi"}))

	second := s.Create("fixed-id", "Second Name", "model-b")
	assert.Equal(t, "First Name", second.DisplayName, "Create on an existing id must not overwrite it")
	assert.Equal(t, 1, second.MessageCount)
}

func TestAppendMessageUnknownSessionErrors(t *testing.T) {
	s := newTestStore()
	err := s.AppendMessage("missing", Message{Role: RoleUser, Content: "hi"})
	assert.Error(t, err)
}

func TestAppendMessageBumpsCountAndLastActive(t *testing.T) {
	s := newTestStore()
	s.Create("id1", "Trip", "model-a")

	require.NoError(t, s.AppendMessage("id1", Message{Role: RoleUser, Content: "where should I go?"}))
	require.NoError(t, s.AppendMessage("id1", Message{Role: RoleAssistant, Content: "Chengdu"}))

	sess, ok := s.Get("id1")
	require.True(t, ok)
	assert.Equal(t, 2, sess.MessageCount)
	assert.Len(t, sess.Messages, 2)
}

func TestGetReturnsIndependentCopy(t *testing.T) {
	s := newTestStore()
	s.Create("id1", "Trip", "model-a")
	require.NoError(t, s.AppendMessage("id1", Message{Role: RoleUser, Content: "hi"}))

	sess, ok := s.Get("id1")
	require.True(t, ok)
	sess.Messages[0].Content = "mutated"

	again, _ := s.Get("id1")
	assert.Equal(t, "hi", again.Messages[0].Content)
}

func TestDeleteRemovesSession(t *testing.T) {
	s := newTestStore()
	s.Create("id1", "Trip", "model-a")
	assert.True(t, s.Delete("id1"))
	assert.False(t, s.Delete("id1"))

	_, ok := s.Get("id1")
	assert.False(t, ok)
}

func TestListOrdersByLastActiveDescending(t *testing.T) {
	s := newTestStore()
	s.Create("older", "Older", "model-a")
	time.Sleep(2 * time.Millisecond)
	s.Create("newer", "Newer", "model-a")

	list := s.List(true)
	require.Len(t, list, 2)
	assert.Equal(t, "newer", list[0].ID)
	assert.Equal(t, "older", list[1].ID)
}

func TestListExcludesIdleEmptySessionsUnlessIncludeEmpty(t *testing.T) {
	s := newTestStore()
	s.mu.Lock()
	s.entries["idle-empty"] = &entry{session: &Session{
		ID:         "idle-empty",
		LastActive: time.Now().Add(-2 * time.Hour),
	}}
	s.mu.Unlock()

	filtered := s.List(false)
	assert.Empty(t, filtered)

	unfiltered := s.List(true)
	assert.Len(t, unfiltered, 1)
}

func TestClearMessagesEmptiesLogButKeepsSession(t *testing.T) {
	s := newTestStore()
	s.Create("id1", "Trip", "model-a")
	require.NoError(t, s.AppendMessage("id1", Message{Role: RoleUser, Content: "hi"}))

	require.NoError(t, s.ClearMessages("id1"))
	sess, ok := s.Get("id1")
	require.True(t, ok)
	assert.Equal(t, 0, sess.MessageCount)
	assert.Empty(t, sess.Messages)
}

func TestSetModelAndRename(t *testing.T) {
	s := newTestStore()
	s.Create("id1", "Trip", "model-a")

	require.NoError(t, s.SetModel("id1", "model-b"))
	require.NoError(t, s.Rename("id1", "Renamed Trip"))

	sess, _ := s.Get("id1")
	assert.Equal(t, "model-b", sess.ModelID)
	assert.Equal(t, "Renamed Trip", sess.DisplayName)
}
