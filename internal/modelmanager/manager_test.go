package modelmanager

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestConfig(t *testing.T, contents string) string {
	path := filepath.Join(t.TempDir(), "models.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

const validConfig = `
default_model: m1
models:
  - model_id: m1
    name: "Model One"
    provider: openai
    model: gpt-4o-mini
    api_base: "https://api.openai.com/v1"
    api_key: "${TRAVELAGENT_TEST_KEY}"
    temperature: 0.7
    max_tokens: 1024
    timeout: 30
    max_retries: 2
  - model_id: m2
    name: "Model Two"
    provider: openai
    model: gpt-4o
    api_base: "https://api.openai.com/v1"
    api_key: "hardcoded-key"
`

func TestNewExpandsEnvPlaceholders(t *testing.T) {
	t.Setenv("TRAVELAGENT_TEST_KEY", "resolved-secret")
	path := writeTestConfig(t, validConfig)

	m, err := New(path, testLogger())
	require.NoError(t, err)

	info, ok := m.Get("m1")
	require.True(t, ok)
	assert.Equal(t, "resolved-secret", info.Config.APIKey)
	assert.Equal(t, StatusAvailable, info.Status)
}

func TestNewRejectsUnknownDefaultModel(t *testing.T) {
	path := writeTestConfig(t, `
default_model: does-not-exist
models:
  - model_id: m1
    provider: openai
    model: gpt-4o-mini
    api_base: "https://api.openai.com/v1"
    api_key: "k"
`)
	_, err := New(path, testLogger())
	assert.Error(t, err)
}

func TestNewRejectsEmptyModelList(t *testing.T) {
	path := writeTestConfig(t, "models: []\n")
	_, err := New(path, testLogger())
	assert.Error(t, err)
}

func TestNewMarksInvalidModelAsError(t *testing.T) {
	path := writeTestConfig(t, `
models:
  - model_id: broken
    provider: anthropic
    model: claude-3-5-haiku-latest
`)
	m, err := New(path, testLogger())
	require.NoError(t, err)

	info, ok := m.Get("broken")
	require.True(t, ok)
	assert.Equal(t, StatusError, info.Status)
	assert.NotEmpty(t, info.ErrorMessage)
}

func TestResolveFallsBackToActiveModel(t *testing.T) {
	path := writeTestConfig(t, validConfig)
	m, err := New(path, testLogger())
	require.NoError(t, err)

	cfg, err := m.Resolve("")
	require.NoError(t, err)
	assert.Equal(t, "m1", cfg.ModelID)
}

func TestResolveUnknownModelErrors(t *testing.T) {
	path := writeTestConfig(t, validConfig)
	m, err := New(path, testLogger())
	require.NoError(t, err)

	_, err = m.Resolve("does-not-exist")
	assert.Error(t, err)
}

func TestSwitchChangesActiveModel(t *testing.T) {
	path := writeTestConfig(t, validConfig)
	m, err := New(path, testLogger())
	require.NoError(t, err)

	require.NoError(t, m.Switch("m2"))
	active, ok := m.Active()
	require.True(t, ok)
	assert.Equal(t, "m2", active.ModelID)
}

func TestSwitchUnknownModelErrors(t *testing.T) {
	path := writeTestConfig(t, validConfig)
	m, err := New(path, testLogger())
	require.NoError(t, err)

	assert.Error(t, m.Switch("ghost"))
}

func TestMarkStatusUpdatesInfo(t *testing.T) {
	path := writeTestConfig(t, validConfig)
	m, err := New(path, testLogger())
	require.NoError(t, err)

	m.MarkStatus("m1", StatusDisabled, "manually disabled")
	info, ok := m.Get("m1")
	require.True(t, ok)
	assert.Equal(t, StatusDisabled, info.Status)
	assert.Equal(t, "manually disabled", info.ErrorMessage)
	require.NotNil(t, info.LastCheck)

	_, err = m.Resolve("m1")
	assert.Error(t, err, "a disabled model must not resolve")
}

func TestListReturnsAllConfiguredModels(t *testing.T) {
	path := writeTestConfig(t, validConfig)
	m, err := New(path, testLogger())
	require.NoError(t, err)

	assert.Len(t, m.List(), 2)
}
