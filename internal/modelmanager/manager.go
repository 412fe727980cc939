package modelmanager

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// fileSchema is the top-level shape of the YAML model registry file,
// e.g. config/models.yaml: a list of model entries plus which one is
// active by default.
type fileSchema struct {
	DefaultModel string        `yaml:"default_model"`
	Models       []ModelConfig `yaml:"models"`
}

// Manager is the thread-safe model registry, generalizing
// llm/manager.py's ModelManager: it loads the YAML file, validates
// every entry, and lets callers switch the active model without a
// restart.
type Manager struct {
	mu           sync.RWMutex
	configPath   string
	models       map[string]*Info
	activeModel  string
	logger       *logrus.Logger
}

// New loads and validates the model registry at configPath.
func New(configPath string, logger *logrus.Logger) (*Manager, error) {
	m := &Manager{
		configPath: configPath,
		models:     make(map[string]*Info),
		logger:     logger,
	}
	if err := m.reload(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Manager) reload() error {
	raw, err := os.ReadFile(m.configPath)
	if err != nil {
		return fmt.Errorf("modelmanager: read config: %w", err)
	}

	var schema fileSchema
	if err := yaml.Unmarshal(raw, &schema); err != nil {
		return fmt.Errorf("modelmanager: parse config: %w", err)
	}
	if len(schema.Models) == 0 {
		return fmt.Errorf("modelmanager: config %q declares no models", m.configPath)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.models = make(map[string]*Info, len(schema.Models))
	for _, cfg := range schema.Models {
		cfg.APIKey = os.ExpandEnv(cfg.APIKey)
		cfg.APIBase = os.ExpandEnv(cfg.APIBase)
		info := &Info{
			ModelID:  cfg.ModelID,
			Name:     cfg.Name,
			Provider: cfg.Provider,
			Status:   StatusAvailable,
			Config:   cfg,
		}
		if errs := Validate(cfg); len(errs) > 0 {
			info.Status = StatusError
			info.ErrorMessage = errs[0]
			m.logger.WithFields(logrus.Fields{
				"model_id": cfg.ModelID,
				"errors":   errs,
			}).Warn("model configuration invalid")
		}
		m.models[cfg.ModelID] = info
	}

	if schema.DefaultModel != "" {
		if _, ok := m.models[schema.DefaultModel]; !ok {
			return fmt.Errorf("modelmanager: default_model %q not present in config", schema.DefaultModel)
		}
		m.activeModel = schema.DefaultModel
	} else {
		m.activeModel = schema.Models[0].ModelID
	}

	return nil
}

// List returns every configured model's Info, for GET /api/models.
func (m *Manager) List() []Info {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Info, 0, len(m.models))
	for _, info := range m.models {
		out = append(out, *info)
	}
	return out
}

// Get returns one model's Info, for GET /api/models/{id}.
func (m *Manager) Get(modelID string) (Info, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	info, ok := m.models[modelID]
	if !ok {
		return Info{}, false
	}
	return *info, true
}

// Active returns the id and config of the default/active model.
func (m *Manager) Active() (Info, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	info, ok := m.models[m.activeModel]
	if !ok {
		return Info{}, false
	}
	return *info, true
}

// Resolve returns the config for a requested model id, falling back
// to the active model if the id is empty, matching the teacher's
// pattern of defaulting model_id when a session doesn't set one.
func (m *Manager) Resolve(modelID string) (ModelConfig, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id := modelID
	if id == "" {
		id = m.activeModel
	}
	info, ok := m.models[id]
	if !ok {
		return ModelConfig{}, fmt.Errorf("modelmanager: unknown model %q", id)
	}
	if info.Status == StatusDisabled {
		return ModelConfig{}, fmt.Errorf("modelmanager: model %q is disabled", id)
	}
	return info.Config, nil
}

// Switch changes which model id is the default for new sessions that
// don't specify one.
func (m *Manager) Switch(modelID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.models[modelID]; !ok {
		return fmt.Errorf("modelmanager: cannot switch to unknown model %q", modelID)
	}
	m.activeModel = modelID
	return nil
}

// MarkStatus updates a model's runtime status, e.g. after a failed
// provider initialization attempt.
func (m *Manager) MarkStatus(modelID string, status Status, errMessage string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	info, ok := m.models[modelID]
	if !ok {
		return
	}
	now := time.Now()
	info.Status = status
	info.ErrorMessage = errMessage
	info.LastCheck = &now
}
