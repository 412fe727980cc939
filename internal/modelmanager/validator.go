package modelmanager

import "fmt"

// providerRequiredFields mirrors ModelConfigValidator.PROVIDER_RULES in
// llm/manager.py: fields that must be present for each provider beyond
// the universally required ones.
var providerRequiredFields = map[Provider][]string{
	ProviderOpenAI:           {"api_base", "model"},
	ProviderAnthropic:        {"api_base", "model", "api_version"},
	ProviderGoogle:           {"api_base", "model"},
	ProviderOpenAICompatible: {"api_base", "model"},
}

// Validate checks a ModelConfig against the universally required
// fields and the provider-specific rule set, returning every problem
// found rather than stopping at the first one, matching the Python
// validator's accumulate-then-report behavior.
func Validate(cfg ModelConfig) []string {
	var errs []string

	if cfg.Model == "" {
		errs = append(errs, "missing required field: model")
	}
	if cfg.APIKey == "" {
		errs = append(errs, "missing required field: api_key")
	}

	for _, field := range providerRequiredFields[cfg.Provider] {
		if !fieldPresent(cfg, field) {
			errs = append(errs, fmt.Sprintf("provider=%s missing field: %s", cfg.Provider, field))
		}
	}

	if cfg.APIBase != "" && !hasHTTPScheme(cfg.APIBase) {
		errs = append(errs, fmt.Sprintf("invalid api_base format: %s", cfg.APIBase))
	}

	return errs
}

func fieldPresent(cfg ModelConfig, field string) bool {
	switch field {
	case "api_base":
		return cfg.APIBase != ""
	case "model":
		return cfg.Model != ""
	case "api_version":
		return cfg.APIVersion != ""
	default:
		return false
	}
}

func hasHTTPScheme(url string) bool {
	return len(url) >= 7 && (url[:7] == "http://" || (len(url) >= 8 && url[:8] == "https://"))
}
