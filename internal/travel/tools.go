package travel

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"travelagent/internal/registry"
)

// RegisterDefaults registers the travel knowledge base and a date tool
// on the given registry. This is the registry's default registration
// set, replacing the teacher's flat []tools.Tool slice of Linux
// sysadmin tools with the domain this spec actually calls for.
func RegisterDefaults(r *registry.Registry) {
	r.Register(registry.Descriptor{
		Name:        "search_cities",
		Description: "Search the travel knowledge base for cities matching interests, an optional max daily budget, and an optional season.",
		Category:    "travel",
		Tags:        []string{"discovery"},
		Timeout:     5 * time.Second,
		Parameters: []registry.Parameter{
			{Name: "interests", Type: "list", Description: "comma-separated interests, e.g. 美食,历史文化", Required: true},
			{Name: "budget", Type: "number", Description: "max daily budget in CNY"},
			{Name: "season", Type: "string", Description: "preferred season"},
		},
	}, searchCitiesExecutor)

	r.Register(registry.Descriptor{
		Name:        "query_attractions",
		Description: "Look up attractions for one or more cities.",
		Category:    "travel",
		Tags:        []string{"detail"},
		Timeout:     5 * time.Second,
		Parameters: []registry.Parameter{
			{Name: "cities", Type: "list", Description: "comma-separated city names", Required: true},
		},
	}, queryAttractionsExecutor)

	r.Register(registry.Descriptor{
		Name:        "calculate_budget",
		Description: "Estimate the total cost of a trip to a city for a number of days.",
		Category:    "travel",
		Tags:        []string{"planning"},
		Timeout:     5 * time.Second,
		Parameters: []registry.Parameter{
			{Name: "city", Type: "string", Required: true},
			{Name: "days", Type: "number", Required: true},
		},
	}, calculateBudgetExecutor)

	r.Register(registry.Descriptor{
		Name:        "get_city_info",
		Description: "Return the full knowledge-base record for one city.",
		Category:    "travel",
		Tags:        []string{"detail"},
		Timeout:     5 * time.Second,
		Parameters: []registry.Parameter{
			{Name: "city", Type: "string", Required: true},
		},
	}, getCityInfoExecutor)

	r.Register(registry.Descriptor{
		Name:        "datetime",
		Description: "Return the current date, for grounding trip-planning suggestions in today's date.",
		Category:    "utility",
		Timeout:     3 * time.Second,
	}, dateTimeExecutor)

	r.Register(registry.Descriptor{
		Name:        "final_answer",
		Description: "Signal that the plan and gathered observations are sufficient to answer the user directly. Takes no action against the environment.",
		Category:    "control",
		Terminal:    true,
		Timeout:     1 * time.Second,
	}, finalAnswerExecutor)
}

func searchCitiesExecutor(ctx context.Context, params map[string]string) (string, error) {
	interests := ParseInterests(params["interests"])
	budget := ParseInt(params["budget"], 0)
	season := strings.TrimSpace(params["season"])

	results := SearchCities(interests, budget, season)
	if len(results) == 0 {
		return "no cities matched the given interests/budget/season", nil
	}

	names := make([]string, 0, len(results))
	for _, c := range results {
		names = append(names, fmt.Sprintf("%s (%s, ~%d/day): %s", c.Name, c.Region, c.DailyBudget, c.Summary))
	}
	return strings.Join(names, "\n"), nil
}

func queryAttractionsExecutor(ctx context.Context, params map[string]string) (string, error) {
	cities := ParseInterests(params["cities"])
	if len(cities) == 0 {
		return "", fmt.Errorf("no cities requested")
	}
	result := QueryAttractions(cities)
	payload, err := json.Marshal(result)
	if err != nil {
		return "", err
	}
	return string(payload), nil
}

func calculateBudgetExecutor(ctx context.Context, params map[string]string) (string, error) {
	days := ParseInt(params["days"], 0)
	total, err := CalculateBudget(params["city"], days)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("estimated total cost for %d day(s) in %s: %d CNY", days, params["city"], total), nil
}

func getCityInfoExecutor(ctx context.Context, params map[string]string) (string, error) {
	c, err := GetCityInfo(params["city"])
	if err != nil {
		return "", err
	}
	payload, err := json.Marshal(c)
	if err != nil {
		return "", err
	}
	return string(payload), nil
}

// dateTimeExecutor is adapted from the teacher's tools/datetime.go: it
// shells out to the system `date` command rather than reimplementing
// date formatting, keeping the teacher's idiom of delegating to the
// host for anything the stdlib would otherwise force verbose handling
// of (locale-specific formats, timezone abbreviations).
func dateTimeExecutor(ctx context.Context, params map[string]string) (string, error) {
	cmd := exec.CommandContext(ctx, "date")
	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("date command failed: %w", err)
	}
	return strings.TrimSpace(string(output)), nil
}

func finalAnswerExecutor(ctx context.Context, params map[string]string) (string, error) {
	return "ready to answer", nil
}
