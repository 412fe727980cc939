/*
Package travel provides the tool executors the Tool Registry advertises
by default: a small embedded travel knowledge base. The spec treats the
travel knowledge base as an opaque tool collaborator queried through the
registry's uniform interface; this package is that collaborator's
concrete (if intentionally small) implementation, grounded in the
distilled system's environment/travel_data.py.
*/
package travel

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// City is one entry in the embedded knowledge base.
type City struct {
	Name        string
	Region      string
	Interests   []string
	Seasons     []string
	DailyBudget int // approximate cost per day, in CNY
	Attractions []string
	Summary     string
}

// Dataset is the fixed in-memory travel knowledge base. It stands in
// for the "static travel knowledge base" the spec names as an external
// collaborator queried through an opaque tool interface.
var Dataset = []City{
	{
		Name: "北京", Region: "华北",
		Interests:   []string{"历史文化", "美食", "建筑"},
		Seasons:     []string{"春季", "秋季"},
		DailyBudget: 500,
		Attractions: []string{"故宫", "长城", "颐和园", "天坛"},
		Summary:     "中国首都，历史古迹与现代都市并存。",
	},
	{
		Name: "成都", Region: "西南",
		Interests:   []string{"美食", "休闲", "自然"},
		Seasons:     []string{"春季", "夏季", "秋季"},
		DailyBudget: 350,
		Attractions: []string{"宽窄巷子", "大熊猫繁育研究基地", "武侯祠"},
		Summary:     "以川菜和悠闲生活节奏闻名的西南名城。",
	},
	{
		Name: "西安", Region: "西北",
		Interests:   []string{"历史文化", "美食"},
		Seasons:     []string{"春季", "秋季"},
		DailyBudget: 400,
		Attractions: []string{"兵马俑", "大雁塔", "古城墙", "回民街"},
		Summary:     "十三朝古都，丝绸之路的起点。",
	},
	{
		Name: "杭州", Region: "华东",
		Interests:   []string{"自然", "历史文化", "休闲"},
		Seasons:     []string{"春季", "秋季"},
		DailyBudget: 450,
		Attractions: []string{"西湖", "灵隐寺", "西溪湿地"},
		Summary:     "人间天堂，山水与人文交融。",
	},
	{
		Name: "三亚", Region: "华南",
		Interests:   []string{"海滨", "休闲", "自然"},
		Seasons:     []string{"冬季"},
		DailyBudget: 700,
		Attractions: []string{"亚龙湾", "天涯海角", "蜈支洲岛"},
		Summary:     "热带海滨度假胜地，冬季避寒首选。",
	},
	{
		Name: "上海", Region: "华东",
		Interests:   []string{"建筑", "美食", "购物"},
		Seasons:     []string{"春季", "秋季"},
		DailyBudget: 600,
		Attractions: []string{"外滩", "东方明珠", "豫园", "南京路"},
		Summary:     "国际化大都市，摩登与传统交汇。",
	},
	{
		Name: "丽江", Region: "西南",
		Interests:   []string{"自然", "历史文化", "休闲"},
		Seasons:     []string{"春季", "秋季"},
		DailyBudget: 300,
		Attractions: []string{"丽江古城", "玉龙雪山", "泸沽湖"},
		Summary:     "纳西古城与雪山风光的浪漫结合。",
	},
}

func findCity(name string) (City, bool) {
	for _, c := range Dataset {
		if c.Name == name {
			return c, true
		}
	}
	return City{}, false
}

func containsAny(haystack, needles []string) bool {
	for _, n := range needles {
		for _, h := range haystack {
			if h == n {
				return true
			}
		}
	}
	return false
}

// SearchCities filters the dataset by interests (any match), an
// optional max daily budget, and an optional season, mirroring
// travel_data.py's search_cities(interests, budget, season).
func SearchCities(interests []string, maxBudget int, season string) []City {
	var out []City
	for _, c := range Dataset {
		if len(interests) > 0 && !containsAny(c.Interests, interests) {
			continue
		}
		if maxBudget > 0 && c.DailyBudget > maxBudget {
			continue
		}
		if season != "" && !contains(c.Seasons, season) {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

// QueryAttractions returns attraction lists for the requested cities.
func QueryAttractions(cities []string) map[string][]string {
	out := make(map[string][]string, len(cities))
	for _, name := range cities {
		if c, ok := findCity(name); ok {
			out[name] = c.Attractions
		} else {
			out[name] = nil
		}
	}
	return out
}

// CalculateBudget estimates a total trip cost for a city and duration.
func CalculateBudget(city string, days int) (int, error) {
	c, ok := findCity(city)
	if !ok {
		return 0, fmt.Errorf("unknown city %q", city)
	}
	if days <= 0 {
		return 0, fmt.Errorf("days must be positive, got %d", days)
	}
	return c.DailyBudget * days, nil
}

// GetCityInfo returns the full record for one city.
func GetCityInfo(name string) (City, error) {
	c, ok := findCity(name)
	if !ok {
		return City{}, fmt.Errorf("unknown city %q", name)
	}
	return c, nil
}

// ParseInterests splits an interest list separated by commas,
// semicolons or the Chinese enumeration comma (、), the shape the ReAct
// Loop's plan parameters carry. Spaces are not separators.
func ParseInterests(raw string) []string {
	return splitAndTrim(raw)
}

func splitAndTrim(raw string) []string {
	raw = strings.ReplaceAll(raw, "、", ",")
	fields := strings.FieldsFunc(raw, func(r rune) bool { return r == ',' || r == ';' })
	var out []string
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

// ParseInt is a small helper the tool executors use to read numeric
// parameters out of the string-typed parameter map the registry hands
// executors, per spec §4.1.
func ParseInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fallback
	}
	return v
}
