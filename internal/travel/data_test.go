package travel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchCitiesFiltersByInterest(t *testing.T) {
	results := SearchCities([]string{"海滨"}, 0, "")
	require.Len(t, results, 1)
	assert.Equal(t, "三亚", results[0].Name)
}

func TestSearchCitiesFiltersByBudget(t *testing.T) {
	results := SearchCities(nil, 320, "")
	for _, c := range results {
		assert.LessOrEqual(t, c.DailyBudget, 320)
	}
	assert.NotEmpty(t, results)
}

func TestSearchCitiesFiltersBySeason(t *testing.T) {
	results := SearchCities(nil, 0, "冬季")
	require.Len(t, results, 1)
	assert.Equal(t, "三亚", results[0].Name)
}

func TestSearchCitiesResultsAreSortedByName(t *testing.T) {
	results := SearchCities([]string{"历史文化"}, 0, "")
	for i := 1; i < len(results); i++ {
		assert.LessOrEqual(t, results[i-1].Name, results[i].Name)
	}
}

func TestQueryAttractionsUnknownCityReturnsNil(t *testing.T) {
	out := QueryAttractions([]string{"成都", "不存在的城市"})
	assert.NotEmpty(t, out["成都"])
	assert.Nil(t, out["不存在的城市"])
}

func TestCalculateBudgetUnknownCityErrors(t *testing.T) {
	_, err := CalculateBudget("不存在的城市", 3)
	assert.Error(t, err)
}

func TestCalculateBudgetRejectsNonPositiveDays(t *testing.T) {
	_, err := CalculateBudget("成都", 0)
	assert.Error(t, err)
}

func TestCalculateBudgetMultipliesDailyRate(t *testing.T) {
	total, err := CalculateBudget("成都", 4)
	require.NoError(t, err)
	assert.Equal(t, 350*4, total)
}

func TestGetCityInfoUnknownCityErrors(t *testing.T) {
	_, err := GetCityInfo("不存在的城市")
	assert.Error(t, err)
}

func TestParseInterestsSplitsOnCommasSemicolonsAndChineseComma(t *testing.T) {
	got := ParseInterests("美食、历史文化,自然; 购物")
	assert.Equal(t, []string{"美食", "历史文化", "自然", "购物"}, got)
}

func TestParseIntFallsBackOnInvalidInput(t *testing.T) {
	assert.Equal(t, 7, ParseInt("not-a-number", 7))
	assert.Equal(t, 3, ParseInt("3", 0))
	assert.Equal(t, 5, ParseInt("", 5))
}
