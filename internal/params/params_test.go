package params_test

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"groom-admin-backend/internal/params"
)

func TestParseFilter(t *testing.T) {
	tests := []struct {
		query string
		want  params.Filter
	}{
		{"", params.Filter{}},
		{"status=all", params.Filter{}},
		{"status=", params.Filter{}},
		{"status=confirmed", params.Filter{Field: "status", Value: "confirmed"}},
	}

	for _, tt := range tests {
		values, _ := url.ParseQuery(tt.query)
		got := params.ParseFilter(values, params.StatusParam, "status")
		assert.Equal(t, tt.want, got, tt.query)
		assert.Equal(t, tt.want.IsZero(), got.IsZero())
	}
}

func TestParseSort(t *testing.T) {
	def := params.Sort{Field: "created_at", Direction: params.Asc}

	values, _ := url.ParseQuery("")
	assert.Equal(t, def, params.ParseSort(values, def))

	values, _ = url.ParseQuery("sort-by=date-desc")
	assert.Equal(t, params.Sort{Field: "date", Direction: params.Desc}, params.ParseSort(values, def))

	values, _ = url.ParseQuery("sort-by=paid_amount-asc")
	got := params.ParseSort(values, def)
	assert.Equal(t, params.Sort{Field: "paid_amount", Direction: params.Asc}, got)
	assert.True(t, got.Ascending())
	assert.Equal(t, "paid_amount-asc", got.String())

	// Unknown directions sort descending.
	values, _ = url.ParseQuery("sort-by=hour-sideways")
	assert.Equal(t, params.Desc, params.ParseSort(values, def).Direction)
}

func TestParsePage(t *testing.T) {
	for query, want := range map[string]int{
		"":        1,
		"page=2":  2,
		"page=x":  1,
		"page=99": 99,
		"page=0":  1,
		"page=-1": 1,
	} {
		values, _ := url.ParseQuery(query)
		assert.Equal(t, want, params.ParsePage(values), query)
	}
}

func TestParseDays(t *testing.T) {
	for query, want := range map[string]int{
		"":        7,
		"last=30": 30,
		"last=0":  7,
		"last=ab": 7,
	} {
		values, _ := url.ParseQuery(query)
		assert.Equal(t, want, params.ParseDays(values), query)
	}
}

func TestWithFilter_ResetsPresentPage(t *testing.T) {
	values, _ := url.ParseQuery("status=done&page=3&sort-by=date-asc")

	got := params.WithFilter(values, params.StatusParam, "confirmed")

	assert.Equal(t, "confirmed", got.Get("status"))
	assert.Equal(t, "1", got.Get("page"))
	assert.Equal(t, "date-asc", got.Get("sort-by"))
	assert.Equal(t, "3", values.Get("page"), "input must not be modified")
}

func TestWithFilter_NoPageLeavesPageAbsent(t *testing.T) {
	values, _ := url.ParseQuery("status=done")

	got := params.WithFilter(values, params.StatusParam, "all")

	assert.Equal(t, "all", got.Get("status"))
	assert.False(t, got.Has("page"))
}

func TestPagination(t *testing.T) {
	assert.Equal(t, 0, params.PageCount(0))
	assert.Equal(t, 1, params.PageCount(10))
	assert.Equal(t, 3, params.PageCount(21))

	from, to := params.Range(2)
	assert.Equal(t, 10, from)
	assert.Equal(t, 19, to)

	assert.Equal(t, []int{2}, params.Neighbors(1, 25))
	assert.Equal(t, []int{3, 1}, params.Neighbors(2, 25))
	// Count divides evenly: the last page has nothing after it.
	assert.Equal(t, []int{2}, params.Neighbors(3, 30))
	assert.Empty(t, params.Neighbors(1, 10))
}
