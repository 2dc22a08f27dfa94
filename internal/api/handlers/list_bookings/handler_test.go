package list_bookings

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQuery(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet,
		"/api/v1/admin/bookings?departmentId=2&date=2026-10-20&status=pending&unreadOnly=true&limit=10&offset=30", nil)

	req, msg := parseQuery(r)
	require.Empty(t, msg)
	assert.Equal(t, int64(2), *req.DepartmentID)
	assert.Equal(t, "2026-10-20", req.Date.Format("2006-01-02"))
	assert.Equal(t, "pending", *req.Status)
	assert.True(t, req.UnreadOnly)
	assert.Equal(t, uint64(10), req.Limit)
	assert.Equal(t, uint64(30), req.Offset)

	req, msg = parseQuery(httptest.NewRequest(http.MethodGet, "/api/v1/admin/bookings", nil))
	require.Empty(t, msg)
	assert.Nil(t, req.DepartmentID)
	assert.Nil(t, req.Date)
}

func TestParseQuery_Invalid(t *testing.T) {
	tests := map[string]string{
		"departmentId=x":   msgInvalidDepartmentID,
		"date=20-10-2026":  msgInvalidDate,
		"unreadOnly=maybe": msgInvalidUnreadOnly,
		"limit=-1":         msgInvalidPagination,
		"offset=ten":       msgInvalidPagination,
	}

	for query, want := range tests {
		t.Run(query, func(t *testing.T) {
			_, msg := parseQuery(httptest.NewRequest(http.MethodGet, "/api/v1/admin/bookings?"+query, nil))
			assert.Equal(t, want, msg)
		})
	}
}
