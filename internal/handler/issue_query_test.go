package handler

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "campusdesk/internal/errors"
	"campusdesk/internal/service"
)

func TestParseIssueQuery(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		wantErr bool
		check   func(t *testing.T, q service.IssueQuery)
	}{
		{
			name:  "empty",
			query: "",
			check: func(t *testing.T, q service.IssueQuery) {
				assert.Empty(t, q.Department)
				assert.Nil(t, q.From)
				assert.Nil(t, q.To)
			},
		},
		{
			name:  "department and status pass through",
			query: "department=IT&status=archived",
			check: func(t *testing.T, q service.IssueQuery) {
				assert.Equal(t, "IT", q.Department)
				assert.Equal(t, "archived", q.Status)
			},
		},
		{
			name:  "bare end date covers the whole day",
			query: "startDate=2025-03-01&endDate=2025-03-02",
			check: func(t *testing.T, q service.IssueQuery) {
				require.NotNil(t, q.From)
				require.NotNil(t, q.To)
				assert.True(t, q.From.Equal(time.Date(2025, 3, 1, 0, 0, 0, 0, time.Local)))
				assert.True(t, q.To.Equal(time.Date(2025, 3, 2, 23, 59, 59, 999999999, time.Local)))
			},
		},
		{
			name:  "rfc3339 timestamps are exact",
			query: "endDate=2025-03-02T10:00:00Z",
			check: func(t *testing.T, q service.IssueQuery) {
				require.NotNil(t, q.To)
				assert.True(t, q.To.Equal(time.Date(2025, 3, 2, 10, 0, 0, 0, time.UTC)))
			},
		},
		{name: "unknown key", query: "owner=5", wantErr: true},
		{name: "unknown key next to known ones", query: "status=pending&studentId=3", wantErr: true},
		{name: "bad start date", query: "startDate=yesterday", wantErr: true},
		{name: "bad end date", query: "endDate=2025-13-40", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, err := url.ParseQuery(tt.query)
			require.NoError(t, err)

			q, err := parseIssueQuery(values)
			if tt.wantErr {
				assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			tt.check(t, q)
		})
	}
}
