package handler

import (
	"net/url"
	"sort"
	"strings"
	"time"

	apperrors "campusdesk/internal/errors"
	"campusdesk/internal/service"
)

var issueQueryKeys = map[string]bool{
	"department": true,
	"status":     true,
	"startDate":  true,
	"endDate":    true,
}

// parseIssueQuery builds the closed listing filter from the query string. Unknown
// keys and unparsable dates are rejected.
func parseIssueQuery(values url.Values) (service.IssueQuery, error) {
	var unknown []string
	for key := range values {
		if !issueQueryKeys[key] {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return service.IssueQuery{}, apperrors.Invalid("unsupported filter %s, use department, status, startDate or endDate",
			strings.Join(unknown, ", "))
	}

	q := service.IssueQuery{
		Department: values.Get("department"),
		Status:     values.Get("status"),
	}
	if raw := values.Get("startDate"); raw != "" {
		from, _, err := parseDate(raw)
		if err != nil {
			return service.IssueQuery{}, apperrors.Invalid("startDate %q is not a date", raw)
		}
		q.From = &from
	}
	if raw := values.Get("endDate"); raw != "" {
		to, dateOnly, err := parseDate(raw)
		if err != nil {
			return service.IssueQuery{}, apperrors.Invalid("endDate %q is not a date", raw)
		}
		if dateOnly {
			// a bare end date includes that whole day
			to = to.AddDate(0, 0, 1).Add(-time.Nanosecond)
		}
		q.To = &to
	}
	return q, nil
}

// parseDate accepts RFC 3339 timestamps and YYYY-MM-DD dates. Bare dates are read in
// the server's local time zone.
func parseDate(raw string) (time.Time, bool, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, false, nil
	}
	t, err := time.ParseInLocation(time.DateOnly, raw, time.Local)
	if err != nil {
		return time.Time{}, false, err
	}
	return t, true, nil
}
