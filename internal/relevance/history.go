// Ekrili - Listing Relevance and Notification Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ekrili

package relevance

import "time"

// EligibilityFilter keeps the searches recent enough, from users active
// enough, to drive notifications.
type EligibilityFilter struct {
	maxSearchAge  time.Duration
	maxInactivity time.Duration
}

// NewEligibilityFilter builds a filter from freshness bounds.
func NewEligibilityFilter(cfg FreshnessConfig) EligibilityFilter {
	return EligibilityFilter{maxSearchAge: cfg.MaxSearchAge, maxInactivity: cfg.MaxInactivity}
}

// Filter groups the eligible records by user. Users appear in order of their
// first record and each user's queries keep record order.
//
// A record is excluded when its search date is strictly before
// now-maxSearchAge or its owner's last login is strictly before
// now-maxInactivity; a record exactly at either bound is kept. A record
// without a search date always passes the age check.
//
// Records whose owner is missing are not grouped; each such user is reported
// once as a *UserError wrapping ErrUserNotFound.
//
//nolint:gocritic // records are read only
func (f EligibilityFilter) Filter(records []SearchRecord, now time.Time) ([]UserQueries, []error) {
	searchCutoff := now.Add(-f.maxSearchAge)
	loginCutoff := now.Add(-f.maxInactivity)

	var (
		groups  []UserQueries
		index   = map[int64]int{}
		missing = map[int64]bool{}
		errs    []error
	)
	for i := range records {
		r := &records[i]
		if r.SearchDate != nil && r.SearchDate.Before(searchCutoff) {
			continue
		}
		if r.LastLogin == nil {
			if !missing[r.UserID] {
				missing[r.UserID] = true
				errs = append(errs, &UserError{UserID: r.UserID, Err: ErrUserNotFound})
			}
			continue
		}
		if r.LastLogin.Before(loginCutoff) {
			continue
		}

		pos, ok := index[r.UserID]
		if !ok {
			pos = len(groups)
			index[r.UserID] = pos
			groups = append(groups, UserQueries{UserID: r.UserID})
		}
		groups[pos].Queries = append(groups[pos].Queries, r.Query)
	}
	return groups, errs
}
