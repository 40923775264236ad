package app

import (
	"errors"
	"net/http"

	"github.com/strutkit/strut/domain/schema"
	"github.com/strutkit/strut/record"
)

// statusMapping pairs a failure kind with the external status it maps to.
type statusMapping struct {
	err    error
	status int
}

func defaultStatusMappings() []statusMapping {
	return []statusMapping{
		{err: ErrMissingRoute, status: http.StatusNotFound},
		{err: record.ErrNotFound, status: http.StatusNotFound},
		{err: record.ErrNotPersisted, status: http.StatusInternalServerError},
		{err: schema.ErrUnsupportedType, status: http.StatusInternalServerError},
	}
}

// MapStatus adds or overrides the status a failure kind maps to.
// Mappings are matched with errors.Is, most recent first.
func (r *Router) MapStatus(target error, status int) {
	r.statuses = append([]statusMapping{{err: target, status: status}}, r.statuses...)
}

// statusFor translates a dispatch failure into an external status.
// Unmapped failures degrade to a generic server error.
func (r *Router) statusFor(err error) int {
	for _, m := range r.statuses {
		if errors.Is(err, m.err) {
			return m.status
		}
	}
	return http.StatusInternalServerError
}
