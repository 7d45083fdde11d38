package middleware

import (
	"net/http"

	apierrors "bikerental/internal/errors"
	"bikerental/internal/infrastructure"
)

// statusProblemTypes covers the statuses the middleware chain raises itself.
var statusProblemTypes = map[int]string{
	http.StatusBadRequest:            apierrors.TypeValidation,
	http.StatusUnsupportedMediaType:  apierrors.TypeValidation,
	http.StatusNotFound:              apierrors.TypeNotFound,
	http.StatusRequestEntityTooLarge: apierrors.TypePayloadTooLarge,
	http.StatusTooManyRequests:       apierrors.TypeRateLimit,
	http.StatusServiceUnavailable:    apierrors.TypeServiceDown,
	http.StatusGatewayTimeout:        apierrors.TypeTimeout,
}

// ProblemFromStatus creates an RFC 7807 problem for a status raised before any
// handler ran. Unlisted statuses use the internal problem type.
func ProblemFromStatus(r *http.Request, status int, detail string) *apierrors.ProblemDetails {
	problemType, ok := statusProblemTypes[status]
	if !ok {
		problemType = apierrors.TypeInternal
	}
	return apierrors.NewProblemDetails(status, problemType, http.StatusText(status), detail, r.URL.Path).
		WithExtension("trace_id", infrastructure.GetTraceID(r.Context()))
}

func writeProblem(w http.ResponseWriter, r *http.Request, status int, detail string) {
	_ = ProblemFromStatus(r, status, detail).Render(w, r)
}
