package admission

import (
	"encoding/json"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/savetube/savetube/internal/metrics"
)

// Gate returns a middleware that resolves the client identity and runs the
// admission check before each handler. Rejections are terminal: the wrapped
// handler is never invoked for them.
func Gate(ctrl *Controller, logger *zap.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := Identity(r)
			decision := ctrl.Admit(identity, Probe{
				UserAgent:      r.Header.Get("User-Agent"),
				AcceptLanguage: r.Header.Get("Accept-Language"),
			})
			if decision.Allowed {
				next.ServeHTTP(w, r)
				return
			}
			metrics.ObserveAdmissionRejection(string(decision.Reason))
			writeRejection(w, decision)
			logger.Info("request rejected",
				zap.String("identity", identity),
				zap.String("reason", string(decision.Reason)),
			)
		})
	}
}

func writeRejection(w http.ResponseWriter, decision Decision) {
	w.Header().Set("Content-Type", "application/json")

	var status int
	body := map[string]any{}
	switch decision.Reason {
	case ReasonBlocked, ReasonBurst:
		status = http.StatusTooManyRequests
		body["error"] = "Too many requests. You have been temporarily blocked."
		body["retry_after"] = int(decision.RetryAfter.Seconds())
	case ReasonHourly:
		status = http.StatusTooManyRequests
		body["error"] = "Hourly request limit reached. Please try again later."
		body["retry_after"] = int(decision.RetryAfter.Seconds())
	default:
		status = http.StatusForbidden
		body["error"] = "Invalid request. Please use a regular browser."
	}
	if decision.RetryAfter > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(int(decision.RetryAfter.Seconds())))
	}
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
