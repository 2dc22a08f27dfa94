package middleware

import (
	"net/http"
	"time"

	"github.com/m04kA/HospitalBookingService/pkg/logger"
)

// AccessLog пишет строку на каждый запрос с request_id из RequestID
// Ставится после RequestID; 5xx пишутся как ошибки, остальное на уровне debug
func AccessLog(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			reqLog := log.With("request_id", GetRequestID(r.Context()))
			if rec.status >= http.StatusInternalServerError {
				reqLog.Error("%s %s -> %d (%s)", r.Method, r.URL.Path, rec.status, time.Since(start))
				return
			}
			reqLog.Debug("%s %s -> %d (%s)", r.Method, r.URL.Path, rec.status, time.Since(start))
		})
	}
}
