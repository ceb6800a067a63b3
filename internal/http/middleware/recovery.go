package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/google/uuid"
	"github.com/tuncrm/crm-api/internal/domain"
	applog "github.com/tuncrm/crm-api/internal/logger"
	"go.uber.org/zap"
)

// Recovery turns a panic into a 500 carrying an error id, logged with the stack
func Recovery(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				errorID := uuid.NewString()
				applog.WithRequest(logger, r.Method, r.URL.Path, r.Header.Get(RequestIDHeader)).Error("panic recovered",
					zap.String("error_id", errorID),
					zap.Any("panic", rec),
					zap.ByteString("stack", debug.Stack()),
				)

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_ = json.NewEncoder(w).Encode(domain.APIResponse{
					Success: false,
					Message: fmt.Sprintf(domain.MsgInternalWithID, errorID),
				})
			}()

			next.ServeHTTP(w, r)
		})
	}
}
