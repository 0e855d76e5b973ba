package handlers

import (
	"net/http"
	"runtime"

	"go.uber.org/zap"
)

// RecoverWrapper wraps an http.HandlerFunc with panic recovery
func RecoverWrapper(logger *zap.Logger, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				stack := make([]byte, 8*1024)
				stack = stack[:runtime.Stack(stack, false)]
				logger.Error("panic recovered",
					zap.Any("error", rec),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.ByteString("stack", stack),
				)
				writeJSON(w, http.StatusInternalServerError, ApiResponse{Success: false, Message: "internal server error"})
			}
		}()

		handler(w, r)
	}
}
