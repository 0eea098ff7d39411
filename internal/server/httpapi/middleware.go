package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrijs2005/gophpos/internal/common"
	"github.com/dmitrijs2005/gophpos/internal/server/auth"
)

type ctxKey string

const tenantIDKey ctxKey = "tenantID"

func tenantFrom(ctx context.Context) int64 {
	id, _ := ctx.Value(tenantIDKey).(int64)
	return id
}

// authenticate resolves the bearer token to a tenant. State-changing
// requests must also carry a CSRF token of the same tenant.
func (h *handler) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get(common.AuthorizationHeaderName)
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, common.ErrUnauthorized.Error())
			return
		}

		tenantID, err := auth.GetTenantIDFromToken(token, h.SecretKey)
		if err != nil {
			h.Log.Info(r.Context(), "rejected token", "error", err)
			writeError(w, http.StatusUnauthorized, common.ErrInvalidToken.Error())
			return
		}

		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			if err := auth.VerifyCSRFToken(r.Header.Get(common.CSRFHeaderName), tenantID, h.SecretKey); err != nil {
				writeError(w, http.StatusForbidden, common.ErrInvalidCSRF.Error())
				return
			}
		}

		ctx := context.WithValue(r.Context(), tenantIDKey, tenantID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		h.Log.Debug(r.Context(), "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
