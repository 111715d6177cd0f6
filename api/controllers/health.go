package controllers

import (
	"net/http"

	"github.com/nurserysera/storefront-backend/api/responses"
	"github.com/nurserysera/storefront-backend/pkg/config"
)

func Health(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Storefront-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]any{"ok": true})
	}
}
