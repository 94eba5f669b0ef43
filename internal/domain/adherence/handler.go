package adherence

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"household-med-tracker/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, agg *Aggregator) {
	r.Route("/stats", func(sr chi.Router) {
		sr.Get("/", statsHandler(agg))
		sr.Get("/trend", trendHandler(agg))
	})
}

// statsHandler godoc
// @Summary Estadísticas de cumplimiento
// @Description Rates de cumplimiento del hogar (ventanas rodantes de 7 y 30 días terminando en la fecha de evaluación) y desglose por miembro. `at` (RFC3339) por defecto es ahora.
// @Tags adherence
// @Produce json
// @Param at query string false "Instante de evaluación (RFC3339). Por defecto ahora"
// @Success 200 {object} Stats
// @Failure 400 {string} string "at inválido"
// @Failure 401 {string} string "unauthorized"
// @Failure 500 {string} string "internal error"
// @Router /stats [get]
func statsHandler(agg *Aggregator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		at, ok := parseAt(w, r)
		if !ok {
			return
		}

		stats, err := agg.ComputeStats(r.Context(), claims.UserID, at)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, stats)
	}
}

// trendHandler godoc
// @Summary Tendencia semanal de cumplimiento
// @Description Buckets por día de semana de la ventana de 7 días, mejor/peor día y delta contra la semana anterior.
// @Tags adherence
// @Produce json
// @Param at query string false "Instante de evaluación (RFC3339). Por defecto ahora"
// @Success 200 {object} Trend
// @Failure 400 {string} string "at inválido"
// @Failure 401 {string} string "unauthorized"
// @Failure 500 {string} string "internal error"
// @Router /stats/trend [get]
func trendHandler(agg *Aggregator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		at, ok := parseAt(w, r)
		if !ok {
			return
		}

		trend, err := agg.ComputeTrend(r.Context(), claims.UserID, at)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, trend)
	}
}

func parseAt(w http.ResponseWriter, r *http.Request) (time.Time, bool) {
	v := strings.TrimSpace(r.URL.Query().Get("at"))
	if v == "" {
		return time.Now(), true
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		http.Error(w, "at must be RFC3339", http.StatusBadRequest)
		return time.Time{}, false
	}
	return t, true
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
