package doses

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"household-med-tracker/internal/domain/caregrants"
	"household-med-tracker/internal/domain/members"
	"household-med-tracker/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, membersSvc *members.Service, grantsSvc *caregrants.Service) {
	r.Route("/members/{memberID}/doses", func(dr chi.Router) {
		dr.Post("/", createDoseHandler(svc, membersSvc, grantsSvc))
		dr.Get("/", listDosesHandler(svc, membersSvc, grantsSvc))
	})

	r.Delete("/doses/{doseID}", deleteDoseHandler(svc, membersSvc, grantsSvc))
}

type createDoseRequest struct {
	MedicationID string  `json:"medication_id"`
	ScheduleID   *string `json:"schedule_id"`
	TakenAt      string  `json:"taken_at"` // RFC3339 opcional, default ahora
	Note         string  `json:"note"`
}

type doseResponse struct {
	ID           string    `json:"id"`
	MemberID     string    `json:"member_id"`
	MedicationID string    `json:"medication_id"`
	ScheduleID   *string   `json:"schedule_id,omitempty"`
	TakenAt      time.Time `json:"taken_at"`
	RecordedAt   time.Time `json:"recorded_at"`
	Note         string    `json:"note,omitempty"`
}

func authorize(w http.ResponseWriter, r *http.Request, membersSvc *members.Service, grantsSvc *caregrants.Service, memberID, userID string, scope caregrants.Scope) bool {
	m, err := membersSvc.GetByID(r.Context(), memberID)
	if err != nil {
		http.Error(w, "member not found", http.StatusNotFound)
		return false
	}
	if m.OwnerUserID == userID {
		return true
	}
	g, err := grantsSvc.GetActiveGrant(r.Context(), memberID, userID)
	if err != nil || !caregrants.HasScope(g, scope) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return false
	}
	return true
}

// createDoseHandler godoc
// @Summary Registrar toma
// @Description Registra que una dosis fue tomada. Owner o cuidador con scope `doses:log`. schedule_id es opcional (toma ad-hoc).
// @Tags doses
// @Accept json
// @Produce json
// @Param memberID path string true "ID del miembro"
// @Param payload body createDoseRequest true "Datos de la toma; taken_at en RFC3339 (default ahora)"
// @Success 201 {object} doseResponse
// @Failure 400 {string} string "invalid json / taken_at inválido"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "member not found"
// @Router /members/{memberID}/doses [post]
func createDoseHandler(svc *Service, membersSvc *members.Service, grantsSvc *caregrants.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		memberID := chi.URLParam(r, "memberID")
		if !authorize(w, r, membersSvc, grantsSvc, memberID, claims.UserID, caregrants.ScopeDosesLog) {
			return
		}

		var req createDoseRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		var takenAt time.Time
		if strings.TrimSpace(req.TakenAt) != "" {
			t, err := time.Parse(time.RFC3339, req.TakenAt)
			if err != nil {
				http.Error(w, "taken_at must be RFC3339", http.StatusBadRequest)
				return
			}
			takenAt = t
		}

		d, err := svc.Create(r.Context(), memberID, CreateInput{
			MedicationID: req.MedicationID,
			ScheduleID:   req.ScheduleID,
			TakenAt:      takenAt,
			Note:         req.Note,
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		writeJSON(w, http.StatusCreated, toDoseResponse(d))
	}
}

// listDosesHandler godoc
// @Summary Historial de tomas
// @Description Lista las tomas de un miembro, más recientes primero. Owner o cuidador con scope `doses:read`. Filtros from/to (RFC3339) y limit (1-200, default 50).
// @Tags doses
// @Produce json
// @Param memberID path string true "ID del miembro"
// @Param from query string false "Fecha/hora mínima taken_at (RFC3339)"
// @Param to query string false "Fecha/hora máxima taken_at (RFC3339)"
// @Param limit query int false "Máximo de registros a devolver (1-200). Por defecto 50"
// @Success 200 {array} doseResponse
// @Failure 400 {string} string "Parámetros de filtro inválidos"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "member not found"
// @Router /members/{memberID}/doses [get]
func listDosesHandler(svc *Service, membersSvc *members.Service, grantsSvc *caregrants.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		memberID := chi.URLParam(r, "memberID")
		if !authorize(w, r, membersSvc, grantsSvc, memberID, claims.UserID, caregrants.ScopeDosesRead) {
			return
		}

		filter, err := parseListFilter(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		items, err := svc.ListByMember(r.Context(), memberID, filter)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]doseResponse, 0, len(items))
		for _, d := range items {
			out = append(out, toDoseResponse(d))
		}

		writeJSON(w, http.StatusOK, out)
	}
}

func deleteDoseHandler(svc *Service, membersSvc *members.Service, grantsSvc *caregrants.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		doseID := chi.URLParam(r, "doseID")
		d, err := svc.GetByID(r.Context(), doseID)
		if err != nil {
			http.Error(w, "dose not found", http.StatusNotFound)
			return
		}

		if !authorize(w, r, membersSvc, grantsSvc, d.MemberID, claims.UserID, caregrants.ScopeDosesDelete) {
			return
		}

		if err := svc.Delete(r.Context(), doseID); err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func parseListFilter(r *http.Request) (ListFilter, error) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}

	filter := ListFilter{Limit: limit}

	if v := strings.TrimSpace(r.URL.Query().Get("from")); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return ListFilter{}, errors.New("from must be RFC3339")
		}
		filter.From = &t
	}
	if v := strings.TrimSpace(r.URL.Query().Get("to")); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return ListFilter{}, errors.New("to must be RFC3339")
		}
		filter.To = &t
	}

	return filter, nil
}

func toDoseResponse(d DoseRecord) doseResponse {
	return doseResponse{
		ID:           d.ID,
		MemberID:     d.MemberID,
		MedicationID: d.MedicationID,
		ScheduleID:   d.ScheduleID,
		TakenAt:      d.TakenAt,
		RecordedAt:   d.RecordedAt,
		Note:         d.Note,
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
