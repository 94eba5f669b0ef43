package schedules

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"household-med-tracker/internal/domain/caregrants"
	"household-med-tracker/internal/domain/medications"
	"household-med-tracker/internal/domain/members"
	"household-med-tracker/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, projector *Projector, medsSvc *medications.Service, membersSvc *members.Service, grantsSvc *caregrants.Service) {
	r.Route("/medications/{medicationID}/schedules", func(sr chi.Router) {
		sr.Post("/", createScheduleHandler(svc, medsSvc, membersSvc, grantsSvc))
		sr.Get("/", listSchedulesHandler(svc, medsSvc, membersSvc, grantsSvc))
	})

	r.Route("/schedules/{scheduleID}", func(sr chi.Router) {
		sr.Patch("/", updateScheduleHandler(svc, medsSvc, membersSvc, grantsSvc))
		sr.Delete("/", deleteScheduleHandler(svc, medsSvc, membersSvc, grantsSvc))
	})

	// Vista "hoy" del hogar completo del usuario.
	r.Get("/today", todayHandler(projector))
}

type createScheduleRequest struct {
	TimeOfDay           string   `json:"time_of_day"` // "HH:mm" 24h
	Days                []string `json:"days"`        // subset de mon..sun
	Enabled             *bool    `json:"enabled"`
	ReminderLeadMinutes int      `json:"reminder_lead_minutes"`
}

type updateScheduleRequest struct {
	TimeOfDay           *string   `json:"time_of_day"`
	Days                *[]string `json:"days"`
	Enabled             *bool     `json:"enabled"`
	ReminderLeadMinutes *int      `json:"reminder_lead_minutes"`
}

type scheduleResponse struct {
	ID                  string    `json:"id"`
	MedicationID        string    `json:"medication_id"`
	TimeOfDay           string    `json:"time_of_day"`
	Days                []Weekday `json:"days"`
	Enabled             bool      `json:"enabled"`
	ReminderLeadMinutes int       `json:"reminder_lead_minutes"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

type todayItemResponse struct {
	ScheduleID          string             `json:"schedule_id"`
	MedicationID        string             `json:"medication_id"`
	MedicationName      string             `json:"medication_name"`
	MemberID            string             `json:"member_id"`
	MemberName          string             `json:"member_name"`
	MemberType          members.MemberType `json:"member_type"`
	TimeOfDay           string             `json:"time_of_day"`
	Status              Status             `json:"status"`
	Enabled             bool               `json:"enabled"`
	ReminderLeadMinutes int                `json:"reminder_lead_minutes"`
}

// authorizeMedication resuelve medicamento -> miembro -> owner y aplica
// owner-bypass o scope del cuidador. Devuelve el medicamento si autoriza.
func authorizeMedication(w http.ResponseWriter, r *http.Request, medsSvc *medications.Service, membersSvc *members.Service, grantsSvc *caregrants.Service, medicationID, userID string, scope caregrants.Scope) (medications.Medication, bool) {
	med, err := medsSvc.GetByID(r.Context(), medicationID)
	if err != nil {
		http.Error(w, "medication not found", http.StatusNotFound)
		return medications.Medication{}, false
	}

	member, err := membersSvc.GetByID(r.Context(), med.MemberID)
	if err != nil {
		http.Error(w, "member not found", http.StatusNotFound)
		return medications.Medication{}, false
	}
	if member.OwnerUserID == userID {
		return med, true
	}

	g, err := grantsSvc.GetActiveGrant(r.Context(), med.MemberID, userID)
	if err != nil || !caregrants.HasScope(g, scope) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return medications.Medication{}, false
	}
	return med, true
}

// createScheduleHandler godoc
// @Summary Crear horario de dosificación
// @Description Crea una regla semanal (hora + días) para un medicamento. Owner o cuidador con scope `meds:manage`. Un set de días vacío es válido y significa "nunca vence".
// @Tags schedules
// @Accept json
// @Produce json
// @Param medicationID path string true "ID del medicamento"
// @Param payload body createScheduleRequest true "time_of_day en HH:mm de 24h; days subset de mon,tue,wed,thu,fri,sat,sun"
// @Success 201 {object} scheduleResponse
// @Failure 400 {string} string "HH:mm inválido / día desconocido / lead negativo"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "medication not found"
// @Router /medications/{medicationID}/schedules [post]
func createScheduleHandler(svc *Service, medsSvc *medications.Service, membersSvc *members.Service, grantsSvc *caregrants.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		medicationID := chi.URLParam(r, "medicationID")
		if _, ok := authorizeMedication(w, r, medsSvc, membersSvc, grantsSvc, medicationID, claims.UserID, caregrants.ScopeMedsManage); !ok {
			return
		}

		var req createScheduleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		sch, err := svc.Create(r.Context(), medicationID, CreateInput{
			TimeOfDay:           req.TimeOfDay,
			Days:                req.Days,
			Enabled:             req.Enabled,
			ReminderLeadMinutes: req.ReminderLeadMinutes,
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		writeJSON(w, http.StatusCreated, toScheduleResponse(sch))
	}
}

func listSchedulesHandler(svc *Service, medsSvc *medications.Service, membersSvc *members.Service, grantsSvc *caregrants.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		medicationID := chi.URLParam(r, "medicationID")
		if _, ok := authorizeMedication(w, r, medsSvc, membersSvc, grantsSvc, medicationID, claims.UserID, caregrants.ScopeMemberRead); !ok {
			return
		}

		items, err := svc.ListByMedication(r.Context(), medicationID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]scheduleResponse, 0, len(items))
		for _, sch := range items {
			out = append(out, toScheduleResponse(sch))
		}

		writeJSON(w, http.StatusOK, out)
	}
}

func updateScheduleHandler(svc *Service, medsSvc *medications.Service, membersSvc *members.Service, grantsSvc *caregrants.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		scheduleID := chi.URLParam(r, "scheduleID")
		current, err := svc.GetByID(r.Context(), scheduleID)
		if err != nil {
			http.Error(w, "schedule not found", http.StatusNotFound)
			return
		}

		if _, ok := authorizeMedication(w, r, medsSvc, membersSvc, grantsSvc, current.MedicationID, claims.UserID, caregrants.ScopeMedsManage); !ok {
			return
		}

		var req updateScheduleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		updated, err := svc.Update(r.Context(), scheduleID, UpdateInput{
			TimeOfDay:           req.TimeOfDay,
			Days:                req.Days,
			Enabled:             req.Enabled,
			ReminderLeadMinutes: req.ReminderLeadMinutes,
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		writeJSON(w, http.StatusOK, toScheduleResponse(updated))
	}
}

func deleteScheduleHandler(svc *Service, medsSvc *medications.Service, membersSvc *members.Service, grantsSvc *caregrants.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		scheduleID := chi.URLParam(r, "scheduleID")
		current, err := svc.GetByID(r.Context(), scheduleID)
		if err != nil {
			http.Error(w, "schedule not found", http.StatusNotFound)
			return
		}

		if _, ok := authorizeMedication(w, r, medsSvc, membersSvc, grantsSvc, current.MedicationID, claims.UserID, caregrants.ScopeMedsManage); !ok {
			return
		}

		if err := svc.Delete(r.Context(), scheduleID); err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// todayHandler godoc
// @Summary Horarios de hoy
// @Description Proyección de los horarios vigentes hoy para todo el hogar del usuario, ordenados por hora, con estado pending/completed/overdue. `at` (RFC3339) permite evaluar en otro instante; default ahora.
// @Tags schedules
// @Produce json
// @Param at query string false "Instante de evaluación (RFC3339). Por defecto ahora"
// @Success 200 {array} todayItemResponse
// @Failure 400 {string} string "at inválido"
// @Failure 401 {string} string "unauthorized"
// @Failure 500 {string} string "internal error"
// @Router /today [get]
func todayHandler(projector *Projector) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		at := time.Now()
		if v := strings.TrimSpace(r.URL.Query().Get("at")); v != "" {
			t, err := time.Parse(time.RFC3339, v)
			if err != nil {
				http.Error(w, "at must be RFC3339", http.StatusBadRequest)
				return
			}
			at = t
		}

		items, err := projector.Execute(r.Context(), claims.UserID, at)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]todayItemResponse, 0, len(items))
		for _, it := range items {
			out = append(out, todayItemResponse(it))
		}

		writeJSON(w, http.StatusOK, out)
	}
}

func toScheduleResponse(s Schedule) scheduleResponse {
	return scheduleResponse{
		ID:                  s.ID,
		MedicationID:        s.MedicationID,
		TimeOfDay:           s.TimeOfDay,
		Days:                s.Days,
		Enabled:             s.Enabled,
		ReminderLeadMinutes: s.ReminderLeadMinutes,
		CreatedAt:           s.CreatedAt,
		UpdatedAt:           s.UpdatedAt,
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
