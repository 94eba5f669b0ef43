package medications

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"household-med-tracker/internal/domain/caregrants"
	"household-med-tracker/internal/domain/members"
	"household-med-tracker/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, membersSvc *members.Service, grantsSvc *caregrants.Service) {
	r.Route("/members/{memberID}/medications", func(mr chi.Router) {
		mr.Post("/", createMedicationHandler(svc, membersSvc, grantsSvc))
		mr.Get("/", listMedicationsHandler(svc, membersSvc, grantsSvc))
	})

	r.Route("/medications/{medicationID}", func(mr chi.Router) {
		mr.Get("/", getMedicationHandler(svc, membersSvc, grantsSvc))
		mr.Patch("/", updateMedicationHandler(svc, membersSvc, grantsSvc))
		mr.Post("/deactivate", deactivateMedicationHandler(svc, membersSvc, grantsSvc))
	})

	// Alertas de stock de todos los miembros del owner.
	r.Get("/stock/alerts", stockAlertsHandler(svc, membersSvc))
}

type createMedicationRequest struct {
	Name           string `json:"name"`
	Category       string `json:"category" enums:"regular,supplement,as_needed,inhaler,flea_tick,heartworm"`
	Dosage         string `json:"dosage"`
	Frequency      string `json:"frequency"`
	StockDays      *int   `json:"stock_days"`
	StockAlertDate string `json:"stock_alert_date"` // YYYY-MM-DD opcional
}

type medicationResponse struct {
	ID             string     `json:"id"`
	MemberID       string     `json:"member_id"`
	Name           string     `json:"name"`
	Category       Category   `json:"category"`
	Dosage         string     `json:"dosage"`
	Frequency      string     `json:"frequency"`
	StockDays      *int       `json:"stock_days,omitempty"`
	StockAlertDate *time.Time `json:"stock_alert_date,omitempty"`
	Active         bool       `json:"active"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

type stockAlertsResponse struct {
	LowStock     []medicationResponse `json:"low_stock"`
	OverdueAlert []medicationResponse `json:"overdue_alert"`
}

// authorizeMember resuelve el owner del miembro y aplica owner-bypass o scope.
// Devuelve false si ya respondió con un error HTTP.
func authorizeMember(w http.ResponseWriter, r *http.Request, membersSvc *members.Service, grantsSvc *caregrants.Service, memberID, userID string, scope caregrants.Scope) bool {
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

// createMedicationHandler godoc
// @Summary Crear medicamento
// @Description Registra un medicamento para un miembro. Owner o cuidador con scope `meds:manage`.
// @Tags medications
// @Accept json
// @Produce json
// @Param memberID path string true "ID del miembro"
// @Param payload body createMedicationRequest true "Datos del medicamento"
// @Success 201 {object} medicationResponse
// @Failure 400 {string} string "invalid json / reglas de negocio"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "member not found"
// @Router /members/{memberID}/medications [post]
func createMedicationHandler(svc *Service, membersSvc *members.Service, grantsSvc *caregrants.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		memberID := chi.URLParam(r, "memberID")
		if !authorizeMember(w, r, membersSvc, grantsSvc, memberID, claims.UserID, caregrants.ScopeMedsManage) {
			return
		}

		var req createMedicationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		var alertDate *time.Time
		if strings.TrimSpace(req.StockAlertDate) != "" {
			t, err := time.Parse("2006-01-02", req.StockAlertDate)
			if err != nil {
				http.Error(w, "stock_alert_date must be YYYY-MM-DD", http.StatusBadRequest)
				return
			}
			alertDate = &t
		}

		m, err := svc.Create(r.Context(), memberID, CreateInput{
			Name:           req.Name,
			Category:       req.Category,
			Dosage:         req.Dosage,
			Frequency:      req.Frequency,
			StockDays:      req.StockDays,
			StockAlertDate: alertDate,
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		writeJSON(w, http.StatusCreated, toMedicationResponse(m))
	}
}

func listMedicationsHandler(svc *Service, membersSvc *members.Service, grantsSvc *caregrants.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		memberID := chi.URLParam(r, "memberID")
		if !authorizeMember(w, r, membersSvc, grantsSvc, memberID, claims.UserID, caregrants.ScopeMemberRead) {
			return
		}

		items, err := svc.ListByMember(r.Context(), memberID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]medicationResponse, 0, len(items))
		for _, m := range items {
			out = append(out, toMedicationResponse(m))
		}

		writeJSON(w, http.StatusOK, out)
	}
}

func getMedicationHandler(svc *Service, membersSvc *members.Service, grantsSvc *caregrants.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		medID := chi.URLParam(r, "medicationID")
		m, err := svc.GetByID(r.Context(), medID)
		if err != nil {
			http.Error(w, "medication not found", http.StatusNotFound)
			return
		}

		if !authorizeMember(w, r, membersSvc, grantsSvc, m.MemberID, claims.UserID, caregrants.ScopeMemberRead) {
			return
		}

		writeJSON(w, http.StatusOK, toMedicationResponse(m))
	}
}

func updateMedicationHandler(svc *Service, membersSvc *members.Service, grantsSvc *caregrants.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		medID := chi.URLParam(r, "medicationID")
		current, err := svc.GetByID(r.Context(), medID)
		if err != nil {
			http.Error(w, "medication not found", http.StatusNotFound)
			return
		}

		if !authorizeMember(w, r, membersSvc, grantsSvc, current.MemberID, claims.UserID, caregrants.ScopeMedsManage) {
			return
		}

		// stock_days y stock_alert_date admiten null explícito (limpiar),
		// así que decodificamos a raw JSON para detectar presencia.
		var raw map[string]json.RawMessage
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		var req struct {
			Name      *string `json:"name"`
			Category  *string `json:"category"`
			Dosage    *string `json:"dosage"`
			Frequency *string `json:"frequency"`
		}
		{
			b, _ := json.Marshal(raw)
			if err := json.Unmarshal(b, &req); err != nil {
				http.Error(w, "invalid json", http.StatusBadRequest)
				return
			}
		}

		in := UpdateInput{
			Name:      req.Name,
			Category:  req.Category,
			Dosage:    req.Dosage,
			Frequency: req.Frequency,
		}

		if v, exists := raw["stock_days"]; exists {
			in.StockDays.Present = true
			if string(v) != "null" {
				var n int
				if err := json.Unmarshal(v, &n); err != nil {
					http.Error(w, "stock_days must be an integer or null", http.StatusBadRequest)
					return
				}
				in.StockDays.Value = &n
			}
		}
		if v, exists := raw["stock_alert_date"]; exists {
			in.StockAlertDate.Present = true
			if string(v) != "null" {
				var s string
				if err := json.Unmarshal(v, &s); err != nil {
					http.Error(w, "stock_alert_date must be YYYY-MM-DD or null", http.StatusBadRequest)
					return
				}
				t, err := time.Parse("2006-01-02", s)
				if err != nil {
					http.Error(w, "stock_alert_date must be YYYY-MM-DD or null", http.StatusBadRequest)
					return
				}
				in.StockAlertDate.Value = &t
			}
		}

		updated, err := svc.Update(r.Context(), medID, in)
		if err != nil {
			switch err {
			case ErrInvalidInput:
				http.Error(w, err.Error(), http.StatusBadRequest)
			case ErrNotFound:
				http.Error(w, "medication not found", http.StatusNotFound)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusOK, toMedicationResponse(updated))
	}
}

func deactivateMedicationHandler(svc *Service, membersSvc *members.Service, grantsSvc *caregrants.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		medID := chi.URLParam(r, "medicationID")
		current, err := svc.GetByID(r.Context(), medID)
		if err != nil {
			http.Error(w, "medication not found", http.StatusNotFound)
			return
		}

		if !authorizeMember(w, r, membersSvc, grantsSvc, current.MemberID, claims.UserID, caregrants.ScopeMedsManage) {
			return
		}

		updated, err := svc.Deactivate(r.Context(), medID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, toMedicationResponse(updated))
	}
}

// stockAlertsHandler godoc
// @Summary Alertas de stock
// @Description Lista medicamentos con stock bajo y medicamentos cuya fecha de alerta ya venció, para todos los miembros del usuario.
// @Tags medications
// @Produce json
// @Success 200 {object} stockAlertsResponse
// @Failure 401 {string} string "unauthorized"
// @Router /stock/alerts [get]
func stockAlertsHandler(svc *Service, membersSvc *members.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		household, err := membersSvc.ListByOwner(r.Context(), claims.UserID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		today := time.Now()
		out := stockAlertsResponse{
			LowStock:     make([]medicationResponse, 0),
			OverdueAlert: make([]medicationResponse, 0),
		}

		for _, member := range household {
			meds, err := svc.ListByMember(r.Context(), member.ID)
			if err != nil {
				http.Error(w, "internal error", http.StatusInternalServerError)
				return
			}
			for _, m := range meds {
				if IsLowStock(m, today) {
					out.LowStock = append(out.LowStock, toMedicationResponse(m))
				}
				if IsAlertOverdue(m, today) {
					out.OverdueAlert = append(out.OverdueAlert, toMedicationResponse(m))
				}
			}
		}

		writeJSON(w, http.StatusOK, out)
	}
}

func toMedicationResponse(m Medication) medicationResponse {
	return medicationResponse{
		ID:             m.ID,
		MemberID:       m.MemberID,
		Name:           m.Name,
		Category:       m.Category,
		Dosage:         m.Dosage,
		Frequency:      m.Frequency,
		StockDays:      m.StockDays,
		StockAlertDate: m.StockAlertDate,
		Active:         m.Active,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
