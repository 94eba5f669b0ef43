package members

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"household-med-tracker/internal/domain/caregrants"
	"household-med-tracker/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, grantsSvc *caregrants.Service) {
	r.Route("/members", func(mr chi.Router) {
		mr.Post("/", createMemberHandler(svc))
		mr.Get("/", listMembersHandler(svc))

		// Perfil de miembro (owner o cuidador con member:read)
		mr.Get("/{memberID}", getMemberHandler(svc, grantsSvc))

		// Actualizar miembro (owner o cuidador con member:edit_profile)
		mr.Patch("/{memberID}", updateMemberHandler(svc, grantsSvc))

		// Eliminar miembro (solo owner)
		mr.Delete("/{memberID}", deleteMemberHandler(svc))
	})
}

type createMemberRequest struct {
	Type       string `json:"type" enums:"human,pet"`
	PetSpecies string `json:"pet_species"`
	Name       string `json:"name"`
	BirthDate  string `json:"birth_date"` // YYYY-MM-DD opcional
	Notes      string `json:"notes"`
}

type memberResponse struct {
	ID          string     `json:"id"`
	OwnerUserID string     `json:"owner_user_id"`
	Type        MemberType `json:"type"`
	PetSpecies  PetSpecies `json:"pet_species,omitempty"`
	Name        string     `json:"name"`
	BirthDate   *time.Time `json:"birth_date,omitempty"`
	Notes       string     `json:"notes"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type updateMemberRequest struct {
	// Punteros para PATCH real: nil = no tocar.
	Name  *string `json:"name"`
	Notes *string `json:"notes"`
}

// createMemberHandler godoc
// @Summary Crear miembro del hogar
// @Description Crea una persona o mascota del hogar del usuario autenticado.
// @Tags members
// @Accept json
// @Produce json
// @Param payload body createMemberRequest true "Datos del miembro; birth_date en formato YYYY-MM-DD"
// @Success 201 {object} memberResponse
// @Failure 400 {string} string "invalid json / reglas de negocio"
// @Failure 401 {string} string "unauthorized"
// @Router /members [post]
func createMemberHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req createMemberRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		var bd *time.Time
		if strings.TrimSpace(req.BirthDate) != "" {
			t, err := time.Parse("2006-01-02", req.BirthDate)
			if err != nil {
				http.Error(w, "birth_date must be YYYY-MM-DD", http.StatusBadRequest)
				return
			}
			bd = &t
		}

		m, err := svc.Create(r.Context(), claims.UserID, CreateInput{
			Type:       req.Type,
			PetSpecies: req.PetSpecies,
			Name:       req.Name,
			BirthDate:  bd,
			Notes:      req.Notes,
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		writeJSON(w, http.StatusCreated, toMemberResponse(m))
	}
}

func listMembersHandler(svc *Service) http.HandlerFunc {
	// Owner-only (los compartidos se listan vía /me/grants)
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		items, err := svc.ListByOwner(r.Context(), claims.UserID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]memberResponse, 0, len(items))
		for _, m := range items {
			out = append(out, toMemberResponse(m))
		}

		writeJSON(w, http.StatusOK, out)
	}
}

func getMemberHandler(svc *Service, grantsSvc *caregrants.Service) http.HandlerFunc {
	// Owner bypass, cuidador requiere member:read
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		memberID := chi.URLParam(r, "memberID")
		m, err := svc.GetByID(r.Context(), memberID)
		if err != nil {
			http.Error(w, "member not found", http.StatusNotFound)
			return
		}

		if m.OwnerUserID != claims.UserID {
			g, err := grantsSvc.GetActiveGrant(r.Context(), memberID, claims.UserID)
			if err != nil || !caregrants.HasScope(g, caregrants.ScopeMemberRead) {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
		}

		writeJSON(w, http.StatusOK, toMemberResponse(m))
	}
}

// updateMemberHandler aplica permisos:
// - owner bypass
// - cuidador requiere grant activo + scope member:edit_profile
func updateMemberHandler(svc *Service, grantsSvc *caregrants.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		memberID := chi.URLParam(r, "memberID")
		current, err := svc.GetByID(r.Context(), memberID)
		if err != nil {
			http.Error(w, "member not found", http.StatusNotFound)
			return
		}

		if current.OwnerUserID != claims.UserID {
			g, err := grantsSvc.GetActiveGrant(r.Context(), memberID, claims.UserID)
			if err != nil || !caregrants.HasScope(g, caregrants.ScopeMemberEditProfile) {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
		}

		// Para soportar birth_date: null hay que detectar presencia del campo,
		// así que primero decodificamos a un map de raw JSON.
		var raw map[string]json.RawMessage
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&raw); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		var req updateMemberRequest
		{
			b, _ := json.Marshal(raw)
			if err := json.Unmarshal(b, &req); err != nil {
				http.Error(w, "invalid json", http.StatusBadRequest)
				return
			}
		}

		bd := PatchBirthDate{}
		if v, exists := raw["birth_date"]; exists {
			bd.Present = true
			if string(v) != "null" {
				var s string
				if err := json.Unmarshal(v, &s); err != nil {
					http.Error(w, "birth_date must be YYYY-MM-DD or null", http.StatusBadRequest)
					return
				}
				t, err := time.Parse("2006-01-02", s)
				if err != nil {
					http.Error(w, "birth_date must be YYYY-MM-DD or null", http.StatusBadRequest)
					return
				}
				bd.Value = &t
			}
		}

		updated, err := svc.UpdateProfile(r.Context(), memberID, UpdateProfileInput{
			Name:      req.Name,
			Notes:     req.Notes,
			BirthDate: bd,
		})
		if err != nil {
			switch err {
			case ErrInvalidInput:
				http.Error(w, err.Error(), http.StatusBadRequest)
			case ErrNotFound:
				http.Error(w, "member not found", http.StatusNotFound)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusOK, toMemberResponse(updated))
	}
}

func deleteMemberHandler(svc *Service) http.HandlerFunc {
	// Solo el owner puede eliminar un miembro.
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		memberID := chi.URLParam(r, "memberID")
		m, err := svc.GetByID(r.Context(), memberID)
		if err != nil {
			http.Error(w, "member not found", http.StatusNotFound)
			return
		}
		if m.OwnerUserID != claims.UserID {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		if err := svc.Delete(r.Context(), memberID); err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func toMemberResponse(m Member) memberResponse {
	return memberResponse{
		ID:          m.ID,
		OwnerUserID: m.OwnerUserID,
		Type:        m.Type,
		PetSpecies:  m.PetSpecies,
		Name:        m.Name,
		BirthDate:   m.BirthDate,
		Notes:       m.Notes,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
