package caregrants

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"household-med-tracker/internal/middleware"

	"github.com/go-chi/chi/v5"
)

// MemberOwnerLookup evita importar el paquete members (rompe ciclos).
type MemberOwnerLookup interface {
	OwnerOf(ctx context.Context, memberID string) (string, error)
}

func RegisterRoutes(r chi.Router, svc *Service, memberOwners MemberOwnerLookup) {
	// Owner actions scoped by member
	r.Route("/members/{memberID}/grants", func(gr chi.Router) {
		gr.Post("/", inviteGrantHandler(svc, memberOwners))
		gr.Get("/", listGrantsByMemberHandler(svc, memberOwners))
	})

	// Caregiver/Owner actions scoped by grant id
	r.Route("/grants/{grantID}", func(gr chi.Router) {
		gr.Post("/accept", acceptGrantHandler(svc))
		gr.Post("/revoke", revokeGrantHandler(svc))
	})

	// Cuidador: ver sus invitaciones / grants
	r.Route("/me/grants", func(mr chi.Router) {
		mr.Get("/", listMyGrantsHandler(svc))
	})
}

type inviteGrantRequest struct {
	CaregiverUserID string   `json:"caregiver_user_id"`
	Scopes          []string `json:"scopes"`
}

type grantResponse struct {
	ID              string     `json:"id"`
	MemberID        string     `json:"member_id"`
	OwnerUserID     string     `json:"owner_user_id"`
	CaregiverUserID string     `json:"caregiver_user_id"`
	Scopes          []Scope    `json:"scopes"`
	Status          Status     `json:"status"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	RevokedAt       *time.Time `json:"revoked_at,omitempty"`
}

// inviteGrantHandler godoc
// @Summary Invitar cuidador
// @Description El owner de un miembro invita a otro usuario como cuidador con scopes explícitos.
// @Tags grants
// @Accept json
// @Produce json
// @Param memberID path string true "ID del miembro"
// @Param payload body inviteGrantRequest true "Cuidador y scopes"
// @Success 201 {object} grantResponse
// @Failure 400 {string} string "invalid json / scope desconocido"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "member not found"
// @Router /members/{memberID}/grants [post]
func inviteGrantHandler(svc *Service, memberOwners MemberOwnerLookup) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		memberID := chi.URLParam(r, "memberID")
		ownerID, err := memberOwners.OwnerOf(r.Context(), memberID)
		if err != nil {
			http.Error(w, "member not found", http.StatusNotFound)
			return
		}
		if ownerID != claims.UserID {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		var req inviteGrantRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		scopes := make([]Scope, 0, len(req.Scopes))
		for _, s := range req.Scopes {
			scopes = append(scopes, Scope(s))
		}

		g, err := svc.Invite(r.Context(), InviteInput{
			MemberID:        memberID,
			OwnerUserID:     claims.UserID,
			CaregiverUserID: req.CaregiverUserID,
			Scopes:          scopes,
		})
		if err != nil {
			switch err {
			case ErrInvalidInput:
				http.Error(w, err.Error(), http.StatusBadRequest)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusCreated, toGrantResponse(g))
	}
}

func listGrantsByMemberHandler(svc *Service, memberOwners MemberOwnerLookup) http.HandlerFunc {
	// Solo el owner ve los grants de su miembro.
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		memberID := chi.URLParam(r, "memberID")
		ownerID, err := memberOwners.OwnerOf(r.Context(), memberID)
		if err != nil {
			http.Error(w, "member not found", http.StatusNotFound)
			return
		}
		if ownerID != claims.UserID {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		items, err := svc.ListByMember(r.Context(), memberID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]grantResponse, 0, len(items))
		for _, g := range items {
			out = append(out, toGrantResponse(g))
		}

		writeJSON(w, http.StatusOK, out)
	}
}

func acceptGrantHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		grantID := chi.URLParam(r, "grantID")

		g, err := svc.Accept(r.Context(), grantID, claims.UserID)
		if err != nil {
			switch err {
			case ErrNotFound:
				http.Error(w, "grant not found", http.StatusNotFound)
			case ErrForbidden:
				http.Error(w, "forbidden", http.StatusForbidden)
			case ErrBadState:
				http.Error(w, "invalid state", http.StatusConflict)
			case ErrInvalidInput:
				http.Error(w, err.Error(), http.StatusBadRequest)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusOK, toGrantResponse(g))
	}
}

func revokeGrantHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		grantID := chi.URLParam(r, "grantID")

		g, err := svc.Revoke(r.Context(), grantID, claims.UserID)
		if err != nil {
			switch err {
			case ErrNotFound:
				http.Error(w, "grant not found", http.StatusNotFound)
			case ErrForbidden:
				http.Error(w, "forbidden", http.StatusForbidden)
			case ErrInvalidInput:
				http.Error(w, err.Error(), http.StatusBadRequest)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusOK, toGrantResponse(g))
	}
}

func listMyGrantsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		items, err := svc.ListByCaregiver(r.Context(), claims.UserID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]grantResponse, 0, len(items))
		for _, g := range items {
			out = append(out, toGrantResponse(g))
		}

		writeJSON(w, http.StatusOK, out)
	}
}

func toGrantResponse(g Grant) grantResponse {
	return grantResponse{
		ID:              g.ID,
		MemberID:        g.MemberID,
		OwnerUserID:     g.OwnerUserID,
		CaregiverUserID: g.CaregiverUserID,
		Scopes:          g.Scopes,
		Status:          g.Status,
		CreatedAt:       g.CreatedAt,
		UpdatedAt:       g.UpdatedAt,
		RevokedAt:       g.RevokedAt,
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
