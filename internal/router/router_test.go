package router_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"household-med-tracker/internal/domain/caregrants"
	"household-med-tracker/internal/router"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	h, _ := router.NewRouter(router.Options{AuthVerifier: nil})
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	return ts
}

func TestHTTP_EndToEnd_CaregiverScopes(t *testing.T) {
	ts := newTestServer(t)

	ownerID := "owner-1"
	caregiverID := "caregiver-1"

	// 1) Owner crea miembro (mascota)
	memberID := createMember(t, ts.URL, ownerID, map[string]any{
		"type":        "pet",
		"pet_species": "dog",
		"name":        "Luna",
		"notes":       "test",
	})

	// 2) Cuidador NO puede ver perfil aún
	{
		st, _ := doReq(t, ts.URL, "GET", "/members/"+memberID, caregiverID, nil)
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 before grant, got %d", st)
		}
	}

	// 3) Owner invita cuidador con scopes necesarios
	grantID := inviteGrant(t, ts.URL, ownerID, memberID, caregiverID, []string{
		string(caregrants.ScopeMemberRead),
		string(caregrants.ScopeMedsManage),
		string(caregrants.ScopeDosesRead),
		string(caregrants.ScopeDosesLog),
	})

	// 4) Cuidador ve su invitación
	{
		st, body := doReq(t, ts.URL, "GET", "/me/grants", caregiverID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 listing my grants, got %d body=%s", st, string(body))
		}
	}

	// 5) Cuidador acepta
	{
		st, body := doReq(t, ts.URL, "POST", "/grants/"+grantID+"/accept", caregiverID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 accept grant, got %d body=%s", st, string(body))
		}
	}

	// 6) Cuidador ya puede ver perfil
	{
		st, body := doReq(t, ts.URL, "GET", "/members/"+memberID, caregiverID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 get member by caregiver, got %d body=%s", st, string(body))
		}
	}

	// 7) Cuidador crea medicamento (meds:manage)
	medicationID := createMedication(t, ts.URL, caregiverID, memberID, map[string]any{
		"name":      "Apoquel",
		"category":  "regular",
		"dosage":    "16 mg",
		"frequency": "1 por día",
	})

	// 8) Cuidador crea horario lunes 08:00
	scheduleID := createSchedule(t, ts.URL, caregiverID, medicationID, map[string]any{
		"time_of_day":           "08:00",
		"days":                  []string{"mon"},
		"reminder_lead_minutes": 15,
	})

	// 9) Owner ve la dosis pendiente el lunes a la mañana
	{
		st, body := doReq(t, ts.URL, "GET", "/today?at=2024-06-10T07:00:00Z", ownerID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 today, got %d body=%s", st, string(body))
		}
		var items []struct {
			ScheduleID string `json:"schedule_id"`
			Status     string `json:"status"`
		}
		if err := json.Unmarshal(body, &items); err != nil {
			t.Fatalf("today unmarshal: %v body=%s", err, string(body))
		}
		if len(items) != 1 || items[0].Status != "pending" {
			t.Fatalf("today = %+v, want 1 pending item", items)
		}
	}

	// 10) Cuidador registra la toma vinculada al horario
	{
		st, body := doReq(t, ts.URL, "POST", "/members/"+memberID+"/doses", caregiverID, map[string]any{
			"medication_id": medicationID,
			"schedule_id":   scheduleID,
			"taken_at":      "2024-06-10T08:05:00Z",
		})
		if st != http.StatusCreated {
			t.Fatalf("expected 201 create dose, got %d body=%s", st, string(body))
		}
	}

	// 11) La dosis pasa a completed aunque ya venció
	{
		st, body := doReq(t, ts.URL, "GET", "/today?at=2024-06-10T09:00:00Z", ownerID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 today, got %d body=%s", st, string(body))
		}
		var items []struct {
			Status string `json:"status"`
		}
		if err := json.Unmarshal(body, &items); err != nil {
			t.Fatalf("today unmarshal: %v body=%s", err, string(body))
		}
		if len(items) != 1 || items[0].Status != "completed" {
			t.Fatalf("today = %+v, want 1 completed item", items)
		}
	}

	// 12) Las estadísticas reflejan la toma
	{
		st, body := doReq(t, ts.URL, "GET", "/stats?at=2024-06-10T09:00:00Z", ownerID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 stats, got %d body=%s", st, string(body))
		}
		var stats struct {
			Weekly struct {
				Expected int `json:"expected"`
				Taken    int `json:"taken"`
				Rate     int `json:"rate"`
			} `json:"weekly"`
		}
		if err := json.Unmarshal(body, &stats); err != nil {
			t.Fatalf("stats unmarshal: %v body=%s", err, string(body))
		}
		if stats.Weekly.Expected != 1 || stats.Weekly.Taken != 1 || stats.Weekly.Rate != 100 {
			t.Fatalf("weekly stats = %+v, want {1 1 100}", stats.Weekly)
		}
	}

	// 13) Owner revoca; el cuidador pierde acceso inmediatamente
	{
		st, body := doReq(t, ts.URL, "POST", "/grants/"+grantID+"/revoke", ownerID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 revoke grant, got %d body=%s", st, string(body))
		}
	}
	{
		st, _ := doReq(t, ts.URL, "GET", "/members/"+memberID, caregiverID, nil)
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 get member after revoke, got %d", st)
		}
	}
	{
		st, _ := doReq(t, ts.URL, "POST", "/members/"+memberID+"/doses", caregiverID, map[string]any{
			"medication_id": medicationID,
		})
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 create dose after revoke, got %d", st)
		}
	}
}

func TestHTTP_InviteGrant_RejectsUnknownScope(t *testing.T) {
	ts := newTestServer(t)

	ownerID := "owner-1"
	caregiverID := "caregiver-1"

	memberID := createMember(t, ts.URL, ownerID, map[string]any{
		"type": "human",
		"name": "Abuela",
	})

	// scope inválido => 400
	st, _ := doReq(t, ts.URL, "POST", "/members/"+memberID+"/grants", ownerID, map[string]any{
		"caregiver_user_id": caregiverID,
		"scopes":            []string{"doses:read", "doses:unknown"},
	})
	if st != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown scope, got %d", st)
	}
}

func TestHTTP_Schedule_RejectsMalformedTime(t *testing.T) {
	ts := newTestServer(t)

	ownerID := "owner-1"
	memberID := createMember(t, ts.URL, ownerID, map[string]any{
		"type": "human",
		"name": "Abuela",
	})
	medicationID := createMedication(t, ts.URL, ownerID, memberID, map[string]any{
		"name": "Enalapril",
	})

	// "8:30" sin cero a la izquierda => 400
	st, _ := doReq(t, ts.URL, "POST", "/medications/"+medicationID+"/schedules", ownerID, map[string]any{
		"time_of_day": "8:30",
		"days":        []string{"mon"},
	})
	if st != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed time, got %d", st)
	}
}

func createMember(t *testing.T, baseURL, userID string, payload map[string]any) string {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/members", userID, payload)
	if st != http.StatusCreated {
		t.Fatalf("expected 201 create member, got %d body=%s", st, string(body))
	}

	var resp struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(body, &resp)
	if resp.ID == "" {
		t.Fatalf("create member: missing id body=%s", string(body))
	}
	return resp.ID
}

func inviteGrant(t *testing.T, baseURL, ownerID, memberID, caregiverID string, scopes []string) string {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/members/"+memberID+"/grants", ownerID, map[string]any{
		"caregiver_user_id": caregiverID,
		"scopes":            scopes,
	})
	if st != http.StatusCreated {
		t.Fatalf("expected 201 invite grant, got %d body=%s", st, string(body))
	}

	var resp struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(body, &resp)
	if resp.ID == "" {
		t.Fatalf("invite grant: missing id body=%s", string(body))
	}
	return resp.ID
}

func createMedication(t *testing.T, baseURL, userID, memberID string, payload map[string]any) string {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/members/"+memberID+"/medications", userID, payload)
	if st != http.StatusCreated {
		t.Fatalf("expected 201 create medication, got %d body=%s", st, string(body))
	}

	var resp struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(body, &resp)
	if resp.ID == "" {
		t.Fatalf("create medication: missing id body=%s", string(body))
	}
	return resp.ID
}

func createSchedule(t *testing.T, baseURL, userID, medicationID string, payload map[string]any) string {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/medications/"+medicationID+"/schedules", userID, payload)
	if st != http.StatusCreated {
		t.Fatalf("expected 201 create schedule, got %d body=%s", st, string(body))
	}

	var resp struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(body, &resp)
	if resp.ID == "" {
		t.Fatalf("create schedule: missing id body=%s", string(body))
	}
	return resp.ID
}

func doReq(t *testing.T, baseURL, method, path, debugUserID string, body any) (int, []byte) {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("json marshal: %v", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if debugUserID != "" {
		req.Header.Set("X-Debug-User-ID", debugUserID)
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()

	respBody, _ := io.ReadAll(res.Body)
	return res.StatusCode, respBody
}
