package committee

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/committeehq/committee-client/internal/api"
	"github.com/committeehq/committee-client/pkg/logger"
)

func newTestService(t *testing.T, handler http.Handler, onExpired api.ExpiryHandler) (*Service, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	if onExpired == nil {
		onExpired = func(ctx context.Context) error { return nil }
	}
	client, err := api.New(api.Config{
		BaseURL:          server.URL,
		OnSessionExpired: onExpired,
		Token:            func() string { return "test-token" },
		Logger:           logger.Nop(),
	})
	if err != nil {
		t.Fatalf("api.New() error = %v", err)
	}
	return NewService(client, logger.Nop()), server
}

func TestLogin_NestedTokenAndUserFallback(t *testing.T) {
	svc, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/login" {
			t.Errorf("path = %s, want /auth/login", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["phoneNo"] != "9876543210" {
			t.Errorf("phoneNo = %q, want 9876543210", body["phoneNo"])
		}
		w.Write([]byte(`{"token":"abc","data":{"user":{"name":"A"}}}`))
	}), nil)

	creds, err := svc.Login(context.Background(), "9876543210", "secret")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if creds.Token != "abc" {
		t.Errorf("Token = %q, want abc", creds.Token)
	}
	if creds.User.Name != "A" {
		t.Errorf("User.Name = %q, want A", creds.User.Name)
	}
	// Server omitted phoneNo; the submitted form value backfills it.
	if creds.User.PhoneNo != "9876543210" {
		t.Errorf("User.PhoneNo = %q, want 9876543210", creds.User.PhoneNo)
	}
}

func TestLogin_TokenLocationPrecedence(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"top level", `{"token":"t1"}`, "t1"},
		{"data", `{"data":{"token":"t2"}}`, "t2"},
		{"data.data", `{"data":{"data":{"token":"t3"}}}`, "t3"},
		{"top level wins", `{"token":"t1","data":{"token":"t2"}}`, "t1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}), nil)
			creds, err := svc.Login(context.Background(), "1", "p")
			if err != nil {
				t.Fatalf("Login() error = %v", err)
			}
			if creds.Token != tt.want {
				t.Errorf("Token = %q, want %q", creds.Token, tt.want)
			}
		})
	}
}

func TestLogin_MissingTokenFailsLoudly(t *testing.T) {
	svc, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"user":{"name":"A"}}}`))
	}), nil)

	if _, err := svc.Login(context.Background(), "1", "p"); err == nil {
		t.Fatal("Login() without token in response should fail")
	}
}

func TestRegister_UsesFormFallbacks(t *testing.T) {
	svc, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/register" {
			t.Errorf("path = %s, want /auth/register", r.URL.Path)
		}
		w.Write([]byte(`{"data":{"token":"fresh"}}`))
	}), nil)

	creds, err := svc.Register(context.Background(), RegisterInput{
		PhoneNo: "111", Email: "x@y.z", Password: "p", Name: "X", Role: "USER",
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if creds.Token != "fresh" {
		t.Errorf("Token = %q, want fresh", creds.Token)
	}
	if creds.User.Name != "X" || creds.User.Email != "x@y.z" || creds.User.Role != "USER" {
		t.Errorf("User = %+v, want form values", creds.User)
	}
}

func TestDraws_SessionExpiredClearsSession(t *testing.T) {
	expired := 0
	svc, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("committeeId"); got != "5" {
			t.Errorf("committeeId = %q, want 5", got)
		}
		w.WriteHeader(http.StatusForbidden)
	}), func(ctx context.Context) error {
		expired++
		return nil
	})

	_, err := svc.Draws(context.Background(), 5)
	if !api.IsSessionExpired(err) {
		t.Fatalf("error = %v, want session expired", err)
	}
	if expired != 1 {
		t.Errorf("expiry handler calls = %d, want 1", expired)
	}
}

func TestDraws_CanonicalPath(t *testing.T) {
	svc, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/committee/draw/get" {
			t.Errorf("path = %s, want /committee/draw/get", r.URL.Path)
		}
		w.Write([]byte(`{"data":[{"id":1,"committeeId":5,"committeeDrawAmount":1000}]}`))
	}), nil)

	draws, err := svc.Draws(context.Background(), 5)
	if err != nil {
		t.Fatalf("Draws() error = %v", err)
	}
	if len(draws) != 1 || draws[0].CommitteeDrawAmount != 1000 {
		t.Errorf("draws = %+v, want one draw of 1000", draws)
	}
}

func TestUpdateDrawAmount_RejectsZeroLocally(t *testing.T) {
	requests := 0
	svc, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}), nil)

	if _, err := svc.UpdateDrawAmount(context.Background(), 1, 2, 0); err == nil {
		t.Fatal("UpdateDrawAmount(0) should fail")
	}
	if _, err := svc.UpdateDrawAmount(context.Background(), 1, 2, -5); err == nil {
		t.Fatal("UpdateDrawAmount(-5) should fail")
	}
	if requests != 0 {
		t.Errorf("requests = %d, want 0 (rejected before network)", requests)
	}
}

func TestUpdateDrawAmount_Patch(t *testing.T) {
	svc, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch {
			t.Errorf("method = %s, want PATCH", r.Method)
		}
		if r.URL.Path != "/draw/amount-update" {
			t.Errorf("path = %s, want /draw/amount-update", r.URL.Path)
		}
		var body map[string]interface{}
		json.NewDecoder(r.Body).Decode(&body)
		if body["amount"] != float64(2500) {
			t.Errorf("amount = %v, want 2500", body["amount"])
		}
		w.Write([]byte(`{"success":true,"message":"updated"}`))
	}), nil)

	res, err := svc.UpdateDrawAmount(context.Background(), 1, 2, 2500)
	if err != nil {
		t.Fatalf("UpdateDrawAmount() error = %v", err)
	}
	if !res.Success || res.Message != "updated" {
		t.Errorf("result = %+v, want success with message", res)
	}
}

func TestUpdateUserWisePaid_DefaultsSuccess(t *testing.T) {
	svc, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/committee/draw/user-wise-paid" {
			t.Errorf("path = %s, want /committee/draw/user-wise-paid", r.URL.Path)
		}
		w.Write([]byte(`{}`))
	}), nil)

	res, err := svc.UpdateUserWisePaid(context.Background(), 1, 2, 3, 500)
	if err != nil {
		t.Fatalf("UpdateUserWisePaid() error = %v", err)
	}
	if !res.Success {
		t.Error("Success = false, want true when the field is absent")
	}
}

func TestLotteryRandomUser_ObjectAndArrayShapes(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		wantID int
	}{
		{"object", `{"data":{"id":7,"name":"W"},"message":"Winner selected"}`, 7},
		{"array", `{"data":[{"id":9,"name":"W"}]}`, 9},
		{"explicit userId wins", `{"data":{"id":3,"userId":12}}`, 12},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Errorf("method = %s, want POST", r.Method)
				}
				w.Write([]byte(tt.body))
			}), nil)

			winner, _, err := svc.LotteryRandomUser(context.Background(), 5)
			if err != nil {
				t.Fatalf("LotteryRandomUser() error = %v", err)
			}
			if winner.WinnerUserID() != tt.wantID {
				t.Errorf("WinnerUserID() = %d, want %d", winner.WinnerUserID(), tt.wantID)
			}
		})
	}
}

func TestLotteryRandomUser_RequiresStableID(t *testing.T) {
	svc, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"name":"anonymous winner","phoneNo":"123"}}`))
	}), nil)

	if _, _, err := svc.LotteryRandomUser(context.Background(), 5); err == nil {
		t.Fatal("winner without id should be rejected")
	}
}

func TestLotteryRandomUser_EmptyData(t *testing.T) {
	svc, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[]}`))
	}), nil)

	if _, _, err := svc.LotteryRandomUser(context.Background(), 5); err == nil {
		t.Fatal("empty winner list should be rejected")
	}
}

func TestMembers_NestedUserAccessors(t *testing.T) {
	svc, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/committee/member/get" {
			t.Errorf("path = %s, want /committee/member/get", r.URL.Path)
		}
		w.Write([]byte(`{"data":[{"id":1,"user":{"name":"Nested","phoneNo":"42"}},{"id":2,"name":"Flat","phoneNo":"43"}]}`))
	}), nil)

	members, err := svc.Members(context.Background(), 5)
	if err != nil {
		t.Fatalf("Members() error = %v", err)
	}
	if got := members[0].DisplayName(); got != "Nested" {
		t.Errorf("DisplayName() = %q, want Nested", got)
	}
	if got := members[0].Phone(); got != "42" {
		t.Errorf("Phone() = %q, want 42", got)
	}
	if got := members[1].DisplayName(); got != "Flat" {
		t.Errorf("DisplayName() = %q, want Flat", got)
	}
}
