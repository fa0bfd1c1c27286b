package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/appetiteclub/portal/internal/apiclient"
	"github.com/appetiteclub/portal/internal/apperr"
	"github.com/appetiteclub/portal/internal/models"
)

func TestAuthDataAccessLogin(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantToken string
		wantID    string
	}{
		{
			name:      "userAndToken",
			body:      `{"user":{"_id":"u-1","email":"a@b.c","role":"Admin"},"token":"tok-a"}`,
			wantToken: "tok-a",
			wantID:    "u-1",
		},
		{
			name:      "envelopedFlatUser",
			body:      `{"data":{"id":"u-2","email":"a@b.c","role":"Staff","token":"tok-b"}}`,
			wantToken: "tok-b",
			wantID:    "u-2",
		},
		{
			name:      "sessionIDField",
			body:      `{"user":{"id":"u-3","email":"a@b.c","role":"Customer"},"sessionId":"sid-c"}`,
			wantToken: "sid-c",
			wantID:    "u-3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/auth/login" || r.Method != http.MethodPost {
					t.Errorf("request = %s %s", r.Method, r.URL.Path)
				}
				var req loginRequest
				json.NewDecoder(r.Body).Decode(&req)
				if req.Email != "a@b.c" {
					t.Errorf("email = %q", req.Email)
				}
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			da := NewAuthDataAccess(apiclient.New(server.URL))
			user, token, err := da.Login(context.Background(), "a@b.c", "pw")
			if err != nil {
				t.Fatalf("Login() error = %v", err)
			}
			if token != tt.wantToken {
				t.Errorf("token = %q, want %q", token, tt.wantToken)
			}
			if user.ID != tt.wantID {
				t.Errorf("ID = %q, want %q", user.ID, tt.wantID)
			}
		})
	}
}

func TestAuthDataAccessLoginRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"Invalid credentials"}`))
	}))
	defer server.Close()

	da := NewAuthDataAccess(apiclient.New(server.URL))
	_, _, err := da.Login(context.Background(), "a@b.c", "bad")
	if !apperr.IsKind(err, apperr.Authentication) {
		t.Errorf("kind = %v, want authentication", apperr.KindOf(err))
	}
}

func TestAuthDataAccessLogoutSendsOldToken(t *testing.T) {
	got := make(chan string, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got <- r.Header.Get("Authorization")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	da := NewAuthDataAccess(apiclient.New(server.URL))
	if err := da.Logout(context.Background(), "old-token"); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if auth := <-got; auth != "Bearer old-token" {
		t.Errorf("Authorization = %q, want Bearer old-token", auth)
	}
}

func TestAuthDataAccessRegister(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users/register" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"_id":"u-5","username":"joan","email":"joan@example.com","role":"Customer"}`))
	}))
	defer server.Close()

	da := NewAuthDataAccess(apiclient.New(server.URL))
	user, err := da.Register(context.Background(), models.Registration{Username: "joan", Email: "joan@example.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if user.ID != "u-5" {
		t.Errorf("ID = %q, want u-5", user.ID)
	}
}

func TestAuthDataAccessNilClient(t *testing.T) {
	var da *AuthDataAccess
	if _, _, err := da.Login(context.Background(), "a", "b"); err == nil {
		t.Error("Login() with nil client should return error")
	}
}
