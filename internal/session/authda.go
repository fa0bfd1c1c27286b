package session

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/appetiteclub/portal/internal/apiclient"
	"github.com/appetiteclub/portal/internal/models"
)

// AuthBackend is the slice of the backend the session store needs.
type AuthBackend interface {
	Login(ctx context.Context, email, password string) (*models.User, string, error)
	Logout(ctx context.Context, token string) error
	Register(ctx context.Context, reg models.Registration) (*models.User, error)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// loginResource accepts {"user": {...}, "token": "..."} as well as a flat user
// document that carries its own token.
type loginResource struct {
	User      *models.User `json:"user"`
	Token     string       `json:"token"`
	SessionID string       `json:"sessionId"`
}

// AuthDataAccess implements AuthBackend over the backend REST API.
type AuthDataAccess struct {
	client *apiclient.Client
}

func NewAuthDataAccess(client *apiclient.Client) *AuthDataAccess {
	return &AuthDataAccess{client: client}
}

func (da *AuthDataAccess) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	if da == nil || da.client == nil {
		return nil, "", fmt.Errorf("auth client not configured")
	}

	resp, err := da.client.Create(ctx, "auth/login", loginRequest{Email: email, Password: password})
	if err != nil {
		return nil, "", err
	}

	var res loginResource
	if err := apiclient.Decode(resp, &res); err != nil {
		return nil, "", err
	}

	user := res.User
	if user == nil {
		user = &models.User{}
		if err := json.Unmarshal(resp.Data, user); err != nil {
			return nil, "", fmt.Errorf("decode user: %w", err)
		}
	}

	token := res.Token
	if token == "" {
		token = res.SessionID
	}
	if token == "" {
		token = user.Token
	}

	return user, token, nil
}

func (da *AuthDataAccess) Logout(ctx context.Context, token string) error {
	if da == nil || da.client == nil {
		return fmt.Errorf("auth client not configured")
	}
	_, err := da.client.WithTokenSource(apiclient.StaticToken(token)).Create(ctx, "auth/logout", struct{}{})
	return err
}

func (da *AuthDataAccess) Register(ctx context.Context, reg models.Registration) (*models.User, error) {
	if da == nil || da.client == nil {
		return nil, fmt.Errorf("auth client not configured")
	}

	resp, err := da.client.Create(ctx, "users/register", reg)
	if err != nil {
		return nil, err
	}

	var res loginResource
	if err := apiclient.Decode(resp, &res); err != nil {
		return nil, err
	}
	if res.User != nil {
		return res.User, nil
	}

	var user models.User
	if err := apiclient.Decode(resp, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
