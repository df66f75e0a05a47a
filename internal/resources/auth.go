package resources

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/whookdev/hki/internal/api"
	"github.com/whookdev/hki/internal/models"
)

type Auth struct {
	client *api.Client
	users  *Users
}

// Login opens a session and returns the user it belongs to, which also
// becomes the current session user.
func (a *Auth) Login(ctx context.Context, creds models.Credentials) (*models.User, error) {
	if _, err := a.client.SendJSON(ctx, &api.Request{URL: "/api/auth"}, creds); err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}

	user := a.Current(ctx)
	if user == nil {
		return nil, fmt.Errorf("session created but current user is unavailable")
	}

	if err := a.client.Sessions().SetUser(ctx, user); err != nil {
		return nil, fmt.Errorf("storing session: %w", err)
	}
	return user, nil
}

// Current asks the service who is logged in and loads that user. It
// returns nil when nobody is. The service only answers with the user id, so
// when the profile cannot be loaded the user carries just the id.
func (a *Auth) Current(ctx context.Context) *models.User {
	id := api.AsObject[uuid.UUID](a.client.Do(ctx, &api.Request{URL: "/api/auth"}))
	if id == nil || *id == uuid.Nil {
		return nil
	}

	user, err := a.users.Get(ctx, *id)
	if err != nil || user == nil {
		return &models.User{ID: *id}
	}
	return user
}

func (a *Auth) Logout(ctx context.Context) error {
	_, err := a.client.Do(ctx, &api.Request{Method: http.MethodDelete, URL: "/api/auth"})

	if clearErr := a.client.Sessions().SetUser(ctx, nil); clearErr != nil {
		return fmt.Errorf("clearing session: %w", clearErr)
	}
	return err
}
