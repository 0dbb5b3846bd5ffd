package session

import (
	"context"

	"cockpit/internal/api"
)

// Login authenticates with email and password and returns the bootstrapped
// session. The credential itself stays in the client's cookie jar.
func Login(ctx context.Context, client *api.Client, email, password string) (Session, error) {
	var payload bootstrapPayload
	body := map[string]string{"email": email, "password": password}
	if err := client.Post(ctx, "/v1/auth/login", body, &payload); err != nil {
		return Session{}, err
	}
	return payload.toSession()
}

// LogoutViaAPI tells the backend to end the session. Local teardown is the
// Coordinator's job; callers invoke both.
func LogoutViaAPI(ctx context.Context, client *api.Client) error {
	return client.Post(ctx, "/v1/auth/logout", nil, nil)
}
