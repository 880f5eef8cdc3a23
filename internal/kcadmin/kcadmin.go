// Package kcadmin wraps the Keycloak admin API: user listing for assignment
// pickers and user lifecycle management. The request-path token validation
// lives in internal/authmw; this client authenticates as a service account.
package kcadmin

import (
	"context"
	"fmt"
	"time"

	"github.com/Nerzal/gocloak/v13"

	"studioops/atelier-pms/internal/domain"
)

type Service struct {
	Client       *gocloak.GoCloak
	Realm        string
	clientID     string
	clientSecret string
}

func NewService(baseURL, realm, clientID, clientSecret string) (*Service, error) {
	s := &Service{
		Client:       gocloak.NewClient("http://" + baseURL),
		Realm:        realm,
		clientID:     clientID,
		clientSecret: clientSecret,
	}

	if err := s.selfTest(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Service) selfTest() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	jwt, err := s.Client.LoginClient(ctx, s.clientID, s.clientSecret, s.Realm)
	if err != nil {
		return fmt.Errorf("keycloak auth failed: %w", err)
	}

	if _, err := s.Client.GetRealm(ctx, jwt.AccessToken, s.Realm); err != nil {
		return fmt.Errorf("keycloak permission check failed: %w", err)
	}
	return nil
}

func (s *Service) loginAdmin(ctx context.Context) (*gocloak.JWT, error) {
	return s.Client.LoginClient(ctx, s.clientID, s.clientSecret, s.Realm)
}

// studioRoles in precedence order; the highest one a user holds becomes
// their role in the picker.
var studioRoles = []domain.Role{
	domain.RoleAdmin,
	domain.RoleManager,
	domain.RoleDesigner,
	domain.RoleClient,
}

// ListUsers returns every realm user mapped onto the application model.
func (s *Service) ListUsers(ctx context.Context) ([]domain.User, error) {
	jwt, err := s.loginAdmin(ctx)
	if err != nil {
		return nil, err
	}

	max := 200
	users, err := s.Client.GetUsers(ctx, jwt.AccessToken, s.Realm, gocloak.GetUsersParams{Max: &max})
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	out := make([]domain.User, 0, len(users))
	for _, u := range users {
		if u == nil || u.ID == nil {
			continue
		}
		du := domain.User{
			ID:        gocloak.PString(u.ID),
			Username:  gocloak.PString(u.Username),
			Email:     gocloak.PString(u.Email),
			FirstName: gocloak.PString(u.FirstName),
			LastName:  gocloak.PString(u.LastName),
			Enabled:   gocloak.PBool(u.Enabled),
			Role:      domain.RoleClient,
		}
		if role, err := s.effectiveRole(ctx, jwt.AccessToken, *u.ID); err == nil {
			du.Role = role
		}
		out = append(out, du)
	}
	return out, nil
}

func (s *Service) effectiveRole(ctx context.Context, token, userID string) (domain.Role, error) {
	roles, err := s.Client.GetRealmRolesByUserID(ctx, token, s.Realm, userID)
	if err != nil {
		return domain.RoleClient, err
	}

	held := make(map[string]bool, len(roles))
	for _, r := range roles {
		if r != nil && r.Name != nil {
			held[*r.Name] = true
		}
	}
	for _, want := range studioRoles {
		if held[string(want)] {
			return want, nil
		}
	}
	return domain.RoleClient, nil
}

func (s *Service) CreateUser(ctx context.Context, username, email, password, firstname, lastname string) (string, error) {
	jwt, err := s.loginAdmin(ctx)
	if err != nil {
		return "", err
	}

	user := gocloak.User{
		Username:  gocloak.StringP(username),
		Email:     gocloak.StringP(email),
		FirstName: gocloak.StringP(firstname),
		LastName:  gocloak.StringP(lastname),
		Enabled:   gocloak.BoolP(true),
	}

	userID, err := s.Client.CreateUser(ctx, jwt.AccessToken, s.Realm, user)
	if err != nil {
		return "", fmt.Errorf("create user: %w", err)
	}

	if err := s.Client.SetPassword(ctx, jwt.AccessToken, userID, s.Realm, password, false); err != nil {
		return userID, fmt.Errorf("set password: %w", err)
	}
	return userID, nil
}

func (s *Service) DeleteUser(ctx context.Context, userID string) error {
	jwt, err := s.loginAdmin(ctx)
	if err != nil {
		return err
	}
	return s.Client.DeleteUser(ctx, jwt.AccessToken, s.Realm, userID)
}
