package directory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/google/uuid"

	dErrors "maskchain/pkg/domain-errors"
	"maskchain/pkg/platform/sentinel"
)

// Service owns organization and user directory operations. Ledger key
// derivation is an explicit step here rather than a persistence hook: the
// store assigns the sequence id, the service computes prefix+id and writes it
// back in a second, one-shot assignment.
type Service struct {
	orgs   OrganizationStore
	users  UserStore
	logger *slog.Logger
}

func NewService(orgs OrganizationStore, users UserStore, logger *slog.Logger) *Service {
	return &Service{orgs: orgs, users: users, logger: logger}
}

// CreateOrganization validates input, persists the row and derives the
// ledger key from the assigned id.
func (s *Service) CreateOrganization(ctx context.Context, name, role string) (*Organization, error) {
	if strings.TrimSpace(name) == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "organization name is required")
	}
	parsedRole, err := ParseRole(role)
	if err != nil {
		return nil, err
	}

	org := &Organization{Name: name, Role: parsedRole}
	if err := s.orgs.Create(ctx, org); err != nil {
		return nil, fmt.Errorf("create organization: %w", err)
	}

	org.LedgerKey = parsedRole.KeyPrefix() + strconv.FormatInt(org.ID, 10)
	if err := s.orgs.AssignLedgerKey(ctx, org.ID, org.LedgerKey); err != nil {
		return nil, fmt.Errorf("assign ledger key: %w", err)
	}

	s.logger.InfoContext(ctx, "organization created",
		"id", org.ID,
		"role", org.Role,
		"key", org.LedgerKey,
	)
	return org, nil
}

// GetOrganization looks up one organization by local id.
func (s *Service) GetOrganization(ctx context.Context, id int64) (*Organization, error) {
	org, err := s.orgs.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Newf(dErrors.CodeNotFound, "organization %d not found", id)
		}
		return nil, err
	}
	return org, nil
}

// ResolveByLedgerKey maps a ledger key back to a local organization.
func (s *Service) ResolveByLedgerKey(ctx context.Context, key string) (*Organization, error) {
	org, err := s.orgs.FindByLedgerKey(ctx, key)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Newf(dErrors.CodeNotFound, "no organization with ledger key %q", key)
		}
		return nil, err
	}
	return org, nil
}

// ListOrganizations lists all organizations, optionally filtered by role.
func (s *Service) ListOrganizations(ctx context.Context, role string) ([]*Organization, error) {
	if role == "" {
		return s.orgs.List(ctx)
	}
	parsed, err := ParseRole(role)
	if err != nil {
		return nil, err
	}
	return s.orgs.ListByRole(ctx, parsed)
}

// RequireRole loads an organization and asserts its role. Managers call this
// before any ledger transaction so validation failures never reach the wire.
func (s *Service) RequireRole(ctx context.Context, id int64, role Role) (*Organization, error) {
	org, err := s.GetOrganization(ctx, id)
	if err != nil {
		return nil, err
	}
	if org.Role != role {
		return nil, dErrors.Newf(dErrors.CodeWrongRole,
			"organization %d is %s, operation requires %s", id, org.Role, role)
	}
	return org, nil
}

// CreateUser adds a directory user to an organization.
func (s *Service) CreateUser(ctx context.Context, username string, orgID int64) (*User, error) {
	if strings.TrimSpace(username) == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "username is required")
	}
	if _, err := s.GetOrganization(ctx, orgID); err != nil {
		return nil, err
	}

	user := &User{Username: username, OrganizationID: orgID, Key: uuid.New()}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// GetUser looks up one user by local id.
func (s *Service) GetUser(ctx context.Context, id int64) (*User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Newf(dErrors.CodeNotFound, "user %d not found", id)
		}
		return nil, err
	}
	return user, nil
}

// ListUsers lists all directory users.
func (s *Service) ListUsers(ctx context.Context) ([]*User, error) {
	return s.users.List(ctx)
}
