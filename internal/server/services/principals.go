package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/sealvault/internal/common"
	"github.com/dmitrijs2005/sealvault/internal/server/models"
)

// PrincipalRef identifies a share target. The first non-empty field is
// used, in the order ID, Email, Username.
type PrincipalRef struct {
	ID       string `json:"id,omitempty"`
	Email    string `json:"email,omitempty"`
	Username string `json:"username,omitempty"`
}

func (p PrincipalRef) String() string {
	switch {
	case p.ID != "":
		return "id:" + p.ID
	case p.Email != "":
		return "email:" + p.Email
	default:
		return "username:" + p.Username
	}
}

// resolvePrincipal looks the target up with the identity store. An unknown
// principal is ErrorNotFound; any other failure is returned as is.
func (s *ObjectService) resolvePrincipal(ctx context.Context, ref PrincipalRef) (*models.User, error) {
	repo := s.repomanager.Users(s.db)

	var (
		user *models.User
		err  error
	)
	switch {
	case ref.ID != "":
		user, err = repo.GetByID(ctx, ref.ID)
	case ref.Email != "":
		user, err = repo.GetByEmail(ctx, ref.Email)
	case ref.Username != "":
		user, err = repo.GetByUsername(ctx, ref.Username)
	default:
		return nil, fmt.Errorf("%w: share target is required", common.ErrValidation)
	}

	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, fmt.Errorf("principal %s: %w", ref, common.ErrorNotFound)
		}
		return nil, fmt.Errorf("resolve principal: %w", err)
	}
	return user, nil
}

// username returns the display name stamped into watermarks. Principals
// unknown to the local identity table fall back to their id.
func (s *ObjectService) username(ctx context.Context, principalID string) (string, error) {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, principalID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.log.Debug(ctx, "principal not in identity table", "principal_id", principalID)
			return principalID, nil
		}
		return "", fmt.Errorf("resolve username: %w", err)
	}
	return user.UserName, nil
}
