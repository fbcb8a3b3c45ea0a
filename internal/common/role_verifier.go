package common

import (
	"context"
	"errors"

	"github.com/questx-lab/eventreward/internal/entity"
	"github.com/questx-lab/eventreward/internal/repository"
	"github.com/questx-lab/eventreward/pkg/xcontext"
)

type RoleVerifier struct {
	roleRepo repository.RoleRepository
}

func NewRoleVerifier(roleRepo repository.RoleRepository) *RoleVerifier {
	return &RoleVerifier{roleRepo: roleRepo}
}

// Verify checks that the request user holds at least one of requiredRoles.
func (verifier *RoleVerifier) Verify(ctx context.Context, requiredRoles ...entity.Role) error {
	userID := xcontext.RequestUserID(ctx)
	if userID == "" {
		return errors.New("user is not valid")
	}

	ok, err := verifier.roleRepo.HasAny(ctx, userID, requiredRoles...)
	if err != nil {
		return err
	}

	if !ok {
		return errors.New("user role does not have permission")
	}

	return nil
}

// VerifyOwnerOr passes if the request user is ownerID or holds one of
// requiredRoles.
func (verifier *RoleVerifier) VerifyOwnerOr(ctx context.Context, ownerID string, requiredRoles ...entity.Role) error {
	if userID := xcontext.RequestUserID(ctx); userID != "" && userID == ownerID {
		return nil
	}

	return verifier.Verify(ctx, requiredRoles...)
}
