package domain

import (
	"context"
	"errors"

	"github.com/questx-lab/eventreward/internal/common"
	"github.com/questx-lab/eventreward/internal/entity"
	"github.com/questx-lab/eventreward/internal/model"
	"github.com/questx-lab/eventreward/internal/repository"
	"github.com/questx-lab/eventreward/pkg/enum"
	"github.com/questx-lab/eventreward/pkg/errorx"
	"github.com/questx-lab/eventreward/pkg/xcontext"
	"gorm.io/gorm"
)

type RoleDomain interface {
	Grant(context.Context, *model.GrantRoleRequest) (*model.GrantRoleResponse, error)
	Revoke(context.Context, *model.RevokeRoleRequest) (*model.RevokeRoleResponse, error)
	GetRoles(context.Context, *model.GetRolesRequest) (*model.GetRolesResponse, error)

	Pause(context.Context, *model.PauseRequest) (*model.PauseResponse, error)
	Unpause(context.Context, *model.UnpauseRequest) (*model.UnpauseResponse, error)
	GetPauses(context.Context, *model.GetPausesRequest) (*model.GetPausesResponse, error)
}

type roleDomain struct {
	roleRepo     repository.RoleRepository
	pauseRepo    repository.PauseRepository
	roleVerifier *common.RoleVerifier
}

func NewRoleDomain(
	roleRepo repository.RoleRepository,
	pauseRepo repository.PauseRepository,
	roleVerifier *common.RoleVerifier,
) *roleDomain {
	return &roleDomain{
		roleRepo:     roleRepo,
		pauseRepo:    pauseRepo,
		roleVerifier: roleVerifier,
	}
}

func (d *roleDomain) Grant(ctx context.Context, req *model.GrantRoleRequest) (*model.GrantRoleResponse, error) {
	role, err := d.prepareRole(ctx, req.Role, req.UserID)
	if err != nil {
		return nil, err
	}

	err = d.roleRepo.Grant(ctx, &entity.RoleGrant{
		Role:      role,
		UserID:    req.UserID,
		GrantedBy: xcontext.RequestUserID(ctx),
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot grant role: %v", err)
		return nil, errorx.Unknown
	}

	return &model.GrantRoleResponse{}, nil
}

func (d *roleDomain) Revoke(ctx context.Context, req *model.RevokeRoleRequest) (*model.RevokeRoleResponse, error) {
	role, err := d.prepareRole(ctx, req.Role, req.UserID)
	if err != nil {
		return nil, err
	}

	if role == entity.AdminRole && req.UserID == xcontext.RequestUserID(ctx) {
		return nil, errorx.New(errorx.FailedPrecondition, "Cannot revoke your own admin role")
	}

	if err := d.roleRepo.Revoke(ctx, role, req.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "User does not have role %s", role)
		}

		xcontext.Logger(ctx).Errorf("Cannot revoke role: %v", err)
		return nil, errorx.Unknown
	}

	return &model.RevokeRoleResponse{}, nil
}

func (d *roleDomain) prepareRole(ctx context.Context, roleName, userID string) (entity.Role, error) {
	if err := d.verifyAdmin(ctx); err != nil {
		return "", err
	}

	if userID == "" {
		return "", errorx.New(errorx.BadRequest, "Not allow an empty user")
	}

	role, err := enum.ToEnum[entity.Role](roleName)
	if err != nil {
		xcontext.Logger(ctx).Debugf("Invalid role: %v", err)
		return "", errorx.New(errorx.BadRequest, "Invalid role %s", roleName)
	}

	return role, nil
}

func (d *roleDomain) GetRoles(ctx context.Context, req *model.GetRolesRequest) (*model.GetRolesResponse, error) {
	userID := requestUserOr(ctx, req.UserID)
	if err := d.roleVerifier.VerifyOwnerOr(ctx, userID, entity.AdminRole); err != nil {
		xcontext.Logger(ctx).Debugf("Permission denied: %v", err)
		return nil, errorx.New(errorx.PermissionDenied, "Permission denied")
	}

	grants, err := d.roleRepo.GetByUserID(ctx, userID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get roles: %v", err)
		return nil, errorx.Unknown
	}

	roles := []string{}
	for _, g := range grants {
		roles = append(roles, string(g.Role))
	}

	return &model.GetRolesResponse{Roles: roles}, nil
}

func (d *roleDomain) Pause(ctx context.Context, req *model.PauseRequest) (*model.PauseResponse, error) {
	if err := d.setPaused(ctx, req.Module, req.Scope, true); err != nil {
		return nil, err
	}

	return &model.PauseResponse{}, nil
}

func (d *roleDomain) Unpause(ctx context.Context, req *model.UnpauseRequest) (*model.UnpauseResponse, error) {
	if err := d.setPaused(ctx, req.Module, req.Scope, false); err != nil {
		return nil, err
	}

	return &model.UnpauseResponse{}, nil
}

func (d *roleDomain) setPaused(ctx context.Context, moduleName, scope string, paused bool) error {
	if err := d.verifyAdmin(ctx); err != nil {
		return err
	}

	module, err := enum.ToEnum[entity.Module](moduleName)
	if err != nil {
		xcontext.Logger(ctx).Debugf("Invalid module: %v", err)
		return errorx.New(errorx.BadRequest, "Invalid module %s", moduleName)
	}

	err = d.pauseRepo.Upsert(ctx, &entity.Pause{
		ID:        entity.PauseKey(module, scope),
		Paused:    paused,
		UpdatedBy: xcontext.RequestUserID(ctx),
		UpdatedAt: xcontext.Now(ctx),
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot update pause state: %v", err)
		return errorx.Unknown
	}

	xcontext.Logger(ctx).Infof("Module %s paused=%v by %s", entity.PauseKey(module, scope), paused,
		xcontext.RequestUserID(ctx))
	return nil
}

func (d *roleDomain) GetPauses(ctx context.Context, req *model.GetPausesRequest) (*model.GetPausesResponse, error) {
	if err := d.verifyAdmin(ctx); err != nil {
		return nil, err
	}

	pauses, err := d.pauseRepo.GetList(ctx)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get pauses: %v", err)
		return nil, errorx.Unknown
	}

	result := []model.Pause{}
	for i := range pauses {
		result = append(result, model.ConvertPause(&pauses[i]))
	}

	return &model.GetPausesResponse{Pauses: result}, nil
}

func (d *roleDomain) verifyAdmin(ctx context.Context) error {
	if err := d.roleVerifier.Verify(ctx, entity.AdminRole); err != nil {
		xcontext.Logger(ctx).Debugf("Permission denied: %v", err)
		return errorx.New(errorx.PermissionDenied, "Permission denied")
	}

	return nil
}
