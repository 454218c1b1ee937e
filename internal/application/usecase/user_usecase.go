package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tu-usuario/backoffice-pro/internal/application/audit"
	"github.com/tu-usuario/backoffice-pro/internal/application/dto"
	"github.com/tu-usuario/backoffice-pro/internal/domain"
	"github.com/tu-usuario/backoffice-pro/internal/domain/entity"
	"github.com/tu-usuario/backoffice-pro/internal/domain/rbac"
	"github.com/tu-usuario/backoffice-pro/internal/domain/repository"
	"golang.org/x/crypto/bcrypt"
)

const (
	codeUserNotFound  = "ERR-AUTH-404"
	codeUserEmailDup  = "ERR-VAL-006" // email ya registrado
	codeUserBadStatus = "ERR-VAL-007" // estado incompatible con la operación
)

const userMinPasswordLen = 8

// UserUseCase administración de usuarios del tenant: invitación, roles y
// ciclo de vida de la cuenta.
type UserUseCase struct {
	userRepo repository.UserRepository
	recorder *audit.Recorder
}

// NewUserUseCase construye el caso de uso.
func NewUserUseCase(userRepo repository.UserRepository, recorder *audit.Recorder) *UserUseCase {
	return &UserUseCase{userRepo: userRepo, recorder: recorder}
}

// Invite crea un usuario en estado invited. Solo tenant_admin. Conceder
// it_admin exige que el propio actor sea it_admin.
func (uc *UserUseCase) Invite(ctx context.Context, actor rbac.Context, in dto.InviteUserRequest) (*dto.UserResponse, error) {
	if err := actor.Require(entity.RoleTenantAdmin); err != nil {
		return nil, err
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, domain.Invalid("ERR-VAL-001", "email inválido")
	}
	roles, err := uc.parseRoles(actor, in.Roles, nil)
	if err != nil {
		return nil, err
	}
	existing, err := uc.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, domain.Wrap(err)
	}
	if existing != nil {
		return nil, domain.Invalid(codeUserEmailDup, "el email ya está registrado")
	}

	now := time.Now()
	name := in.Name
	if name == "" {
		name = email
	}
	u := &entity.User{
		ID:        uuid.New().String(),
		TenantID:  actor.TenantID,
		Email:     email,
		Name:      name,
		Roles:     roles,
		Status:    entity.UserStatusInvited,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.userRepo.Create(ctx, u); err != nil {
		return nil, domain.Wrap(err)
	}
	if err := uc.recorder.Record(ctx, audit.Entry{
		TenantID:     actor.TenantID,
		ActorID:      actor.UserID,
		Action:       entity.AuditUserInvite,
		ResourceType: "user",
		ResourceID:   u.ID,
		After:        audit.Snapshot(dto.ToUserResponse(u)),
	}); err != nil {
		return nil, err
	}
	return dto.ToUserResponse(u), nil
}

// Activate el invitado acepta la invitación fijando su contraseña. No
// requiere sesión: el enlace de invitación porta el identificador.
func (uc *UserUseCase) Activate(ctx context.Context, tenantID, userID string, in dto.ActivateUserRequest) (*dto.UserResponse, error) {
	if len(in.Password) < userMinPasswordLen {
		return nil, domain.Invalidf("ERR-VAL-001", "la contraseña debe tener al menos %d caracteres", userMinPasswordLen)
	}
	u, err := uc.userRepo.GetByID(ctx, tenantID, userID)
	if err != nil {
		return nil, domain.Wrap(err)
	}
	if u == nil {
		return nil, domain.NotFound(codeUserNotFound, "el usuario")
	}
	if u.Status != entity.UserStatusInvited {
		return nil, domain.Invalid(codeUserBadStatus, "la invitación ya fue aceptada o la cuenta no está en estado invitado")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, domain.System(domain.CodePersistence, "hashear contraseña", err)
	}

	before := audit.Snapshot(dto.ToUserResponse(u))
	u.PasswordHash = string(hash)
	u.Status = entity.UserStatusActive
	u.UpdatedAt = time.Now()

	if err := uc.userRepo.Update(ctx, u); err != nil {
		return nil, domain.Wrap(err)
	}
	if err := uc.recorder.Record(ctx, audit.Entry{
		TenantID:     tenantID,
		ActorID:      u.ID, // el propio invitado es el actor
		Action:       entity.AuditUserActivate,
		ResourceType: "user",
		ResourceID:   u.ID,
		Before:       before,
		After:        audit.Snapshot(dto.ToUserResponse(u)),
	}); err != nil {
		return nil, err
	}
	return dto.ToUserResponse(u), nil
}

// ChangeRoles reemplaza el conjunto de roles. Solo tenant_admin; nunca sobre
// uno mismo; no puede dejar al tenant sin tenant_admin activo; it_admin solo
// lo concede o revoca un it_admin.
func (uc *UserUseCase) ChangeRoles(ctx context.Context, actor rbac.Context, userID string, in dto.ChangeRolesRequest) (*dto.UserResponse, error) {
	if err := actor.Require(entity.RoleTenantAdmin); err != nil {
		return nil, err
	}
	if userID == actor.UserID {
		return nil, domain.Authz(domain.CodeSelfTarget, "no puedes cambiar tus propios roles")
	}
	u, err := uc.userRepo.GetByID(ctx, actor.TenantID, userID)
	if err != nil {
		return nil, domain.Wrap(err)
	}
	if u == nil {
		return nil, domain.NotFound(codeUserNotFound, "el usuario")
	}
	roles, err := uc.parseRoles(actor, in.Roles, u)
	if err != nil {
		return nil, err
	}
	// Si pierde tenant_admin, debe quedar al menos otro admin activo.
	if u.HasRole(entity.RoleTenantAdmin) && !containsRole(roles, entity.RoleTenantAdmin) {
		if err := uc.requireAnotherAdmin(ctx, actor.TenantID, u.ID); err != nil {
			return nil, err
		}
	}

	before := audit.Snapshot(dto.ToUserResponse(u))
	u.Roles = roles
	u.UpdatedAt = time.Now()

	if err := uc.userRepo.Update(ctx, u); err != nil {
		return nil, domain.Wrap(err)
	}
	if err := uc.recorder.Record(ctx, audit.Entry{
		TenantID:     actor.TenantID,
		ActorID:      actor.UserID,
		Action:       entity.AuditUserRoleChange,
		ResourceType: "user",
		ResourceID:   u.ID,
		Before:       before,
		After:        audit.Snapshot(dto.ToUserResponse(u)),
	}); err != nil {
		return nil, err
	}
	return dto.ToUserResponse(u), nil
}

// Deactivate deshabilita la cuenta. Solo tenant_admin; nunca sobre uno
// mismo; protege al último admin activo.
func (uc *UserUseCase) Deactivate(ctx context.Context, actor rbac.Context, userID string) (*dto.UserResponse, error) {
	if err := actor.Require(entity.RoleTenantAdmin); err != nil {
		return nil, err
	}
	if userID == actor.UserID {
		return nil, domain.Authz(domain.CodeSelfTarget, "no puedes deshabilitar tu propia cuenta")
	}
	u, err := uc.userRepo.GetByID(ctx, actor.TenantID, userID)
	if err != nil {
		return nil, domain.Wrap(err)
	}
	if u == nil {
		return nil, domain.NotFound(codeUserNotFound, "el usuario")
	}
	if u.Status == entity.UserStatusDisabled {
		return nil, domain.Invalid(codeUserBadStatus, "la cuenta ya está deshabilitada")
	}
	if u.HasRole(entity.RoleTenantAdmin) {
		if err := uc.requireAnotherAdmin(ctx, actor.TenantID, u.ID); err != nil {
			return nil, err
		}
	}

	before := audit.Snapshot(dto.ToUserResponse(u))
	u.Status = entity.UserStatusDisabled
	u.UpdatedAt = time.Now()

	if err := uc.userRepo.Update(ctx, u); err != nil {
		return nil, domain.Wrap(err)
	}
	if err := uc.recorder.Record(ctx, audit.Entry{
		TenantID:     actor.TenantID,
		ActorID:      actor.UserID,
		Action:       entity.AuditUserDeactivate,
		ResourceType: "user",
		ResourceID:   u.ID,
		Before:       before,
		After:        audit.Snapshot(dto.ToUserResponse(u)),
	}); err != nil {
		return nil, err
	}
	return dto.ToUserResponse(u), nil
}

// Reactivate vuelve a habilitar una cuenta deshabilitada. Solo tenant_admin.
func (uc *UserUseCase) Reactivate(ctx context.Context, actor rbac.Context, userID string) (*dto.UserResponse, error) {
	if err := actor.Require(entity.RoleTenantAdmin); err != nil {
		return nil, err
	}
	u, err := uc.userRepo.GetByID(ctx, actor.TenantID, userID)
	if err != nil {
		return nil, domain.Wrap(err)
	}
	if u == nil {
		return nil, domain.NotFound(codeUserNotFound, "el usuario")
	}
	if u.Status != entity.UserStatusDisabled {
		return nil, domain.Invalid(codeUserBadStatus, "la cuenta no está deshabilitada")
	}

	before := audit.Snapshot(dto.ToUserResponse(u))
	u.Status = entity.UserStatusActive
	u.UpdatedAt = time.Now()

	if err := uc.userRepo.Update(ctx, u); err != nil {
		return nil, domain.Wrap(err)
	}
	if err := uc.recorder.Record(ctx, audit.Entry{
		TenantID:     actor.TenantID,
		ActorID:      actor.UserID,
		Action:       entity.AuditUserReactivate,
		ResourceType: "user",
		ResourceID:   u.ID,
		Before:       before,
		After:        audit.Snapshot(dto.ToUserResponse(u)),
	}); err != nil {
		return nil, err
	}
	return dto.ToUserResponse(u), nil
}

// ResetPassword fija una contraseña nueva para otro usuario. Solo
// tenant_admin.
func (uc *UserUseCase) ResetPassword(ctx context.Context, actor rbac.Context, userID string, in dto.ResetPasswordRequest) error {
	if err := actor.Require(entity.RoleTenantAdmin); err != nil {
		return err
	}
	if len(in.Password) < userMinPasswordLen {
		return domain.Invalidf("ERR-VAL-001", "la contraseña debe tener al menos %d caracteres", userMinPasswordLen)
	}
	u, err := uc.userRepo.GetByID(ctx, actor.TenantID, userID)
	if err != nil {
		return domain.Wrap(err)
	}
	if u == nil {
		return domain.NotFound(codeUserNotFound, "el usuario")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.System(domain.CodePersistence, "hashear contraseña", err)
	}
	u.PasswordHash = string(hash)
	u.UpdatedAt = time.Now()

	if err := uc.userRepo.Update(ctx, u); err != nil {
		return domain.Wrap(err)
	}
	// Sin snapshot: una entrada de reset jamás transporta material de
	// credenciales, ni siquiera hasheado.
	return uc.recorder.Record(ctx, audit.Entry{
		TenantID:     actor.TenantID,
		ActorID:      actor.UserID,
		Action:       entity.AuditUserPasswordReset,
		ResourceType: "user",
		ResourceID:   u.ID,
	})
}

// Get obtiene un usuario del tenant.
func (uc *UserUseCase) Get(ctx context.Context, actor rbac.Context, userID string) (*dto.UserResponse, error) {
	if err := actor.RequireAny(); err != nil {
		return nil, err
	}
	u, err := uc.userRepo.GetByID(ctx, actor.TenantID, userID)
	if err != nil {
		return nil, domain.Wrap(err)
	}
	if u == nil {
		return nil, domain.NotFound(codeUserNotFound, "el usuario")
	}
	return dto.ToUserResponse(u), nil
}

// List lista usuarios del tenant.
func (uc *UserUseCase) List(ctx context.Context, actor rbac.Context, page dto.PageRequest) ([]*dto.UserResponse, error) {
	if err := actor.RequireAny(); err != nil {
		return nil, err
	}
	page.DefaultPage()
	list, err := uc.userRepo.ListByTenant(ctx, actor.TenantID, page.Limit, page.Offset)
	if err != nil {
		return nil, domain.Wrap(err)
	}
	out := make([]*dto.UserResponse, 0, len(list))
	for _, u := range list {
		out = append(out, dto.ToUserResponse(u))
	}
	return out, nil
}

// ── internos ──────────────────────────────────────────────────────────────────

// parseRoles valida el conjunto de roles pedido. target es el usuario
// afectado (nil en invitaciones): conceder o revocar it_admin exige que el
// actor también lo sea.
func (uc *UserUseCase) parseRoles(actor rbac.Context, in []string, target *entity.User) ([]entity.Role, error) {
	if len(in) == 0 {
		return nil, domain.Invalid("ERR-VAL-001", "el usuario necesita al menos un rol")
	}
	roles := make([]entity.Role, 0, len(in))
	seen := map[entity.Role]bool{}
	for _, s := range in {
		if !entity.ValidRole(s) {
			return nil, domain.Invalidf("ERR-VAL-001", "rol no reconocido: %s", s)
		}
		r := entity.Role(s)
		if seen[r] {
			continue
		}
		seen[r] = true
		roles = append(roles, r)
	}
	grantsIT := seen[entity.RoleITAdmin]
	revokesIT := target != nil && target.HasRole(entity.RoleITAdmin) && !seen[entity.RoleITAdmin]
	if (grantsIT || revokesIT) && !actor.HasRole(entity.RoleITAdmin) {
		return nil, domain.Authz(domain.CodeITAdminGrant, "solo un it_admin puede conceder o revocar it_admin")
	}
	return roles, nil
}

// requireAnotherAdmin falla si excludeID es el último tenant_admin activo.
func (uc *UserUseCase) requireAnotherAdmin(ctx context.Context, tenantID, excludeID string) error {
	n, err := uc.userRepo.CountTenantAdmins(ctx, tenantID, excludeID)
	if err != nil {
		return domain.Wrap(err)
	}
	if n == 0 {
		return domain.Authz(domain.CodeLastAdmin, "la operación dejaría al tenant sin tenant_admin activo")
	}
	return nil
}

func containsRole(roles []entity.Role, r entity.Role) bool {
	for _, have := range roles {
		if have == r {
			return true
		}
	}
	return false
}
