// Package auth registro de tenants y autenticación de usuarios. El token se
// emite para un único tenant: toda la sesión queda acotada a él.
package auth

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tu-usuario/backoffice-pro/internal/application/dto"
	"github.com/tu-usuario/backoffice-pro/internal/domain"
	"github.com/tu-usuario/backoffice-pro/internal/domain/entity"
	"github.com/tu-usuario/backoffice-pro/internal/domain/repository"
	"github.com/tu-usuario/backoffice-pro/pkg/jwt"
	"golang.org/x/crypto/bcrypt"
)

// Códigos de autenticación (además de los compartidos en domain).
const (
	codeBadCredentials = "ERR-AUTH-401" // email o contraseña incorrectos
	codeEmailTaken     = "ERR-VAL-006"  // el email ya está registrado
)

const minPasswordLen = 8

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AuthUseCase casos de uso de autenticación: registro de tenant y login.
type AuthUseCase struct {
	userRepo   repository.UserRepository
	tenantRepo repository.TenantRepository
	txRunner   TxRunner
	jwtCfg     JWTConfig
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(userRepo repository.UserRepository, tenantRepo repository.TenantRepository, txRunner TxRunner, jwtCfg JWTConfig) *AuthUseCase {
	return &AuthUseCase{userRepo: userRepo, tenantRepo: tenantRepo, txRunner: txRunner, jwtCfg: jwtCfg}
}

// RegisterTenant bootstrap: crea el tenant y su primer tenant_admin en una
// transacción. El tenant nunca existe sin al menos un administrador activo.
func (uc *AuthUseCase) RegisterTenant(ctx context.Context, in dto.RegisterTenantRequest) (*dto.LoginResponse, error) {
	if strings.TrimSpace(in.TenantName) == "" {
		return nil, domain.Invalid("ERR-VAL-001", "el nombre del tenant es obligatorio")
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, domain.Invalid("ERR-VAL-001", "email inválido")
	}
	if len(in.Password) < minPasswordLen {
		return nil, domain.Invalidf("ERR-VAL-001", "la contraseña debe tener al menos %d caracteres", minPasswordLen)
	}
	existing, err := uc.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, domain.Wrap(err)
	}
	if existing != nil {
		return nil, domain.Invalid(codeEmailTaken, "el email ya está registrado")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, domain.System(domain.CodePersistence, "hashear contraseña", err)
	}
	now := time.Now()
	name := in.Name
	if name == "" {
		name = email
	}
	tenant := &entity.Tenant{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(in.TenantName),
		Settings:  map[string]string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	admin := &entity.User{
		ID:           uuid.New().String(),
		TenantID:     tenant.ID,
		Email:        email,
		PasswordHash: string(hash),
		Name:         name,
		Roles:        []entity.Role{entity.RoleTenantAdmin},
		Status:       entity.UserStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = uc.txRunner.RunRegistration(ctx, func(
		tenantRepo repository.TenantRepository,
		userRepo repository.UserRepository,
	) error {
		if err := tenantRepo.Create(ctx, tenant); err != nil {
			return err
		}
		return userRepo.Create(ctx, admin)
	})
	if err != nil {
		return nil, domain.Wrap(err)
	}
	return uc.issueToken(admin)
}

// Login verifica credenciales y emite un JWT acotado al tenant del usuario.
// Un tenant soft-deleted se comporta como si sus usuarios no existieran.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := uc.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(in.Email)))
	if err != nil {
		return nil, domain.Wrap(err)
	}
	if user == nil {
		return nil, domain.Authz(codeBadCredentials, "email o contraseña incorrectos")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.Authz(codeBadCredentials, "email o contraseña incorrectos")
	}
	if user.Status != entity.UserStatusActive {
		return nil, domain.Authz(codeBadCredentials, "email o contraseña incorrectos")
	}
	tenant, err := uc.tenantRepo.GetByID(ctx, user.TenantID)
	if err != nil {
		return nil, domain.Wrap(err)
	}
	if tenant == nil || tenant.Deleted() {
		return nil, domain.Authz(codeBadCredentials, "email o contraseña incorrectos")
	}
	return uc.issueToken(user)
}

func (uc *AuthUseCase) issueToken(user *entity.User) (*dto.LoginResponse, error) {
	token, err := jwt.Generate(uc.jwtCfg.Secret, user.ID, user.TenantID, user.RoleStrings(), uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, domain.System(domain.CodePersistence, "generar token", err)
	}
	return &dto.LoginResponse{Token: token, User: *dto.ToUserResponse(user)}, nil
}
