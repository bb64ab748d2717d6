package auth

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/pedidos-api/internal/application/dto"
	"github.com/jhoicas/pedidos-api/internal/domain"
	"github.com/jhoicas/pedidos-api/internal/domain/access"
	"github.com/jhoicas/pedidos-api/internal/domain/entity"
	"github.com/jhoicas/pedidos-api/internal/domain/repository"
	"github.com/jhoicas/pedidos-api/pkg/jwt"
)

// MinPasswordLen longitud mínima de contraseña.
const MinPasswordLen = 6

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// RootConfig credenciales del supervisor raíz.
type RootConfig struct {
	Username string
	Password string
	Nombre   string
}

// UseCase casos de uso de autenticación: login, registro y perfil propio.
type UseCase struct {
	usuarios repository.UsuarioRepository
	jwtCfg   JWTConfig
	log      zerolog.Logger
	now      func() time.Time
}

// NewUseCase construye el caso de uso de auth.
func NewUseCase(usuarios repository.UsuarioRepository, jwtCfg JWTConfig, log zerolog.Logger) *UseCase {
	return &UseCase{usuarios: usuarios, jwtCfg: jwtCfg, log: log, now: time.Now}
}

// Login verifica username/password y emite el JWT. Usuario inexistente y password
// incorrecta devuelven el mismo ErrUnauthorized.
func (uc *UseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: usuario y contraseña requeridos", domain.ErrInvalidInput)
	}
	u, err := uc.usuarios.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, u.ID, u.Username, u.Rol, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{Success: true, Token: token, User: dto.UsuarioFromEntity(u)}, nil
}

// Register crea una cuenta. Sin actor (registro público) solo se admite rol user;
// otros roles requieren un actor con permiso de registro privilegiado, y supervisor
// además el de asignar supervisor.
func (uc *UseCase) Register(ctx context.Context, actor *access.Actor, in dto.RegisterRequest) (int64, error) {
	rol := strings.TrimSpace(in.Rol)
	if rol == "" {
		rol = entity.RoleUser
	}
	if !entity.ValidRole(rol) {
		return 0, fmt.Errorf("%w: rol %q", domain.ErrInvalidInput, rol)
	}
	if rol != entity.RoleUser {
		if actor == nil || !actor.Can(access.RegistrarPrivilegiado) {
			return 0, domain.ErrForbidden
		}
		if rol == entity.RoleSupervisor && !actor.Can(access.UsuarioAsignarSuper) {
			return 0, domain.ErrForbidden
		}
	}
	u, err := NewUsuario(in.Username, in.Password, in.Nombre, rol, "", uc.now())
	if err != nil {
		return 0, err
	}
	existing, err := uc.usuarios.GetByUsername(ctx, u.Username)
	if err != nil {
		return 0, err
	}
	if existing != nil {
		return 0, domain.ErrUsernameTaken
	}
	if err := uc.usuarios.Create(ctx, u); err != nil {
		return 0, err
	}
	uc.log.Info().Int64("usuario_id", u.ID).Str("rol", u.Rol).Msg("usuario registrado")
	return u.ID, nil
}

// Me perfil del usuario autenticado.
func (uc *UseCase) Me(ctx context.Context, userID int64) (*dto.UsuarioResponse, error) {
	u, err := uc.usuarios.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.ErrUserNotFound
	}
	out := dto.UsuarioFromEntity(u)
	return &out, nil
}

// EnsureRoot crea el supervisor raíz (id 1) si no existe y le restituye el rol si lo perdió.
func (uc *UseCase) EnsureRoot(ctx context.Context, cfg RootConfig) error {
	if cfg.Username == "" || cfg.Password == "" {
		uc.log.Warn().Msg("ROOT_USERNAME/ROOT_PASSWORD vacíos; no se crea el supervisor raíz")
		return nil
	}
	nombre := cfg.Nombre
	if nombre == "" {
		nombre = "Supervisor"
	}
	u, err := NewUsuario(cfg.Username, cfg.Password, nombre, entity.RoleSupervisor, "", uc.now())
	if err != nil {
		return err
	}
	u.ID = entity.RootUserID
	created, err := uc.usuarios.EnsureRoot(ctx, u)
	if err != nil {
		return fmt.Errorf("ensure root: %w", err)
	}
	if created {
		uc.log.Info().Str("username", u.Username).Msg("supervisor raíz creado")
		return nil
	}
	cur, err := uc.usuarios.GetByID(ctx, entity.RootUserID)
	if err != nil || cur == nil {
		return err
	}
	if cur.Rol != entity.RoleSupervisor {
		cur.Rol = entity.RoleSupervisor
		cur.UpdatedAt = uc.now()
		if err := uc.usuarios.Update(ctx, cur); err != nil {
			return fmt.Errorf("restore root role: %w", err)
		}
		uc.log.Warn().Msg("rol del supervisor raíz restituido")
	}
	return nil
}

// NewUsuario valida los datos de alta y hashea la contraseña con bcrypt.
func NewUsuario(username, password, nombre, rol, avatar string, now time.Time) (*entity.Usuario, error) {
	username = strings.TrimSpace(username)
	nombre = strings.TrimSpace(nombre)
	if username == "" {
		return nil, fmt.Errorf("%w: username requerido", domain.ErrInvalidInput)
	}
	if utf8.RuneCountInString(password) < MinPasswordLen {
		return nil, fmt.Errorf("%w: la contraseña debe tener al menos %d caracteres", domain.ErrInvalidInput, MinPasswordLen)
	}
	if !entity.ValidRole(rol) {
		return nil, fmt.Errorf("%w: rol %q", domain.ErrInvalidInput, rol)
	}
	if nombre == "" {
		nombre = username
	}
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	if avatar == "" {
		avatar = DefaultAvatar(nombre)
	}
	return &entity.Usuario{
		Username:     username,
		PasswordHash: hash,
		Nombre:       nombre,
		Rol:          rol,
		Avatar:       avatar,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// HashPassword bcrypt con coste por defecto.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// DefaultAvatar inicial del nombre en mayúscula.
func DefaultAvatar(nombre string) string {
	r, _ := utf8.DecodeRuneInString(strings.TrimSpace(nombre))
	if r == utf8.RuneError {
		return "?"
	}
	return string(unicode.ToUpper(r))
}
