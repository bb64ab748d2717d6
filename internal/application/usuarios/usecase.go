// Package usuarios administración de cuentas: alta, edición de rol, borrado y estadísticas.
package usuarios

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/jhoicas/pedidos-api/internal/application/auth"
	"github.com/jhoicas/pedidos-api/internal/application/dto"
	"github.com/jhoicas/pedidos-api/internal/application/ports"
	"github.com/jhoicas/pedidos-api/internal/domain"
	"github.com/jhoicas/pedidos-api/internal/domain/access"
	"github.com/jhoicas/pedidos-api/internal/domain/entity"
	"github.com/jhoicas/pedidos-api/internal/domain/repository"
)

const (
	statsKey = "usuarios:estadisticas"
	statsTTL = 60 * time.Second
)

// UseCase casos de uso de administración de usuarios. Todos exigen UsuarioGestionar.
type UseCase struct {
	tx       ports.TxRunner
	usuarios repository.UsuarioRepository
	cache    ports.Cache
	log      zerolog.Logger
	now      func() time.Time
}

// NewUseCase cache puede ser nil.
func NewUseCase(tx ports.TxRunner, usuarios repository.UsuarioRepository, cache ports.Cache, log zerolog.Logger) *UseCase {
	return &UseCase{tx: tx, usuarios: usuarios, cache: cache, log: log, now: time.Now}
}

// List todos los usuarios ordenados por id.
func (uc *UseCase) List(ctx context.Context, actor access.Actor) ([]dto.UsuarioResponse, error) {
	if !actor.Can(access.UsuarioGestionar) {
		return nil, domain.ErrForbidden
	}
	us, err := uc.usuarios.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.UsuarioResponse, 0, len(us))
	for _, u := range us {
		out = append(out, dto.UsuarioFromEntity(u))
	}
	return out, nil
}

// Get un usuario por id.
func (uc *UseCase) Get(ctx context.Context, actor access.Actor, id int64) (*dto.UsuarioResponse, error) {
	if !actor.Can(access.UsuarioGestionar) {
		return nil, domain.ErrForbidden
	}
	u, err := uc.usuarios.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.ErrUserNotFound
	}
	out := dto.UsuarioFromEntity(u)
	return &out, nil
}

// Create alta desde administración. Crear un supervisor requiere ser supervisor.
func (uc *UseCase) Create(ctx context.Context, actor access.Actor, in dto.CreateUsuarioRequest) (*dto.UsuarioResponse, error) {
	if !actor.Can(access.UsuarioGestionar) {
		return nil, domain.ErrForbidden
	}
	rol := strings.TrimSpace(in.Rol)
	if rol == "" {
		rol = entity.RoleUser
	}
	if rol == entity.RoleSupervisor && !actor.Can(access.UsuarioAsignarSuper) {
		return nil, domain.ErrForbidden
	}
	u, err := auth.NewUsuario(in.Username, in.Password, in.Nombre, rol, strings.TrimSpace(in.Avatar), uc.now())
	if err != nil {
		return nil, err
	}
	existing, err := uc.usuarios.GetByUsername(ctx, u.Username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrUsernameTaken
	}
	if err := uc.usuarios.Create(ctx, u); err != nil {
		return nil, err
	}
	uc.invalidate(ctx)
	uc.log.Info().Int64("usuario_id", u.ID).Int64("actor_id", actor.ID).Str("rol", u.Rol).Msg("usuario creado")
	out := dto.UsuarioFromEntity(u)
	return &out, nil
}

// Update campos opcionales. El supervisor raíz no puede perder su rol y solo un
// supervisor otorga o quita el rol supervisor.
func (uc *UseCase) Update(ctx context.Context, actor access.Actor, id int64, in dto.UpdateUsuarioRequest) (*dto.UsuarioResponse, error) {
	if !actor.Can(access.UsuarioGestionar) {
		return nil, domain.ErrForbidden
	}
	var u *entity.Usuario
	err := uc.tx.Run(ctx, func(r ports.Repos) error {
		var err error
		if u, err = r.Usuarios.GetByID(ctx, id); err != nil {
			return err
		}
		if u == nil {
			return domain.ErrUserNotFound
		}
		if err := applyUpdate(actor, u, in); err != nil {
			return err
		}
		u.UpdatedAt = uc.now()
		return r.Usuarios.Update(ctx, u)
	})
	if err != nil {
		return nil, err
	}
	uc.invalidate(ctx)
	out := dto.UsuarioFromEntity(u)
	return &out, nil
}

func applyUpdate(actor access.Actor, u *entity.Usuario, in dto.UpdateUsuarioRequest) error {
	if in.Rol != nil {
		rol := strings.TrimSpace(*in.Rol)
		if !entity.ValidRole(rol) {
			return fmt.Errorf("%w: rol %q", domain.ErrInvalidInput, rol)
		}
		if rol != u.Rol {
			if u.IsRoot() {
				return domain.ErrRootUserProtected
			}
			if (rol == entity.RoleSupervisor || u.Rol == entity.RoleSupervisor) && !actor.Can(access.UsuarioAsignarSuper) {
				return domain.ErrForbidden
			}
			u.Rol = rol
		}
	}
	if in.Nombre != nil {
		nombre := strings.TrimSpace(*in.Nombre)
		if nombre == "" {
			return fmt.Errorf("%w: nombre vacío", domain.ErrInvalidInput)
		}
		u.Nombre = nombre
	}
	if in.Avatar != nil {
		u.Avatar = strings.TrimSpace(*in.Avatar)
	}
	if in.Password != nil {
		if utf8.RuneCountInString(*in.Password) < auth.MinPasswordLen {
			return fmt.Errorf("%w: la contraseña debe tener al menos %d caracteres", domain.ErrInvalidInput, auth.MinPasswordLen)
		}
		hash, err := auth.HashPassword(*in.Password)
		if err != nil {
			return err
		}
		u.PasswordHash = hash
	}
	return nil
}

// Delete falla con *domain.UserHasRecordsError si el usuario tiene pedidos o compras,
// y siempre para el supervisor raíz.
func (uc *UseCase) Delete(ctx context.Context, actor access.Actor, id int64) error {
	if !actor.Can(access.UsuarioGestionar) {
		return domain.ErrForbidden
	}
	if id == entity.RootUserID {
		return domain.ErrRootUserProtected
	}
	err := uc.tx.Run(ctx, func(r ports.Repos) error {
		u, err := r.Usuarios.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if u == nil {
			return domain.ErrUserNotFound
		}
		if u.Rol == entity.RoleSupervisor && !actor.Can(access.UsuarioAsignarSuper) {
			return domain.ErrForbidden
		}
		pedidos, err := r.Pedidos.CountBySolicitante(ctx, id)
		if err != nil {
			return fmt.Errorf("count pedidos: %w", err)
		}
		compras, err := r.Compras.CountBySolicitante(ctx, id)
		if err != nil {
			return fmt.Errorf("count compras: %w", err)
		}
		if pedidos > 0 || compras > 0 {
			return &domain.UserHasRecordsError{Pedidos: pedidos, Compras: compras}
		}
		return r.Usuarios.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	uc.invalidate(ctx)
	uc.log.Info().Int64("usuario_id", id).Int64("actor_id", actor.ID).Msg("usuario eliminado")
	return nil
}

// Estadisticas conteo por rol, cacheado statsTTL.
func (uc *UseCase) Estadisticas(ctx context.Context, actor access.Actor) (*dto.EstadisticasUsuariosResponse, error) {
	if !actor.Can(access.UsuarioGestionar) {
		return nil, domain.ErrForbidden
	}
	var out dto.EstadisticasUsuariosResponse
	if uc.cache != nil {
		hit, err := uc.cache.Get(ctx, statsKey, &out)
		if err != nil {
			uc.log.Warn().Err(err).Msg("cache de estadísticas no disponible")
		} else if hit {
			return &out, nil
		}
	}
	porRol, err := uc.usuarios.CountByRol(ctx)
	if err != nil {
		return nil, err
	}
	out = dto.EstadisticasUsuariosResponse{PorRol: make(map[string]int, 4)}
	for _, rol := range []string{entity.RoleUser, entity.RoleValidador, entity.RoleAdmin, entity.RoleSupervisor} {
		out.PorRol[rol] = porRol[rol]
		out.Total += porRol[rol]
	}
	if uc.cache != nil {
		if err := uc.cache.Set(ctx, statsKey, out, statsTTL); err != nil {
			uc.log.Warn().Err(err).Msg("no se pudo cachear estadísticas")
		}
	}
	return &out, nil
}

func (uc *UseCase) invalidate(ctx context.Context) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.Delete(ctx, statsKey); err != nil {
		uc.log.Warn().Err(err).Msg("no se pudo invalidar estadísticas")
	}
}
