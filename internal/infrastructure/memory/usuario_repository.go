package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/jhoicas/pedidos-api/internal/domain"
	"github.com/jhoicas/pedidos-api/internal/domain/entity"
	"github.com/jhoicas/pedidos-api/internal/domain/repository"
)

var _ repository.UsuarioRepository = (*UsuarioRepo)(nil)

// UsuarioRepo usuarios en memoria.
type UsuarioRepo struct {
	c conn
}

func (r *UsuarioRepo) Create(_ context.Context, u *entity.Usuario) error {
	return r.c.do(func(d *data) error {
		if usernameTaken(d, u.Username, 0) {
			return domain.ErrUsernameTaken
		}
		u.ID = d.next("usuarios")
		for d.usuarios[u.ID].ID != 0 {
			u.ID = d.next("usuarios")
		}
		d.usuarios[u.ID] = *u
		return nil
	})
}

func (r *UsuarioRepo) EnsureRoot(_ context.Context, u *entity.Usuario) (bool, error) {
	var created bool
	err := r.c.do(func(d *data) error {
		if _, ok := d.usuarios[u.ID]; ok {
			return nil
		}
		if usernameTaken(d, u.Username, u.ID) {
			return domain.ErrUsernameTaken
		}
		d.usuarios[u.ID] = *u
		if d.seq["usuarios"] < u.ID {
			d.seq["usuarios"] = u.ID
		}
		created = true
		return nil
	})
	return created, err
}

func (r *UsuarioRepo) GetByID(_ context.Context, id int64) (*entity.Usuario, error) {
	var out *entity.Usuario
	err := r.c.do(func(d *data) error {
		if u, ok := d.usuarios[id]; ok {
			out = &u
		}
		return nil
	})
	return out, err
}

func (r *UsuarioRepo) GetByUsername(_ context.Context, username string) (*entity.Usuario, error) {
	var out *entity.Usuario
	err := r.c.do(func(d *data) error {
		for _, u := range d.usuarios {
			if strings.EqualFold(u.Username, username) {
				u := u
				out = &u
				break
			}
		}
		return nil
	})
	return out, err
}

func (r *UsuarioRepo) Update(_ context.Context, u *entity.Usuario) error {
	return r.c.do(func(d *data) error {
		if _, ok := d.usuarios[u.ID]; !ok {
			return domain.ErrUserNotFound
		}
		if usernameTaken(d, u.Username, u.ID) {
			return domain.ErrUsernameTaken
		}
		d.usuarios[u.ID] = *u
		return nil
	})
}

func (r *UsuarioRepo) List(_ context.Context) ([]*entity.Usuario, error) {
	var out []*entity.Usuario
	err := r.c.do(func(d *data) error {
		for _, u := range d.usuarios {
			u := u
			out = append(out, &u)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}

func (r *UsuarioRepo) ListIDsByRoles(_ context.Context, roles ...string) ([]int64, error) {
	want := make(map[string]bool, len(roles))
	for _, rol := range roles {
		want[rol] = true
	}
	var out []int64
	err := r.c.do(func(d *data) error {
		for id, u := range d.usuarios {
			if want[u.Rol] {
				out = append(out, id)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, err
}

func (r *UsuarioRepo) CountByRol(_ context.Context) (map[string]int, error) {
	out := make(map[string]int)
	err := r.c.do(func(d *data) error {
		for _, u := range d.usuarios {
			out[u.Rol]++
		}
		return nil
	})
	return out, err
}

func (r *UsuarioRepo) Delete(_ context.Context, id int64) error {
	return r.c.do(func(d *data) error {
		delete(d.usuarios, id)
		return nil
	})
}

func usernameTaken(d *data, username string, exceptID int64) bool {
	for id, u := range d.usuarios {
		if id != exceptID && strings.EqualFold(u.Username, username) {
			return true
		}
	}
	return false
}
