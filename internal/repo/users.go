package repo

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tecsup/agente/internal/store"
)

// Users reads and writes account records. The users table has no sort key;
// the email is the full primary key.
type Users struct {
	store *store.Store
	table string
}

func NewUsers(s *store.Store, table string) *Users {
	return &Users{store: s, table: table}
}

// GetByEmail returns the user stored under correo, or store.ErrNotFound.
func (u *Users) GetByEmail(correo string) (User, error) {
	rec, err := u.store.Get(u.table, correo, "")
	if err != nil {
		return User{}, err
	}
	var user User
	if err := rec.DecodePayload(&user); err != nil {
		return User{}, fmt.Errorf("decoding user %s: %w", correo, err)
	}
	user.Correo = correo
	return user, nil
}

// Exists reports whether a user record is present for correo.
func (u *Users) Exists(correo string) (bool, error) {
	_, err := u.store.Get(u.table, correo, "")
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Put inserts or fully replaces a user record.
func (u *Users) Put(user User) error {
	if user.Correo == "" {
		return fmt.Errorf("putting user: correo is required")
	}
	payload, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encoding user %s: %w", user.Correo, err)
	}
	return u.store.Put(store.Record{
		Table:        u.table,
		PartitionKey: user.Correo,
		Payload:      payload,
	})
}

// SetAuthorization updates only the data-collection consent flag.
func (u *Users) SetAuthorization(correo string, autorizacion bool) error {
	user, err := u.GetByEmail(correo)
	if err != nil {
		return err
	}
	user.Autorizacion = autorizacion
	return u.Put(user)
}

// List returns every known user email.
func (u *Users) List() ([]string, error) {
	return u.store.Owners(u.table)
}
