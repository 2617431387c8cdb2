package user

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/minicrm/core"
)

// Role is the authorization level of a User.
type Role string

// Roles
const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

var Roles = []Role{RoleUser, RoleAdmin}

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// ParseRole parses s, an empty s being the default RoleUser.
func ParseRole(s string) (Role, error) {
	r := Role(core.CleanString(s, true /* lower */))
	if r == "" {
		return RoleUser, nil
	}
	if !r.Valid() {
		return "", fmt.Errorf("invalid role %q", s)
	}
	return r, nil
}

type User struct {
	ID           int64     `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash []byte    `db:"password_hash" json:"-"`
	Role         Role      `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Principal returns the identity stored in the session once u has logged in.
func (u *User) Principal() *Principal {
	return &Principal{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

// Principal is the authenticated identity carried by a session.
type Principal struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}

// Authorize is the single authorization check of the app.
// Any authenticated principal satisfies RoleUser; only admins satisfy RoleAdmin.
func Authorize(p *Principal, required Role) error {
	if p == nil {
		return ErrNotAuthenticated
	}
	if required == RoleAdmin && p.Role != RoleAdmin {
		return ErrForbidden
	}
	return nil
}

// NewUser contains information needed to register a new User.
type NewUser struct {
	Name     string `form:"name" validate:"required,notblank"`
	Email    string `form:"email" validate:"required,notblank"`
	Password string `form:"password" validate:"required,min=6"`
	Role     Role   `form:"role" validate:"omitempty,oneof=user admin"`
}

// Validate cleans nu, validates it and checks that its email is not taken.
// The email check is a plain lookup: two concurrent registrations may both pass it.
func (nu *NewUser) Validate(ctx context.Context, validate *validator.Validate, svc *Service) error {
	nu.Name = core.CleanString(nu.Name)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.Role = Role(core.CleanString(string(nu.Role), true /* lower */))

	if err := validate.Struct(nu); err != nil {
		return err
	}
	if nu.Role == "" {
		nu.Role = RoleUser
	}
	return svc.CheckUniqueness(ctx, nu.Email)
}

// Credentials are submitted by the login form.
type Credentials struct {
	Email    string `form:"email"`
	Password string `form:"password"`
}
