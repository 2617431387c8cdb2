package sqlxrepos

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/minicrm/core"
	"github.com/trezcool/minicrm/core/user"
	"github.com/trezcool/minicrm/storage/database"
)

const userColumns = "id, name, email, password_hash, role, created_at"

type userRepository struct {
	db core.DB
}

var _ user.Repository = (*userRepository)(nil)

func NewUserRepository(db core.DB) *userRepository {
	return &userRepository{db: db}
}

func (repo *userRepository) CheckEmailUniqueness(ctx context.Context, email string) error {
	res, err := database.Execute(ctx, repo.db, "SELECT id FROM users WHERE email = ?", []interface{}{email}, database.ReadOne)
	if err != nil {
		return errors.Wrap(err, "checking email uniqueness")
	}
	if res.Found {
		return user.ErrEmailExists
	}
	return nil
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	id, err := database.Insert(
		ctx, repo.db,
		"INSERT INTO users (name, email, password_hash, role, created_at) VALUES (?, ?, ?, ?, ?)",
		usr.Name, usr.Email, string(usr.PasswordHash), string(usr.Role), usr.CreatedAt,
	)
	if err != nil {
		if database.DialectOf(repo.db).IsUniqueViolation(err) {
			return user.User{}, user.ErrEmailRace
		}
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	usr.ID = id
	return usr, nil
}

func (repo *userRepository) GetUserByID(ctx context.Context, id int64) (user.User, error) {
	var usr user.User
	err := database.Get(ctx, repo.db, &usr, "SELECT "+userColumns+" FROM users WHERE id = ?", id)
	if err != nil {
		return user.User{}, trapNoRowsErr(err, user.ErrNotFound, "getting user by id")
	}
	return usr, nil
}

func (repo *userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	var usr user.User
	err := database.Get(ctx, repo.db, &usr, "SELECT "+userColumns+" FROM users WHERE email = ?", email)
	if err != nil {
		return user.User{}, trapNoRowsErr(err, user.ErrNotFound, "getting user by email")
	}
	return usr, nil
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	n, err := database.Exec(
		ctx, repo.db,
		"UPDATE users SET name = ?, email = ?, password_hash = ?, role = ? WHERE id = ?",
		usr.Name, usr.Email, string(usr.PasswordHash), string(usr.Role), usr.ID,
	)
	if err != nil {
		if database.DialectOf(repo.db).IsUniqueViolation(err) {
			return user.User{}, user.ErrEmailExists
		}
		return user.User{}, errors.Wrap(err, "updating user")
	}
	if n == 0 {
		return user.User{}, user.ErrNotFound
	}
	return usr, nil
}

func (repo *userRepository) CountUsers(ctx context.Context) (int, error) {
	n, err := database.Count(ctx, repo.db, "SELECT COUNT(*) FROM users")
	return n, errors.Wrap(err, "counting users")
}
