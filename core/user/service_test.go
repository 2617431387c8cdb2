package user_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/minicrm/core"
	"github.com/trezcool/minicrm/core/user"
	"github.com/trezcool/minicrm/storage/database/inmem"
	"github.com/trezcool/minicrm/testutil"
)

func setup(t *testing.T) (*user.Service, user.Repository) {
	db, err := inmemdb.Open()
	require.NoError(t, err)
	repo := inmemdb.NewUserRepository(db)
	return user.NewService(repo), repo
}

func TestNewUser_Validate(t *testing.T) {
	svc, repo := setup(t)
	validate, _ := core.NewValidator()
	ctx := context.Background()
	testutil.CreateUser(t, repo, "Awe", "awe@test.cd", "secret1", user.RoleUser)

	tests := []struct {
		name      string
		nu        user.NewUser
		wantErr   bool
		wantTaken bool
		wantRole  user.Role
	}{
		{name: "valid", nu: user.NewUser{Name: "New", Email: "New@Test.cd ", Password: "secret"}, wantRole: user.RoleUser},
		{name: "admin", nu: user.NewUser{Name: "Boss", Email: "boss@test.cd", Password: "secret", Role: " ADMIN "}, wantRole: user.RoleAdmin},
		{name: "blank name", nu: user.NewUser{Name: " ", Email: "new@test.cd", Password: "secret"}, wantErr: true},
		{name: "no email", nu: user.NewUser{Name: "New", Password: "secret"}, wantErr: true},
		{name: "short password", nu: user.NewUser{Name: "New", Email: "new@test.cd", Password: "12345"}, wantErr: true},
		{name: "unknown role", nu: user.NewUser{Name: "New", Email: "new@test.cd", Password: "secret", Role: "root"}, wantErr: true},
		{name: "email taken", nu: user.NewUser{Name: "Dup", Email: "AWE@test.cd", Password: "secret"}, wantErr: true, wantTaken: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nu := tt.nu
			err := nu.Validate(ctx, validate, svc)
			if !tt.wantErr {
				require.NoError(t, err)
				assert.Equal(t, tt.wantRole, nu.Role)
				assert.Equal(t, core.CleanString(tt.nu.Email, true), nu.Email)
				return
			}
			require.Error(t, err)
			assert.True(t, core.IsValidationError(err))
			assert.Equal(t, tt.wantTaken, errors.Is(err, user.ErrEmailExists))
		})
	}
}

func TestService_RegisterAndAuthenticate(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	usr, err := svc.Register(ctx, user.NewUser{Name: "Awe", Email: "awe@test.cd", Password: "secret1"})
	require.NoError(t, err)
	assert.NotZero(t, usr.ID)
	assert.Equal(t, user.RoleUser, usr.Role)
	assert.NotEqual(t, []byte("secret1"), usr.PasswordHash)
	assert.False(t, usr.CreatedAt.IsZero())

	got, err := svc.Authenticate(ctx, user.Credentials{Email: " AWE@test.cd", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, usr.ID, got.ID)

	_, err = svc.Authenticate(ctx, user.Credentials{Email: "awe@test.cd", Password: "secret2"})
	assert.Equal(t, user.ErrInvalidCredentials, err)
	_, err = svc.Authenticate(ctx, user.Credentials{Email: "lol@test.cd", Password: "secret1"})
	assert.Equal(t, user.ErrInvalidCredentials, err)

	n, err := svc.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestService_Register_race(t *testing.T) {
	svc, _ := setup(t)
	validate, _ := core.NewValidator()
	ctx := context.Background()

	// both registrations pass the email check before either is stored
	first := user.NewUser{Name: "First", Email: "same@test.cd", Password: "secret1"}
	second := user.NewUser{Name: "Second", Email: "same@test.cd", Password: "secret2"}
	require.NoError(t, first.Validate(ctx, validate, svc))
	require.NoError(t, second.Validate(ctx, validate, svc))

	_, err := svc.Register(ctx, first)
	require.NoError(t, err)
	_, err = svc.Register(ctx, second)
	assert.Equal(t, user.ErrEmailRace, errors.Cause(err))
}

func TestService_AddOrUpdate(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()

	created, err := svc.AddOrUpdate(ctx, "", "Boss@test.cd", "secret1", user.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, "boss@test.cd", created.Email)
	assert.Equal(t, "boss@test.cd", created.Name, "the name defaults to the email")
	assert.True(t, created.IsAdmin())

	updated, err := svc.AddOrUpdate(ctx, "The Boss", "boss@test.cd", "secret2", user.RoleUser)
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)

	got, err := repo.GetUserByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "The Boss", got.Name)
	assert.Equal(t, user.RoleUser, got.Role)
	assert.NoError(t, got.CheckPassword("secret2"))

	require.NoError(t, svc.ResetPassword(ctx, "BOSS@test.cd", "secret3"))
	got, err = repo.GetUserByID(ctx, created.ID)
	require.NoError(t, err)
	assert.NoError(t, got.CheckPassword("secret3"))

	assert.Equal(t, user.ErrNotFound, errors.Cause(svc.ResetPassword(ctx, "lol@test.cd", "secret3")))
}

func TestAuthorize(t *testing.T) {
	member := &user.Principal{ID: 1, Role: user.RoleUser}
	admin := &user.Principal{ID: 2, Role: user.RoleAdmin}

	assert.Equal(t, user.ErrNotAuthenticated, user.Authorize(nil, user.RoleUser))
	assert.Equal(t, user.ErrNotAuthenticated, user.Authorize(nil, user.RoleAdmin))
	assert.NoError(t, user.Authorize(member, user.RoleUser))
	assert.Equal(t, user.ErrForbidden, user.Authorize(member, user.RoleAdmin))
	assert.NoError(t, user.Authorize(admin, user.RoleUser))
	assert.NoError(t, user.Authorize(admin, user.RoleAdmin))
}

func TestParseRole(t *testing.T) {
	for raw, want := range map[string]user.Role{"": user.RoleUser, "user": user.RoleUser, " Admin ": user.RoleAdmin} {
		got, err := user.ParseRole(raw)
		require.NoError(t, err, "raw=%q", raw)
		assert.Equal(t, want, got)
	}
	_, err := user.ParseRole("root")
	assert.Error(t, err)
}
