package usecases

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/connecthub/connecthub/internal/application/testutil"
	"github.com/connecthub/connecthub/internal/domain/user"
	"github.com/connecthub/connecthub/internal/infrastructure/auth"
	"github.com/connecthub/connecthub/internal/shared/authorization"
	apperrors "github.com/connecthub/connecthub/internal/shared/errors"
)

type fakeJWT struct{}

func (fakeJWT) Generate(userSID string, role authorization.UserRole) (*TokenPair, error) {
	return &TokenPair{
		AccessToken:  "access:" + userSID + ":" + role.String(),
		RefreshToken: "refresh:" + userSID,
		ExpiresIn:    900,
	}, nil
}

func (fakeJWT) ParseRefresh(token string) (string, error) {
	sid, ok := strings.CutPrefix(token, "refresh:")
	if !ok {
		return "", errors.New("not a refresh token")
	}
	return sid, nil
}

func hasher() PasswordHasher { return auth.NewBcryptPasswordHasher(bcrypt.MinCost) }

func register(t *testing.T, s *testutil.Stack, email string) *AuthResult {
	t.Helper()
	res, err := NewRegisterUseCase(s.Users, hasher(), fakeJWT{}, s.Log).Execute(context.Background(), RegisterCommand{
		Email:    email,
		Password: "correct-horse",
	})
	require.NoError(t, err)
	return res
}

func TestRegister(t *testing.T) {
	s := testutil.NewStack(t)
	res := register(t, s, "  Alice@Example.com ")

	assert.Equal(t, "alice@example.com", res.User.Email())
	assert.Equal(t, authorization.RoleClient, res.User.Role())
	assert.Equal(t, user.TierFree, res.User.Tier())
	assert.Equal(t, "access:"+res.User.SID()+":client", res.AccessToken)
}

func TestRegister_Errors(t *testing.T) {
	s := testutil.NewStack(t)
	register(t, s, "alice@example.com")
	uc := NewRegisterUseCase(s.Users, hasher(), fakeJWT{}, s.Log)

	tests := []struct {
		name     string
		cmd      RegisterCommand
		wantType apperrors.ErrorType
	}{
		{"duplicate email", RegisterCommand{Email: "ALICE@example.com", Password: "long-enough"}, apperrors.ErrorTypeConflict},
		{"short password", RegisterCommand{Email: "bob@example.com", Password: "short"}, apperrors.ErrorTypeValidation},
		{"bad email", RegisterCommand{Email: "not-an-email", Password: "long-enough"}, apperrors.ErrorTypeValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.Execute(context.Background(), tt.cmd)
			appErr := apperrors.GetAppError(err)
			require.NotNil(t, appErr)
			assert.Equal(t, tt.wantType, appErr.Type)
		})
	}
}

func TestLogin(t *testing.T) {
	s := testutil.NewStack(t)
	register(t, s, "alice@example.com")
	uc := NewLoginUseCase(s.Users, hasher(), fakeJWT{}, s.Log)
	ctx := context.Background()

	res, err := uc.Execute(ctx, LoginCommand{Email: "Alice@example.com", Password: "correct-horse"})
	require.NoError(t, err)
	assert.NotNil(t, res.User.LastLoginAt())

	stored, err := s.Users.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.NotNil(t, stored.LastLoginAt())
}

func TestLogin_SameErrorForUnknownEmailAndWrongPassword(t *testing.T) {
	s := testutil.NewStack(t)
	register(t, s, "alice@example.com")
	uc := NewLoginUseCase(s.Users, hasher(), fakeJWT{}, s.Log)

	_, errWrong := uc.Execute(context.Background(), LoginCommand{Email: "alice@example.com", Password: "nope-nope"})
	_, errUnknown := uc.Execute(context.Background(), LoginCommand{Email: "bob@example.com", Password: "correct-horse"})

	require.Error(t, errWrong)
	require.Error(t, errUnknown)
	assert.Equal(t, errWrong.Error(), errUnknown.Error())
	assert.Equal(t, apperrors.ErrorTypeUnauthorized, apperrors.GetAppError(errWrong).Type)
}

func TestLogin_DisabledUser(t *testing.T) {
	s := testutil.NewStack(t)
	res := register(t, s, "alice@example.com")
	ctx := context.Background()
	require.NoError(t, res.User.ChangeStatus(user.StatusDisabled))
	require.NoError(t, s.Users.Update(ctx, res.User))

	_, err := NewLoginUseCase(s.Users, hasher(), fakeJWT{}, s.Log).
		Execute(ctx, LoginCommand{Email: "alice@example.com", Password: "correct-horse"})
	assert.True(t, apperrors.IsForbiddenError(err))
}

func TestRefreshToken_UsesCurrentRole(t *testing.T) {
	s := testutil.NewStack(t)
	res := register(t, s, "alice@example.com")
	ctx := context.Background()
	require.NoError(t, res.User.ChangeRole(authorization.RoleAdmin))
	require.NoError(t, s.Users.Update(ctx, res.User))

	uc := NewRefreshTokenUseCase(s.Users, fakeJWT{}, s.Log)
	out, err := uc.Execute(ctx, RefreshTokenCommand{RefreshToken: res.RefreshToken})
	require.NoError(t, err)
	assert.Equal(t, "access:"+res.User.SID()+":admin", out.AccessToken)

	_, err = uc.Execute(ctx, RefreshTokenCommand{RefreshToken: res.AccessToken})
	assert.Equal(t, apperrors.ErrorTypeUnauthorized, apperrors.GetAppError(err).Type)
}

func TestUpdateProfile(t *testing.T) {
	s := testutil.NewStack(t)
	res := register(t, s, "alice@example.com")
	uc := NewUpdateProfileUseCase(s.Users, s.Log)
	ctx := context.Background()

	u, err := uc.Execute(ctx, UpdateProfileCommand{UserID: res.User.ID(), DisplayName: "Alice Liddell"})
	require.NoError(t, err)
	assert.Equal(t, "Alice Liddell", u.DisplayName())

	// Saving the same name again is a no-op rather than a version conflict.
	_, err = uc.Execute(ctx, UpdateProfileCommand{UserID: res.User.ID(), DisplayName: "Alice Liddell"})
	require.NoError(t, err)

	_, err = uc.Execute(ctx, UpdateProfileCommand{UserID: 999, DisplayName: "x"})
	assert.True(t, apperrors.IsNotFoundError(err))
}

func TestPreferences(t *testing.T) {
	s := testutil.NewStack(t)
	alice := s.CreateUser(t, "alice@example.com")
	bob := s.CreateUser(t, "bob@example.com")
	own := s.CreateWorkspace(t, alice, "Alice HQ")
	other := s.CreateWorkspace(t, bob, "Bob HQ")
	ctx := context.Background()

	prefs, err := NewGetPreferencesUseCase(s.Preferences, s.Log).Execute(ctx, alice.ID())
	require.NoError(t, err)
	assert.Equal(t, user.ThemeSystem, prefs.Theme)

	update := NewUpdatePreferencesUseCase(s.Preferences, s.Workspaces, s.Members, s.Log)
	theme, wsSID := "dark", own.SID()
	prefs, err = update.Execute(ctx, UpdatePreferencesCommand{
		UserID: alice.ID(),
		Patch:  user.PreferencesPatch{Theme: &theme, DefaultWorkspaceSID: &wsSID},
	})
	require.NoError(t, err)
	assert.Equal(t, user.ThemeDark, prefs.Theme)

	stored, err := NewGetPreferencesUseCase(s.Preferences, s.Log).Execute(ctx, alice.ID())
	require.NoError(t, err)
	assert.Equal(t, own.SID(), stored.DefaultWorkspaceSID)

	foreign := other.SID()
	_, err = update.Execute(ctx, UpdatePreferencesCommand{
		UserID: alice.ID(),
		Patch:  user.PreferencesPatch{DefaultWorkspaceSID: &foreign},
	})
	assert.True(t, apperrors.IsValidationError(err))

	badTZ := "Mars/Olympus"
	_, err = update.Execute(ctx, UpdatePreferencesCommand{
		UserID: alice.ID(),
		Patch:  user.PreferencesPatch{Timezone: &badTZ},
	})
	assert.True(t, apperrors.IsValidationError(err))
}

func TestListUsers(t *testing.T) {
	s := testutil.NewStack(t)
	s.CreateUser(t, "alice@example.com")
	s.CreateUser(t, "bob@example.com")

	res, err := NewListUsersUseCase(s.Users, s.Log).Execute(context.Background(), ListUsersQuery{Search: "bob"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Total)
	assert.Equal(t, 20, res.PageSize)
}

func TestUpdateUserAccess(t *testing.T) {
	s := testutil.NewStack(t)
	admin := s.CreateUser(t, "admin@example.com")
	require.NoError(t, admin.ChangeRole(authorization.RoleAdmin))
	require.NoError(t, s.Users.Update(context.Background(), admin))
	target := s.CreateUser(t, "bob@example.com")
	uc := NewUpdateUserAccessUseCase(s.Users, s.Log)
	ctx := context.Background()

	tier, status := "pro", "disabled"
	u, err := uc.Execute(ctx, UpdateUserAccessCommand{ActorID: admin.ID(), TargetSID: target.SID(), Tier: &tier, Status: &status})
	require.NoError(t, err)
	assert.Equal(t, user.TierPro, u.Tier())
	assert.Equal(t, user.StatusDisabled, u.Status())

	client := "client"
	_, err = uc.Execute(ctx, UpdateUserAccessCommand{ActorID: admin.ID(), TargetSID: admin.SID(), Role: &client})
	assert.True(t, apperrors.IsForbiddenError(err))

	_, err = uc.Execute(ctx, UpdateUserAccessCommand{ActorID: admin.ID(), TargetSID: admin.SID(), Status: &status})
	assert.True(t, apperrors.IsForbiddenError(err))

	_, err = uc.Execute(ctx, UpdateUserAccessCommand{ActorID: admin.ID(), TargetSID: "usr_missing"})
	assert.True(t, apperrors.IsNotFoundError(err))
}
