package businessflow_test

import (
	"context"
	"testing"
	"time"

	"github.com/campushq/campus-hub/app/dto"
	"github.com/campushq/campus-hub/app/services"
	businessflow "github.com/campushq/campus-hub/business_flow"
	"github.com/campushq/campus-hub/config"
	"github.com/campushq/campus-hub/repository"
	testingutil "github.com/campushq/campus-hub/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTokenService(t *testing.T) services.TokenService {
	ts, err := services.NewTokenService(
		15*time.Minute,
		24*time.Hour,
		"campus-hub",
		"campus-hub-api",
		false,
		"", "",
		"test-secret-key-for-auth-flow-tests",
	)
	require.NoError(t, err)
	return ts
}

func newSignupFlow(t *testing.T, testDB *testingutil.TestDB) businessflow.SignupFlow {
	return businessflow.NewSignupFlow(
		repository.NewMemberRepository(testDB.DB),
		repository.NewMajorRepository(testDB.DB),
		repository.NewMemberSessionRepository(testDB.DB),
		repository.NewAuditLogRepository(testDB.DB),
		newTestTokenService(t),
		services.NewNotificationService(services.NewMockEmailProvider()),
		config.SchoolConfig{EmailDomain: "@student.campus.edu", BaseURL: "https://go.campus.edu"},
		testDB.DB,
	)
}

func newLoginFlow(t *testing.T, testDB *testingutil.TestDB) businessflow.LoginFlow {
	return businessflow.NewLoginFlow(
		repository.NewMemberRepository(testDB.DB),
		repository.NewMemberSessionRepository(testDB.DB),
		repository.NewAuditLogRepository(testDB.DB),
		newTestTokenService(t),
		testDB.DB,
	)
}

func signupRequest(email string) *dto.SignupRequest {
	return &dto.SignupRequest{
		FirstName:       "Jordan",
		LastName:        "Doe",
		Email:           email,
		Password:        "StrongPass123!",
		ConfirmPassword: "StrongPass123!",
	}
}

func TestSignupFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		flow := newSignupFlow(t, testDB)
		ctx := context.Background()
		metadata := businessflow.NewClientMetadata("127.0.0.1", "test-agent")

		t.Run("SuccessfulSignup", func(t *testing.T) {
			result, err := flow.Signup(ctx, signupRequest("casey.lee@student.campus.edu"), metadata)
			require.NoError(t, err)
			assert.NotEmpty(t, result.Token)
			assert.NotEmpty(t, result.RefreshToken)
			assert.Equal(t, "casey.lee@student.campus.edu", result.Member.Email)
		})

		t.Run("NonSchoolEmailRejected", func(t *testing.T) {
			_, err := flow.Signup(ctx, signupRequest("casey.lee@gmail.com"), metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsEmailNotSchoolDomain(err))
		})

		t.Run("DuplicateEmailRejected", func(t *testing.T) {
			_, err := flow.Signup(ctx, signupRequest("casey.lee@student.campus.edu"), metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsEmailAlreadyExists(err))
		})

		t.Run("SignupWithMajor", func(t *testing.T) {
			major, err := fixtures.CreateTestMajor("Physics")
			require.NoError(t, err)

			req := signupRequest("sam.park@student.campus.edu")
			req.MajorID = &major.ID
			result, err := flow.Signup(ctx, req, metadata)
			require.NoError(t, err)
			require.NotNil(t, result.Member.Major)
			assert.Equal(t, "Physics", *result.Member.Major)
		})

		t.Run("UnknownMajorRejected", func(t *testing.T) {
			majorID := uint(999999)
			req := signupRequest("alex.kim@student.campus.edu")
			req.MajorID = &majorID
			_, err := flow.Signup(ctx, req, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsMajorNotFound(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestLoginFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		signup := newSignupFlow(t, testDB)
		flow := newLoginFlow(t, testDB)
		ctx := context.Background()
		metadata := businessflow.NewClientMetadata("127.0.0.1", "test-agent")

		const email = "riley.chen@student.campus.edu"
		_, err := signup.Signup(ctx, signupRequest(email), metadata)
		require.NoError(t, err)

		t.Run("SuccessfulLogin", func(t *testing.T) {
			result, err := flow.Login(ctx, &dto.LoginRequest{Email: email, Password: "StrongPass123!"}, metadata)
			require.NoError(t, err)
			assert.NotEmpty(t, result.Token)
			assert.Equal(t, email, result.Member.Email)
		})

		t.Run("WrongPasswordRejected", func(t *testing.T) {
			_, err := flow.Login(ctx, &dto.LoginRequest{Email: email, Password: "WrongPass123!"}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsIncorrectPassword(err))
		})

		t.Run("UnknownEmailRejected", func(t *testing.T) {
			_, err := flow.Login(ctx, &dto.LoginRequest{Email: "nobody@student.campus.edu", Password: "StrongPass123!"}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsMemberNotFound(err))
		})

		t.Run("RefreshRotatesTokens", func(t *testing.T) {
			login, err := flow.Login(ctx, &dto.LoginRequest{Email: email, Password: "StrongPass123!"}, metadata)
			require.NoError(t, err)

			refreshed, err := flow.RefreshToken(ctx, &dto.RefreshTokenRequest{RefreshToken: login.RefreshToken}, metadata)
			require.NoError(t, err)
			assert.NotEmpty(t, refreshed.Token)
			assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)
		})

		t.Run("BogusRefreshTokenRejected", func(t *testing.T) {
			_, err := flow.RefreshToken(ctx, &dto.RefreshTokenRequest{RefreshToken: "not-a-real-token"}, metadata)
			require.Error(t, err)
		})

		t.Run("LogoutInvalidatesSession", func(t *testing.T) {
			login, err := flow.Login(ctx, &dto.LoginRequest{Email: email, Password: "StrongPass123!"}, metadata)
			require.NoError(t, err)

			_, err = flow.Logout(ctx, login.Token, metadata)
			require.NoError(t, err)

			_, err = flow.Logout(ctx, login.Token, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsSessionNotFound(err))
		})

		return nil
	})
	require.NoError(t, err)
}
