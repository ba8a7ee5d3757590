package businessflow_test

import (
	"context"
	"testing"

	"github.com/campushq/campus-hub/app/dto"
	businessflow "github.com/campushq/campus-hub/business_flow"
	"github.com/campushq/campus-hub/repository"
	testingutil "github.com/campushq/campus-hub/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProfileFlow(testDB *testingutil.TestDB) businessflow.ProfileFlow {
	return businessflow.NewProfileFlow(
		repository.NewMemberRepository(testDB.DB),
		repository.NewMajorRepository(testDB.DB),
		repository.NewMemberSessionRepository(testDB.DB),
		repository.NewAuditLogRepository(testDB.DB),
		testDB.DB,
	)
}

func TestProfileFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		flow := newProfileFlow(testDB)
		sessionRepo := repository.NewMemberSessionRepository(testDB.DB)
		ctx := context.Background()
		metadata := businessflow.NewClientMetadata("127.0.0.1", "test-agent")

		member, err := fixtures.CreateTestMember()
		require.NoError(t, err)

		t.Run("GetProfile", func(t *testing.T) {
			result, err := flow.GetProfile(ctx, member.ID)
			require.NoError(t, err)
			assert.Equal(t, member.Email, result.Member.Email)
		})

		t.Run("UpdateName", func(t *testing.T) {
			first := "Morgan"
			result, err := flow.UpdateProfile(ctx, member.ID, &dto.UpdateProfileRequest{FirstName: &first}, metadata)
			require.NoError(t, err)
			assert.Equal(t, "Morgan", result.Member.FirstName)
			assert.Equal(t, member.LastName, result.Member.LastName)
		})

		t.Run("UpdateMajor", func(t *testing.T) {
			major, err := fixtures.CreateTestMajor("Economics")
			require.NoError(t, err)

			result, err := flow.UpdateProfile(ctx, member.ID, &dto.UpdateProfileRequest{MajorID: &major.ID}, metadata)
			require.NoError(t, err)
			require.NotNil(t, result.Member.Major)
			assert.Equal(t, "Economics", *result.Member.Major)
		})

		t.Run("UnknownMajorRejected", func(t *testing.T) {
			majorID := uint(999999)
			_, err := flow.UpdateProfile(ctx, member.ID, &dto.UpdateProfileRequest{MajorID: &majorID}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsMajorNotFound(err))
		})

		t.Run("ChangePasswordExpiresSessions", func(t *testing.T) {
			session, err := fixtures.CreateTestSession(member.ID)
			require.NoError(t, err)

			_, err = flow.ChangePassword(ctx, member.ID, &dto.ChangePasswordRequest{
				CurrentPassword: "TestPass123!",
				NewPassword:     "FreshPass456!",
				ConfirmPassword: "FreshPass456!",
			}, metadata)
			require.NoError(t, err)

			found, err := sessionRepo.BySessionToken(ctx, session.SessionToken)
			require.NoError(t, err)
			assert.Nil(t, found)
		})

		t.Run("ChangePasswordWrongCurrent", func(t *testing.T) {
			_, err := flow.ChangePassword(ctx, member.ID, &dto.ChangePasswordRequest{
				CurrentPassword: "TestPass123!",
				NewPassword:     "AnotherPass789!",
				ConfirmPassword: "AnotherPass789!",
			}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsIncorrectPassword(err))
		})

		return nil
	})
	require.NoError(t, err)
}
