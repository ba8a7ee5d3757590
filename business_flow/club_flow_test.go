package businessflow_test

import (
	"context"
	"testing"

	"github.com/campushq/campus-hub/app/dto"
	"github.com/campushq/campus-hub/app/services"
	businessflow "github.com/campushq/campus-hub/business_flow"
	"github.com/campushq/campus-hub/models"
	"github.com/campushq/campus-hub/repository"
	testingutil "github.com/campushq/campus-hub/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClubFlow(t *testing.T, testDB *testingutil.TestDB) businessflow.ClubFlow {
	t.Helper()

	storage, err := services.NewLocalFileStorage(t.TempDir(), "http://files.test")
	require.NoError(t, err)

	return businessflow.NewClubFlow(
		repository.NewClubRepository(testDB.DB),
		repository.NewAuditLogRepository(testDB.DB),
		storage,
		testDB.DB,
	)
}

func TestClubFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		flow := newClubFlow(t, testDB)
		clubRepo := repository.NewClubRepository(testDB.DB)
		ctx := context.Background()

		owner, err := fixtures.CreateTestMember()
		require.NoError(t, err)

		t.Run("CreateClubMakesOwnerMembership", func(t *testing.T) {
			req := &dto.CreateClubRequest{Name: "Chess Club"}
			result, err := flow.CreateClub(ctx, owner.ID, req, businessflow.NewClientMetadata("127.0.0.1", "test-agent"))
			require.NoError(t, err)
			assert.Equal(t, "Chess Club", result.Club.Name)
			assert.Equal(t, int64(1), result.Club.MemberCount)

			membership, err := clubRepo.MembershipByClubAndMember(ctx, result.Club.ID, owner.ID)
			require.NoError(t, err)
			require.NotNil(t, membership)
			assert.Equal(t, models.ClubRoleOwner, membership.Role)
		})

		t.Run("DuplicateNameRejected", func(t *testing.T) {
			_, err := flow.CreateClub(ctx, owner.ID, &dto.CreateClubRequest{Name: "Chess Club"}, nil)
			require.Error(t, err)
			assert.True(t, businessflow.IsClubNameTaken(err))
		})

		t.Run("JoinAndLeave", func(t *testing.T) {
			club, err := fixtures.CreateTestClub(owner.ID)
			require.NoError(t, err)

			member, err := fixtures.CreateTestMember()
			require.NoError(t, err)

			_, err = flow.JoinClub(ctx, member.ID, club.ID)
			require.NoError(t, err)

			// Joining twice is rejected
			_, err = flow.JoinClub(ctx, member.ID, club.ID)
			require.Error(t, err)
			assert.True(t, businessflow.IsAlreadyMember(err))

			_, err = flow.LeaveClub(ctx, member.ID, club.ID)
			require.NoError(t, err)

			// Leaving again fails since the membership is gone
			_, err = flow.LeaveClub(ctx, member.ID, club.ID)
			require.Error(t, err)
			assert.True(t, businessflow.IsNotClubMember(err))
		})

		t.Run("OwnerCannotLeave", func(t *testing.T) {
			club, err := fixtures.CreateTestClub(owner.ID)
			require.NoError(t, err)

			_, err = flow.LeaveClub(ctx, owner.ID, club.ID)
			require.Error(t, err)
			assert.True(t, businessflow.IsOwnerCannotLeave(err))
		})

		t.Run("UploadLogoRequiresManageRole", func(t *testing.T) {
			club, err := fixtures.CreateTestClub(owner.ID)
			require.NoError(t, err)

			member, err := fixtures.CreateTestMember()
			require.NoError(t, err)
			_, err = flow.JoinClub(ctx, member.ID, club.ID)
			require.NoError(t, err)

			pngStub := []byte{0x89, 0x50, 0x4E, 0x47}

			_, err = flow.UploadLogo(ctx, member.ID, club.ID, pngStub, ".png")
			require.Error(t, err)
			assert.True(t, businessflow.IsClubAccessDenied(err))

			clubDTO, err := flow.UploadLogo(ctx, owner.ID, club.ID, pngStub, ".png")
			require.NoError(t, err)
			require.NotNil(t, clubDTO.LogoURL)
		})

		t.Run("MyClubsListsMemberships", func(t *testing.T) {
			member, err := fixtures.CreateTestMember()
			require.NoError(t, err)

			first, err := fixtures.CreateTestClub(owner.ID)
			require.NoError(t, err)
			second, err := fixtures.CreateTestClub(owner.ID)
			require.NoError(t, err)

			_, err = flow.JoinClub(ctx, member.ID, first.ID)
			require.NoError(t, err)
			_, err = flow.JoinClub(ctx, member.ID, second.ID)
			require.NoError(t, err)

			result, err := flow.MyClubs(ctx, member.ID)
			require.NoError(t, err)
			assert.Len(t, result.Clubs, 2)
		})

		return nil
	})
	require.NoError(t, err)
}
