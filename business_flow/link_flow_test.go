package businessflow_test

import (
	"context"
	"testing"

	"github.com/campushq/campus-hub/app/dto"
	"github.com/campushq/campus-hub/app/services"
	"github.com/campushq/campus-hub/app/tasks"
	businessflow "github.com/campushq/campus-hub/business_flow"
	"github.com/campushq/campus-hub/config"
	"github.com/campushq/campus-hub/repository"
	testingutil "github.com/campushq/campus-hub/testing"
	"github.com/campushq/campus-hub/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLinkFlow(t *testing.T, testDB *testingutil.TestDB) businessflow.LinkFlow {
	t.Helper()

	storage, err := services.NewLocalFileStorage(t.TempDir(), "http://files.test")
	require.NoError(t, err)

	return businessflow.NewLinkFlow(
		repository.NewLinkRepository(testDB.DB),
		repository.NewLinkVisitRepository(testDB.DB),
		repository.NewAuditLogRepository(testDB.DB),
		tasks.NewSyncDispatcher(utils.NewTestLogger()),
		storage,
		config.SchoolConfig{EmailDomain: "@student.campus.edu", BaseURL: "https://go.campus.edu"},
		nil,
		nil,
		testDB.DB,
	)
}

func TestLinkFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		flow := newLinkFlow(t, testDB)
		ctx := context.Background()

		member, err := fixtures.CreateTestMember()
		require.NoError(t, err)

		t.Run("CreateLink", func(t *testing.T) {
			req := &dto.CreateLinkRequest{TargetURL: "https://example.com/handbook"}
			result, err := flow.CreateLink(ctx, member.ID, req, businessflow.NewClientMetadata("127.0.0.1", "test-agent"))
			require.NoError(t, err)
			require.NotNil(t, result)
			assert.NotEmpty(t, result.Link.UID)
			assert.Contains(t, result.Link.ShortURL, result.Link.UID)
			assert.Equal(t, "https://example.com/handbook", result.Link.TargetURL)
			assert.True(t, utils.IsTrue(result.Link.IsActive))
		})

		t.Run("VisitDeduplicatesByIP", func(t *testing.T) {
			link, err := fixtures.CreateTestLink(member.ID)
			require.NoError(t, err)

			ua := "Mozilla/5.0"
			target, err := flow.Visit(ctx, link.UID, "10.0.0.1", &ua)
			require.NoError(t, err)
			assert.Equal(t, link.TargetURL, target)

			// Same IP again increments the counter instead of adding a row
			_, err = flow.Visit(ctx, link.UID, "10.0.0.1", &ua)
			require.NoError(t, err)

			// A second IP is a new unique visitor
			_, err = flow.Visit(ctx, link.UID, "10.0.0.2", nil)
			require.NoError(t, err)

			stats, err := flow.Stats(ctx, member.ID, link.ID)
			require.NoError(t, err)
			assert.Equal(t, int64(3), stats.Stats.TotalVisits)
			assert.Equal(t, int64(2), stats.Stats.UniqueVisitors)
			require.Len(t, stats.Visits, 2)
		})

		t.Run("VisitUnknownUID", func(t *testing.T) {
			_, err := flow.Visit(ctx, "missing1", "10.0.0.1", nil)
			require.Error(t, err)
			assert.True(t, businessflow.IsLinkNotFound(err))
		})

		t.Run("DeactivatedLinkRejectsVisits", func(t *testing.T) {
			link, err := fixtures.CreateTestLink(member.ID)
			require.NoError(t, err)

			require.NoError(t, flow.DeactivateLink(ctx, member.ID, link.ID))

			_, err = flow.Visit(ctx, link.UID, "10.0.0.1", nil)
			require.Error(t, err)
			assert.True(t, businessflow.IsLinkInactive(err))
		})

		t.Run("StatsDeniedForOtherMember", func(t *testing.T) {
			link, err := fixtures.CreateTestLink(member.ID)
			require.NoError(t, err)

			other, err := fixtures.CreateTestMember()
			require.NoError(t, err)

			_, err = flow.Stats(ctx, other.ID, link.ID)
			require.Error(t, err)
			assert.True(t, businessflow.IsLinkAccessDenied(err))
		})

		t.Run("GenerateQRCodeIsIdempotent", func(t *testing.T) {
			link, err := fixtures.CreateTestLink(member.ID)
			require.NoError(t, err)

			first, err := flow.GenerateQRCode(ctx, member.ID, link.ID)
			require.NoError(t, err)
			assert.NotEmpty(t, first.QRCodeURL)

			second, err := flow.GenerateQRCode(ctx, member.ID, link.ID)
			require.NoError(t, err)
			assert.Equal(t, first.QRCodeURL, second.QRCodeURL)
		})

		t.Run("ExportStatsXLSX", func(t *testing.T) {
			data, filename, err := flow.ExportStatsXLSX(ctx, member.ID)
			require.NoError(t, err)
			assert.NotEmpty(t, data)
			assert.Contains(t, filename, ".xlsx")
		})

		t.Run("ListLinksPaginates", func(t *testing.T) {
			owner, err := fixtures.CreateTestMember()
			require.NoError(t, err)

			for i := 0; i < 3; i++ {
				_, err := fixtures.CreateTestLink(owner.ID)
				require.NoError(t, err)
			}

			page := &dto.PaginationRequest{Page: 1, PageSize: 2}
			result, err := flow.ListLinks(ctx, owner.ID, page)
			require.NoError(t, err)
			assert.Len(t, result.Links, 2)
			assert.Equal(t, int64(3), result.Total)
		})

		return nil
	})
	require.NoError(t, err)
}
