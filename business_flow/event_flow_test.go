package businessflow_test

import (
	"context"
	"testing"
	"time"

	"github.com/campushq/campus-hub/app/dto"
	businessflow "github.com/campushq/campus-hub/business_flow"
	"github.com/campushq/campus-hub/models"
	"github.com/campushq/campus-hub/repository"
	testingutil "github.com/campushq/campus-hub/testing"
	"github.com/campushq/campus-hub/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEventFlow(testDB *testingutil.TestDB) businessflow.EventFlow {
	return businessflow.NewEventFlow(
		repository.NewEventRepository(testDB.DB),
		repository.NewClubRepository(testDB.DB),
		repository.NewAuditLogRepository(testDB.DB),
		testDB.DB,
	)
}

func TestEventFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		flow := newEventFlow(testDB)
		ctx := context.Background()

		owner, err := fixtures.CreateTestMember()
		require.NoError(t, err)
		club, err := fixtures.CreateTestClub(owner.ID)
		require.NoError(t, err)

		t.Run("CreateEvent", func(t *testing.T) {
			req := &dto.CreateEventRequest{
				ClubID:   club.ID,
				Title:    "Hack Night",
				StartsAt: utils.UTCNow().Add(24 * time.Hour),
			}
			result, err := flow.CreateEvent(ctx, owner.ID, req, businessflow.NewClientMetadata("127.0.0.1", "test-agent"))
			require.NoError(t, err)
			assert.Equal(t, "Hack Night", result.Event.Title)
		})

		t.Run("PastEventRejected", func(t *testing.T) {
			req := &dto.CreateEventRequest{
				ClubID:   club.ID,
				Title:    "Yesterday's Meetup",
				StartsAt: utils.UTCNow().Add(-time.Hour),
			}
			_, err := flow.CreateEvent(ctx, owner.ID, req, nil)
			require.Error(t, err)
			assert.True(t, businessflow.IsEventInPast(err))
		})

		t.Run("NonManagerCannotCreate", func(t *testing.T) {
			member, err := fixtures.CreateTestMember()
			require.NoError(t, err)

			req := &dto.CreateEventRequest{
				ClubID:   club.ID,
				Title:    "Unauthorized Event",
				StartsAt: utils.UTCNow().Add(24 * time.Hour),
			}
			_, err = flow.CreateEvent(ctx, member.ID, req, nil)
			require.Error(t, err)
			assert.True(t, businessflow.IsClubAccessDenied(err))
		})

		t.Run("RSVPCapacity", func(t *testing.T) {
			capacity := 1
			event, err := fixtures.CreateTestEvent(club.ID, owner.ID, &capacity)
			require.NoError(t, err)

			first, err := fixtures.CreateTestMember()
			require.NoError(t, err)
			second, err := fixtures.CreateTestMember()
			require.NoError(t, err)

			_, err = flow.RSVP(ctx, first.ID, event.ID, &dto.RSVPRequest{Status: models.RSVPStatusGoing})
			require.NoError(t, err)

			// Capacity is exhausted for new attendees
			_, err = flow.RSVP(ctx, second.ID, event.ID, &dto.RSVPRequest{Status: models.RSVPStatusGoing})
			require.Error(t, err)
			assert.True(t, businessflow.IsEventFull(err))

			// A member already going keeps their spot when re-responding
			_, err = flow.RSVP(ctx, first.ID, event.ID, &dto.RSVPRequest{Status: models.RSVPStatusGoing})
			require.NoError(t, err)

			// Declining never needs capacity
			_, err = flow.RSVP(ctx, second.ID, event.ID, &dto.RSVPRequest{Status: models.RSVPStatusDeclined})
			require.NoError(t, err)
		})

		t.Run("RSVPReplacesPreviousStatus", func(t *testing.T) {
			event, err := fixtures.CreateTestEvent(club.ID, owner.ID, nil)
			require.NoError(t, err)

			member, err := fixtures.CreateTestMember()
			require.NoError(t, err)

			_, err = flow.RSVP(ctx, member.ID, event.ID, &dto.RSVPRequest{Status: models.RSVPStatusGoing})
			require.NoError(t, err)

			attendees, err := flow.Attendees(ctx, event.ID)
			require.NoError(t, err)
			require.Len(t, attendees.Attendees, 1)
			assert.Equal(t, member.ID, attendees.Attendees[0].MemberID)

			_, err = flow.RSVP(ctx, member.ID, event.ID, &dto.RSVPRequest{Status: models.RSVPStatusDeclined})
			require.NoError(t, err)

			// Declining drops the member off the attendee list
			attendees, err = flow.Attendees(ctx, event.ID)
			require.NoError(t, err)
			assert.Empty(t, attendees.Attendees)
		})

		t.Run("InvalidStatusRejected", func(t *testing.T) {
			event, err := fixtures.CreateTestEvent(club.ID, owner.ID, nil)
			require.NoError(t, err)

			member, err := fixtures.CreateTestMember()
			require.NoError(t, err)

			_, err = flow.RSVP(ctx, member.ID, event.ID, &dto.RSVPRequest{Status: "maybe"})
			require.Error(t, err)
			assert.True(t, businessflow.IsInvalidRSVPStatus(err))
		})

		t.Run("ListUpcomingOrdersByStart", func(t *testing.T) {
			page := &dto.PaginationRequest{Page: 1, PageSize: 50}
			result, err := flow.ListUpcoming(ctx, page)
			require.NoError(t, err)
			require.NotEmpty(t, result.Events)
			for i := 1; i < len(result.Events); i++ {
				assert.False(t, result.Events[i].StartsAt.Before(result.Events[i-1].StartsAt))
			}
		})

		return nil
	})
	require.NoError(t, err)
}
