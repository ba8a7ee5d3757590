package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/campushq/campus-hub/config"
	"github.com/campushq/campus-hub/models"
	"github.com/campushq/campus-hub/repository"
	testingutil "github.com/campushq/campus-hub/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	mu    sync.Mutex
	calls []string
}

func (r *recordingSender) SendEmail(email, subject, message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, email)
	return nil
}

func (r *recordingSender) sentTo() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.calls))
	copy(out, r.calls)
	return out
}

func TestEventReminderScheduler(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		eventRepo := repository.NewEventRepository(testDB.DB)
		ctx := context.Background()

		owner, err := fixtures.CreateTestMember()
		require.NoError(t, err)
		club, err := fixtures.CreateTestClub(owner.ID)
		require.NoError(t, err)

		// Starts in 48h, so a 72h window picks it up
		event, err := fixtures.CreateTestEvent(club.ID, owner.ID, nil)
		require.NoError(t, err)

		attendee, err := fixtures.CreateTestMember()
		require.NoError(t, err)
		decliner, err := fixtures.CreateTestMember()
		require.NoError(t, err)

		require.NoError(t, eventRepo.UpsertRSVP(ctx, &models.EventRSVP{
			EventID: event.ID, MemberID: attendee.ID, Status: models.RSVPStatusGoing,
		}))
		require.NoError(t, eventRepo.UpsertRSVP(ctx, &models.EventRSVP{
			EventID: event.ID, MemberID: decliner.ID, Status: models.RSVPStatusDeclined,
		}))

		sender := &recordingSender{}
		sched := NewEventReminderScheduler(eventRepo, sender, config.SchedulerConfig{
			EventReminderInterval: time.Minute,
			EventReminderWindow:   72 * time.Hour,
		})

		t.Run("RemindsGoingMembersOnly", func(t *testing.T) {
			sched.runOnce(ctx)

			sent := sender.sentTo()
			require.Len(t, sent, 1)
			assert.Equal(t, attendee.Email, sent[0])
		})

		t.Run("DoesNotRemindTwice", func(t *testing.T) {
			sched.runOnce(ctx)
			assert.Len(t, sender.sentTo(), 1)
		})

		t.Run("SkipsEventsOutsideWindow", func(t *testing.T) {
			farOut, err := fixtures.CreateTestEvent(club.ID, owner.ID, nil)
			require.NoError(t, err)
			farStart := time.Now().UTC().Add(200 * time.Hour)
			require.NoError(t, testDB.DB.Model(&models.Event{}).
				Where("id = ?", farOut.ID).
				Update("starts_at", farStart).Error)

			require.NoError(t, eventRepo.UpsertRSVP(ctx, &models.EventRSVP{
				EventID: farOut.ID, MemberID: attendee.ID, Status: models.RSVPStatusGoing,
			}))

			sched.runOnce(ctx)
			assert.Len(t, sender.sentTo(), 1)
		})

		return nil
	})
	require.NoError(t, err)
}
