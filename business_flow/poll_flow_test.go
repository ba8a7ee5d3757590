package businessflow_test

import (
	"context"
	"testing"
	"time"

	"github.com/campushq/campus-hub/app/dto"
	businessflow "github.com/campushq/campus-hub/business_flow"
	"github.com/campushq/campus-hub/repository"
	testingutil "github.com/campushq/campus-hub/testing"
	"github.com/campushq/campus-hub/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPollFlow(testDB *testingutil.TestDB) businessflow.PollFlow {
	return businessflow.NewPollFlow(
		repository.NewPollRepository(testDB.DB),
		repository.NewClubRepository(testDB.DB),
		repository.NewAuditLogRepository(testDB.DB),
		nil,
		nil,
		testDB.DB,
	)
}

func TestPollFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		flow := newPollFlow(testDB)
		ctx := context.Background()

		creator, err := fixtures.CreateTestMember()
		require.NoError(t, err)

		t.Run("CreatePoll", func(t *testing.T) {
			req := &dto.CreatePollRequest{
				Question: "Where should the spring picnic happen?",
				Options:  []string{"Riverside", "Quad", "Rooftop"},
			}
			result, err := flow.CreatePoll(ctx, creator.ID, req, businessflow.NewClientMetadata("127.0.0.1", "test-agent"))
			require.NoError(t, err)
			require.Len(t, result.Poll.Options, 3)
			assert.Equal(t, "Riverside", result.Poll.Options[0].Text)
		})

		t.Run("PastDeadlineRejected", func(t *testing.T) {
			closesAt := utils.UTCNow().Add(-time.Hour)
			req := &dto.CreatePollRequest{
				Question: "Expired?",
				Options:  []string{"Yes", "No"},
				ClosesAt: &closesAt,
			}
			_, err := flow.CreatePoll(ctx, creator.ID, req, nil)
			require.Error(t, err)
		})

		t.Run("SingleVotePerMember", func(t *testing.T) {
			poll, err := fixtures.CreateTestPoll(creator.ID, "Yes", "No")
			require.NoError(t, err)

			voter, err := fixtures.CreateTestMember()
			require.NoError(t, err)

			_, err = flow.Vote(ctx, voter.ID, poll.ID, &dto.VoteRequest{OptionID: poll.Options[0].ID})
			require.NoError(t, err)

			// Second vote is rejected, not replaced
			_, err = flow.Vote(ctx, voter.ID, poll.ID, &dto.VoteRequest{OptionID: poll.Options[1].ID})
			require.Error(t, err)
			assert.True(t, businessflow.IsAlreadyVoted(err))
		})

		t.Run("UnknownOptionRejected", func(t *testing.T) {
			poll, err := fixtures.CreateTestPoll(creator.ID)
			require.NoError(t, err)

			voter, err := fixtures.CreateTestMember()
			require.NoError(t, err)

			_, err = flow.Vote(ctx, voter.ID, poll.ID, &dto.VoteRequest{OptionID: 999999})
			require.Error(t, err)
			assert.True(t, businessflow.IsPollOptionNotFound(err))
		})

		t.Run("ResultsTallyVotes", func(t *testing.T) {
			poll, err := fixtures.CreateTestPoll(creator.ID, "Yes", "No")
			require.NoError(t, err)

			for i := 0; i < 2; i++ {
				voter, err := fixtures.CreateTestMember()
				require.NoError(t, err)
				_, err = flow.Vote(ctx, voter.ID, poll.ID, &dto.VoteRequest{OptionID: poll.Options[0].ID})
				require.NoError(t, err)
			}
			voter, err := fixtures.CreateTestMember()
			require.NoError(t, err)
			_, err = flow.Vote(ctx, voter.ID, poll.ID, &dto.VoteRequest{OptionID: poll.Options[1].ID})
			require.NoError(t, err)

			results, err := flow.Results(ctx, poll.ID)
			require.NoError(t, err)
			assert.Equal(t, int64(3), results.Total)
			require.Len(t, results.Results, 2)
			assert.Equal(t, int64(2), results.Results[0].Votes)
			assert.Equal(t, int64(1), results.Results[1].Votes)

			// Repeated reads go through the cache path and must agree
			again, err := flow.Results(ctx, poll.ID)
			require.NoError(t, err)
			assert.Equal(t, results.Total, again.Total)
			assert.Equal(t, results.Results, again.Results)
		})

		t.Run("OnlyCreatorCloses", func(t *testing.T) {
			poll, err := fixtures.CreateTestPoll(creator.ID)
			require.NoError(t, err)

			other, err := fixtures.CreateTestMember()
			require.NoError(t, err)

			_, err = flow.ClosePoll(ctx, other.ID, poll.ID, nil)
			require.Error(t, err)
			assert.True(t, businessflow.IsPollAccessDenied(err))

			_, err = flow.ClosePoll(ctx, creator.ID, poll.ID, nil)
			require.NoError(t, err)

			// Closed polls reject votes
			voter, err := fixtures.CreateTestMember()
			require.NoError(t, err)
			_, err = flow.Vote(ctx, voter.ID, poll.ID, &dto.VoteRequest{OptionID: poll.Options[0].ID})
			require.Error(t, err)
			assert.True(t, businessflow.IsPollClosed(err))
		})

		return nil
	})
	require.NoError(t, err)
}
