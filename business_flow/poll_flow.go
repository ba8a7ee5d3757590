// Package businessflow contains the core business logic and use cases for campus workflows
package businessflow

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/campushq/campus-hub/app/dto"
	"github.com/campushq/campus-hub/config"
	"github.com/campushq/campus-hub/models"
	"github.com/campushq/campus-hub/repository"
	"github.com/campushq/campus-hub/utils"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// PollFlow handles poll creation, voting, and result tallying
type PollFlow interface {
	CreatePoll(ctx context.Context, memberID uint, req *dto.CreatePollRequest, metadata *ClientMetadata) (*dto.CreatePollResponse, error)
	ListPolls(ctx context.Context, page *dto.PaginationRequest) (*dto.ListPollsResponse, error)
	// Vote records a single vote per member per poll. A second vote from
	// the same member is rejected, not replaced.
	Vote(ctx context.Context, memberID, pollID uint, req *dto.VoteRequest) (*dto.VoteResponse, error)
	Results(ctx context.Context, pollID uint) (*dto.PollResultsResponse, error)
	ClosePoll(ctx context.Context, memberID, pollID uint, metadata *ClientMetadata) (*dto.ClosePollResponse, error)
}

// PollFlowImpl implements the poll business flow
type PollFlowImpl struct {
	pollRepo  repository.PollRepository
	clubRepo  repository.ClubRepository
	auditRepo repository.AuditLogRepository
	cacheCfg  *config.CacheConfig
	rc        *redis.Client
	db        *gorm.DB
}

// NewPollFlow creates a new poll flow instance
func NewPollFlow(
	pollRepo repository.PollRepository,
	clubRepo repository.ClubRepository,
	auditRepo repository.AuditLogRepository,
	cacheCfg *config.CacheConfig,
	rc *redis.Client,
	db *gorm.DB,
) PollFlow {
	return &PollFlowImpl{
		pollRepo:  pollRepo,
		clubRepo:  clubRepo,
		auditRepo: auditRepo,
		cacheCfg:  cacheCfg,
		rc:        rc,
		db:        db,
	}
}

// CreatePoll creates a poll with its options in one transaction
func (f *PollFlowImpl) CreatePoll(ctx context.Context, memberID uint, req *dto.CreatePollRequest, metadata *ClientMetadata) (*dto.CreatePollResponse, error) {
	if req.ClosesAt != nil && req.ClosesAt.Before(utils.UTCNow()) {
		return nil, NewBusinessError("CREATE_POLL_FAILED", "Poll closing time must be in the future", nil)
	}

	if req.ClubID != nil {
		club, err := f.clubRepo.ByID(ctx, *req.ClubID)
		if err != nil {
			return nil, NewBusinessError("CLUB_LOOKUP_FAILED", "Failed to lookup club", err)
		}
		if club == nil {
			return nil, ErrClubNotFound
		}

		membership, err := f.clubRepo.MembershipByClubAndMember(ctx, *req.ClubID, memberID)
		if err != nil {
			return nil, NewBusinessError("CLUB_LOOKUP_FAILED", "Failed to lookup club membership", err)
		}
		if membership == nil {
			return nil, ErrNotClubMember
		}
	}

	poll := &models.Poll{
		Question:  req.Question,
		CreatorID: memberID,
		Status:    models.PollStatusOpen,
		ClubID:    req.ClubID,
		ClosesAt:  req.ClosesAt,
	}

	err := repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		if err := f.pollRepo.Save(txCtx, poll); err != nil {
			return err
		}

		options := make([]*models.PollOption, 0, len(req.Options))
		for i, text := range req.Options {
			options = append(options, &models.PollOption{
				PollID:   poll.ID,
				Text:     text,
				Position: i,
			})
		}
		poll.Options = make([]models.PollOption, 0, len(options))
		for _, opt := range options {
			if err := f.pollRepo.SaveOption(txCtx, opt); err != nil {
				return err
			}
			poll.Options = append(poll.Options, *opt)
		}

		return nil
	})

	if err != nil {
		return nil, NewBusinessError("CREATE_POLL_FAILED", "Failed to create poll", err)
	}

	msg := fmt.Sprintf("Poll created: %d", poll.ID)
	_ = f.createAuditLog(ctx, memberID, models.AuditActionPollCreated, msg, true, nil, metadata)

	return &dto.CreatePollResponse{
		Message: "Poll created successfully",
		Poll:    toPollDTO(poll),
	}, nil
}

// ListPolls returns a page of open polls
func (f *PollFlowImpl) ListPolls(ctx context.Context, page *dto.PaginationRequest) (*dto.ListPollsResponse, error) {
	page.Normalize()

	polls, err := f.pollRepo.ListOpenPolls(ctx, page.PageSize, page.Offset())
	if err != nil {
		return nil, NewBusinessError("LIST_POLLS_FAILED", "Failed to list polls", err)
	}

	status := models.PollStatusOpen
	total, err := f.pollRepo.Count(ctx, models.PollFilter{Status: &status})
	if err != nil {
		return nil, NewBusinessError("LIST_POLLS_FAILED", "Failed to count polls", err)
	}

	out := make([]dto.PollDTO, 0, len(polls))
	for _, poll := range polls {
		out = append(out, toPollDTO(poll))
	}

	return &dto.ListPollsResponse{Polls: out, Total: total}, nil
}

// Vote casts the member's vote on one option of an open poll
func (f *PollFlowImpl) Vote(ctx context.Context, memberID, pollID uint, req *dto.VoteRequest) (*dto.VoteResponse, error) {
	poll, err := f.pollRepo.ByIDWithOptions(ctx, pollID)
	if err != nil {
		return nil, NewBusinessError("POLL_LOOKUP_FAILED", "Failed to lookup poll", err)
	}
	if poll == nil {
		return nil, ErrPollNotFound
	}
	if !poll.IsOpen() {
		return nil, ErrPollClosed
	}
	if poll.ClosesAt != nil && poll.ClosesAt.Before(utils.UTCNow()) {
		return nil, ErrPollClosed
	}

	optionValid := false
	for _, opt := range poll.Options {
		if opt.ID == req.OptionID {
			optionValid = true
			break
		}
	}
	if !optionValid {
		return nil, ErrPollOptionNotFound
	}

	existing, err := f.pollRepo.VoteByPollAndMember(ctx, pollID, memberID)
	if err != nil {
		return nil, NewBusinessError("VOTE_FAILED", "Failed to lookup existing vote", err)
	}
	if existing != nil {
		return nil, ErrAlreadyVoted
	}

	vote := &models.PollVote{
		PollID:   pollID,
		OptionID: req.OptionID,
		MemberID: memberID,
	}
	if err := f.pollRepo.SaveVote(ctx, vote); err != nil {
		// The unique index catches votes racing past the lookup above
		if utils.IsUniqueViolation(err) {
			return nil, ErrAlreadyVoted
		}
		return nil, NewBusinessError("VOTE_FAILED", "Failed to record vote", err)
	}

	return &dto.VoteResponse{Message: "Vote recorded successfully"}, nil
}

// Results tallies votes per option for a poll
func (f *PollFlowImpl) Results(ctx context.Context, pollID uint) (*dto.PollResultsResponse, error) {
	cacheKey := f.resultsCacheKey(pollID)

	if f.cacheEnabled() {
		if bs, err := f.rc.Get(ctx, cacheKey).Bytes(); err == nil && len(bs) > 0 {
			var cached dto.PollResultsResponse
			if err := json.Unmarshal(bs, &cached); err == nil {
				return &cached, nil
			}
		}
	}

	poll, err := f.pollRepo.ByIDWithOptions(ctx, pollID)
	if err != nil {
		return nil, NewBusinessError("POLL_LOOKUP_FAILED", "Failed to lookup poll", err)
	}
	if poll == nil {
		return nil, ErrPollNotFound
	}

	results, err := f.pollRepo.Results(ctx, pollID)
	if err != nil {
		return nil, NewBusinessError("POLL_RESULTS_FAILED", "Failed to tally poll results", err)
	}

	tallies := make([]dto.PollOptionTallyDTO, 0, len(results))
	var total int64
	for _, r := range results {
		tallies = append(tallies, dto.PollOptionTallyDTO{
			OptionID: r.OptionID,
			Text:     r.Text,
			Votes:    r.Votes,
		})
		total += r.Votes
	}

	resp := &dto.PollResultsResponse{
		Poll:    toPollDTO(poll),
		Results: tallies,
		Total:   total,
	}

	// Tallies are TTL-cached, so a fresh vote may lag here briefly
	if f.cacheEnabled() {
		if bs, err := json.Marshal(resp); err == nil {
			_ = f.rc.Set(ctx, cacheKey, bs, f.cacheCfg.DefaultTTL).Err()
		}
	}

	return resp, nil
}

func (f *PollFlowImpl) cacheEnabled() bool {
	return f.rc != nil && f.cacheCfg != nil && f.cacheCfg.Enabled
}

func (f *PollFlowImpl) resultsCacheKey(pollID uint) string {
	prefix := "campus-hub"
	if f.cacheCfg != nil && f.cacheCfg.RedisPrefix != "" {
		prefix = f.cacheCfg.RedisPrefix
	}
	return fmt.Sprintf("%s:poll-results:%d", prefix, pollID)
}

// ClosePoll marks a poll closed. Only the creator may close it.
func (f *PollFlowImpl) ClosePoll(ctx context.Context, memberID, pollID uint, metadata *ClientMetadata) (*dto.ClosePollResponse, error) {
	poll, err := f.pollRepo.ByID(ctx, pollID)
	if err != nil {
		return nil, NewBusinessError("POLL_LOOKUP_FAILED", "Failed to lookup poll", err)
	}
	if poll == nil {
		return nil, ErrPollNotFound
	}
	if poll.CreatorID != memberID {
		return nil, ErrPollAccessDenied
	}
	if !poll.IsOpen() {
		return nil, ErrPollClosed
	}

	if err := f.pollRepo.Close(ctx, pollID); err != nil {
		return nil, NewBusinessError("CLOSE_POLL_FAILED", "Failed to close poll", err)
	}

	msg := fmt.Sprintf("Poll closed: %d", pollID)
	_ = f.createAuditLog(ctx, memberID, models.AuditActionPollClosed, msg, true, nil, metadata)

	return &dto.ClosePollResponse{Message: "Poll closed successfully"}, nil
}

// Private helper methods

func toPollDTO(poll *models.Poll) dto.PollDTO {
	options := make([]dto.PollOptionDTO, 0, len(poll.Options))
	for _, opt := range poll.Options {
		options = append(options, dto.PollOptionDTO{ID: opt.ID, Text: opt.Text})
	}

	return dto.PollDTO{
		ID:        poll.ID,
		Question:  poll.Question,
		CreatorID: poll.CreatorID,
		ClubID:    poll.ClubID,
		Status:    poll.Status,
		ClosesAt:  poll.ClosesAt,
		CreatedAt: poll.CreatedAt,
		Options:   options,
	}
}

func (f *PollFlowImpl) createAuditLog(ctx context.Context, memberID uint, action, description string, success bool, errorMsg *string, metadata *ClientMetadata) error {
	ipAddress := "127.0.0.1"
	userAgent := ""
	if metadata != nil {
		ipAddress = metadata.IPAddress
		userAgent = metadata.UserAgent
	}

	audit := &models.AuditLog{
		MemberID:     &memberID,
		Action:       action,
		Description:  &description,
		Success:      utils.ToPtr(success),
		IPAddress:    &ipAddress,
		UserAgent:    &userAgent,
		ErrorMessage: errorMsg,
	}

	requestID := ctx.Value(RequestIDKey)
	if requestID != nil {
		if requestIDStr, ok := requestID.(string); ok {
			audit.RequestID = &requestIDStr
		}
	}

	return f.auditRepo.Save(ctx, audit)
}
