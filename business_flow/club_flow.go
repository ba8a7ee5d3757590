// Package businessflow contains the core business logic and use cases for campus workflows
package businessflow

import (
	"context"
	"fmt"

	"github.com/campushq/campus-hub/app/dto"
	"github.com/campushq/campus-hub/app/services"
	"github.com/campushq/campus-hub/models"
	"github.com/campushq/campus-hub/repository"
	"github.com/campushq/campus-hub/utils"
	"gorm.io/gorm"
)

// ClubFlow handles club registration and membership
type ClubFlow interface {
	CreateClub(ctx context.Context, memberID uint, req *dto.CreateClubRequest, metadata *ClientMetadata) (*dto.CreateClubResponse, error)
	ListClubs(ctx context.Context, page *dto.PaginationRequest) (*dto.ListClubsResponse, error)
	MyClubs(ctx context.Context, memberID uint) (*dto.ListClubsResponse, error)
	JoinClub(ctx context.Context, memberID, clubID uint) (*dto.JoinClubResponse, error)
	// LeaveClub removes the member from a club. The owner cannot leave
	// their own club.
	LeaveClub(ctx context.Context, memberID, clubID uint) (*dto.LeaveClubResponse, error)
	ClubMembers(ctx context.Context, clubID uint, page *dto.PaginationRequest) (*dto.ClubMembersResponse, error)
	UploadLogo(ctx context.Context, memberID, clubID uint, data []byte, ext string) (*dto.ClubDTO, error)
}

// ClubFlowImpl implements the club business flow
type ClubFlowImpl struct {
	clubRepo  repository.ClubRepository
	auditRepo repository.AuditLogRepository
	storage   services.FileStorage
	db        *gorm.DB
}

// NewClubFlow creates a new club flow instance
func NewClubFlow(
	clubRepo repository.ClubRepository,
	auditRepo repository.AuditLogRepository,
	storage services.FileStorage,
	db *gorm.DB,
) ClubFlow {
	return &ClubFlowImpl{
		clubRepo:  clubRepo,
		auditRepo: auditRepo,
		storage:   storage,
		db:        db,
	}
}

// CreateClub registers a club and enrolls the creator as its owner
func (f *ClubFlowImpl) CreateClub(ctx context.Context, memberID uint, req *dto.CreateClubRequest, metadata *ClientMetadata) (*dto.CreateClubResponse, error) {
	existing, err := f.clubRepo.ByName(ctx, req.Name)
	if err != nil {
		return nil, NewBusinessError("CLUB_LOOKUP_FAILED", "Failed to lookup club", err)
	}
	if existing != nil {
		return nil, ErrClubNameTaken
	}

	club := &models.Club{
		Name:        req.Name,
		Description: req.Description,
		OwnerID:     memberID,
		IsActive:    utils.ToPtr(true),
	}

	err = repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		if err := f.clubRepo.Save(txCtx, club); err != nil {
			return err
		}

		return f.clubRepo.SaveMembership(txCtx, &models.ClubMembership{
			ClubID:   club.ID,
			MemberID: memberID,
			Role:     models.ClubRoleOwner,
		})
	})

	if err != nil {
		if utils.IsUniqueViolation(err) {
			return nil, ErrClubNameTaken
		}
		return nil, NewBusinessError("CREATE_CLUB_FAILED", "Failed to create club", err)
	}

	msg := fmt.Sprintf("Club created: %s", club.Name)
	_ = f.createAuditLog(ctx, memberID, models.AuditActionClubCreated, msg, true, nil, metadata)

	out := f.toClubDTO(club, 1)
	return &dto.CreateClubResponse{
		Message: "Club created successfully",
		Club:    out,
	}, nil
}

// ListClubs returns a page of active clubs with member counts
func (f *ClubFlowImpl) ListClubs(ctx context.Context, page *dto.PaginationRequest) (*dto.ListClubsResponse, error) {
	page.Normalize()

	clubs, err := f.clubRepo.ListActiveClubs(ctx, page.PageSize, page.Offset())
	if err != nil {
		return nil, NewBusinessError("LIST_CLUBS_FAILED", "Failed to list clubs", err)
	}

	total, err := f.clubRepo.Count(ctx, models.ClubFilter{IsActive: utils.ToPtr(true)})
	if err != nil {
		return nil, NewBusinessError("LIST_CLUBS_FAILED", "Failed to count clubs", err)
	}

	out := make([]dto.ClubDTO, 0, len(clubs))
	for _, club := range clubs {
		count, err := f.clubRepo.CountMembers(ctx, club.ID)
		if err != nil {
			return nil, NewBusinessError("LIST_CLUBS_FAILED", "Failed to count club members", err)
		}
		out = append(out, f.toClubDTO(club, count))
	}

	return &dto.ListClubsResponse{Clubs: out, Total: total}, nil
}

// MyClubs returns the clubs the member belongs to
func (f *ClubFlowImpl) MyClubs(ctx context.Context, memberID uint) (*dto.ListClubsResponse, error) {
	clubs, err := f.clubRepo.ListClubsByMember(ctx, memberID)
	if err != nil {
		return nil, NewBusinessError("LIST_CLUBS_FAILED", "Failed to list clubs", err)
	}

	out := make([]dto.ClubDTO, 0, len(clubs))
	for _, club := range clubs {
		count, err := f.clubRepo.CountMembers(ctx, club.ID)
		if err != nil {
			return nil, NewBusinessError("LIST_CLUBS_FAILED", "Failed to count club members", err)
		}
		out = append(out, f.toClubDTO(club, count))
	}

	return &dto.ListClubsResponse{Clubs: out, Total: int64(len(out))}, nil
}

// JoinClub enrolls the member in an active club
func (f *ClubFlowImpl) JoinClub(ctx context.Context, memberID, clubID uint) (*dto.JoinClubResponse, error) {
	club, err := f.activeClub(ctx, clubID)
	if err != nil {
		return nil, err
	}

	membership, err := f.clubRepo.MembershipByClubAndMember(ctx, club.ID, memberID)
	if err != nil {
		return nil, NewBusinessError("JOIN_CLUB_FAILED", "Failed to lookup club membership", err)
	}
	if membership != nil {
		return nil, ErrAlreadyMember
	}

	err = f.clubRepo.SaveMembership(ctx, &models.ClubMembership{
		ClubID:   club.ID,
		MemberID: memberID,
		Role:     models.ClubRoleMember,
	})
	if err != nil {
		if utils.IsUniqueViolation(err) {
			return nil, ErrAlreadyMember
		}
		return nil, NewBusinessError("JOIN_CLUB_FAILED", "Failed to join club", err)
	}

	return &dto.JoinClubResponse{Message: "Joined club successfully"}, nil
}

// LeaveClub removes the member's enrollment
func (f *ClubFlowImpl) LeaveClub(ctx context.Context, memberID, clubID uint) (*dto.LeaveClubResponse, error) {
	club, err := f.clubRepo.ByID(ctx, clubID)
	if err != nil {
		return nil, NewBusinessError("CLUB_LOOKUP_FAILED", "Failed to lookup club", err)
	}
	if club == nil {
		return nil, ErrClubNotFound
	}

	membership, err := f.clubRepo.MembershipByClubAndMember(ctx, club.ID, memberID)
	if err != nil {
		return nil, NewBusinessError("LEAVE_CLUB_FAILED", "Failed to lookup club membership", err)
	}
	if membership == nil {
		return nil, ErrNotClubMember
	}
	if membership.Role == models.ClubRoleOwner {
		return nil, ErrOwnerCannotLeave
	}

	if err := f.clubRepo.RemoveMembership(ctx, club.ID, memberID); err != nil {
		return nil, NewBusinessError("LEAVE_CLUB_FAILED", "Failed to leave club", err)
	}

	return &dto.LeaveClubResponse{Message: "Left club successfully"}, nil
}

// ClubMembers returns a page of the club's roster
func (f *ClubFlowImpl) ClubMembers(ctx context.Context, clubID uint, page *dto.PaginationRequest) (*dto.ClubMembersResponse, error) {
	page.Normalize()

	club, err := f.clubRepo.ByID(ctx, clubID)
	if err != nil {
		return nil, NewBusinessError("CLUB_LOOKUP_FAILED", "Failed to lookup club", err)
	}
	if club == nil {
		return nil, ErrClubNotFound
	}

	memberships, err := f.clubRepo.ListMemberships(ctx, club.ID, page.PageSize, page.Offset())
	if err != nil {
		return nil, NewBusinessError("CLUB_MEMBERS_FAILED", "Failed to list club members", err)
	}

	total, err := f.clubRepo.CountMembers(ctx, club.ID)
	if err != nil {
		return nil, NewBusinessError("CLUB_MEMBERS_FAILED", "Failed to count club members", err)
	}

	out := make([]dto.ClubMemberDTO, 0, len(memberships))
	for _, m := range memberships {
		out = append(out, dto.ClubMemberDTO{
			MemberID:  m.MemberID,
			FirstName: m.Member.FirstName,
			LastName:  m.Member.LastName,
			Role:      m.Role,
			JoinedAt:  m.JoinedAt,
		})
	}

	return &dto.ClubMembersResponse{Members: out, Total: total}, nil
}

// UploadLogo stores a club logo. Only managers of the club may upload.
func (f *ClubFlowImpl) UploadLogo(ctx context.Context, memberID, clubID uint, data []byte, ext string) (*dto.ClubDTO, error) {
	club, err := f.clubRepo.ByID(ctx, clubID)
	if err != nil {
		return nil, NewBusinessError("CLUB_LOOKUP_FAILED", "Failed to lookup club", err)
	}
	if club == nil {
		return nil, ErrClubNotFound
	}

	membership, err := f.clubRepo.MembershipByClubAndMember(ctx, club.ID, memberID)
	if err != nil {
		return nil, NewBusinessError("UPLOAD_LOGO_FAILED", "Failed to lookup club membership", err)
	}
	if membership == nil || !membership.CanManage() {
		return nil, ErrClubAccessDenied
	}

	filename := utils.UniqueFilename("club-logo", ext)
	if err := f.storage.Save(filename, data); err != nil {
		return nil, NewBusinessError("UPLOAD_LOGO_FAILED", "Failed to store club logo", err)
	}

	club.LogoFile = &filename
	if err := f.clubRepo.Save(ctx, club); err != nil {
		return nil, NewBusinessError("UPLOAD_LOGO_FAILED", "Failed to attach logo to club", err)
	}

	count, err := f.clubRepo.CountMembers(ctx, club.ID)
	if err != nil {
		return nil, NewBusinessError("UPLOAD_LOGO_FAILED", "Failed to count club members", err)
	}

	out := f.toClubDTO(club, count)
	return &out, nil
}

// Private helper methods

func (f *ClubFlowImpl) activeClub(ctx context.Context, clubID uint) (*models.Club, error) {
	club, err := f.clubRepo.ByID(ctx, clubID)
	if err != nil {
		return nil, NewBusinessError("CLUB_LOOKUP_FAILED", "Failed to lookup club", err)
	}
	if club == nil {
		return nil, ErrClubNotFound
	}
	if !utils.IsTrue(club.IsActive) {
		return nil, ErrClubInactive
	}

	return club, nil
}

func (f *ClubFlowImpl) toClubDTO(club *models.Club, memberCount int64) dto.ClubDTO {
	out := dto.ClubDTO{
		ID:          club.ID,
		Name:        club.Name,
		Description: club.Description,
		OwnerID:     club.OwnerID,
		IsActive:    club.IsActive,
		MemberCount: memberCount,
		CreatedAt:   club.CreatedAt,
	}
	if club.LogoFile != nil {
		out.LogoURL = utils.ToPtr(f.storage.PublicURL(*club.LogoFile))
	}

	return out
}

func (f *ClubFlowImpl) createAuditLog(ctx context.Context, memberID uint, action, description string, success bool, errorMsg *string, metadata *ClientMetadata) error {
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
