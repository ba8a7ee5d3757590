// Package businessflow contains the core business logic and use cases for campus workflows
package businessflow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/campushq/campus-hub/app/dto"
	"github.com/campushq/campus-hub/app/services"
	"github.com/campushq/campus-hub/app/tasks"
	"github.com/campushq/campus-hub/config"
	"github.com/campushq/campus-hub/models"
	"github.com/campushq/campus-hub/repository"
	"github.com/campushq/campus-hub/utils"
	"github.com/redis/go-redis/v9"
	qrcode "github.com/skip2/go-qrcode"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

const uidCollisionRetries = 5

// LinkFlow handles link shortening, resolution, and analytics
type LinkFlow interface {
	CreateLink(ctx context.Context, memberID uint, req *dto.CreateLinkRequest, metadata *ClientMetadata) (*dto.CreateLinkResponse, error)
	ListLinks(ctx context.Context, memberID uint, page *dto.PaginationRequest) (*dto.ListLinksResponse, error)
	// Visit resolves a short link UID to its target URL and records the
	// visit through the task dispatcher so redirects stay fast.
	Visit(ctx context.Context, uid string, ip string, userAgent *string) (string, error)
	Stats(ctx context.Context, memberID, linkID uint) (*dto.LinkStatsResponse, error)
	OwnerStats(ctx context.Context, memberID uint) (*dto.OwnerStatsResponse, error)
	GenerateQRCode(ctx context.Context, memberID, linkID uint) (*dto.GenerateQRCodeResponse, error)
	ExportStatsXLSX(ctx context.Context, memberID uint) ([]byte, string, error)
	DeactivateLink(ctx context.Context, memberID, linkID uint) error
}

// LinkFlowImpl implements the link business flow
type LinkFlowImpl struct {
	linkRepo   repository.LinkRepository
	visitRepo  repository.LinkVisitRepository
	auditRepo  repository.AuditLogRepository
	dispatcher tasks.Dispatcher
	storage    services.FileStorage
	schoolCfg  config.SchoolConfig
	cacheCfg   *config.CacheConfig
	rc         *redis.Client
	db         *gorm.DB
}

// NewLinkFlow creates a new link flow instance
func NewLinkFlow(
	linkRepo repository.LinkRepository,
	visitRepo repository.LinkVisitRepository,
	auditRepo repository.AuditLogRepository,
	dispatcher tasks.Dispatcher,
	storage services.FileStorage,
	schoolCfg config.SchoolConfig,
	cacheCfg *config.CacheConfig,
	rc *redis.Client,
	db *gorm.DB,
) LinkFlow {
	return &LinkFlowImpl{
		linkRepo:   linkRepo,
		visitRepo:  visitRepo,
		auditRepo:  auditRepo,
		dispatcher: dispatcher,
		storage:    storage,
		schoolCfg:  schoolCfg,
		cacheCfg:   cacheCfg,
		rc:         rc,
		db:         db,
	}
}

// CreateLink shortens a URL under a fresh UID
func (f *LinkFlowImpl) CreateLink(ctx context.Context, memberID uint, req *dto.CreateLinkRequest, metadata *ClientMetadata) (*dto.CreateLinkResponse, error) {
	var link *models.Link

	err := repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		uid, err := f.uniqueUID(txCtx)
		if err != nil {
			return err
		}

		shortURL, err := utils.PrepareURL(fmt.Sprintf("%s/s/%s", f.schoolCfg.BaseURL, uid), nil)
		if err != nil {
			return err
		}

		link = &models.Link{
			UID:       uid,
			OwnerID:   memberID,
			TargetURL: req.TargetURL,
			ShortURL:  shortURL,
			Title:     req.Title,
			IsActive:  utils.ToPtr(true),
		}

		return f.linkRepo.Save(txCtx, link)
	})

	if err != nil {
		return nil, NewBusinessError("CREATE_LINK_FAILED", "Failed to create link", err)
	}

	msg := fmt.Sprintf("Link created: %s", link.UID)
	_ = f.createAuditLog(ctx, memberID, models.AuditActionLinkCreated, msg, true, nil, metadata)

	return &dto.CreateLinkResponse{
		Message: "Link created successfully",
		Link:    f.toLinkDTO(link),
	}, nil
}

// ListLinks returns a page of the member's links
func (f *LinkFlowImpl) ListLinks(ctx context.Context, memberID uint, page *dto.PaginationRequest) (*dto.ListLinksResponse, error) {
	page.Normalize()

	links, err := f.linkRepo.ListByOwner(ctx, memberID, page.PageSize, page.Offset())
	if err != nil {
		return nil, NewBusinessError("LIST_LINKS_FAILED", "Failed to list links", err)
	}

	total, err := f.linkRepo.Count(ctx, models.LinkFilter{OwnerID: &memberID})
	if err != nil {
		return nil, NewBusinessError("LIST_LINKS_FAILED", "Failed to count links", err)
	}

	out := make([]dto.LinkDTO, 0, len(links))
	for _, link := range links {
		out = append(out, f.toLinkDTO(link))
	}

	return &dto.ListLinksResponse{Links: out, Total: total}, nil
}

// Visit resolves the UID and schedules visit recording off the request path
func (f *LinkFlowImpl) Visit(ctx context.Context, uid string, ip string, userAgent *string) (string, error) {
	link, err := f.linkRepo.ByUID(ctx, uid)
	if err != nil {
		return "", NewBusinessError("LINK_LOOKUP_FAILED", "Failed to lookup link", err)
	}
	if link == nil {
		return "", ErrLinkNotFound
	}
	if !utils.IsTrue(link.IsActive) {
		return "", ErrLinkInactive
	}

	linkID := link.ID
	if err := f.dispatcher.Dispatch(ctx, "record_link_visit", func(taskCtx context.Context) error {
		return f.visitRepo.RecordVisit(taskCtx, linkID, ip, userAgent)
	}); err != nil {
		return "", NewBusinessError("LINK_TRACK_FAILED", "Failed to track link visit", err)
	}

	return link.TargetURL, nil
}

// Stats returns aggregated and per-visitor stats for a member's link
func (f *LinkFlowImpl) Stats(ctx context.Context, memberID, linkID uint) (*dto.LinkStatsResponse, error) {
	link, err := f.ownedLink(ctx, memberID, linkID)
	if err != nil {
		return nil, err
	}

	stats, err := f.visitRepo.StatsByLink(ctx, link.ID)
	if err != nil {
		return nil, NewBusinessError("LINK_STATS_FAILED", "Failed to aggregate link stats", err)
	}

	visits, err := f.visitRepo.ListByLink(ctx, link.ID, 100, 0)
	if err != nil {
		return nil, NewBusinessError("LINK_STATS_FAILED", "Failed to list link visits", err)
	}

	visitDTOs := make([]dto.LinkVisitDTO, 0, len(visits))
	for _, v := range visits {
		visitDTOs = append(visitDTOs, dto.LinkVisitDTO{
			IP:             v.IP,
			UserAgent:      v.UserAgent,
			VisitCount:     v.VisitCount,
			FirstVisitedAt: v.FirstVisitedAt,
			LastVisitedAt:  v.LastVisitedAt,
		})
	}

	return &dto.LinkStatsResponse{
		Stats:  toLinkStatsDTO(stats),
		Visits: visitDTOs,
	}, nil
}

// OwnerStats returns visit stats for every link of the member. Results are
// cached in redis for the configured TTL since the aggregation scans all visits.
func (f *LinkFlowImpl) OwnerStats(ctx context.Context, memberID uint) (*dto.OwnerStatsResponse, error) {
	cacheKey := f.ownerStatsCacheKey(memberID)

	if f.cacheEnabled() {
		if bs, err := f.rc.Get(ctx, cacheKey).Bytes(); err == nil && len(bs) > 0 {
			var cached dto.OwnerStatsResponse
			if err := json.Unmarshal(bs, &cached); err == nil {
				return &cached, nil
			}
		}
	}

	stats, err := f.visitRepo.StatsByOwner(ctx, memberID)
	if err != nil {
		return nil, NewBusinessError("LINK_STATS_FAILED", "Failed to aggregate owner stats", err)
	}

	out := make([]dto.LinkStatsDTO, 0, len(stats))
	for _, s := range stats {
		out = append(out, toLinkStatsDTO(s))
	}

	resp := &dto.OwnerStatsResponse{Stats: out}

	if f.cacheEnabled() {
		if bs, err := json.Marshal(resp); err == nil {
			_ = f.rc.Set(ctx, cacheKey, bs, f.cacheCfg.DefaultTTL).Err()
		}
	}

	return resp, nil
}

// GenerateQRCode renders the short URL as a PNG, stores it, and attaches it
// to the link. Repeated calls reuse the stored file.
func (f *LinkFlowImpl) GenerateQRCode(ctx context.Context, memberID, linkID uint) (*dto.GenerateQRCodeResponse, error) {
	link, err := f.ownedLink(ctx, memberID, linkID)
	if err != nil {
		return nil, err
	}

	if link.QRCodeFile != nil && f.storage.Exists(*link.QRCodeFile) {
		return &dto.GenerateQRCodeResponse{
			Message:   "QR code already generated",
			QRCodeURL: f.storage.PublicURL(*link.QRCodeFile),
		}, nil
	}

	png, err := qrcode.Encode(link.ShortURL, qrcode.Medium, 256)
	if err != nil {
		return nil, NewBusinessError("QR_GENERATION_FAILED", "Failed to render QR code", err)
	}

	filename := utils.UniqueFilename("qrcode", ".png")
	if err := f.storage.Save(filename, png); err != nil {
		return nil, NewBusinessError("QR_GENERATION_FAILED", "Failed to store QR code", err)
	}

	if err := f.linkRepo.UpdateQRCodeFile(ctx, link.ID, filename); err != nil {
		return nil, NewBusinessError("QR_GENERATION_FAILED", "Failed to attach QR code to link", err)
	}

	return &dto.GenerateQRCodeResponse{
		Message:   "QR code generated successfully",
		QRCodeURL: f.storage.PublicURL(filename),
	}, nil
}

// ExportStatsXLSX builds a spreadsheet of the member's link stats
func (f *LinkFlowImpl) ExportStatsXLSX(ctx context.Context, memberID uint) ([]byte, string, error) {
	stats, err := f.visitRepo.StatsByOwner(ctx, memberID)
	if err != nil {
		return nil, "", NewBusinessError("LINK_EXPORT_FAILED", "Failed to aggregate owner stats", err)
	}

	file := excelize.NewFile()
	defer file.Close()

	sheet := "Link Stats"
	if err := file.SetSheetName("Sheet1", sheet); err != nil {
		return nil, "", NewBusinessError("LINK_EXPORT_FAILED", "Failed to build spreadsheet", err)
	}

	headers := []string{"UID", "Target URL", "Total Visits", "Unique Visitors"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := file.SetCellValue(sheet, cell, h); err != nil {
			return nil, "", NewBusinessError("LINK_EXPORT_FAILED", "Failed to build spreadsheet", err)
		}
	}

	for row, s := range stats {
		values := []any{s.UID, s.TargetURL, s.TotalVisits, s.UniqueVisitors}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := file.SetCellValue(sheet, cell, v); err != nil {
				return nil, "", NewBusinessError("LINK_EXPORT_FAILED", "Failed to build spreadsheet", err)
			}
		}
	}

	var buf bytes.Buffer
	if err := file.Write(&buf); err != nil {
		return nil, "", NewBusinessError("LINK_EXPORT_FAILED", "Failed to serialize spreadsheet", err)
	}

	filename := utils.UniqueFilename("link-stats", ".xlsx")
	return buf.Bytes(), filename, nil
}

// DeactivateLink disables a member's link
func (f *LinkFlowImpl) DeactivateLink(ctx context.Context, memberID, linkID uint) error {
	link, err := f.ownedLink(ctx, memberID, linkID)
	if err != nil {
		return err
	}

	if err := f.linkRepo.Deactivate(ctx, link.ID); err != nil {
		return NewBusinessError("DEACTIVATE_LINK_FAILED", "Failed to deactivate link", err)
	}

	return nil
}

// Private helper methods

func (f *LinkFlowImpl) cacheEnabled() bool {
	return f.rc != nil && f.cacheCfg != nil && f.cacheCfg.Enabled
}

func (f *LinkFlowImpl) ownerStatsCacheKey(memberID uint) string {
	prefix := "campus-hub"
	if f.cacheCfg != nil && f.cacheCfg.RedisPrefix != "" {
		prefix = f.cacheCfg.RedisPrefix
	}
	return fmt.Sprintf("%s:link-stats:owner:%d", prefix, memberID)
}

func (f *LinkFlowImpl) uniqueUID(ctx context.Context) (string, error) {
	for i := 0; i < uidCollisionRetries; i++ {
		uid, err := utils.RandomUID(utils.LinkUIDLength)
		if err != nil {
			return "", err
		}

		exists, err := f.linkRepo.Exists(ctx, models.LinkFilter{UID: &uid})
		if err != nil {
			return "", err
		}
		if !exists {
			return uid, nil
		}
	}

	return "", fmt.Errorf("failed to generate unique link UID after %d attempts", uidCollisionRetries)
}

func (f *LinkFlowImpl) ownedLink(ctx context.Context, memberID, linkID uint) (*models.Link, error) {
	link, err := f.linkRepo.ByID(ctx, linkID)
	if err != nil {
		return nil, NewBusinessError("LINK_LOOKUP_FAILED", "Failed to lookup link", err)
	}
	if link == nil {
		return nil, ErrLinkNotFound
	}
	if link.OwnerID != memberID {
		return nil, ErrLinkAccessDenied
	}

	return link, nil
}

func (f *LinkFlowImpl) toLinkDTO(link *models.Link) dto.LinkDTO {
	out := dto.LinkDTO{
		ID:        link.ID,
		UID:       link.UID,
		TargetURL: link.TargetURL,
		ShortURL:  link.ShortURL,
		Title:     link.Title,
		IsActive:  link.IsActive,
		CreatedAt: link.CreatedAt,
	}
	if link.QRCodeFile != nil {
		out.QRCodeURL = utils.ToPtr(f.storage.PublicURL(*link.QRCodeFile))
	}

	return out
}

func toLinkStatsDTO(s *models.LinkStats) dto.LinkStatsDTO {
	return dto.LinkStatsDTO{
		LinkID:         s.LinkID,
		UID:            s.UID,
		TargetURL:      s.TargetURL,
		TotalVisits:    s.TotalVisits,
		UniqueVisitors: s.UniqueVisitors,
	}
}

func (f *LinkFlowImpl) createAuditLog(ctx context.Context, memberID uint, action, description string, success bool, errorMsg *string, metadata *ClientMetadata) error {
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
