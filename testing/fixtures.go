// Package testing provides test utilities and database setup for testing the campus hub backend
package testing

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	mathrand "math/rand"
	"time"

	"github.com/campushq/campus-hub/models"
	"github.com/campushq/campus-hub/utils"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// CreateTestMajor creates a major with a unique name
func (tf *TestFixtures) CreateTestMajor(name string) (*models.Major, error) {
	if name == "" {
		name = fmt.Sprintf("Computer Science %d", mathrand.Intn(100000))
	}

	major := &models.Major{Name: name}
	if err := tf.DB.DB.Create(major).Error; err != nil {
		return nil, fmt.Errorf("failed to create test major: %w", err)
	}

	return major, nil
}

// CreateTestMember creates an active member with a school domain email
func (tf *TestFixtures) CreateTestMember() (*models.Member, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("TestPass123!"), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	member := &models.Member{
		UUID:         uuid.New(),
		FirstName:    "Jordan",
		LastName:     "Doe",
		Email:        fmt.Sprintf("jordan.doe.%d@student.campus.edu", mathrand.Intn(100000000)),
		PasswordHash: string(hashedPassword),
		IsAdmin:      utils.ToPtr(false),
		IsActive:     utils.ToPtr(true),
	}

	if err := tf.DB.DB.Create(member).Error; err != nil {
		return nil, fmt.Errorf("failed to create test member: %w", err)
	}

	return member, nil
}

// CreateTestAdmin creates a member with the admin flag set
func (tf *TestFixtures) CreateTestAdmin() (*models.Member, error) {
	member, err := tf.CreateTestMember()
	if err != nil {
		return nil, err
	}

	member.IsAdmin = utils.ToPtr(true)
	if err := tf.DB.DB.Save(member).Error; err != nil {
		return nil, fmt.Errorf("failed to promote test member: %w", err)
	}

	return member, nil
}

func GenerateSecureToken(length int) (string, error) {
	b := make([]byte, length)
	_, err := rand.Read(b)
	if err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// CreateTestSession creates a test member session
func (tf *TestFixtures) CreateTestSession(memberID uint) (*models.MemberSession, error) {
	sessionToken, err := GenerateSecureToken(32)
	if err != nil {
		return nil, fmt.Errorf("failed to generate secure session token: %w", err)
	}

	refreshToken, err := GenerateSecureToken(32)
	if err != nil {
		return nil, fmt.Errorf("failed to generate secure refresh token: %w", err)
	}

	ipAddress := "127.0.0.1"
	userAgent := "Test User Agent"

	session := &models.MemberSession{
		CorrelationID: uuid.New(), // Generate new UUID for correlation
		MemberID:      memberID,
		SessionToken:  sessionToken,
		RefreshToken:  &refreshToken,
		ExpiresAt:     time.Now().Add(24 * time.Hour),
		IsActive:      utils.ToPtr(true),
		IPAddress:     &ipAddress,
		UserAgent:     &userAgent,
	}

	if err := tf.DB.DB.Create(session).Error; err != nil {
		return nil, fmt.Errorf("failed to create test session: %w", err)
	}

	return session, nil
}

// CreateTestLink creates an active link owned by the member
func (tf *TestFixtures) CreateTestLink(ownerID uint) (*models.Link, error) {
	uid, err := utils.RandomUID(utils.LinkUIDLength)
	if err != nil {
		return nil, fmt.Errorf("failed to generate link uid: %w", err)
	}

	link := &models.Link{
		UID:       uid,
		OwnerID:   ownerID,
		TargetURL: "https://example.com/orientation",
		ShortURL:  "https://campus.edu/s/" + uid,
		IsActive:  utils.ToPtr(true),
	}

	if err := tf.DB.DB.Create(link).Error; err != nil {
		return nil, fmt.Errorf("failed to create test link: %w", err)
	}

	return link, nil
}

// CreateTestClub creates an active club and its owner membership
func (tf *TestFixtures) CreateTestClub(ownerID uint) (*models.Club, error) {
	club := &models.Club{
		Name:     fmt.Sprintf("Robotics Club %d", mathrand.Intn(100000)),
		OwnerID:  ownerID,
		IsActive: utils.ToPtr(true),
	}

	if err := tf.DB.DB.Create(club).Error; err != nil {
		return nil, fmt.Errorf("failed to create test club: %w", err)
	}

	membership := &models.ClubMembership{
		ClubID:   club.ID,
		MemberID: ownerID,
		Role:     models.ClubRoleOwner,
	}
	if err := tf.DB.DB.Create(membership).Error; err != nil {
		return nil, fmt.Errorf("failed to create owner membership: %w", err)
	}

	return club, nil
}

// CreateTestPoll creates an open poll with the given option labels
func (tf *TestFixtures) CreateTestPoll(creatorID uint, options ...string) (*models.Poll, error) {
	if len(options) == 0 {
		options = []string{"Yes", "No"}
	}

	poll := &models.Poll{
		Question:  "Should the library stay open later?",
		CreatorID: creatorID,
		Status:    models.PollStatusOpen,
	}

	if err := tf.DB.DB.Create(poll).Error; err != nil {
		return nil, fmt.Errorf("failed to create test poll: %w", err)
	}

	for i, label := range options {
		option := &models.PollOption{
			PollID:   poll.ID,
			Text:     label,
			Position: i,
		}
		if err := tf.DB.DB.Create(option).Error; err != nil {
			return nil, fmt.Errorf("failed to create poll option %q: %w", label, err)
		}
		poll.Options = append(poll.Options, *option)
	}

	return poll, nil
}

// CreateTestEvent creates an upcoming event hosted by the club
func (tf *TestFixtures) CreateTestEvent(clubID, creatorID uint, capacity *int) (*models.Event, error) {
	location := "Main Hall"
	event := &models.Event{
		ClubID:    clubID,
		CreatorID: creatorID,
		Title:     "Welcome Mixer",
		Location:  &location,
		StartsAt:  utils.UTCNow().Add(48 * time.Hour),
		Capacity:  capacity,
	}

	if err := tf.DB.DB.Create(event).Error; err != nil {
		return nil, fmt.Errorf("failed to create test event: %w", err)
	}

	return event, nil
}

// CreateTestAuditLog creates a test audit log entry
func (tf *TestFixtures) CreateTestAuditLog(memberID *uint, action string, success bool) (*models.AuditLog, error) {
	description := fmt.Sprintf("Test %s action", action)
	ipAddress := "127.0.0.1"
	userAgent := "Test User Agent"

	audit := &models.AuditLog{
		MemberID:    memberID,
		Action:      action,
		Description: &description,
		Success:     &success,
		IPAddress:   &ipAddress,
		UserAgent:   &userAgent,
	}

	if !success {
		errorMessage := "Test failed action"
		audit.ErrorMessage = &errorMessage
	}

	if err := tf.DB.DB.Create(audit).Error; err != nil {
		return nil, fmt.Errorf("failed to create test audit log: %w", err)
	}

	return audit, nil
}
