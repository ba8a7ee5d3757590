package models

import "time"

// Membership roles
const (
	ClubRoleMember  = "member"
	ClubRoleOfficer = "officer"
	ClubRoleOwner   = "owner"
)

type Club struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	Name        string  `gorm:"size:255;not null;uniqueIndex:uk_clubs_name" json:"name"`
	Description *string `gorm:"type:text" json:"description,omitempty"`
	OwnerID     uint    `gorm:"not null;index:idx_clubs_owner_id" json:"owner_id"`
	Owner       Member  `gorm:"foreignKey:OwnerID;references:ID" json:"owner,omitempty"`
	LogoFile    *string `gorm:"size:512" json:"logo_file,omitempty"`
	IsActive    *bool   `gorm:"default:true;index:idx_clubs_is_active" json:"is_active"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`

	Memberships []ClubMembership `gorm:"foreignKey:ClubID" json:"memberships,omitempty"`
	Events      []Event          `gorm:"foreignKey:ClubID" json:"events,omitempty"`
}

func (Club) TableName() string { return "clubs" }

// ClubFilter provides filter fields for repository queries
type ClubFilter struct {
	ID       *uint
	Name     *string
	OwnerID  *uint
	IsActive *bool
}

// ClubMembership links a member to a club. A member joins a club at most
// once, enforced by the composite unique index.
type ClubMembership struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	ClubID   uint   `gorm:"not null;uniqueIndex:uk_club_memberships_club_member;index:idx_club_memberships_club_id" json:"club_id"`
	MemberID uint   `gorm:"not null;uniqueIndex:uk_club_memberships_club_member;index:idx_club_memberships_member_id" json:"member_id"`
	Member   Member `gorm:"foreignKey:MemberID;references:ID" json:"member,omitempty"`
	Role     string `gorm:"size:16;not null;default:member" json:"role"`

	JoinedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"joined_at"`
}

func (ClubMembership) TableName() string { return "club_memberships" }

func (m *ClubMembership) CanManage() bool {
	return m.Role == ClubRoleOwner || m.Role == ClubRoleOfficer
}

// ClubMembershipFilter provides filter fields for repository queries
type ClubMembershipFilter struct {
	ID       *uint
	ClubID   *uint
	MemberID *uint
	Role     *string
}
