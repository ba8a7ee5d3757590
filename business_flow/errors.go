// Package businessflow contains the core business logic and use cases for campus workflows
package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// Member-related errors
	ErrMemberNotFound       = errors.New("member not found")
	ErrAccountInactive      = errors.New("account is inactive")
	ErrIncorrectPassword    = errors.New("incorrect password")
	ErrEmailAlreadyExists   = errors.New("email already exists")
	ErrEmailNotSchoolDomain = errors.New("email is not a school address")
	ErrSessionNotFound      = errors.New("session not found")
	ErrMajorNotFound        = errors.New("major not found")
	ErrAdminRequired        = errors.New("admin privileges required")

	// Link-related errors
	ErrLinkNotFound     = errors.New("link not found")
	ErrLinkInactive     = errors.New("link is inactive")
	ErrLinkAccessDenied = errors.New("link access denied")

	// Poll-related errors
	ErrPollNotFound       = errors.New("poll not found")
	ErrPollClosed         = errors.New("poll is closed")
	ErrPollOptionNotFound = errors.New("poll option not found")
	ErrAlreadyVoted       = errors.New("member has already voted on this poll")
	ErrPollAccessDenied   = errors.New("poll access denied")

	// Club-related errors
	ErrClubNotFound     = errors.New("club not found")
	ErrClubInactive     = errors.New("club is inactive")
	ErrClubNameTaken    = errors.New("club name already taken")
	ErrAlreadyMember    = errors.New("member already belongs to this club")
	ErrNotClubMember    = errors.New("member does not belong to this club")
	ErrOwnerCannotLeave = errors.New("club owner cannot leave the club")
	ErrClubAccessDenied = errors.New("club access denied")

	// Event-related errors
	ErrEventNotFound     = errors.New("event not found")
	ErrEventInPast       = errors.New("event start time is in the past")
	ErrEventFull         = errors.New("event is at capacity")
	ErrInvalidRSVPStatus = errors.New("invalid RSVP status")

	// Filter errors
	ErrInvalidPage           = errors.New("page must be at least 1")
	ErrInvalidPageSize       = errors.New("page size must be between 1 and 100")
	ErrStartDateAfterEndDate = errors.New("start date cannot be after end date")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NewBusinessErrorf(code, message string, err error, args ...any) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: fmt.Sprintf(message, args...),
		Err:     err,
	}
}

func IsMemberNotFound(err error) bool {
	return errors.Is(err, ErrMemberNotFound)
}

func IsAccountInactive(err error) bool {
	return errors.Is(err, ErrAccountInactive)
}

func IsIncorrectPassword(err error) bool {
	return errors.Is(err, ErrIncorrectPassword)
}

func IsEmailAlreadyExists(err error) bool {
	return errors.Is(err, ErrEmailAlreadyExists)
}

func IsEmailNotSchoolDomain(err error) bool {
	return errors.Is(err, ErrEmailNotSchoolDomain)
}

func IsSessionNotFound(err error) bool {
	return errors.Is(err, ErrSessionNotFound)
}

func IsMajorNotFound(err error) bool {
	return errors.Is(err, ErrMajorNotFound)
}

func IsAdminRequired(err error) bool {
	return errors.Is(err, ErrAdminRequired)
}

func IsLinkNotFound(err error) bool {
	return errors.Is(err, ErrLinkNotFound)
}

func IsLinkInactive(err error) bool {
	return errors.Is(err, ErrLinkInactive)
}

func IsLinkAccessDenied(err error) bool {
	return errors.Is(err, ErrLinkAccessDenied)
}

func IsPollNotFound(err error) bool {
	return errors.Is(err, ErrPollNotFound)
}

func IsPollClosed(err error) bool {
	return errors.Is(err, ErrPollClosed)
}

func IsPollOptionNotFound(err error) bool {
	return errors.Is(err, ErrPollOptionNotFound)
}

func IsAlreadyVoted(err error) bool {
	return errors.Is(err, ErrAlreadyVoted)
}

func IsPollAccessDenied(err error) bool {
	return errors.Is(err, ErrPollAccessDenied)
}

func IsClubNotFound(err error) bool {
	return errors.Is(err, ErrClubNotFound)
}

func IsClubInactive(err error) bool {
	return errors.Is(err, ErrClubInactive)
}

func IsClubNameTaken(err error) bool {
	return errors.Is(err, ErrClubNameTaken)
}

func IsAlreadyMember(err error) bool {
	return errors.Is(err, ErrAlreadyMember)
}

func IsNotClubMember(err error) bool {
	return errors.Is(err, ErrNotClubMember)
}

func IsOwnerCannotLeave(err error) bool {
	return errors.Is(err, ErrOwnerCannotLeave)
}

func IsClubAccessDenied(err error) bool {
	return errors.Is(err, ErrClubAccessDenied)
}

func IsEventNotFound(err error) bool {
	return errors.Is(err, ErrEventNotFound)
}

func IsEventInPast(err error) bool {
	return errors.Is(err, ErrEventInPast)
}

func IsEventFull(err error) bool {
	return errors.Is(err, ErrEventFull)
}

func IsInvalidRSVPStatus(err error) bool {
	return errors.Is(err, ErrInvalidRSVPStatus)
}

func IsInvalidPage(err error) bool {
	return errors.Is(err, ErrInvalidPage)
}

func IsInvalidPageSize(err error) bool {
	return errors.Is(err, ErrInvalidPageSize)
}

func IsStartDateAfterEndDate(err error) bool {
	return errors.Is(err, ErrStartDateAfterEndDate)
}
