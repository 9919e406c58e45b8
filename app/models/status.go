package models

// ApprovalStatus covers payments and sales/purchase returns.
type ApprovalStatus string

const (
	StatusPending   ApprovalStatus = "pending"
	StatusApproved  ApprovalStatus = "approved"
	StatusCompleted ApprovalStatus = "completed"
	StatusRejected  ApprovalStatus = "rejected"
)

// CoerceApprovalStatus maps an arbitrary remote string onto a valid status,
// falling back to pending rather than rejecting the load.
func CoerceApprovalStatus(s string) ApprovalStatus {
	switch ApprovalStatus(s) {
	case StatusPending, StatusApproved, StatusCompleted, StatusRejected:
		return ApprovalStatus(s)
	}
	return StatusPending
}

type MeetingStatus string

const (
	MeetingScheduled MeetingStatus = "scheduled"
	MeetingCompleted MeetingStatus = "completed"
	MeetingCancelled MeetingStatus = "cancelled"
)

func CoerceMeetingStatus(s string) MeetingStatus {
	switch MeetingStatus(s) {
	case MeetingScheduled, MeetingCompleted, MeetingCancelled:
		return MeetingStatus(s)
	}
	return MeetingScheduled
}

type MeetingType string

const (
	MeetingCall     MeetingType = "call"
	MeetingVideo    MeetingType = "video"
	MeetingInPerson MeetingType = "in-person"
)

func CoerceMeetingType(s string) MeetingType {
	switch MeetingType(s) {
	case MeetingCall, MeetingVideo, MeetingInPerson:
		return MeetingType(s)
	}
	return MeetingCall
}

type ExpiryStatus string

const (
	ExpiryActive   ExpiryStatus = "active"
	ExpiryExpired  ExpiryStatus = "expired"
	ExpiryDisposed ExpiryStatus = "disposed"
)

func CoerceExpiryStatus(s string) ExpiryStatus {
	switch ExpiryStatus(s) {
	case ExpiryActive, ExpiryExpired, ExpiryDisposed:
		return ExpiryStatus(s)
	}
	return ExpiryActive
}
