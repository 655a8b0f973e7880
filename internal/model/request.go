package model

import "time"

type RequestStatus string

const (
	RequestStatusNew        RequestStatus = "new"
	RequestStatusInProgress RequestStatus = "in_progress"
	RequestStatusDone       RequestStatus = "done"
	RequestStatusCancelled  RequestStatus = "cancelled"
)

// Valid reports whether s is one of the four lifecycle statuses.
func (s RequestStatus) Valid() bool {
	switch s {
	case RequestStatusNew, RequestStatusInProgress, RequestStatusDone, RequestStatusCancelled:
		return true
	}
	return false
}

// transitions lists the legal successors of each status. Terminal statuses
// have no successors.
var transitions = map[RequestStatus][]RequestStatus{
	RequestStatusNew:        {RequestStatusInProgress, RequestStatusCancelled},
	RequestStatusInProgress: {RequestStatusDone, RequestStatusCancelled},
	RequestStatusDone:       {},
	RequestStatusCancelled:  {},
}

// CanTransition reports whether moving from s to next is allowed by the
// lifecycle. Enforcement is optional; see config.StrictTransitions.
func (s RequestStatus) CanTransition(next RequestStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Request is a single support inquiry tracked through the status lifecycle.
// Solution is set when the request is completed, CancellationReason when it
// is cancelled; neither is cleared afterwards.
type Request struct {
	ID                 uint64        `gorm:"primaryKey" json:"id"`
	Topic              string        `gorm:"type:varchar(255);not null" json:"topic"`
	Text               string        `gorm:"type:text;not null" json:"text"`
	Status             RequestStatus `gorm:"type:varchar(32);index;not null;default:new" json:"status"`
	Solution           string        `gorm:"type:text" json:"solution,omitempty"`
	CancellationReason string        `gorm:"type:text" json:"cancellationReason,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Request) TableName() string {
	return "requests"
}
