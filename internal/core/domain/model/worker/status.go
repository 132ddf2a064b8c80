package worker

import (
	"dispatch/internal/pkg/errs"
)

// WorkStatus is the availability of a worker for new orders.
type WorkStatus string

const (
	Available WorkStatus = "available"
	Busy      WorkStatus = "busy"
	Offline   WorkStatus = "offline"
)

// ParseWorkStatus converts a persisted or requested work status.
func ParseWorkStatus(s string) (WorkStatus, error) {
	switch ws := WorkStatus(s); ws {
	case Available, Busy, Offline:
		return ws, nil
	default:
		return "", errs.NewValueIsInvalidError("workStatus")
	}
}

func (s WorkStatus) String() string {
	return string(s)
}

// VerificationStatus is the result of the admin review of a worker profile.
type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationApproved VerificationStatus = "approved"
	VerificationRejected VerificationStatus = "rejected"
)

// ParseVerificationStatus converts a persisted or requested verification status.
func ParseVerificationStatus(s string) (VerificationStatus, error) {
	switch vs := VerificationStatus(s); vs {
	case VerificationPending, VerificationApproved, VerificationRejected:
		return vs, nil
	default:
		return "", errs.NewValueIsInvalidError("verificationStatus")
	}
}

func (s VerificationStatus) String() string {
	return string(s)
}
