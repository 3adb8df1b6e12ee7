package domain

import "time"

type MemberStatus string

const (
	MemberStatusActive    MemberStatus = "active"
	MemberStatusSuspended MemberStatus = "suspended"
)

func (s MemberStatus) Valid() bool {
	return s == MemberStatusActive || s == MemberStatusSuspended
}

type Member struct {
	ID               int32        `json:"id"`
	Name             string       `json:"name"`
	Email            string       `json:"email"`
	MembershipNumber string       `json:"membership_number"`
	Status           MemberStatus `json:"status"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
}

// MemberPatch holds the contact fields a client may change. Status is owned
// by the member state machine and is not part of the patch.
type MemberPatch struct {
	Name             *string
	Email            *string
	MembershipNumber *string
}

func (p MemberPatch) Empty() bool {
	return p.Name == nil && p.Email == nil && p.MembershipNumber == nil
}
