package domain

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

type Role string

const (
	RoleEmployee   Role = "employee"
	RoleHR         Role = "hr"
	RoleManagement Role = "management"
)

var (
	// ErrUnsupportedApplicantRole is returned when no approver tier exists
	// for the applicant's role.
	ErrUnsupportedApplicantRole = errors.New("approvals for this applicant role are not supported")
	ErrUnknownRole              = errors.New("unknown role")
)

// approverFor maps an applicant role to the role that may approve or reject
// its requests.
var approverFor = map[Role]Role{
	RoleEmployee: RoleHR,
	RoleHR:       RoleManagement,
}

func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", ErrUnknownRole
	}
	return r, nil
}

func (r Role) Valid() bool {
	switch r {
	case RoleEmployee, RoleHR, RoleManagement:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

// RequiredApproverRole returns the role allowed to decide on requests filed
// by applicantRole.
func RequiredApproverRole(applicantRole Role) (Role, error) {
	approver, ok := approverFor[applicantRole]
	if !ok {
		return "", ErrUnsupportedApplicantRole
	}
	return approver, nil
}

// SelfOverlapChecked reports whether requests by this role must not overlap
// the applicant's earlier requests. Management is exempt.
func (r Role) SelfOverlapChecked() bool {
	return r == RoleEmployee || r == RoleHR
}

// VisibleApplicantRoles lists whose requests, besides their own, a role may
// read.
func (r Role) VisibleApplicantRoles() []Role {
	switch r {
	case RoleHR:
		return []Role{RoleEmployee}
	case RoleManagement:
		return []Role{RoleHR}
	}
	return nil
}

// Accrues reports whether the monthly accrual applies to the role.
func (r Role) Accrues() bool {
	return r == RoleEmployee || r == RoleHR
}

// Actor is the authenticated caller of an operation.
type Actor struct {
	ID   uuid.UUID
	Role Role
}

func NewActor(id, role string) (Actor, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return Actor{}, err
	}
	r, err := ParseRole(role)
	if err != nil {
		return Actor{}, err
	}
	return Actor{ID: uid, Role: r}, nil
}
