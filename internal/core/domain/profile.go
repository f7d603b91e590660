package domain

import "strings"

// UserType is the declared or inferred kind of visitor.
type UserType string

// Known user types.
const (
	UserTypePotentialClient   UserType = "potential_client"
	UserTypeJobSeeker         UserType = "job_seeker"
	UserTypeInformationSeeker UserType = "information_seeker"
	UserTypeGeneral           UserType = "general"
)

// IsValid returns true if the user type is recognised.
func (t UserType) IsValid() bool {
	switch t {
	case UserTypePotentialClient, UserTypeJobSeeker, UserTypeInformationSeeker, UserTypeGeneral:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (t UserType) String() string {
	return string(t)
}

// Description returns a human-readable description of the user type.
func (t UserType) Description() string {
	switch t {
	case UserTypePotentialClient:
		return "Looking for services"
	case UserTypeJobSeeker:
		return "Exploring careers"
	case UserTypeInformationSeeker:
		return "Learning about the company"
	case UserTypeGeneral:
		return "General enquiry"
	default:
		return unknownDescription
	}
}

// UserProfile holds optional facts about the person being served.
// The core reads it but never mutates it; empty fields mean "unknown".
type UserProfile struct {
	Name        string   `json:"name,omitempty" toml:"name"`
	Email       string   `json:"email,omitempty" toml:"email"`
	Phone       string   `json:"phone,omitempty" toml:"phone"`
	UserType    UserType `json:"user_type,omitempty" toml:"user_type"`
	CompanySize string   `json:"company_size,omitempty" toml:"company_size"`
	Interest    string   `json:"interest,omitempty" toml:"interest"`
	Timeline    string   `json:"timeline,omitempty" toml:"timeline"`
}

// IsEmpty returns true if no field is set.
func (p UserProfile) IsEmpty() bool {
	return p == UserProfile{}
}

// EmailDomain returns the part of the email after '@', or empty.
func (p UserProfile) EmailDomain() string {
	_, domain, found := strings.Cut(p.Email, "@")
	if !found {
		return ""
	}
	return domain
}
