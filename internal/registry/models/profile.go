// Package models defines the registry's profile types.
//
// Profiles are created by the intake flow and are immutable afterwards as
// far as the matching core is concerned: scoring only ever reads them.
package models

import (
	"strings"
	"time"
)

// ProfileID identifies a donor or recipient profile. Intake issues opaque
// string ids, so the type stays a string rather than a UUID.
type ProfileID string

func (id ProfileID) String() string { return string(id) }

// Role distinguishes donors from recipients. Fixed at creation.
type Role string

const (
	RoleDonor     Role = "donor"
	RoleRecipient Role = "recipient"
)

// Valid reports whether the role is one of the two known values.
func (r Role) Valid() bool {
	return r == RoleDonor || r == RoleRecipient
}

// BloodType is one of the 8 standard ABO/Rh groups.
type BloodType string

const (
	BloodONeg  BloodType = "O-"
	BloodOPos  BloodType = "O+"
	BloodANeg  BloodType = "A-"
	BloodAPos  BloodType = "A+"
	BloodBNeg  BloodType = "B-"
	BloodBPos  BloodType = "B+"
	BloodABNeg BloodType = "AB-"
	BloodABPos BloodType = "AB+"
)

// BloodTypes lists all valid ABO/Rh groups.
var BloodTypes = []BloodType{
	BloodONeg, BloodOPos, BloodANeg, BloodAPos,
	BloodBNeg, BloodBPos, BloodABNeg, BloodABPos,
}

// Valid reports whether the blood type is a known ABO/Rh group.
func (b BloodType) Valid() bool {
	for _, t := range BloodTypes {
		if b == t {
			return true
		}
	}
	return false
}

// Profile represents a registered donor or recipient.
//
// Optional fields degrade to defaults during scoring rather than erroring:
// matching must remain available under partial data.
type Profile struct {
	ID            ProfileID `json:"id"`
	Role          Role      `json:"role"`
	BloodType     BloodType `json:"blood_type"`
	Age           int       `json:"age"`
	Location      string    `json:"location"`
	Comorbidities string    `json:"comorbidities,omitempty"`

	// HLAMarkers encodes a fractional match descriptor such as
	// "5/6 HLA match potential". Unparseable values fall back to a
	// neutral similarity during scoring.
	HLAMarkers string `json:"hla_markers,omitempty"`

	// UrgencyScore is 1-10 and present only for recipients.
	UrgencyScore int `json:"urgency_score,omitempty"`

	// OrgansAvailable lists organs a donor registered to donate.
	OrgansAvailable []string `json:"organs_available,omitempty"`

	// OrganRequired is the organ a recipient is waiting for.
	OrganRequired string `json:"organ_required,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// IsDonor reports whether the profile is a donor profile.
func (p *Profile) IsDonor() bool { return p.Role == RoleDonor }

// IsRecipient reports whether the profile is a recipient profile.
func (p *Profile) IsRecipient() bool { return p.Role == RoleRecipient }

// NormalizeBloodType upcases and trims a raw blood group string so intake
// accepts "ab+" and " O- " spellings.
func NormalizeBloodType(raw string) BloodType {
	return BloodType(strings.ToUpper(strings.TrimSpace(raw)))
}
