package models

import (
	"encoding/json"
	"slices"
	"strings"
	"time"
)

// Domain models shared by the storage backends and the HTTP layer.

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

type User struct {
	ID           int64  `json:"id" db:"id"`
	Username     string `json:"username" db:"username"`
	PasswordHash string `json:"password,omitempty" db:"password"`
	Role         string `json:"role" db:"role"`
	Name         string `json:"name" db:"name"`
}

// Public returns a copy without the password hash.
func (u User) Public() User {
	u.PasswordHash = ""
	return u
}

func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// PractitionerRoles are the clinical grades a practitioner may hold.
var PractitionerRoles = []string{"crew", "emt", "paramedic", "ap", "admin"}

func ValidPractitionerRole(role string) bool { return slices.Contains(PractitionerRoles, role) }

type Practitioner struct {
	ID     int64  `json:"id" db:"id"`
	Name   string `json:"name" db:"name"`
	Pin    string `json:"pin" db:"pin"`
	Role   string `json:"role" db:"role"`
	Active bool   `json:"active" db:"active"`
}

// PractitionerPatch carries a partial update; nil fields are left unchanged.
type PractitionerPatch struct {
	Name   *string `json:"name,omitempty"`
	Pin    *string `json:"pin,omitempty"`
	Role   *string `json:"role,omitempty"`
	Active *bool   `json:"active,omitempty"`
}

func (p PractitionerPatch) ApplyTo(dst *Practitioner) {
	if p.Name != nil {
		dst.Name = *p.Name
	}
	if p.Pin != nil {
		dst.Pin = *p.Pin
	}
	if p.Role != nil {
		dst.Role = *p.Role
	}
	if p.Active != nil {
		dst.Active = *p.Active
	}
}

type Vehicle struct {
	ID           int64  `json:"id" db:"id"`
	Registration string `json:"registration" db:"registration"`
	Callsign     string `json:"callsign" db:"callsign"`
	Description  string `json:"description" db:"description"`
}

type VehiclePatch struct {
	Registration *string `json:"registration,omitempty"`
	Callsign     *string `json:"callsign,omitempty"`
	Description  *string `json:"description,omitempty"`
}

func (p VehiclePatch) ApplyTo(dst *Vehicle) {
	if p.Registration != nil {
		dst.Registration = *p.Registration
	}
	if p.Callsign != nil {
		dst.Callsign = *p.Callsign
	}
	if p.Description != nil {
		dst.Description = *p.Description
	}
}

// Runsheet is a crew shift record. ShiftDate uses dd/mm/yyyy.
type Runsheet struct {
	ID          int64  `json:"id"`
	ShiftDate   string `json:"shiftDate"`
	BookOnTime  string `json:"bookOnTime"`
	BookOffTime string `json:"bookOffTime"`
	Trust       string `json:"trust"`
	Callsign    string `json:"callsign"`
	ShiftEnded  bool   `json:"shiftEnded"`
}

// ShiftTime parses ShiftDate; the zero time is returned for malformed dates.
func (r Runsheet) ShiftTime() time.Time {
	t, err := time.Parse("02/01/2006", strings.TrimSpace(r.ShiftDate))
	if err != nil {
		return time.Time{}
	}
	return t
}

// Submission is a completed checklist. FormSnapshot freezes the schema that
// was in effect when it was submitted and is never rewritten.
type Submission struct {
	ID           int64           `json:"id"`
	FormID       string          `json:"formId"`
	Values       Fields          `json:"values"`
	FormSnapshot json.RawMessage `json:"formSnapshot,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
	CreatedBy    int64           `json:"createdBy"`
}

func (s *Submission) HasSnapshot() bool {
	raw := strings.TrimSpace(string(s.FormSnapshot))
	return raw != "" && raw != "null"
}

// Equipment check photo slots, in display order.
var PhotoSlots = []string{"frontPhoto", "nearsidePhoto", "rearPhoto", "offsidePhoto"}
