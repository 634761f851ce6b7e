package models

import (
	"time"

	"github.com/google/uuid"
)

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

type ActivityLevel string

const (
	ActivitySedentary  ActivityLevel = "sedentary"
	ActivityLight      ActivityLevel = "light"
	ActivityModerate   ActivityLevel = "moderate"
	ActivityActive     ActivityLevel = "active"
	ActivityVeryActive ActivityLevel = "very_active"
)

type PlanType string

const (
	PlanBasic   PlanType = "basic"
	PlanPremium PlanType = "premium"
)

type SubscriptionStatus string

const (
	SubscriptionInactive  SubscriptionStatus = "inactive"
	SubscriptionTrial     SubscriptionStatus = "trial"
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
)

// Profile is a row of the profiles table; its id equals the auth user id.
type Profile struct {
	ID                 uuid.UUID          `json:"id"`
	Email              string             `json:"email"`
	Name               *string            `json:"name"`
	Weight             *float64           `json:"weight"`
	Gender             *Gender            `json:"gender"`
	ActivityLevel      *ActivityLevel     `json:"activity_level"`
	PlanType           PlanType           `json:"plan_type"`
	TrialStartedAt     *time.Time         `json:"trial_started_at"`
	TrialEndsAt        *time.Time         `json:"trial_ends_at"`
	SubscriptionStatus SubscriptionStatus `json:"subscription_status"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

// ProfileUpdate carries only the columns to change; nil fields are omitted
// from the request body.
type ProfileUpdate struct {
	Name          *string        `json:"name,omitempty"`
	Weight        *float64       `json:"weight,omitempty"`
	Gender        *Gender        `json:"gender,omitempty"`
	ActivityLevel *ActivityLevel `json:"activity_level,omitempty"`
}

// Empty reports whether the update changes nothing.
func (u ProfileUpdate) Empty() bool {
	return u.Name == nil && u.Weight == nil && u.Gender == nil && u.ActivityLevel == nil
}

// Valid reports whether the enumerated fields hold known values.
func (u ProfileUpdate) Valid() bool {
	if u.Gender != nil {
		switch *u.Gender {
		case GenderMale, GenderFemale, GenderOther:
		default:
			return false
		}
	}
	if u.ActivityLevel != nil {
		switch *u.ActivityLevel {
		case ActivitySedentary, ActivityLight, ActivityModerate, ActivityActive, ActivityVeryActive:
		default:
			return false
		}
	}
	if u.Weight != nil && *u.Weight <= 0 {
		return false
	}
	return true
}
