package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// TimerKind determines which schedule fields a timer carries.
type TimerKind string

const (
	// TimerKindFixed counts down to a shared absolute end instant.
	TimerKindFixed TimerKind = "fixed"
	// TimerKindEvergreen counts down a fixed duration per visitor,
	// starting from first view. The start instant is tracked client-side.
	TimerKindEvergreen TimerKind = "evergreen"
)

// TimerStatus is the persisted lifecycle state of a timer.
type TimerStatus string

const (
	TimerStatusDraft     TimerStatus = "draft"
	TimerStatusScheduled TimerStatus = "scheduled"
	TimerStatusActive    TimerStatus = "active"
	TimerStatusExpired   TimerStatus = "expired"
)

// TargetType scopes a timer to parts of the catalog.
type TargetType string

const (
	TargetTypeAll         TargetType = "all"
	TargetTypeProducts    TargetType = "products"
	TargetTypeCollections TargetType = "collections"
)

// Evergreen duration bounds, in seconds.
const (
	MinEvergreenDuration = 60
	MaxEvergreenDuration = 86400
)

// Priority bounds for merchant-assigned tie-break weight.
const (
	MinPriority = 0
	MaxPriority = 100
)

// Customization is the display configuration passed through to the
// storefront widget. The server never interprets these fields.
type Customization struct {
	BackgroundColor     string `json:"background_color" binding:"omitempty,hexcolor"`
	TextColor           string `json:"text_color" binding:"omitempty,hexcolor"`
	Position            string `json:"position" binding:"omitempty,oneof=top bottom custom"`
	TimerSize           string `json:"timer_size" binding:"omitempty,oneof=small medium large"`
	Title               string `json:"title" binding:"omitempty,max=100"`
	Description         string `json:"description" binding:"omitempty,max=500"`
	ShowDescription     bool   `json:"show_description"`
	Message             string `json:"message" binding:"omitempty,max=200"`
	ShowUrgency         bool   `json:"show_urgency"`
	UrgencyThreshold    int    `json:"urgency_threshold" binding:"omitempty,min=0"`
	UrgencyNotification string `json:"urgency_notification" binding:"omitempty,oneof=color-pulse text-blink none"`
}

// DefaultCustomization returns the widget defaults applied at creation.
func DefaultCustomization() Customization {
	return Customization{
		BackgroundColor:     "#ff0000",
		TextColor:           "#ffffff",
		Position:            "top",
		TimerSize:           "medium",
		Message:             "Hurry! Sale ends in",
		ShowUrgency:         true,
		UrgencyThreshold:    3600,
		UrgencyNotification: "color-pulse",
	}
}

// Value implements driver.Valuer so customization is stored as JSONB.
func (c Customization) Value() (driver.Value, error) {
	return json.Marshal(c)
}

// Scan implements sql.Scanner.
func (c *Customization) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, c)
	case string:
		return json.Unmarshal([]byte(v), c)
	case nil:
		*c = Customization{}
		return nil
	default:
		return fmt.Errorf("unsupported customization type %T", src)
	}
}

// Timer is one promotional countdown configuration, owned by exactly
// one shop. Exactly one of {StartDate, EndDate} or {Duration} is set,
// determined by Kind.
type Timer struct {
	ID               uuid.UUID      `json:"id" db:"id"`
	Shop             string         `json:"shop" db:"shop"`
	Name             string         `json:"name" db:"name"`
	Kind             TimerKind      `json:"kind" db:"kind"`
	StartDate        *time.Time     `json:"start_date,omitempty" db:"start_date"`
	EndDate          *time.Time     `json:"end_date,omitempty" db:"end_date"`
	Duration         *int           `json:"duration,omitempty" db:"duration"`
	TargetType       TargetType     `json:"target_type" db:"target_type"`
	TargetIDs        pq.StringArray `json:"target_ids" db:"target_ids"`
	Customization    Customization  `json:"customization" db:"customization"`
	Priority         int            `json:"priority" db:"priority"`
	Status           TimerStatus    `json:"status" db:"status"`
	Impressions      int64          `json:"impressions" db:"impressions"`
	LastImpressionAt *time.Time     `json:"last_impression_at,omitempty" db:"last_impression_at"`
	CreatedAt        time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at" db:"updated_at"`
}

// RemainingSeconds returns the seconds left until EndDate, clamped at
// zero. Only meaningful for fixed timers inside their window.
func (t *Timer) RemainingSeconds(now time.Time) int64 {
	if t.Kind != TimerKindFixed || t.EndDate == nil {
		return 0
	}
	remaining := int64(t.EndDate.Sub(now) / time.Second)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// TargetsProduct reports whether the timer's product targeting covers
// the given product id.
func (t *Timer) TargetsProduct(productID string) bool {
	if t.TargetType != TargetTypeProducts || productID == "" {
		return false
	}
	return containsID(t.TargetIDs, productID)
}

// TargetsCollection reports whether the timer's collection targeting
// covers the given collection id.
func (t *Timer) TargetsCollection(collectionID string) bool {
	if t.TargetType != TargetTypeCollections || collectionID == "" {
		return false
	}
	return containsID(t.TargetIDs, collectionID)
}

func containsID(ids pq.StringArray, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// CreateTimerRequest is the admin payload for creating a timer.
type CreateTimerRequest struct {
	Name          string         `json:"name" binding:"required,max=100"`
	Kind          TimerKind      `json:"kind" binding:"required,oneof=fixed evergreen"`
	StartDate     *time.Time     `json:"start_date"`
	EndDate       *time.Time     `json:"end_date"`
	Duration      *int           `json:"duration"`
	TargetType    TargetType     `json:"target_type" binding:"omitempty,oneof=all products collections"`
	TargetIDs     []string       `json:"target_ids"`
	Priority      *int           `json:"priority" binding:"omitempty,min=0,max=100"`
	Status        TimerStatus    `json:"status" binding:"omitempty,oneof=draft scheduled active expired"`
	Customization *Customization `json:"customization"`
}

// UpdateTimerRequest is the admin payload for partial updates. Nil
// fields are left untouched.
type UpdateTimerRequest struct {
	Name          *string        `json:"name" binding:"omitempty,max=100"`
	StartDate     *time.Time     `json:"start_date"`
	EndDate       *time.Time     `json:"end_date"`
	Duration      *int           `json:"duration"`
	TargetType    *TargetType    `json:"target_type" binding:"omitempty,oneof=all products collections"`
	TargetIDs     *[]string      `json:"target_ids"`
	Priority      *int           `json:"priority" binding:"omitempty,min=0,max=100"`
	Status        *TimerStatus   `json:"status" binding:"omitempty,oneof=draft scheduled active expired"`
	Customization *Customization `json:"customization"`
}

// AnalyticsSummary aggregates impression counters for a shop.
type AnalyticsSummary struct {
	TotalTimers      int                   `json:"total_timers"`
	ActiveTimers     int                   `json:"active_timers"`
	TotalImpressions int64                 `json:"total_impressions"`
	Timers           []TimerAnalyticsEntry `json:"timers"`
}

// TimerAnalyticsEntry is one timer's row in the analytics summary.
type TimerAnalyticsEntry struct {
	ID               uuid.UUID   `json:"id"`
	Name             string      `json:"name"`
	Status           TimerStatus `json:"status"`
	Impressions      int64       `json:"impressions"`
	LastImpressionAt *time.Time  `json:"last_impression_at,omitempty"`
}
