package models

import (
	"time"

	"davetli.app/pkg/eventtime"
)

// EventStatus etkinlik yaşam döngüsü durumları.
type EventStatus string

const (
	EventStatusUpcoming  EventStatus = "upcoming"
	EventStatusOngoing   EventStatus = "ongoing"
	EventStatusEnded     EventStatus = "ended"
	EventStatusCancelled EventStatus = "cancelled"
	EventStatusOnHold    EventStatus = "on_hold"
)

// IsManualOverride cancelled/on_hold elle konulan durumlardır; otomatik
// hesaplama bunları asla ezmez. Ayrı bir bayrak yerine enum'dan türetilir.
func (s EventStatus) IsManualOverride() bool {
	return s == EventStatusCancelled || s == EventStatusOnHold
}

// Valid bilinen bir durum mu.
func (s EventStatus) Valid() bool {
	switch s {
	case EventStatusUpcoming, EventStatusOngoing, EventStatusEnded,
		EventStatusCancelled, EventStatusOnHold:
		return true
	}
	return false
}

// Event davetli alınabilen etkinlik. StartDate/EndDate sabit UTC+2
// ofsetinde naive saklanır. Status stored bir alandır: toplu yenileme ile
// fırsatçı güncellenir, manuel override'lar korunur.
type Event struct {
	BaseModel
	Name        string      `gorm:"type:varchar(200);not null" json:"name"`
	Code        string      `gorm:"type:varchar(50);uniqueIndex" json:"code"`
	StartDate   time.Time   `gorm:"not null;index" json:"start_date"`
	EndDate     time.Time   `gorm:"not null;index" json:"end_date"`
	Venue       string      `gorm:"type:varchar(200)" json:"venue,omitempty"`
	Description string      `gorm:"type:text" json:"description,omitempty"`
	Status      EventStatus `gorm:"type:varchar(20);not null;default:'upcoming';index" json:"status"`

	// Check-in görevlisi alanları
	CheckinPin                    string `gorm:"type:varchar(6)" json:"-"`
	CheckinPinActive              bool   `gorm:"default:false;not null" json:"checkin_pin_active"`
	CheckinPinAutoDeactivateHours *int   `json:"checkin_pin_auto_deactivate_hours"`

	// true ise etkinlik bütün gruplara açıktır
	IsAllGroups bool `gorm:"default:false;not null" json:"is_all_groups"`

	CreatedByUserID uint `gorm:"not null;index" json:"created_by_user_id"`

	InviterGroups []InviterGroup `gorm:"many2many:event_inviter_groups;constraint:OnDelete:CASCADE" json:"-"`
}

// ComputeStatus stored durumu ve "now"a göre olması gereken durumu döndürür;
// hiçbir şeyi mutate etmez. Manuel override'lar aynen korunur.
func (e *Event) ComputeStatus(now time.Time) EventStatus {
	if e.Status.IsManualOverride() {
		return e.Status
	}
	switch {
	case now.Before(e.StartDate):
		return EventStatusUpcoming
	case now.Before(e.EndDate):
		return EventStatusOngoing
	default:
		return EventStatusEnded
	}
}

// CanAddInvitees etkinliğe yeni davetli eklenebilir mi.
func (e *Event) CanAddInvitees() bool {
	return e.Status == EventStatusUpcoming || e.Status == EventStatusOngoing
}

// IsCheckinAllowed check-in penceresi açık mı. Bitmiş etkinliklerde
// auto-deactivate süresi tanımlıysa o kadar saat daha izin verilir.
func (e *Event) IsCheckinAllowed(now time.Time) bool {
	if e.Status == EventStatusUpcoming || e.Status == EventStatusOngoing {
		return true
	}
	if e.Status == EventStatusEnded && e.CheckinPinAutoDeactivateHours != nil {
		return eventtime.HoursSince(now, e.EndDate) <= float64(*e.CheckinPinAutoDeactivateHours)
	}
	return false
}

// AssignedToGroup etkinlik verilen gruba atanmış mı (is_all_groups dahil).
// InviterGroups ilişkisinin preload edilmiş olması beklenir.
func (e *Event) AssignedToGroup(groupID uint) bool {
	if e.IsAllGroups {
		return true
	}
	for _, g := range e.InviterGroups {
		if g.ID == groupID {
			return true
		}
	}
	return false
}
