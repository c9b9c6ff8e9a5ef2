package models

import "time"

// InvitationStatus davetiyenin onay durumları.
type InvitationStatus string

const (
	StatusWaitingForApproval InvitationStatus = "waiting_for_approval"
	StatusApproved           InvitationStatus = "approved"
	StatusRejected           InvitationStatus = "rejected"
)

// InvitationMethod davetiyenin gönderim kanalı (kapalı küme).
type InvitationMethod string

const (
	MethodEmail    InvitationMethod = "email"
	MethodWhatsapp InvitationMethod = "whatsapp"
	MethodPhysical InvitationMethod = "physical"
	MethodSMS      InvitationMethod = "sms"
)

// Valid bilinen bir gönderim yöntemi mi.
func (m InvitationMethod) Valid() bool {
	switch m {
	case MethodEmail, MethodWhatsapp, MethodPhysical, MethodSMS:
		return true
	}
	return false
}

// EventInvitee bir davetlinin bir etkinlikle ilişkisini tutan merkezi
// yaşam döngüsü kaydı: başvuru, onay, katılım kodu, portal onayı ve
// check-in alanlarının tamamı burada yaşar.
// (event_id, invitee_id) çifti ve attendance_code benzersizdir; bu
// index'ler eşzamanlı erişimde uygulama kontrollerinin arkasındaki asıl
// güvencedir.
type EventInvitee struct {
	BaseModel
	EventID   uint `gorm:"not null;index;index:uq_event_invitee,unique" json:"event_id"`
	InviteeID uint `gorm:"not null;index;index:uq_event_invitee,unique" json:"invitee_id"`

	// Köken: kim, hangi rolle, kimin adına girdi
	CategoryID    *uint  `gorm:"index" json:"category_id"`
	InviterID     *uint  `gorm:"index" json:"inviter_id"`
	InviterUserID uint   `gorm:"not null;index" json:"inviter_user_id"` // kaydı giren kullanıcı
	InviterRole   Role   `gorm:"type:varchar(20);not null" json:"inviter_role"`
	Notes         string `gorm:"type:text" json:"notes,omitempty"`

	// Onay durumu
	Status           InvitationStatus `gorm:"type:varchar(30);not null;default:'waiting_for_approval';index" json:"status"`
	StatusDate       time.Time        `gorm:"not null" json:"status_date"`
	ApprovedByUserID *uint            `gorm:"index" json:"approved_by_user_id"`
	ApproverRole     *Role            `gorm:"type:varchar(20)" json:"approver_role"`
	ApprovalNotes    string           `gorm:"type:text" json:"approval_notes,omitempty"`

	IsGoing string `gorm:"type:varchar(10)" json:"is_going,omitempty"` // yes/no/maybe
	PlusOne int    `gorm:"default:0;not null" json:"plus_one"`         // izin verilen misafir sayısı

	// Katılım kodu
	AttendanceCode  *string    `gorm:"type:varchar(12);uniqueIndex" json:"attendance_code"`
	CodeGeneratedAt *time.Time `json:"code_generated_at"`

	// Davetiye gönderim takibi
	InvitationSent   bool              `gorm:"default:false;not null" json:"invitation_sent"`
	InvitationSentAt *time.Time        `json:"invitation_sent_at"`
	InvitationMethod *InvitationMethod `gorm:"type:varchar(20)" json:"invitation_method"`

	// Portal durumu
	PortalAccessedAt    *time.Time `json:"portal_accessed_at"`
	AttendanceConfirmed *bool      `json:"attendance_confirmed"` // true=geliyor, false=gelmiyor, nil=yanıtsız
	ConfirmedAt         *time.Time `json:"confirmed_at"`
	ConfirmedGuests     *int       `json:"confirmed_guests"`

	// Check-in durumu
	CheckedIn         bool       `gorm:"default:false;not null;index" json:"checked_in"`
	CheckedInAt       *time.Time `json:"checked_in_at"`
	CheckedInByUserID *uint      `json:"checked_in_by_user_id"` // PIN konsolunda nil
	ActualGuests      int        `gorm:"default:0;not null" json:"actual_guests"`
	CheckInNotes      string     `gorm:"type:text" json:"check_in_notes,omitempty"`

	Event    *Event    `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE" json:"-"`
	Invitee  *Invitee  `gorm:"foreignKey:InviteeID;constraint:OnDelete:CASCADE" json:"-"`
	Inviter  *Inviter  `gorm:"foreignKey:InviterID" json:"-"`
	Category *Category `gorm:"foreignKey:CategoryID" json:"-"`
}

// ClampGuests misafir sayısını plus_one tavanına indirir; negatifler sıfırlanır.
// Taşan değerler reddedilmez, kırpılır.
func (ei *EventInvitee) ClampGuests(guests int) int {
	if guests < 0 {
		return 0
	}
	if guests > ei.PlusOne {
		return ei.PlusOne
	}
	return guests
}

// Approve davetiyeyi onaylar.
func (ei *EventInvitee) Approve(approverID uint, role Role, notes string, now time.Time) {
	ei.Status = StatusApproved
	ei.ApprovedByUserID = &approverID
	ei.ApproverRole = &role
	ei.StatusDate = now
	if notes != "" {
		ei.ApprovalNotes = notes
	}
}

// Reject davetiyeyi reddeder.
func (ei *EventInvitee) Reject(approverID uint, role Role, notes string, now time.Time) {
	ei.Status = StatusRejected
	ei.ApprovedByUserID = &approverID
	ei.ApproverRole = &role
	ei.StatusDate = now
	if notes != "" {
		ei.ApprovalNotes = notes
	}
}

// Resubmit reddedilmiş davetiyeyi yeniden onay kuyruğuna alır; onaylayan
// bilgileri ve onay notu temizlenir, status_date yeniden damgalanır.
func (ei *EventInvitee) Resubmit(now time.Time) {
	ei.Status = StatusWaitingForApproval
	ei.StatusDate = now
	ei.ApprovedByUserID = nil
	ei.ApproverRole = nil
	ei.ApprovalNotes = ""
}

// RecordPortalAccess yalnızca ilk erişimi damgalar.
func (ei *EventInvitee) RecordPortalAccess(now time.Time) {
	if ei.PortalAccessedAt == nil {
		ei.PortalAccessedAt = &now
	}
}

// ConfirmAttendance portal onayını yazar; son yazan kazanır.
func (ei *EventInvitee) ConfirmAttendance(isComing bool, guestCount *int, now time.Time) {
	ei.AttendanceConfirmed = &isComing
	ei.ConfirmedAt = &now
	if guestCount != nil {
		clamped := ei.ClampGuests(*guestCount)
		ei.ConfirmedGuests = &clamped
	}
}

// CheckIn fiziksel girişi kaydeder. checkedInBy PIN konsolunda nil gelir.
func (ei *EventInvitee) CheckIn(checkedInBy *uint, actualGuests int, notes string, now time.Time) {
	ei.CheckedIn = true
	ei.CheckedInAt = &now
	ei.CheckedInByUserID = checkedInBy
	ei.ActualGuests = ei.ClampGuests(actualGuests)
	if notes != "" {
		ei.CheckInNotes = notes
	}
}

// UndoCheckIn check-in alanlarını tamamen temizler. Undo bir hata düzeltme
// aracıdır; iz, ayrı audit kaydında kalır.
func (ei *EventInvitee) UndoCheckIn() {
	ei.CheckedIn = false
	ei.CheckedInAt = nil
	ei.CheckedInByUserID = nil
	ei.ActualGuests = 0
	ei.CheckInNotes = ""
}

// MarkInvitationSent gönderim bayrağını işler.
func (ei *EventInvitee) MarkInvitationSent(method InvitationMethod, now time.Time) {
	ei.InvitationSent = true
	ei.InvitationSentAt = &now
	ei.InvitationMethod = &method
}

// UndoInvitationSent gönderim bayrağını geri alır; katılım kodu korunur.
func (ei *EventInvitee) UndoInvitationSent() {
	ei.InvitationSent = false
	ei.InvitationSentAt = nil
	ei.InvitationMethod = nil
}
