package services

import (
	"errors"
	"testing"
	"time"

	"davetli.app/configs"
	"davetli.app/models"
	"davetli.app/pkg/eventtime"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// newCheckinTestService konsol servisini test anahtarıyla kurar. Oturum
// anahtarının exp alanı gerçek saate karşı doğrulandığından sabit saat,
// testNow yerine gerçek saatten türetilir.
const (
	testIP = "127.0.0.1"
	testUA = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) Safari/604.1"
)

func newCheckinTestService(t *testing.T) *CheckinService {
	t.Helper()
	configs.LoadConfig().CheckinTokenSecret = "test-gizli-anahtar"
	s := NewCheckinService().(*CheckinService)
	s.clock = fixedAt(eventtime.Now())
	return s
}

// checkinFixture kontrollü PIN'li canlı bir etkinlik ve onaylı bir kayıt kurar.
func checkinFixture(t *testing.T, db *gorm.DB, eventCode, pin string) (*models.Event, *models.EventInvitee) {
	t.Helper()
	group := makeGroup(t, db, "Konsol Grubu")
	organizer := makeUser(t, db, "konsol-org", models.RoleOrganizer, &group.ID)
	event := makeEvent(t, db, eventCode, eventtime.Now().Add(-time.Hour), eventtime.Now().Add(5*time.Hour))
	event.CheckinPin = pin
	event.CheckinPinActive = true
	require.NoError(t, db.Save(event).Error)

	invitee := makeInvitee(t, db, "Kapıdaki Davetli", "+201000000501", &group.ID)
	ei := makeInvitation(t, db, event, invitee, organizer, models.StatusApproved)
	code := eventCode + "-AB23"
	ei.AttendanceCode = &code
	ei.PlusOne = 1
	require.NoError(t, db.Save(ei).Error)
	return event, ei
}

func TestVerifyPinRejectsBadCredentials(t *testing.T) {
	db := newTestDB(t)
	event, _ := checkinFixture(t, db, "KAPI25", "123456")

	svc := newCheckinTestService(t)

	_, err := svc.VerifyPin(ctxBG(), "YOK25", "123456", testIP, testUA)
	assert.ErrorIs(t, err, ErrCheckinEventNotFound)

	_, err = svc.VerifyPin(ctxBG(), "KAPI25", "654321", testIP, testUA)
	assert.ErrorIs(t, err, ErrCheckinPinInvalid)

	// Başarısız deneme cihaz bilgisiyle iz kaydına düşer
	var failed models.AuditLog
	require.NoError(t, db.Where("action = ?", "checkin_console_login_failed").First(&failed).Error)
	assert.Equal(t, "events", failed.EntityTable)
	assert.Equal(t, testIP, failed.IPAddress)
	assert.Contains(t, failed.NewValue, "iPhone - Safari (Mobil)")

	// Pasif PIN oturum açamaz
	event.CheckinPinActive = false
	require.NoError(t, db.Save(event).Error)
	_, err = svc.VerifyPin(ctxBG(), "KAPI25", "123456", testIP, testUA)
	assert.ErrorIs(t, err, ErrCheckinPinInvalid)
}

func TestVerifyPinWindowClosed(t *testing.T) {
	db := newTestDB(t)
	group := makeGroup(t, db, "Konsol Grubu")
	_ = group
	event := makeEvent(t, db, "BIT25", eventtime.Now().Add(-48*time.Hour), eventtime.Now().Add(-24*time.Hour))
	event.Status = models.EventStatusEnded
	event.CheckinPin = "123456"
	event.CheckinPinActive = true
	require.NoError(t, db.Save(event).Error)

	svc := newCheckinTestService(t)
	_, err := svc.VerifyPin(ctxBG(), "BIT25", "123456", testIP, testUA)
	assert.ErrorIs(t, err, ErrCheckinWindowClosed)

	// Auto-deactivate süresi pencereyi uzatır
	event.CheckinPinAutoDeactivateHours = intPtr(30)
	require.NoError(t, db.Save(event).Error)
	session, err := svc.VerifyPin(ctxBG(), "BIT25", "123456", testIP, testUA)
	require.NoError(t, err)
	assert.Equal(t, event.ID, session.EventID)
}

func TestCheckinFlowWithConsoleToken(t *testing.T) {
	db := newTestDB(t)
	event, ei := checkinFixture(t, db, "GATE25", "246802")

	svc := newCheckinTestService(t)
	session, err := svc.VerifyPin(ctxBG(), "gate25", "246802", testIP, testUA) // kod küçük harf gelebilir
	require.NoError(t, err)
	require.NotEmpty(t, session.Token)
	assert.Equal(t, event.Code, session.EventCode)

	// Oturum süresi duvar saatinden sayılır, etkinlik saatinden değil
	ttl := time.Duration(configs.LoadConfig().CheckinTokenTTL) * time.Hour
	assert.WithinDuration(t, time.Now().Add(ttl), session.ExpiresAt, time.Minute)

	// Arama: boş sorgu boş liste, kodla arama kaydı bulur
	hits, err := svc.Search(ctxBG(), session.Token, "  ", 20)
	require.NoError(t, err)
	assert.Empty(t, hits)
	hits, err = svc.Search(ctxBG(), session.Token, "GATE25-AB23", 20)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, ei.ID, hits[0].ID)

	// Giriş: misafir sayısı plus_one tavanına kırpılır
	checked, err := svc.CheckIn(ctxBG(), session.Token, ei.ID, 4, "kapı 2", "10.0.0.3")
	require.NoError(t, err)
	assert.True(t, checked.CheckedIn)
	require.NotNil(t, checked.CheckedInAt)
	assert.Equal(t, 1, checked.ActualGuests)
	assert.Nil(t, checked.CheckedInByUserID) // konsol girişi anonim

	// Mükerrer giriş, önceki girişin zamanını taşıyan hatayla döner
	_, err = svc.CheckIn(ctxBG(), session.Token, ei.ID, 0, "", "10.0.0.3")
	var dup *AlreadyCheckedInError
	require.True(t, errors.As(err, &dup))
	assert.True(t, dup.CheckedInAt.Equal(*checked.CheckedInAt))

	// Son girişler listesinde görünür
	recent, err := svc.RecentCheckins(ctxBG(), session.Token, 10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, ei.ID, recent[0].ID)

	stats, err := svc.ConsoleStats(ctxBG(), session.Token)
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.CheckedIn)
}

func TestUndoCheckinAllowsRetry(t *testing.T) {
	db := newTestDB(t)
	_, ei := checkinFixture(t, db, "UNDO25", "135790")

	svc := newCheckinTestService(t)
	session, err := svc.VerifyPin(ctxBG(), "UNDO25", "135790", testIP, testUA)
	require.NoError(t, err)

	// Giriş yapılmamış kayıt geri alınamaz
	err = svc.UndoCheckIn(ctxBG(), session.Token, ei.ID, "")
	assert.ErrorIs(t, err, ErrCheckinNotCheckedIn)

	_, err = svc.CheckIn(ctxBG(), session.Token, ei.ID, 1, "", "")
	require.NoError(t, err)
	require.NoError(t, svc.UndoCheckIn(ctxBG(), session.Token, ei.ID, ""))

	var fresh models.EventInvitee
	require.NoError(t, db.First(&fresh, ei.ID).Error)
	assert.False(t, fresh.CheckedIn)
	assert.Nil(t, fresh.CheckedInAt)
	assert.Equal(t, 0, fresh.ActualGuests)

	// Temizlenen kayıt yeniden giriş yapabilir
	_, err = svc.CheckIn(ctxBG(), session.Token, ei.ID, 0, "", "")
	assert.NoError(t, err)
}

func TestPinRegenerationInvalidatesSession(t *testing.T) {
	db := newTestDB(t)
	event, _ := checkinFixture(t, db, "ROTA25", "111222")

	svc := newCheckinTestService(t)
	session, err := svc.VerifyPin(ctxBG(), "ROTA25", "111222", testIP, testUA)
	require.NoError(t, err)

	_, err = svc.ValidateSession(ctxBG(), session.Token)
	require.NoError(t, err)

	// PIN yenilenince eldeki anahtar sonraki istekte geçersiz
	event.CheckinPin = "999888"
	require.NoError(t, db.Save(event).Error)
	_, err = svc.ValidateSession(ctxBG(), session.Token)
	assert.ErrorIs(t, err, ErrCheckinSessionInvalid)

	_, err = svc.ValidateSession(ctxBG(), "bozuk.token.degeri")
	assert.ErrorIs(t, err, ErrCheckinSessionInvalid)
}

func TestCheckinWrongEventAndStatusGuards(t *testing.T) {
	db := newTestDB(t)
	_, _ = checkinFixture(t, db, "ANA25", "314159")

	// İkinci, ilgisiz etkinliğin kaydı
	otherGroup := makeGroup(t, db, "Diğer Grup")
	otherOrg := makeUser(t, db, "diger-org", models.RoleOrganizer, &otherGroup.ID)
	otherEvent := makeEvent(t, db, "OTE25", eventtime.Now().Add(-time.Hour), eventtime.Now().Add(5*time.Hour))
	otherInvitee := makeInvitee(t, db, "Başka Davetli", "+201000000502", &otherGroup.ID)
	otherEI := makeInvitation(t, db, otherEvent, otherInvitee, otherOrg, models.StatusApproved)

	svc := newCheckinTestService(t)
	session, err := svc.VerifyPin(ctxBG(), "ANA25", "314159", testIP, testUA)
	require.NoError(t, err)

	_, err = svc.CheckIn(ctxBG(), session.Token, otherEI.ID, 0, "", "")
	assert.ErrorIs(t, err, ErrCheckinWrongEvent)

	// Onaysız kayıt içeri alınmaz
	pendingInvitee := makeInvitee(t, db, "Onaysız", "+201000000503", &otherGroup.ID)
	pending := makeInvitation(t, db, otherEvent, pendingInvitee, otherOrg, models.StatusWaitingForApproval)
	staff := makeUser(t, db, "gorevli", models.RoleCheckinAttendant, nil)
	_, err = svc.CheckInAsUser(ctxBG(), staff, pending.ID, 0, "", "")
	assert.ErrorIs(t, err, ErrCheckinNotApproved)
}

func TestStaffCheckinRecordsActor(t *testing.T) {
	db := newTestDB(t)
	_, ei := checkinFixture(t, db, "STAF25", "777333")
	staff := makeUser(t, db, "gorevli2", models.RoleCheckinAttendant, nil)
	organizer := makeUser(t, db, "yetkisiz-org", models.RoleOrganizer, nil)

	svc := newCheckinTestService(t)

	_, err := svc.CheckInAsUser(ctxBG(), organizer, ei.ID, 0, "", "")
	assert.ErrorIs(t, err, ErrCheckinSessionInvalid)

	checked, err := svc.CheckInAsUser(ctxBG(), staff, ei.ID, 1, "", "10.0.0.4")
	require.NoError(t, err)
	require.NotNil(t, checked.CheckedInByUserID)
	assert.Equal(t, staff.ID, *checked.CheckedInByUserID)
}
