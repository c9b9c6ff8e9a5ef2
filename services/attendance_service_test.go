package services

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"davetli.app/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCodeFormatAndIdempotence(t *testing.T) {
	db := newTestDB(t)
	group := makeGroup(t, db, "Protokol")
	organizer := makeUser(t, db, "org1", models.RoleOrganizer, &group.ID)
	admin := makeUser(t, db, "admin1", models.RoleAdmin, nil)
	event := makeEvent(t, db, "KOD25", testNow.Add(24*time.Hour), testNow.Add(30*time.Hour))

	invitee := makeInvitee(t, db, "Kodlu", "+201000000301", &group.ID)
	approved := makeInvitation(t, db, event, invitee, organizer, models.StatusApproved)

	svc := NewAttendanceService()
	first, err := svc.GenerateCode(ctxBG(), admin, approved.ID)
	require.NoError(t, err)
	require.NotNil(t, first.AttendanceCode)
	code := *first.AttendanceCode

	// Önek etkinlik adından türetilir: "Test Etkinliği KOD25" → TEST
	assert.True(t, strings.HasPrefix(code, "TEST-"), "önek etkinlik adından türetilmeli: %s", code)
	suffix := strings.TrimPrefix(code, "TEST-")
	assert.Len(t, suffix, 4)
	for _, r := range suffix {
		assert.Contains(t, "ABCDEFGHJKMNPQRSTUVWXYZ23456789", string(r),
			"karıştırılabilir karakter içermemeli: %s", code)
	}
	require.NotNil(t, first.CodeGeneratedAt)

	// Kodu olan kayıt için tekrar çağrı mevcut kodu döndürür
	second, err := svc.GenerateCode(ctxBG(), admin, approved.ID)
	require.NoError(t, err)
	require.NotNil(t, second.AttendanceCode)
	assert.Equal(t, code, *second.AttendanceCode)
}

func TestGenerateCodePrefixFromEventName(t *testing.T) {
	db := newTestDB(t)
	group := makeGroup(t, db, "Protokol")
	organizer := makeUser(t, db, "org-pfx", models.RoleOrganizer, &group.ID)
	admin := makeUser(t, db, "admin-pfx", models.RoleAdmin, nil)
	svc := NewAttendanceService()

	gala := makeEvent(t, db, "GLN25", testNow.Add(24*time.Hour), testNow.Add(30*time.Hour))
	require.NoError(t, db.Model(gala).Update("name", "Gala Gecesi").Error)
	galaInv := makeInvitee(t, db, "Gala Davetlisi", "+201000000310", &group.ID)
	galaRec := makeInvitation(t, db, gala, galaInv, organizer, models.StatusApproved)

	coded, err := svc.GenerateCode(ctxBG(), admin, galaRec.ID)
	require.NoError(t, err)
	require.NotNil(t, coded.AttendanceCode)
	assert.True(t, strings.HasPrefix(*coded.AttendanceCode, "GALA-"),
		"boşluklar atılıp ilk 4 harf büyütülmeli: %s", *coded.AttendanceCode)

	// Adında harf/rakam yoksa EVT<id> kullanılır
	bare := makeEvent(t, db, "SYM25", testNow.Add(24*time.Hour), testNow.Add(30*time.Hour))
	require.NoError(t, db.Model(bare).Update("name", "*** !!!").Error)
	bareInv := makeInvitee(t, db, "Simgeli Davetli", "+201000000311", &group.ID)
	bareRec := makeInvitation(t, db, bare, bareInv, organizer, models.StatusApproved)

	coded, err = svc.GenerateCode(ctxBG(), admin, bareRec.ID)
	require.NoError(t, err)
	require.NotNil(t, coded.AttendanceCode)
	assert.True(t, strings.HasPrefix(*coded.AttendanceCode, fmt.Sprintf("EVT%d-", bare.ID)),
		"harf/rakam içermeyen ad EVT önekine düşmeli: %s", *coded.AttendanceCode)
}

func TestGenerateCodeRequiresApproval(t *testing.T) {
	db := newTestDB(t)
	group := makeGroup(t, db, "Protokol")
	organizer := makeUser(t, db, "org2", models.RoleOrganizer, &group.ID)
	admin := makeUser(t, db, "admin2", models.RoleAdmin, nil)
	event := makeEvent(t, db, "BKL25", testNow.Add(24*time.Hour), testNow.Add(30*time.Hour))

	invitee := makeInvitee(t, db, "Bekleyen", "+201000000302", &group.ID)
	pending := makeInvitation(t, db, event, invitee, organizer, models.StatusWaitingForApproval)

	svc := NewAttendanceService()
	_, err := svc.GenerateCode(ctxBG(), admin, pending.ID)
	assert.ErrorIs(t, err, ErrAttendanceNotApproved)

	// Organizatörün kod üretme yetkisi yoktur
	_, err = svc.GenerateCode(ctxBG(), organizer, pending.ID)
	assert.ErrorIs(t, err, ErrAttendanceForbidden)
}

func TestGenerateCodesForEventSummary(t *testing.T) {
	db := newTestDB(t)
	group := makeGroup(t, db, "Protokol")
	organizer := makeUser(t, db, "org3", models.RoleOrganizer, &group.ID)
	admin := makeUser(t, db, "admin3", models.RoleAdmin, nil)
	event := makeEvent(t, db, "TOP25", testNow.Add(24*time.Hour), testNow.Add(30*time.Hour))

	withCode := makeInvitation(t, db, event,
		makeInvitee(t, db, "Kodu Var", "+201000000303", &group.ID), organizer, models.StatusApproved)
	existing := "TOP25-XY45"
	withCode.AttendanceCode = &existing
	require.NoError(t, db.Save(withCode).Error)

	makeInvitation(t, db, event,
		makeInvitee(t, db, "Kodsuz Bir", "+201000000304", &group.ID), organizer, models.StatusApproved)
	makeInvitation(t, db, event,
		makeInvitee(t, db, "Kodsuz İki", "+201000000305", &group.ID), organizer, models.StatusApproved)
	makeInvitation(t, db, event,
		makeInvitee(t, db, "Onaysız", "+201000000306", &group.ID), organizer, models.StatusWaitingForApproval)

	svc := NewAttendanceService()
	summary, err := svc.GenerateCodesForEvent(ctxBG(), admin, event.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Generated)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 0, summary.Failed)

	var remaining int64
	require.NoError(t, db.Model(&models.EventInvitee{}).
		Where("event_id = ? AND status = ? AND attendance_code IS NULL", event.ID, models.StatusApproved).
		Count(&remaining).Error)
	assert.EqualValues(t, 0, remaining)
}

func TestMarkSentRequiresCode(t *testing.T) {
	db := newTestDB(t)
	group := makeGroup(t, db, "Protokol")
	organizer := makeUser(t, db, "org4", models.RoleOrganizer, &group.ID)
	admin := makeUser(t, db, "admin4", models.RoleAdmin, nil)
	event := makeEvent(t, db, "SND25", testNow.Add(24*time.Hour), testNow.Add(30*time.Hour))

	coded := makeInvitation(t, db, event,
		makeInvitee(t, db, "Kodlu", "+201000000307", &group.ID), organizer, models.StatusApproved)
	code := "SND25-AB23"
	coded.AttendanceCode = &code
	require.NoError(t, db.Save(coded).Error)

	codeless := makeInvitation(t, db, event,
		makeInvitee(t, db, "Kodsuz", "+201000000308", &group.ID), organizer, models.StatusApproved)

	svc := NewAttendanceService()
	summary := svc.MarkInvitationsSent(ctxBG(), admin, []uint{coded.ID, codeless.ID}, models.MethodWhatsapp)
	assert.Equal(t, 1, summary.Succeeded)
	assert.Equal(t, 1, summary.Failed)
	require.Len(t, summary.Results, 2)
	assert.Equal(t, ErrAttendanceNoCode.Error(), summary.Results[1].Error)

	var fresh models.EventInvitee
	require.NoError(t, db.First(&fresh, coded.ID).Error)
	assert.True(t, fresh.InvitationSent)
	require.NotNil(t, fresh.InvitationMethod)
	assert.Equal(t, models.MethodWhatsapp, *fresh.InvitationMethod)
	require.NotNil(t, fresh.InvitationSentAt)
}

func TestMarkSentRejectsUnknownMethod(t *testing.T) {
	db := newTestDB(t)
	admin := makeUser(t, db, "admin5", models.RoleAdmin, nil)

	svc := NewAttendanceService()
	summary := svc.MarkInvitationsSent(ctxBG(), admin, []uint{1}, models.InvitationMethod("pigeon"))
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, ErrInvitationMethodInvalid.Error(), summary.Results[0].Error)
}

func TestUndoMarkSentPreservesCode(t *testing.T) {
	db := newTestDB(t)
	group := makeGroup(t, db, "Protokol")
	organizer := makeUser(t, db, "org5", models.RoleOrganizer, &group.ID)
	admin := makeUser(t, db, "admin6", models.RoleAdmin, nil)
	event := makeEvent(t, db, "UND25", testNow.Add(24*time.Hour), testNow.Add(30*time.Hour))

	ei := makeInvitation(t, db, event,
		makeInvitee(t, db, "Geri Alınan", "+201000000309", &group.ID), organizer, models.StatusApproved)
	code := "UND25-CD34"
	method := models.MethodEmail
	sentAt := testNow
	ei.AttendanceCode = &code
	ei.InvitationSent = true
	ei.InvitationMethod = &method
	ei.InvitationSentAt = &sentAt
	require.NoError(t, db.Save(ei).Error)

	svc := NewAttendanceService()
	require.NoError(t, svc.UndoMarkSent(ctxBG(), admin, ei.ID))

	var fresh models.EventInvitee
	require.NoError(t, db.First(&fresh, ei.ID).Error)
	assert.False(t, fresh.InvitationSent)
	assert.Nil(t, fresh.InvitationMethod)
	assert.Nil(t, fresh.InvitationSentAt)
	require.NotNil(t, fresh.AttendanceCode)
	assert.Equal(t, code, *fresh.AttendanceCode)

	// İkinci geri alma hata verir
	err := svc.UndoMarkSent(ctxBG(), admin, ei.ID)
	assert.ErrorIs(t, err, ErrAttendanceNotSent)
}

func TestAttendanceStats(t *testing.T) {
	db := newTestDB(t)
	group := makeGroup(t, db, "Protokol")
	organizer := makeUser(t, db, "org6", models.RoleOrganizer, &group.ID)
	admin := makeUser(t, db, "admin7", models.RoleAdmin, nil)
	event := makeEvent(t, db, "STAT25", testNow.Add(-time.Hour), testNow.Add(5*time.Hour))

	// Onaylı, 2 misafir teyit etmiş, check-in yapmış (1 misafirle gelmiş)
	a := makeInvitation(t, db, event,
		makeInvitee(t, db, "Gelen", "+201000000310", &group.ID), organizer, models.StatusApproved)
	codeA := "STAT25-EF45"
	confirmedA := true
	guestsA := 2
	at := testNow
	a.AttendanceCode = &codeA
	a.PlusOne = 2
	a.InvitationSent = true
	a.AttendanceConfirmed = &confirmedA
	a.ConfirmedGuests = &guestsA
	a.CheckedIn = true
	a.CheckedInAt = &at
	a.ActualGuests = 1
	require.NoError(t, db.Save(a).Error)

	// Onaylı, gelmeyeceğini bildirmiş
	b := makeInvitation(t, db, event,
		makeInvitee(t, db, "Gelmeyen", "+201000000311", &group.ID), organizer, models.StatusApproved)
	confirmedB := false
	b.AttendanceConfirmed = &confirmedB
	require.NoError(t, db.Save(b).Error)

	// Onaylı, hiç yanıt vermemiş
	makeInvitation(t, db, event,
		makeInvitee(t, db, "Sessiz", "+201000000312", &group.ID), organizer, models.StatusApproved)

	// Bekleyen kayıt sayımlara girmez
	makeInvitation(t, db, event,
		makeInvitee(t, db, "Bekleyen", "+201000000313", &group.ID), organizer, models.StatusWaitingForApproval)

	svc := NewAttendanceService()
	stats, err := svc.GetStats(ctxBG(), admin, event.ID)
	require.NoError(t, err)

	assert.EqualValues(t, 3, stats.TotalApproved)
	assert.EqualValues(t, 1, stats.CodesGenerated)
	assert.EqualValues(t, 1, stats.InvitationsSent)
	assert.EqualValues(t, 1, stats.ConfirmedComing)
	assert.EqualValues(t, 1, stats.ConfirmedNotComing)
	assert.EqualValues(t, 1, stats.NotResponded)
	assert.EqualValues(t, 1, stats.CheckedIn)
	assert.EqualValues(t, 2, stats.NotCheckedIn)
	assert.EqualValues(t, 2, stats.TotalConfirmedGuest)
	assert.EqualValues(t, 1, stats.TotalActualGuests)
	assert.EqualValues(t, 2, stats.TotalPlusOneAllowed)
	assert.EqualValues(t, 5, stats.ExpectedTotal) // 3 onaylı + 2 misafir hakkı
	assert.EqualValues(t, 2, stats.ActualTotal)   // check-in: kendisi + 1 misafir
}
