package services

import (
	"testing"
	"time"

	"davetli.app/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApproveBulkPartialSuccess(t *testing.T) {
	db := newTestDB(t)
	group := makeGroup(t, db, "Protokol")
	organizer := makeUser(t, db, "org1", models.RoleOrganizer, &group.ID)
	admin := makeUser(t, db, "admin1", models.RoleAdmin, nil)
	event := makeEvent(t, db, "BULK25", testNow.Add(24*time.Hour), testNow.Add(30*time.Hour))

	a := makeInvitee(t, db, "Bekleyen", "+201000000101", &group.ID)
	b := makeInvitee(t, db, "Onaylı", "+201000000102", &group.ID)
	pending := makeInvitation(t, db, event, a, organizer, models.StatusWaitingForApproval)
	approved := makeInvitation(t, db, event, b, organizer, models.StatusApproved)

	svc := NewApprovalService()
	summary := svc.Approve(ctxBG(), admin, []uint{pending.ID, approved.ID, 9999}, "", "")

	assert.Equal(t, 1, summary.Succeeded)
	assert.Equal(t, 2, summary.Failed)
	require.Len(t, summary.Results, 3)
	assert.True(t, summary.Results[0].OK)
	assert.Equal(t, ErrApprovalNotPending.Error(), summary.Results[1].Error)
	assert.Equal(t, ErrApprovalRecordNotFound.Error(), summary.Results[2].Error)

	var fresh models.EventInvitee
	require.NoError(t, db.First(&fresh, pending.ID).Error)
	assert.Equal(t, models.StatusApproved, fresh.Status)
	require.NotNil(t, fresh.ApprovedByUserID)
	assert.Equal(t, admin.ID, *fresh.ApprovedByUserID)
}

func TestDirectorCannotDecideOtherGroup(t *testing.T) {
	db := newTestDB(t)
	groupA := makeGroup(t, db, "Grup A")
	groupB := makeGroup(t, db, "Grup B")
	organizer := makeUser(t, db, "org2", models.RoleOrganizer, &groupA.ID)
	directorB := makeUser(t, db, "dirB", models.RoleDirector, &groupB.ID)
	event := makeEvent(t, db, "DIR25", testNow.Add(24*time.Hour), testNow.Add(30*time.Hour))

	invitee := makeInvitee(t, db, "A Grubu Davetlisi", "+201000000103", &groupA.ID)
	pending := makeInvitation(t, db, event, invitee, organizer, models.StatusWaitingForApproval)

	svc := NewApprovalService()
	summary := svc.Approve(ctxBG(), directorB, []uint{pending.ID}, "", "")

	assert.Equal(t, 0, summary.Succeeded)
	require.Len(t, summary.Results, 1)
	assert.Equal(t, ErrApprovalForbidden.Error(), summary.Results[0].Error)

	var fresh models.EventInvitee
	require.NoError(t, db.First(&fresh, pending.ID).Error)
	assert.Equal(t, models.StatusWaitingForApproval, fresh.Status)
}

func TestOrganizerCannotDecide(t *testing.T) {
	db := newTestDB(t)
	group := makeGroup(t, db, "Protokol")
	organizer := makeUser(t, db, "org3", models.RoleOrganizer, &group.ID)
	event := makeEvent(t, db, "ORG25", testNow.Add(24*time.Hour), testNow.Add(30*time.Hour))

	invitee := makeInvitee(t, db, "Kendi Kaydı", "+201000000104", &group.ID)
	pending := makeInvitation(t, db, event, invitee, organizer, models.StatusWaitingForApproval)

	svc := NewApprovalService()
	summary := svc.Approve(ctxBG(), organizer, []uint{pending.ID}, "", "")
	assert.Equal(t, 0, summary.Succeeded)
	assert.Equal(t, 1, summary.Failed)
}

func TestCancelClearsCodeAndPortalFields(t *testing.T) {
	db := newTestDB(t)
	group := makeGroup(t, db, "Protokol")
	organizer := makeUser(t, db, "org4", models.RoleOrganizer, &group.ID)
	admin := makeUser(t, db, "admin2", models.RoleAdmin, nil)
	event := makeEvent(t, db, "CNCL25", testNow.Add(24*time.Hour), testNow.Add(30*time.Hour))

	invitee := makeInvitee(t, db, "İptal Edilecek", "+201000000105", &group.ID)
	ei := makeInvitation(t, db, event, invitee, organizer, models.StatusApproved)

	code := "CNCL25-AB23"
	method := models.MethodWhatsapp
	accessed := testNow.Add(-time.Hour)
	confirmed := true
	guests := 2
	ei.AttendanceCode = &code
	ei.CodeGeneratedAt = &accessed
	ei.InvitationSent = true
	ei.InvitationMethod = &method
	ei.PortalAccessedAt = &accessed
	ei.AttendanceConfirmed = &confirmed
	ei.ConfirmedAt = &accessed
	ei.ConfirmedGuests = &guests
	require.NoError(t, db.Save(ei).Error)

	svc := NewApprovalService()
	summary, err := svc.Cancel(ctxBG(), admin, []uint{ei.ID}, "liste daraltıldı", "")
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Succeeded)

	var fresh models.EventInvitee
	require.NoError(t, db.First(&fresh, ei.ID).Error)
	assert.Equal(t, models.StatusRejected, fresh.Status)
	assert.Nil(t, fresh.AttendanceCode)
	assert.Nil(t, fresh.CodeGeneratedAt)
	assert.False(t, fresh.InvitationSent)
	assert.Nil(t, fresh.InvitationMethod)
	assert.Nil(t, fresh.PortalAccessedAt)
	assert.Nil(t, fresh.AttendanceConfirmed)
	assert.Nil(t, fresh.ConfirmedGuests)
}

func TestCancelBlockedAfterCheckin(t *testing.T) {
	db := newTestDB(t)
	group := makeGroup(t, db, "Protokol")
	organizer := makeUser(t, db, "org5", models.RoleOrganizer, &group.ID)
	admin := makeUser(t, db, "admin3", models.RoleAdmin, nil)
	event := makeEvent(t, db, "CHKD25", testNow.Add(-time.Hour), testNow.Add(5*time.Hour))

	invitee := makeInvitee(t, db, "İçeride", "+201000000106", &group.ID)
	ei := makeInvitation(t, db, event, invitee, organizer, models.StatusApproved)
	at := testNow.Add(-30 * time.Minute)
	ei.CheckedIn = true
	ei.CheckedInAt = &at
	require.NoError(t, db.Save(ei).Error)

	svc := NewApprovalService()
	summary, err := svc.Cancel(ctxBG(), admin, []uint{ei.ID}, "hatalı giriş", "")
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, string(ErrApprovalAfterCheckin), summary.Results[0].Error)
}

func TestCancelRequiresApprovedStatus(t *testing.T) {
	db := newTestDB(t)
	group := makeGroup(t, db, "Protokol")
	organizer := makeUser(t, db, "org6", models.RoleOrganizer, &group.ID)
	admin := makeUser(t, db, "admin4", models.RoleAdmin, nil)
	event := makeEvent(t, db, "NAPP25", testNow.Add(24*time.Hour), testNow.Add(30*time.Hour))

	invitee := makeInvitee(t, db, "Bekleyen", "+201000000107", &group.ID)
	pending := makeInvitation(t, db, event, invitee, organizer, models.StatusWaitingForApproval)

	svc := NewApprovalService()

	// Gerekçesiz iptal hiç işlenmez
	_, err := svc.Cancel(ctxBG(), admin, []uint{pending.ID}, "  ", "")
	assert.ErrorIs(t, err, ErrApprovalReasonRequired)

	summary, err := svc.Cancel(ctxBG(), admin, []uint{pending.ID}, "yanlış kayıt", "")
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, string(ErrApprovalNotApproved), summary.Results[0].Error)
}

func TestResubmitBlockedByCrossGroupPhoneConflict(t *testing.T) {
	db := newTestDB(t)
	groupA := makeGroup(t, db, "Grup A")
	groupB := makeGroup(t, db, "Grup B")
	orgA := makeUser(t, db, "orgA2", models.RoleOrganizer, &groupA.ID)
	orgB := makeUser(t, db, "orgB2", models.RoleOrganizer, &groupB.ID)
	event := makeEvent(t, db, "TEL25", testNow.Add(24*time.Hour), testNow.Add(30*time.Hour), groupA, groupB)

	// Red sonrası aynı numara başka grupça eklenmiş
	phone := "+201000000110"
	invA := makeInvitee(t, db, "A Kaydı", phone, &groupA.ID)
	rejected := makeInvitation(t, db, event, invA, orgA, models.StatusRejected)
	invB := makeInvitee(t, db, "B Kaydı", phone, &groupB.ID)
	makeInvitation(t, db, event, invB, orgB, models.StatusApproved)

	svc := NewApprovalService()
	_, err := svc.Resubmit(ctxBG(), orgA, rejected.ID, "")
	assert.ErrorIs(t, err, ErrInviteePhoneConflict)
}

func TestDecisionGroupResolvedFromInviterThenSubmitter(t *testing.T) {
	db := newTestDB(t)
	groupA := makeGroup(t, db, "Grup A")
	groupB := makeGroup(t, db, "Grup B")
	orgB := makeUser(t, db, "orgB3", models.RoleOrganizer, &groupB.ID)
	directorA := makeUser(t, db, "dirA2", models.RoleDirector, &groupA.ID)
	directorB := makeUser(t, db, "dirB2", models.RoleDirector, &groupB.ID)
	event := makeEvent(t, db, "GRP25", testNow.Add(24*time.Hour), testNow.Add(30*time.Hour), groupA, groupB)

	// Kontak A grubunda ama kaydı B grubunun organizatörü girmiş:
	// karar grubu kaydı girene göre çözümlenir
	contact := makeInvitee(t, db, "A Grubu Kontağı", "+201000000111", &groupA.ID)
	pending := makeInvitation(t, db, event, contact, orgB, models.StatusWaitingForApproval)

	svc := NewApprovalService()
	denied := svc.Approve(ctxBG(), directorA, []uint{pending.ID}, "", "")
	require.Equal(t, 1, denied.Failed)
	assert.Equal(t, string(ErrApprovalForbidden), denied.Results[0].Error)

	granted := svc.Approve(ctxBG(), directorB, []uint{pending.ID}, "", "")
	assert.Equal(t, 1, granted.Succeeded)

	// Davet eden kişi atanmışsa onun grubu öncelik kazanır
	inviter := &models.Inviter{Name: "A Grubu Daveti", InviterGroupID: &groupA.ID}
	require.NoError(t, db.Create(inviter).Error)
	contact2 := makeInvitee(t, db, "İkinci Kontak", "+201000000112", &groupA.ID)
	withInviter := makeInvitation(t, db, event, contact2, orgB, models.StatusWaitingForApproval)
	withInviter.InviterID = &inviter.ID
	require.NoError(t, db.Save(withInviter).Error)

	denied = svc.Approve(ctxBG(), directorB, []uint{withInviter.ID}, "", "")
	require.Equal(t, 1, denied.Failed)
	granted = svc.Approve(ctxBG(), directorA, []uint{withInviter.ID}, "", "")
	assert.Equal(t, 1, granted.Succeeded)
}

func TestListPendingScopedByRole(t *testing.T) {
	db := newTestDB(t)
	groupA := makeGroup(t, db, "Grup A")
	groupB := makeGroup(t, db, "Grup B")
	orgA := makeUser(t, db, "orgA", models.RoleOrganizer, &groupA.ID)
	orgB := makeUser(t, db, "orgB", models.RoleOrganizer, &groupB.ID)
	directorA := makeUser(t, db, "dirA", models.RoleDirector, &groupA.ID)
	admin := makeUser(t, db, "admin5", models.RoleAdmin, nil)
	event := makeEvent(t, db, "LIST25", testNow.Add(24*time.Hour), testNow.Add(30*time.Hour))

	invA := makeInvitee(t, db, "A Davetlisi", "+201000000108", &groupA.ID)
	invB := makeInvitee(t, db, "B Davetlisi", "+201000000109", &groupB.ID)
	makeInvitation(t, db, event, invA, orgA, models.StatusWaitingForApproval)
	makeInvitation(t, db, event, invB, orgB, models.StatusWaitingForApproval)

	svc := NewApprovalService()

	all, err := svc.ListPending(ctxBG(), admin, event.ID)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	forDirector, err := svc.ListPending(ctxBG(), directorA, event.ID)
	require.NoError(t, err)
	require.Len(t, forDirector, 1)
	assert.Equal(t, invA.ID, forDirector[0].InviteeID)

	forOrganizer, err := svc.ListPending(ctxBG(), orgB, event.ID)
	require.NoError(t, err)
	require.Len(t, forOrganizer, 1)
	assert.Equal(t, invB.ID, forOrganizer[0].InviteeID)
}
