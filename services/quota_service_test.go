package services

import (
	"testing"
	"time"

	"davetli.app/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetQuotaValidation(t *testing.T) {
	db := newTestDB(t)
	group := makeGroup(t, db, "Protokol")
	admin := makeUser(t, db, "admin1", models.RoleAdmin, nil)
	director := makeUser(t, db, "dir1", models.RoleDirector, &group.ID)
	event := makeEvent(t, db, "KNT25", testNow.Add(24*time.Hour), testNow.Add(30*time.Hour))

	svc := NewQuotaService()

	err := svc.SetQuota(ctxBG(), director, event.ID, group.ID, intPtr(10))
	assert.ErrorIs(t, err, ErrQuotaForbidden)

	err = svc.SetQuota(ctxBG(), admin, event.ID, group.ID, intPtr(-3))
	assert.ErrorIs(t, err, ErrQuotaNegative)

	err = svc.SetQuota(ctxBG(), admin, 9999, group.ID, intPtr(10))
	assert.ErrorIs(t, err, ErrQuotaEventNotFound)

	err = svc.SetQuota(ctxBG(), admin, event.ID, 9999, intPtr(10))
	assert.ErrorIs(t, err, ErrQuotaGroupNotFound)

	require.NoError(t, svc.SetQuota(ctxBG(), admin, event.ID, group.ID, intPtr(10)))
}

func TestCheckQuotaCountsLiveUsage(t *testing.T) {
	db := newTestDB(t)
	group := makeGroup(t, db, "Protokol")
	organizer := makeUser(t, db, "org1", models.RoleOrganizer, &group.ID)
	admin := makeUser(t, db, "admin2", models.RoleAdmin, nil)
	event := makeEvent(t, db, "CAN25", testNow.Add(24*time.Hour), testNow.Add(30*time.Hour))

	svc := NewQuotaService()

	// Kontenjan kaydı yoksa sınırsız
	status, err := svc.CheckQuota(ctxBG(), event.ID, group.ID)
	require.NoError(t, err)
	assert.Nil(t, status.Quota)
	assert.Nil(t, status.Remaining)

	require.NoError(t, svc.SetQuota(ctxBG(), admin, event.ID, group.ID, intPtr(3)))

	// Bekleyen + onaylı sayılır, reddedilen sayılmaz
	waiting := makeInvitee(t, db, "Bekleyen", "+201000000601", &group.ID)
	approved := makeInvitee(t, db, "Onaylı", "+201000000602", &group.ID)
	rejected := makeInvitee(t, db, "Reddedilen", "+201000000603", &group.ID)
	makeInvitation(t, db, event, waiting, organizer, models.StatusWaitingForApproval)
	makeInvitation(t, db, event, approved, organizer, models.StatusApproved)
	makeInvitation(t, db, event, rejected, organizer, models.StatusRejected)

	status, err = svc.CheckQuota(ctxBG(), event.ID, group.ID)
	require.NoError(t, err)
	require.NotNil(t, status.Quota)
	assert.Equal(t, 3, *status.Quota)
	assert.EqualValues(t, 2, status.Used)
	require.NotNil(t, status.Remaining)
	assert.Equal(t, 1, *status.Remaining)
}

func TestShrinkQuotaBelowUsageKeepsExisting(t *testing.T) {
	db := newTestDB(t)
	group := makeGroup(t, db, "Protokol")
	organizer := makeUser(t, db, "org2", models.RoleOrganizer, &group.ID)
	admin := makeUser(t, db, "admin3", models.RoleAdmin, nil)
	event := makeEvent(t, db, "SHRK25", testNow.Add(24*time.Hour), testNow.Add(30*time.Hour))

	inviteeSvc := NewInviteeService()
	for i, phone := range []string{"+201000000604", "+201000000605", "+201000000606"} {
		in := submitInput(event.ID, "Davetli", phone)
		in.Name = in.Name + string(rune('A'+i))
		_, err := inviteeSvc.SubmitInvitation(ctxBG(), organizer, in)
		require.NoError(t, err)
	}

	svc := NewQuotaService()
	// Kullanımın (3) altına çekmek mevcut kayıtları silmez
	require.NoError(t, svc.SetQuota(ctxBG(), admin, event.ID, group.ID, intPtr(1)))

	status, err := svc.CheckQuota(ctxBG(), event.ID, group.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, status.Used)
	require.NotNil(t, status.Remaining)
	assert.Equal(t, 0, *status.Remaining) // negatife inmez

	// Ama yeni başvuru engellenir
	_, err = inviteeSvc.SubmitInvitation(ctxBG(), organizer, submitInput(event.ID, "Fazla", "+201000000607"))
	assert.ErrorIs(t, err, ErrQuotaExceeded)
}

func TestRemoveQuotaRestoresUnlimited(t *testing.T) {
	db := newTestDB(t)
	group := makeGroup(t, db, "Protokol")
	admin := makeUser(t, db, "admin4", models.RoleAdmin, nil)
	event := makeEvent(t, db, "RMQ25", testNow.Add(24*time.Hour), testNow.Add(30*time.Hour))

	svc := NewQuotaService()
	require.NoError(t, svc.SetQuota(ctxBG(), admin, event.ID, group.ID, intPtr(0)))

	status, err := svc.CheckQuota(ctxBG(), event.ID, group.ID)
	require.NoError(t, err)
	require.NotNil(t, status.Quota)
	assert.Equal(t, 0, *status.Quota)

	require.NoError(t, svc.RemoveQuota(ctxBG(), admin, event.ID, group.ID))
	status, err = svc.CheckQuota(ctxBG(), event.ID, group.ID)
	require.NoError(t, err)
	assert.Nil(t, status.Quota)
}

func TestGetQuotasForEvent(t *testing.T) {
	db := newTestDB(t)
	groupA := makeGroup(t, db, "Grup A")
	groupB := makeGroup(t, db, "Grup B")
	admin := makeUser(t, db, "admin5", models.RoleAdmin, nil)
	event := makeEvent(t, db, "LSTQ25", testNow.Add(24*time.Hour), testNow.Add(30*time.Hour))

	svc := NewQuotaService()
	require.NoError(t, svc.SetQuota(ctxBG(), admin, event.ID, groupA.ID, intPtr(5)))
	require.NoError(t, svc.SetQuota(ctxBG(), admin, event.ID, groupB.ID, nil)) // açıkça sınırsız

	list, err := svc.GetQuotasForEvent(ctxBG(), event.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)

	byGroup := map[uint]QuotaStatus{}
	for _, q := range list {
		byGroup[q.InviterGroupID] = q
	}
	require.NotNil(t, byGroup[groupA.ID].Quota)
	assert.Equal(t, 5, *byGroup[groupA.ID].Quota)
	assert.Nil(t, byGroup[groupB.ID].Quota)
}
