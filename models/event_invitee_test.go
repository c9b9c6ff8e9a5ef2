package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var decisionTime = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func TestClampGuests(t *testing.T) {
	ei := &EventInvitee{PlusOne: 2}
	assert.Equal(t, 0, ei.ClampGuests(-5))
	assert.Equal(t, 0, ei.ClampGuests(0))
	assert.Equal(t, 2, ei.ClampGuests(2))
	assert.Equal(t, 2, ei.ClampGuests(9))

	none := &EventInvitee{PlusOne: 0}
	assert.Equal(t, 0, none.ClampGuests(3))
}

func TestApproveAndReject(t *testing.T) {
	ei := &EventInvitee{Status: StatusWaitingForApproval}
	ei.Approve(42, RoleAdmin, "uygun", decisionTime)
	assert.Equal(t, StatusApproved, ei.Status)
	require.NotNil(t, ei.ApprovedByUserID)
	assert.EqualValues(t, 42, *ei.ApprovedByUserID)
	assert.Equal(t, "uygun", ei.ApprovalNotes)
	assert.True(t, ei.StatusDate.Equal(decisionTime))

	ei.Reject(43, RoleDirector, "", decisionTime.Add(time.Hour))
	assert.Equal(t, StatusRejected, ei.Status)
	assert.EqualValues(t, 43, *ei.ApprovedByUserID)
	assert.Equal(t, "uygun", ei.ApprovalNotes) // boş not eskisini ezmez
}

func TestResubmitClearsDecision(t *testing.T) {
	ei := &EventInvitee{Status: StatusWaitingForApproval}
	ei.Reject(42, RoleAdmin, "eksik bilgi", decisionTime)

	ei.Resubmit(decisionTime.Add(2 * time.Hour))
	assert.Equal(t, StatusWaitingForApproval, ei.Status)
	assert.Nil(t, ei.ApprovedByUserID)
	assert.Nil(t, ei.ApproverRole)
	assert.Empty(t, ei.ApprovalNotes)
	assert.True(t, ei.StatusDate.Equal(decisionTime.Add(2*time.Hour)))
}

func TestRecordPortalAccessOnlyOnce(t *testing.T) {
	ei := &EventInvitee{}
	ei.RecordPortalAccess(decisionTime)
	require.NotNil(t, ei.PortalAccessedAt)
	first := *ei.PortalAccessedAt

	ei.RecordPortalAccess(decisionTime.Add(time.Hour))
	assert.True(t, first.Equal(*ei.PortalAccessedAt))
}

func TestConfirmAttendanceLastWriteWins(t *testing.T) {
	ei := &EventInvitee{PlusOne: 1}

	ei.ConfirmAttendance(true, nil, decisionTime)
	require.NotNil(t, ei.AttendanceConfirmed)
	assert.True(t, *ei.AttendanceConfirmed)
	assert.Nil(t, ei.ConfirmedGuests) // sayı verilmediyse dokunulmaz

	guests := 4
	ei.ConfirmAttendance(true, &guests, decisionTime.Add(time.Hour))
	require.NotNil(t, ei.ConfirmedGuests)
	assert.Equal(t, 1, *ei.ConfirmedGuests) // tavana kırpılır

	ei.ConfirmAttendance(false, nil, decisionTime.Add(2*time.Hour))
	assert.False(t, *ei.AttendanceConfirmed)
}

func TestCheckInAndUndo(t *testing.T) {
	ei := &EventInvitee{PlusOne: 2}
	staffID := uint(9)
	ei.CheckIn(&staffID, 5, "kapı 1", decisionTime)

	assert.True(t, ei.CheckedIn)
	require.NotNil(t, ei.CheckedInAt)
	assert.EqualValues(t, 9, *ei.CheckedInByUserID)
	assert.Equal(t, 2, ei.ActualGuests) // tavana kırpılır
	assert.Equal(t, "kapı 1", ei.CheckInNotes)

	ei.UndoCheckIn()
	assert.False(t, ei.CheckedIn)
	assert.Nil(t, ei.CheckedInAt)
	assert.Nil(t, ei.CheckedInByUserID)
	assert.Equal(t, 0, ei.ActualGuests)
	assert.Empty(t, ei.CheckInNotes)
}

func TestMarkInvitationSentAndUndo(t *testing.T) {
	ei := &EventInvitee{}
	ei.MarkInvitationSent(MethodWhatsapp, decisionTime)
	assert.True(t, ei.InvitationSent)
	require.NotNil(t, ei.InvitationMethod)
	assert.Equal(t, MethodWhatsapp, *ei.InvitationMethod)
	require.NotNil(t, ei.InvitationSentAt)

	ei.UndoInvitationSent()
	assert.False(t, ei.InvitationSent)
	assert.Nil(t, ei.InvitationMethod)
	assert.Nil(t, ei.InvitationSentAt)
}

func TestInvitationMethodValidation(t *testing.T) {
	for _, m := range []InvitationMethod{MethodEmail, MethodWhatsapp, MethodPhysical, MethodSMS} {
		assert.True(t, m.Valid(), string(m))
	}
	assert.False(t, InvitationMethod("pigeon").Valid())
	assert.False(t, InvitationMethod("").Valid())
}
