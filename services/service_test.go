package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"davetli.app/configs"
	"davetli.app/database"
	"davetli.app/models"
	"davetli.app/pkg/eventtime"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testNow testlerde kullanılan sabit "şimdi".
var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func testClock() eventtime.Clock { return eventtime.Fixed{T: testNow} }

func fixedAt(t time.Time) eventtime.Clock { return eventtime.Fixed{T: t} }

// newTestDB her test için izole bir in-memory sqlite veritabanı açar ve
// global bağlantıyı ona yönlendirir.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.RunMigrationsInOrder(db))
	configs.SetDB(db)
	return db
}

func makeGroup(t *testing.T, db *gorm.DB, name string) *models.InviterGroup {
	t.Helper()
	g := &models.InviterGroup{Name: name}
	require.NoError(t, db.Create(g).Error)
	return g
}

func makeUser(t *testing.T, db *gorm.DB, username string, role models.Role, groupID *uint) *models.User {
	t.Helper()
	u := &models.User{Username: username, FullName: username, Role: role, InviterGroupID: groupID, IsActive: true}
	require.NoError(t, db.Create(u).Error)
	return u
}

func makeEvent(t *testing.T, db *gorm.DB, code string, start, end time.Time, groups ...*models.InviterGroup) *models.Event {
	t.Helper()
	e := &models.Event{
		Name:            "Test Etkinliği " + code,
		Code:            code,
		StartDate:       start,
		EndDate:         end,
		Status:          models.EventStatusUpcoming,
		CreatedByUserID: 1,
	}
	if len(groups) == 0 {
		e.IsAllGroups = true
	}
	require.NoError(t, db.Create(e).Error)
	for _, g := range groups {
		require.NoError(t, db.Model(e).Association("InviterGroups").Append(g))
	}
	if now := testNow; !e.StartDate.After(now) {
		if e.EndDate.After(now) {
			e.Status = models.EventStatusOngoing
		} else {
			e.Status = models.EventStatusEnded
		}
		require.NoError(t, db.Save(e).Error)
	}
	return e
}

func makeInvitee(t *testing.T, db *gorm.DB, name, phone string, groupID *uint) *models.Invitee {
	t.Helper()
	inv := &models.Invitee{
		Name:           name,
		Email:          name + "@example.com",
		Phone:          phone,
		InviterGroupID: groupID,
	}
	require.NoError(t, db.Create(inv).Error)
	return inv
}

func makeInvitation(t *testing.T, db *gorm.DB, event *models.Event, invitee *models.Invitee, submitter *models.User, status models.InvitationStatus) *models.EventInvitee {
	t.Helper()
	ei := &models.EventInvitee{
		EventID:       event.ID,
		InviteeID:     invitee.ID,
		InviterUserID: submitter.ID,
		InviterRole:   submitter.Role,
		Status:        status,
		StatusDate:    testNow,
	}
	require.NoError(t, db.Create(ei).Error)
	return ei
}

func intPtr(n int) *int { return &n }

func ctxBG() context.Context { return context.Background() }
