package database

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func TestHealthCheckerCheckSuccess(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectPing()

	hc := NewHealthChecker(db, newTestLogger())
	err = hc.Check(context.Background())

	assert.NoError(t, err)
	assert.True(t, hc.IsHealthy())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHealthCheckerCheckFailure(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectPing().WillReturnError(assert.AnError)

	hc := NewHealthChecker(db, newTestLogger())
	err = hc.Check(context.Background())

	assert.Error(t, err)
	assert.False(t, hc.IsHealthy())

	status := hc.Status()
	assert.False(t, status.Healthy)
	assert.NotEmpty(t, status.LastError)
	assert.False(t, status.LastCheck.IsZero())
}

func TestHealthCheckerStartRunsInitialCheck(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectPing()

	hc := NewHealthChecker(db, newTestLogger())
	hc.SetInterval(time.Minute)

	go hc.Start(context.Background())

	// Start先执行一次立即检查，之后才进入定时循环
	assert.Eventually(t, hc.IsHealthy, time.Second, 10*time.Millisecond)
	hc.Stop()
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHealthCheckerStatusAfterRecovery(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectPing().WillReturnError(assert.AnError)
	mock.ExpectPing()

	hc := NewHealthChecker(db, newTestLogger())

	require.Error(t, hc.Check(context.Background()))
	require.NoError(t, hc.Check(context.Background()))

	status := hc.Status()
	assert.True(t, status.Healthy)
	assert.Empty(t, status.LastError)
}
