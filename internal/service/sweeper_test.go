package service

import (
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/classroom-seating/internal/model"
)

func newSweeperFixture(t *testing.T) (*fixture, *Sweeper, redismock.ClientMock) {
	f := newFixture(t)
	past := fixedNow.Add(-time.Minute)
	f.subRoom(model.SubRoomTemporary, &past)

	rdb, mock := redismock.NewClientMock()
	sw := NewSweeper(newArchives(f.store), rdb, time.Minute, 30*time.Second, nil, newMetrics())
	sw.token = func() string { return "tok" }
	return f, sw, mock
}

func TestSweeper_SkipsWhenLockHeld(t *testing.T) {
	_, sw, mock := newSweeperFixture(t)
	mock.ExpectSetNX(SweepLockKey, "tok", 30*time.Second).SetVal(false)

	n, ran, err := sw.SweepOnce(t.Context())
	require.NoError(t, err)
	assert.False(t, ran)
	assert.Zero(t, n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSweeper_RunsAndReleasesLock(t *testing.T) {
	_, sw, mock := newSweeperFixture(t)
	mock.ExpectSetNX(SweepLockKey, "tok", 30*time.Second).SetVal(true)
	mock.ExpectEval(releaseScript, []string{SweepLockKey}, "tok").SetVal(int64(1))

	n, ran, err := sw.SweepOnce(t.Context())
	require.NoError(t, err)
	assert.True(t, ran)
	assert.Equal(t, 1, n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSweeper_WithoutRedis(t *testing.T) {
	f, _, _ := newSweeperFixture(t)
	sw := NewSweeper(newArchives(f.store), nil, time.Minute, time.Minute, nil, nil)

	n, ran, err := sw.SweepOnce(t.Context())
	require.NoError(t, err)
	assert.True(t, ran)
	assert.Equal(t, 1, n)
}
