package ladder

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swangtree/poolr8ter/db"
)

const (
	reporterID = "11111111-1111-4111-8111-111111111111"
	opponentID = "22222222-2222-4222-8222-222222222222"
)

type stubInvalidator struct {
	calls int
}

func (s *stubInvalidator) Invalidate(context.Context) {
	s.calls++
}

// Both rating updates and the match insert between one Begin/Commit
// pair, for an even 1200 vs 1200 match won by the reporter.
func expectReportCommit(mock sqlmock.Sqlmock, playedAt time.Time) {
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, rating")).
		WithArgs(reporterID, opponentID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "rating"}).
			AddRow(reporterID, 1200.0).
			AddRow(opponentID, 1200.0))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE players SET rating")).
		WithArgs(1216.0, reporterID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE players SET rating")).
		WithArgs(1184.0, opponentID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO matches")).
		WithArgs(reporterID, opponentID, reporterID, 1200.0, 1216.0, 1200.0, 1184.0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "played_at"}).AddRow(int64(1), playedAt))
	mock.ExpectCommit()
}

func expectReportAborted(mock sqlmock.Sqlmock, code string) {
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, rating")).
		WithArgs(reporterID, opponentID).
		WillReturnError(&pq.Error{Code: pq.ErrorCode(code)})
	mock.ExpectRollback()
}

func TestReportMatchCommitsOneTransaction(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	playedAt := time.Date(2026, 8, 30, 21, 0, 0, 0, time.UTC)
	expectReportCommit(mock, playedAt)

	cache := &stubInvalidator{}
	feed := make(chan db.Match, 1)
	service := NewService(conn, cache, feed)

	match, err := service.ReportMatch(context.Background(), reporterID, opponentID, reporterID)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), match.ID)
	assert.Equal(t, reporterID, match.WinnerID)
	assert.InDelta(t, 1200, match.Player1RatingBefore, 1e-9)
	assert.InDelta(t, 1216, match.Player1RatingAfter, 1e-9)
	assert.InDelta(t, 1184, match.Player2RatingAfter, 1e-9)
	assert.Equal(t, playedAt, match.PlayedAt)

	assert.Equal(t, 1, cache.calls)
	assert.Len(t, feed, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportMatchRetriesAfterSerializationFailure(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	playedAt := time.Date(2026, 8, 30, 21, 0, 0, 0, time.UTC)
	expectReportAborted(mock, "40001")
	expectReportCommit(mock, playedAt)

	cache := &stubInvalidator{}
	service := NewService(conn, cache, nil)

	match, err := service.ReportMatch(context.Background(), reporterID, opponentID, reporterID)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), match.ID)
	assert.Equal(t, 1, cache.calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportMatchConflictAfterRetriesExhausted(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	for i := 0; i < reportRetries; i++ {
		expectReportAborted(mock, "40P01")
	}

	cache := &stubInvalidator{}
	feed := make(chan db.Match, 1)
	service := NewService(conn, cache, feed)

	_, err = service.ReportMatch(context.Background(), reporterID, opponentID, reporterID)
	assert.ErrorIs(t, err, ErrConflict)

	assert.Equal(t, 0, cache.calls)
	assert.Len(t, feed, 0)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportMatchUnknownPlayer(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	// Only the reporter's row exists; the opponent id resolves nothing.
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, rating")).
		WithArgs(reporterID, opponentID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "rating"}).
			AddRow(reporterID, 1200.0))
	mock.ExpectRollback()

	cache := &stubInvalidator{}
	service := NewService(conn, cache, nil)

	_, err = service.ReportMatch(context.Background(), reporterID, opponentID, reporterID)
	assert.ErrorIs(t, err, ErrPlayerNotFound)
	assert.Equal(t, 0, cache.calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportMatchStorageFailureIsNotAConflict(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	expectReportAborted(mock, "53300") // too_many_connections

	service := NewService(conn, nil, nil)

	_, err = service.ReportMatch(context.Background(), reporterID, opponentID, reporterID)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportMatchMalformedIDSkipsStorage(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	service := NewService(conn, nil, nil)

	_, err = service.ReportMatch(context.Background(), reporterID, "not-a-uuid", reporterID)
	assert.ErrorIs(t, err, ErrPlayerNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}