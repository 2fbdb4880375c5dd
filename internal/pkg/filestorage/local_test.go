package filestorage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/fneseed/internal/pkg/apperrors"
)

func TestReportName(t *testing.T) {
	ts := time.Date(2024, 3, 9, 14, 5, 7, 0, time.FixedZone("CLT", -3*3600))
	assert.Equal(t, "seed-report-20240309T170507Z.json", ReportName(ts))
}

func TestLocalStorageRoundTrip(t *testing.T) {
	ls, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = ls.LatestReport()
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)

	older := ReportName(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	newer := ReportName(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	_, err = ls.SaveReport(newer, []byte(`{"run":"b"}`))
	require.NoError(t, err)
	_, err = ls.SaveReport(older, []byte(`{"run":"a"}`))
	require.NoError(t, err)

	reports, err := ls.ListReports()
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, newer, reports[0].Filename)

	latest, err := ls.LatestReport()
	require.NoError(t, err)
	assert.Equal(t, newer, latest.Filename)

	data, err := ls.ReadReport(older)
	require.NoError(t, err)
	assert.JSONEq(t, `{"run":"a"}`, string(data))
}

func TestLocalStorageRejectsForeignNames(t *testing.T) {
	ls, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	for _, name := range []string{"../etc/passwd", "notes.txt", "seed-report-latest.json"} {
		_, err := ls.ReadReport(name)
		assert.ErrorIs(t, err, apperrors.ErrBadRequest, name)
		_, err = ls.SaveReport(name, []byte("{}"))
		assert.ErrorIs(t, err, apperrors.ErrBadRequest, name)
	}

	_, err = ls.ReadReport(ReportName(time.Now()))
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
}
