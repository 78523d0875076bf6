package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestWindowRangeDay(t *testing.T) {
	w := TimeWindow{Year: 2024, Month: 1, Day: 31}
	require.NoError(t, w.Validate())

	start, end := w.Range()
	assert.Equal(t, date(2024, time.January, 31), start)
	assert.Equal(t, start, end)
}

func TestWindowRangeMonth(t *testing.T) {
	start, end := TimeWindow{Year: 2024, Month: 2}.Range()
	assert.Equal(t, date(2024, time.February, 1), start)
	assert.Equal(t, date(2024, time.February, 29), end)

	// December rolls into the next year for its upper bound.
	start, end = TimeWindow{Year: 2023, Month: 12}.Range()
	assert.Equal(t, date(2023, time.December, 1), start)
	assert.Equal(t, date(2023, time.December, 31), end)
}

func TestWindowRangeYear(t *testing.T) {
	start, end := TimeWindow{Year: 2024}.Range()
	assert.Equal(t, date(2024, time.January, 1), start)
	assert.Equal(t, date(2024, time.December, 31), end)
}

func TestWindowRangeWeek(t *testing.T) {
	// Week 1 of 2024 contains January 4th; the Monday of that week is
	// January 1st.
	start, end := TimeWindow{Year: 2024, Week: 1}.Range()
	assert.Equal(t, date(2024, time.January, 1), start)
	assert.Equal(t, date(2024, time.January, 7), end)

	// 2021: January 4th is a Monday.
	start, end = TimeWindow{Year: 2021, Week: 2}.Range()
	assert.Equal(t, date(2021, time.January, 11), start)
	assert.Equal(t, date(2021, time.January, 17), end)
}

func TestWindowValidateWeek53(t *testing.T) {
	// 2020 has 53 ISO weeks, 2021 has 52.
	assert.NoError(t, TimeWindow{Year: 2020, Week: 53}.Validate())

	err := TimeWindow{Year: 2021, Week: 53}.Validate()
	require.Error(t, err)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, CodeInvalidWeek, verr.Code)
}

func TestWindowValidateDay(t *testing.T) {
	assert.NoError(t, TimeWindow{Year: 2024, Month: 2, Day: 29}.Validate())

	err := TimeWindow{Year: 2023, Month: 2, Day: 29}.Validate()
	require.Error(t, err)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, CodeInvalidDay, verr.Code)

	// Day without month does not identify a bucket.
	assert.Error(t, TimeWindow{Year: 2024, Day: 5}.Validate())
}

func TestWindowValidateWeekExclusive(t *testing.T) {
	// A week never combines with month or day; without this check Range
	// would take the week branch and silently ignore the month.
	var verr *ValidationError

	err := TimeWindow{Year: 2026, Month: 5, Week: 2}.Validate()
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, CodeInvalidDate, verr.Code)

	err = TimeWindow{Year: 2026, Month: 5, Day: 12, Week: 2}.Validate()
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, CodeInvalidDate, verr.Code)

	assert.NoError(t, TimeWindow{Year: 2026, Week: 2}.Validate())
}
