package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoushou-fitness/clubbot/internal/domain"
	"github.com/shoushou-fitness/clubbot/pkg/logging"
)

// fakeGateway serves canned sheets and counts fetches.
type fakeGateway struct {
	sheets map[string][]domain.Record
	err    error
	calls  map[string]int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{sheets: testSheets(), calls: map[string]int{}}
}

func (f *fakeGateway) AllRecords(ctx context.Context, sheet string) ([]domain.Record, error) {
	f.calls[sheet]++
	if f.err != nil {
		return nil, f.err
	}
	return f.sheets[sheet], nil
}

func testSheets() map[string][]domain.Record {
	return map[string][]domain.Record{
		"Members": {
			{"Member ID": "A00012", "Name": "王小明", "Phone": float64(912345678), "Membership Type": "Gold", "Points": float64(1200), "Expiry Date": "2026-12-31"},
			{"Member ID": "B00013", "Name": "Chen Wei", "Phone": "0987654321", "Membership Type": "Silver", "Points": float64(80), "Expiry Date": "2026-03-01"},
			{"Member ID": "C00012", "Name": "Duplicate Digits", "Phone": "0900000000", "Membership Type": "Basic"},
		},
		"FAQ": {
			{"Category": "Membership", "Question": "How do I join?", "Answer": "Visit the front desk."},
			{"Category": "Payment", "Question": "Cards?", "Answer": "Yes."},
			{"Category": "Membership", "Question": "Can I pause?", "Answer": "Up to 3 months."},
		},
		"Facilities": {
			{"Name": "Treadmill Row", "Category": "Cardio", "Location": "2F"},
			{"Name": "Lap Pool", "Category": "Pool", "Location": "B1"},
			{"Name": "Bike Corner", "Category": "Cardio", "Location": "2F"},
		},
		"Courses": {
			{"Course": "Morning Flow", "Type": "Yoga", "Date": "2025/05/01"},
			{"Course": "Sunset Flow", "Type": "Yoga", "Date": "2025-05-02"},
			{"Course": "Power Ride", "Type": "Spinning", "Date": "2025-05-01"},
		},
		"Coaches": {
			{"Name": "Lin", "Type": "Personal Trainer"},
		},
		"FitnessLog": {
			{"Name": "王 小明", "Phone": "0912345678", "Date": "2025-04-01", "Exercise": "Run"},
			{"Name": "王小明", "Phone": float64(912345678), "Date": "2025-04-02", "Exercise": "Swim"},
			{"Name": "王小明", "Phone": "0911111111", "Date": "2025-04-03", "Exercise": "Row"},
		},
	}
}

func newTestLookup(gw domain.DataGateway) *LookupService {
	return NewLookupService(gw, domain.DefaultSheetNames(), nil, logging.Discard())
}

func TestLookupMemberByID(t *testing.T) {
	gw := newFakeGateway()
	svc := newTestLookup(gw)

	for _, key := range []string{"A00012", "A-000 12", "a00012"} {
		res, err := svc.Query(context.Background(), domain.QueryRequest{Kind: domain.QueryMemberByID, Key: key})
		require.NoError(t, err)
		require.True(t, res.Point)
		require.Len(t, res.Records, 1, key)
		assert.Equal(t, "王小明", res.First().String("Name"))
	}
	assert.Equal(t, 3, gw.calls["Members"], "sheet is re-fetched on every call")
}

func TestLookupMemberByIDMiss(t *testing.T) {
	svc := newTestLookup(newFakeGateway())

	res, err := svc.Query(context.Background(), domain.QueryRequest{Kind: domain.QueryMemberByID, Key: "Z99999"})
	require.NoError(t, err)
	assert.False(t, res.Found())
	assert.Equal(t, domain.QueryMemberByID, res.Kind)
}

func TestLookupMemberByNameAndPhone(t *testing.T) {
	svc := newTestLookup(newFakeGateway())

	res, err := svc.Query(context.Background(), domain.QueryRequest{
		Kind: domain.QueryMemberByNameAndPhone, Name: "王小明", Phone: "0912345678",
	})
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	assert.Equal(t, "A00012", res.First().String("Member ID"))

	res, err = svc.Query(context.Background(), domain.QueryRequest{
		Kind: domain.QueryMemberByNameAndPhone, Name: "ChenWei", Phone: "0987654321",
	})
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	assert.Equal(t, "B00013", res.First().String("Member ID"))
}

func TestLookupCategoricalReturnsAllMatchesInOrder(t *testing.T) {
	svc := newTestLookup(newFakeGateway())

	res, err := svc.Query(context.Background(), domain.QueryRequest{Kind: domain.QueryFaqByCategory, Key: "Membership"})
	require.NoError(t, err)
	assert.False(t, res.Point)
	require.Len(t, res.Records, 2)
	assert.Equal(t, "How do I join?", res.Records[0].String("Question"))
	assert.Equal(t, "Can I pause?", res.Records[1].String("Question"))

	res, err = svc.Query(context.Background(), domain.QueryRequest{Kind: domain.QueryFacilityByCategory, Key: "cardio"})
	require.NoError(t, err)
	assert.Len(t, res.Records, 2)

	res, err = svc.Query(context.Background(), domain.QueryRequest{Kind: domain.QueryCoachByType, Key: "Personal Trainer"})
	require.NoError(t, err)
	assert.Len(t, res.Records, 1)
}

func TestLookupCourses(t *testing.T) {
	svc := newTestLookup(newFakeGateway())

	res, err := svc.Query(context.Background(), domain.QueryRequest{Kind: domain.QueryCourseByType, Key: "Yoga"})
	require.NoError(t, err)
	assert.Len(t, res.Records, 2)

	res, err = svc.Query(context.Background(), domain.QueryRequest{Kind: domain.QueryCourseByDate, Key: "2025-05-01"})
	require.NoError(t, err)
	require.Len(t, res.Records, 2)
	assert.Equal(t, "Morning Flow", res.Records[0].String("Course"))
	assert.Equal(t, "Power Ride", res.Records[1].String("Course"))
}

func TestLookupCourseByDateMatchesUnpaddedCells(t *testing.T) {
	gw := newFakeGateway()
	gw.sheets["Courses"] = []domain.Record{
		{"Course": "Morning Flow", "Type": "Yoga", "Date": "2025/5/1"},
		{"Course": "Sunset Flow", "Type": "Yoga", "Date": "2025-5-2"},
	}
	svc := newTestLookup(gw)

	res, err := svc.Query(context.Background(), domain.QueryRequest{Kind: domain.QueryCourseByDate, Key: "2025-05-01"})
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	assert.Equal(t, "Morning Flow", res.Records[0].String("Course"))
}

func TestLookupFacilityByExactName(t *testing.T) {
	svc := newTestLookup(newFakeGateway())

	res, err := svc.Query(context.Background(), domain.QueryRequest{Kind: domain.QueryFacilityByExactName, Key: "Lap Pool", Fallback: true})
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	assert.Equal(t, "B1", res.First().String("Location"))

	res, err = svc.Query(context.Background(), domain.QueryRequest{Kind: domain.QueryFacilityByExactName, Key: "hello"})
	require.NoError(t, err)
	assert.False(t, res.Found())
}

func TestLookupFitnessLogNormalizesNameAndPhone(t *testing.T) {
	svc := newTestLookup(newFakeGateway())

	res, err := svc.Query(context.Background(), domain.QueryRequest{
		Kind: domain.QueryFitnessLogByNameAndPhone, Name: "王小明", Phone: "0912345678",
	})
	require.NoError(t, err)
	require.Len(t, res.Records, 2)
	assert.Equal(t, "Run", res.Records[0].String("Exercise"))
	assert.Equal(t, "Swim", res.Records[1].String("Exercise"))
}

func TestLookupBackendFailure(t *testing.T) {
	gw := newFakeGateway()
	gw.err = errors.New("quota exceeded")
	svc := newTestLookup(gw)

	_, err := svc.Query(context.Background(), domain.QueryRequest{Kind: domain.QueryCourseByType, Key: "Yoga"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrBackendUnavailable)

	var be *domain.BackendError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, "Courses", be.Sheet)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestLookupUnknownKind(t *testing.T) {
	gw := newFakeGateway()
	svc := newTestLookup(gw)

	_, err := svc.Query(context.Background(), domain.QueryRequest{Kind: "bogus"})
	require.Error(t, err)
	assert.Empty(t, gw.calls)
}
