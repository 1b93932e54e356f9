package health

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type fakeRepo struct {
	statuses map[string]*DailyHealthStatus // "userID|date"
	bps      map[int64]*BloodPressure
	pulses   map[int64]*Pulse
	nextID   int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		statuses: map[string]*DailyHealthStatus{},
		bps:      map[int64]*BloodPressure{},
		pulses:   map[int64]*Pulse{},
	}
}

func statusKey(userID string, date time.Time) string {
	return userID + "|" + date.Format(dateLayout)
}

func (r *fakeRepo) UpsertStatus(ctx context.Context, s *DailyHealthStatus) error {
	key := statusKey(s.UserID, s.Date)
	if existing, ok := r.statuses[key]; ok {
		s.ID = existing.ID
	} else {
		r.nextID++
		s.ID = r.nextID
	}
	cp := *s
	r.statuses[key] = &cp
	return nil
}

func (r *fakeRepo) CreateStatusIfAbsent(ctx context.Context, userID string, date time.Time) (*DailyHealthStatus, error) {
	key := statusKey(userID, date)
	if s, ok := r.statuses[key]; ok {
		cp := *s
		return &cp, nil
	}
	r.nextID++
	s := &DailyHealthStatus{ID: r.nextID, UserID: userID, Date: date}
	r.statuses[key] = s
	cp := *s
	return &cp, nil
}

func (r *fakeRepo) GetStatus(ctx context.Context, userID string, date time.Time) (*DailyHealthStatus, error) {
	s, ok := r.statuses[statusKey(userID, date)]
	if !ok {
		return nil, ErrStatusNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *fakeRepo) GetStatusWithChildren(ctx context.Context, userID string, date time.Time) (*DailyHealthStatus, error) {
	s, err := r.GetStatus(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	for _, bp := range r.bps {
		if bp.DailyHealthStatusID == s.ID {
			s.BloodPressures = append(s.BloodPressures, *bp)
		}
	}
	for _, p := range r.pulses {
		if p.DailyHealthStatusID == s.ID {
			s.Pulses = append(s.Pulses, *p)
		}
	}
	return s, nil
}

func (r *fakeRepo) StatusesBetween(ctx context.Context, userID string, from, to time.Time) ([]DailyHealthStatus, error) {
	var out []DailyHealthStatus
	for _, s := range r.statuses {
		if s.UserID != userID || s.Date.Before(from) || s.Date.After(to) {
			continue
		}
		full, _ := r.GetStatusWithChildren(ctx, userID, s.Date)
		out = append(out, *full)
	}
	return out, nil
}

func (r *fakeRepo) CreateBloodPressure(ctx context.Context, bp *BloodPressure) error {
	r.nextID++
	bp.ID = r.nextID
	cp := *bp
	r.bps[bp.ID] = &cp
	return nil
}

func (r *fakeRepo) UpdateBloodPressure(ctx context.Context, userID string, bp *BloodPressure) error {
	if _, ok := r.bps[bp.ID]; !ok {
		return ErrBloodPressureNotFound
	}
	cp := *bp
	r.bps[bp.ID] = &cp
	return nil
}

func (r *fakeRepo) DeleteBloodPressure(ctx context.Context, userID string, id int64) error {
	if _, ok := r.bps[id]; !ok {
		return ErrBloodPressureNotFound
	}
	delete(r.bps, id)
	return nil
}

func (r *fakeRepo) CreatePulse(ctx context.Context, p *Pulse) error {
	r.nextID++
	p.ID = r.nextID
	cp := *p
	r.pulses[p.ID] = &cp
	return nil
}

func (r *fakeRepo) UpdatePulse(ctx context.Context, userID string, p *Pulse) error {
	if _, ok := r.pulses[p.ID]; !ok {
		return ErrPulseNotFound
	}
	cp := *p
	r.pulses[p.ID] = &cp
	return nil
}

func (r *fakeRepo) DeletePulse(ctx context.Context, userID string, id int64) error {
	if _, ok := r.pulses[id]; !ok {
		return ErrPulseNotFound
	}
	delete(r.pulses, id)
	return nil
}

var _ Repository = (*fakeRepo)(nil)

type fakeRecalc struct {
	dates []time.Time
	err   error
}

func (f *fakeRecalc) RecalculateIfExists(ctx context.Context, userID string, date time.Time) error {
	f.dates = append(f.dates, date)
	return f.err
}

func day(s string) time.Time {
	d, err := time.Parse(dateLayout, s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestUpsertTriggersRecalculation(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, zerolog.Nop())
	recalc := &fakeRecalc{}
	svc.SetRecalculator(recalc)

	urine := int64(500)
	status, err := svc.Upsert(context.Background(), "user-1", StatusInput{
		Date:    day("2024-03-15"),
		UrineMl: &urine,
	})
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	if status.UrineMl == nil || *status.UrineMl != 500 {
		t.Errorf("urine_ml = %v, want 500", status.UrineMl)
	}
	if status.WellFeeling != WellFeelingUnknown {
		t.Errorf("well_feeling = %q, want Unknown default", status.WellFeeling)
	}
	if len(recalc.dates) != 1 || !recalc.dates[0].Equal(day("2024-03-15")) {
		t.Errorf("recalculation dates = %v, want [2024-03-15]", recalc.dates)
	}
}

func TestUpsertSameDayRewrites(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, zerolog.Nop())

	first, err := svc.Upsert(context.Background(), "user-1", StatusInput{Date: day("2024-03-15")})
	if err != nil {
		t.Fatal(err)
	}

	weight := decimal.RequireFromString("72.5")
	second, err := svc.Upsert(context.Background(), "user-1", StatusInput{
		Date:     day("2024-03-15"),
		WeightKg: &weight,
	})
	if err != nil {
		t.Fatal(err)
	}

	if first.ID != second.ID {
		t.Errorf("status ids differ: %d vs %d", first.ID, second.ID)
	}
	if len(repo.statuses) != 1 {
		t.Errorf("stored statuses = %d, want 1", len(repo.statuses))
	}
}

func TestUpsertValidation(t *testing.T) {
	svc := NewService(newFakeRepo(), zerolog.Nop())

	lowWeight := decimal.RequireFromString("5")
	negativeGlucose := decimal.RequireFromString("-1")
	negativeUrine := int64(-10)

	tests := []struct {
		name  string
		input StatusInput
	}{
		{"zero date", StatusInput{}},
		{"low weight", StatusInput{Date: day("2024-03-15"), WeightKg: &lowWeight}},
		{"negative glucose", StatusInput{Date: day("2024-03-15"), Glucose: &negativeGlucose}},
		{"negative urine", StatusInput{Date: day("2024-03-15"), UrineMl: &negativeUrine}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Upsert(context.Background(), "user-1", tt.input)
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("error = %v, want ValidationError", err)
			}
		})
	}
}

func TestUrineMlMissingStatus(t *testing.T) {
	svc := NewService(newFakeRepo(), zerolog.Nop())

	got, err := svc.UrineMl(context.Background(), "user-1", day("2024-03-15"))
	if err != nil {
		t.Fatalf("UrineMl() error = %v", err)
	}
	if got != nil {
		t.Errorf("urine = %v, want nil", got)
	}
}

func TestCreateBloodPressureBucketsByTimezone(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, zerolog.Nop())

	vilnius, err := time.LoadLocation("Europe/Vilnius")
	if err != nil {
		t.Fatal(err)
	}

	// 22:30 UTC on March 15 is already March 16 in Vilnius.
	bp, err := svc.CreateBloodPressure(context.Background(), "user-1", vilnius, BloodPressureInput{
		Systolic:   120,
		Diastolic:  80,
		MeasuredAt: time.Date(2024, 3, 15, 22, 30, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("CreateBloodPressure() error = %v", err)
	}

	status, ok := repo.statuses[statusKey("user-1", day("2024-03-16"))]
	if !ok {
		t.Fatal("expected status created for 2024-03-16")
	}
	if bp.DailyHealthStatusID != status.ID {
		t.Errorf("blood pressure attached to status %d, want %d", bp.DailyHealthStatusID, status.ID)
	}
}

func TestCreateBloodPressureValidation(t *testing.T) {
	svc := NewService(newFakeRepo(), zerolog.Nop())

	tests := []struct {
		name  string
		input BloodPressureInput
	}{
		{"systolic too high", BloodPressureInput{Systolic: 360, Diastolic: 80, MeasuredAt: time.Now()}},
		{"diastolic zero", BloodPressureInput{Systolic: 120, MeasuredAt: time.Now()}},
		{"zero measured_at", BloodPressureInput{Systolic: 120, Diastolic: 80}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateBloodPressure(context.Background(), "user-1", time.UTC, tt.input)
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("error = %v, want ValidationError", err)
			}
		})
	}
}

func TestCreatePulseReusesExistingStatus(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, zerolog.Nop())

	if _, err := svc.Upsert(context.Background(), "user-1", StatusInput{Date: day("2024-03-15")}); err != nil {
		t.Fatal(err)
	}

	p, err := svc.CreatePulse(context.Background(), "user-1", time.UTC, PulseInput{
		Pulse:      72,
		MeasuredAt: time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("CreatePulse() error = %v", err)
	}

	if len(repo.statuses) != 1 {
		t.Errorf("stored statuses = %d, want 1", len(repo.statuses))
	}
	status := repo.statuses[statusKey("user-1", day("2024-03-15"))]
	if p.DailyHealthStatusID != status.ID {
		t.Errorf("pulse attached to status %d, want %d", p.DailyHealthStatusID, status.ID)
	}
}

func TestGetBetweenRejectsInvertedRange(t *testing.T) {
	svc := NewService(newFakeRepo(), zerolog.Nop())

	_, err := svc.GetBetween(context.Background(), "user-1", day("2024-03-20"), day("2024-03-10"))
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("error = %v, want ValidationError", err)
	}
}

func TestDeletePulseUnknownID(t *testing.T) {
	svc := NewService(newFakeRepo(), zerolog.Nop())

	if err := svc.DeletePulse(context.Background(), "user-1", 99); !errors.Is(err, ErrPulseNotFound) {
		t.Fatalf("error = %v, want ErrPulseNotFound", err)
	}
}
