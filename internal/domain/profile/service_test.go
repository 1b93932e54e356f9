package profile

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/nephrolog-lt/nephrolog-api/internal/platform/db"
)

type fakeRepo struct {
	profiles  map[string]*Profile
	snapshots map[string]map[string]*HistoricalProfile // userID -> date -> snapshot

	upsertErr   error
	snapshotErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		profiles:  map[string]*Profile{},
		snapshots: map[string]map[string]*HistoricalProfile{},
	}
}

func dateKey(d time.Time) string { return d.Format("2006-01-02") }

func (r *fakeRepo) Upsert(ctx context.Context, p *Profile) error {
	if r.upsertErr != nil {
		return r.upsertErr
	}
	cp := *p
	r.profiles[p.UserID] = &cp
	return nil
}

func (r *fakeRepo) GetByUserID(ctx context.Context, userID string) (*Profile, error) {
	p, ok := r.profiles[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return p, nil
}

func (r *fakeRepo) UpsertSnapshot(ctx context.Context, s *HistoricalProfile) error {
	if r.snapshotErr != nil {
		return r.snapshotErr
	}
	days, ok := r.snapshots[s.UserID]
	if !ok {
		days = map[string]*HistoricalProfile{}
		r.snapshots[s.UserID] = days
	}
	cp := *s
	days[dateKey(s.Date)] = &cp
	return nil
}

func (r *fakeRepo) SnapshotAtOrBefore(ctx context.Context, userID string, date time.Time) (*HistoricalProfile, error) {
	return r.nearest(userID, func(d time.Time) bool { return !d.After(date) }, true)
}

func (r *fakeRepo) FirstSnapshotAfter(ctx context.Context, userID string, date time.Time) (*HistoricalProfile, error) {
	return r.nearest(userID, func(d time.Time) bool { return d.After(date) }, false)
}

func (r *fakeRepo) nearest(userID string, matches func(time.Time) bool, latest bool) (*HistoricalProfile, error) {
	var best *HistoricalProfile
	for _, s := range r.snapshots[userID] {
		if !matches(s.Date) {
			continue
		}
		if best == nil || (latest && s.Date.After(best.Date)) || (!latest && s.Date.Before(best.Date)) {
			best = s
		}
	}
	if best == nil {
		return nil, ErrNotFound
	}
	return best, nil
}

// fakeTx satisfies pgx.Tx via embedding; only the methods BeginFunc touches
// are implemented.
type fakeTx struct {
	pgx.Tx
	committed  bool
	rolledBack bool
}

func (t *fakeTx) Commit(ctx context.Context) error {
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback(ctx context.Context) error {
	if t.committed {
		return pgx.ErrTxClosed
	}
	t.rolledBack = true
	return nil
}

type fakeBeginner struct {
	tx *fakeTx
}

func (b *fakeBeginner) Begin(ctx context.Context) (pgx.Tx, error) {
	b.tx = &fakeTx{}
	return b.tx, nil
}

type fakeRecalc struct {
	calls []time.Time
	err   error
}

func (r *fakeRecalc) RecalculateIfExists(ctx context.Context, userID string, date time.Time) error {
	r.calls = append(r.calls, date)
	return r.err
}

func validTestClinical() Clinical {
	return Clinical{
		Gender:                    GenderMale,
		HeightCm:                  185,
		ChronicKidneyDiseaseAge:   DiseaseAgeOneToFive,
		ChronicKidneyDiseaseStage: Stage5,
		Dialysis:                  DialysisHemodialysis,
		DiabetesType:              DiabetesNo,
	}
}

func newTestService(repo *fakeRepo) (*Service, *fakeBeginner) {
	beginner := &fakeBeginner{}
	svc := NewService(repo, beginner, zerolog.Nop())
	svc.SetClock(func() time.Time {
		return time.Date(2024, 3, 15, 17, 30, 0, 0, time.UTC)
	})
	return svc, beginner
}

func TestSaveCreatesProfileAndSnapshot(t *testing.T) {
	repo := newFakeRepo()
	svc, beginner := newTestService(repo)

	p, err := svc.Save(context.Background(), "user-1", validTestClinical())
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if p.UserID != "user-1" {
		t.Errorf("UserID = %q, want user-1", p.UserID)
	}
	if !beginner.tx.committed {
		t.Error("transaction was not committed")
	}

	snap, ok := repo.snapshots["user-1"]["2024-03-15"]
	if !ok {
		t.Fatal("no snapshot stored for 2024-03-15")
	}
	if snap.Dialysis != DialysisHemodialysis {
		t.Errorf("snapshot dialysis = %q, want Hemodialysis", snap.Dialysis)
	}
}

func TestSaveTriggersRecalculationAfterCommit(t *testing.T) {
	repo := newFakeRepo()
	svc, _ := newTestService(repo)
	recalc := &fakeRecalc{}
	svc.SetRecalculator(recalc)

	if _, err := svc.Save(context.Background(), "user-1", validTestClinical()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if len(recalc.calls) != 1 {
		t.Fatalf("recalculation calls = %d, want 1", len(recalc.calls))
	}
	want := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	if !recalc.calls[0].Equal(want) {
		t.Errorf("recalculated date = %v, want %v", recalc.calls[0], want)
	}
}

func TestSaveRollsBackWhenSnapshotFails(t *testing.T) {
	repo := newFakeRepo()
	repo.snapshotErr = errors.New("snapshot write failed")
	svc, beginner := newTestService(repo)
	recalc := &fakeRecalc{}
	svc.SetRecalculator(recalc)

	_, err := svc.Save(context.Background(), "user-1", validTestClinical())
	if err == nil {
		t.Fatal("Save() expected error")
	}
	if !beginner.tx.rolledBack {
		t.Error("transaction was not rolled back")
	}
	if len(recalc.calls) != 0 {
		t.Errorf("recalculation calls = %d, want 0", len(recalc.calls))
	}
}

func TestSaveRejectsInvalidClinical(t *testing.T) {
	repo := newFakeRepo()
	svc, _ := newTestService(repo)

	tests := []struct {
		name   string
		mutate func(*Clinical)
	}{
		{"missing gender", func(c *Clinical) { c.Gender = "" }},
		{"height too low", func(c *Clinical) { c.HeightCm = 90 }},
		{"height too high", func(c *Clinical) { c.HeightCm = 260 }},
		{"bad dialysis", func(c *Clinical) { c.Dialysis = "Sometimes" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validTestClinical()
			tt.mutate(&c)
			_, err := svc.Save(context.Background(), "user-1", c)
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("Save() error = %v, want ValidationError", err)
			}
		})
	}
}

func TestNearestSnapshotPrefersAtOrBefore(t *testing.T) {
	repo := newFakeRepo()
	svc, _ := newTestService(repo)

	mustSnapshot := func(day string, dialysis DialysisType) {
		d, err := time.Parse("2006-01-02", day)
		if err != nil {
			t.Fatal(err)
		}
		c := validTestClinical()
		c.Dialysis = dialysis
		if err := repo.UpsertSnapshot(context.Background(), &HistoricalProfile{
			UserID: "user-1", Date: d, Clinical: c,
		}); err != nil {
			t.Fatal(err)
		}
	}
	mustSnapshot("2024-03-01", DialysisNotPerformed)
	mustSnapshot("2024-03-10", DialysisHemodialysis)

	snap, err := svc.NearestSnapshot(context.Background(), "user-1",
		time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("NearestSnapshot() error = %v", err)
	}
	if snap.Dialysis != DialysisHemodialysis {
		t.Errorf("dialysis = %q, want Hemodialysis (latest at-or-before)", snap.Dialysis)
	}
}

func TestNearestSnapshotFallsBackToFirstAfter(t *testing.T) {
	repo := newFakeRepo()
	svc, _ := newTestService(repo)

	d := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	c := validTestClinical()
	if err := repo.UpsertSnapshot(context.Background(), &HistoricalProfile{
		UserID: "user-1", Date: d, Clinical: c,
	}); err != nil {
		t.Fatal(err)
	}

	snap, err := svc.NearestSnapshot(context.Background(), "user-1",
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("NearestSnapshot() error = %v", err)
	}
	if !snap.Date.Equal(d) {
		t.Errorf("snapshot date = %v, want %v", snap.Date, d)
	}
}

func TestNearestSnapshotNotFound(t *testing.T) {
	repo := newFakeRepo()
	svc, _ := newTestService(repo)

	_, err := svc.NearestSnapshot(context.Background(), "user-1",
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("NearestSnapshot() error = %v, want ErrNotFound", err)
	}
}

var _ db.TxBeginner = (*fakeBeginner)(nil)
var _ Repository = (*fakeRepo)(nil)
