package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/Dosada05/tcg-tournaments/live"
	"github.com/Dosada05/tcg-tournaments/models"
	"github.com/Dosada05/tcg-tournaments/repositories"
	"github.com/google/uuid"
)

var testNow = time.Date(2024, time.February, 10, 12, 0, 0, 0, time.UTC)

func testClock() Clock {
	return Clock{Now: func() time.Time { return testNow }, Location: time.UTC}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type regRow struct {
	reg models.Registration
	seq int
}

// memDB is an in-memory stand-in for Postgres. WithinTx serializes transactions and
// restores the previous state when fn fails.
type memDB struct {
	mu            sync.Mutex
	txMu          sync.Mutex
	tournaments   map[uuid.UUID]models.Tournament
	registrations map[uuid.UUID]regRow
	schedules     map[uuid.UUID]models.RecurringSchedule
	owners        map[uuid.UUID]uuid.UUID
	nicknames     map[uuid.UUID]string
	templates     map[uuid.UUID]models.SavedTemplate
	messages      []models.TournamentMessage
	seq           int

	// beforeStatusUpdate runs before a tournament compare-and-swap.
	beforeStatusUpdate func()
	// beforePaymentUpdate runs before a payment compare-and-swap.
	beforePaymentUpdate func()
}

func newMemDB() *memDB {
	return &memDB{
		tournaments:   map[uuid.UUID]models.Tournament{},
		registrations: map[uuid.UUID]regRow{},
		schedules:     map[uuid.UUID]models.RecurringSchedule{},
		owners:        map[uuid.UUID]uuid.UUID{},
		nicknames:     map[uuid.UUID]string{},
		templates:     map[uuid.UUID]models.SavedTemplate{},
	}
}

type memSnapshot struct {
	tournaments   map[uuid.UUID]models.Tournament
	registrations map[uuid.UUID]regRow
	schedules     map[uuid.UUID]models.RecurringSchedule
}

func (db *memDB) snapshot() memSnapshot {
	db.mu.Lock()
	defer db.mu.Unlock()
	s := memSnapshot{
		tournaments:   make(map[uuid.UUID]models.Tournament, len(db.tournaments)),
		registrations: make(map[uuid.UUID]regRow, len(db.registrations)),
		schedules:     make(map[uuid.UUID]models.RecurringSchedule, len(db.schedules)),
	}
	for k, v := range db.tournaments {
		s.tournaments[k] = v
	}
	for k, v := range db.registrations {
		s.registrations[k] = v
	}
	for k, v := range db.schedules {
		s.schedules[k] = v
	}
	return s
}

func (db *memDB) restore(s memSnapshot) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.tournaments = s.tournaments
	db.registrations = s.registrations
	db.schedules = s.schedules
}

func (db *memDB) WithinTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	db.txMu.Lock()
	defer db.txMu.Unlock()
	snap := db.snapshot()
	if err := fn(nil); err != nil {
		db.restore(snap)
		return err
	}
	return nil
}

func (db *memDB) putTournament(t models.Tournament) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.tournaments[t.ID] = t
}

func (db *memDB) tournament(id uuid.UUID) models.Tournament {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.tournaments[id]
}

func (db *memDB) registrationsOf(tournamentID uuid.UUID) []models.Registration {
	db.mu.Lock()
	defer db.mu.Unlock()
	rows := db.sortedRows(tournamentID)
	out := make([]models.Registration, len(rows))
	for i, r := range rows {
		out[i] = r.reg
	}
	return out
}

func (db *memDB) sortedRows(tournamentID uuid.UUID) []regRow {
	rows := make([]regRow, 0)
	for _, r := range db.registrations {
		if r.reg.TournamentID == tournamentID {
			rows = append(rows, r)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].seq < rows[j].seq })
	return rows
}

// tournament repository

type memTournamentRepo struct{ db *memDB }

func (r memTournamentRepo) Create(_ context.Context, _ repositories.SQLExecutor, t *models.Tournament) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	t.CreatedAt, t.UpdatedAt = testNow, testNow
	r.db.tournaments[t.ID] = *t
	return nil
}

func (r memTournamentRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Tournament, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	t, ok := r.db.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	return &t, nil
}

func (r memTournamentRepo) GetForUpdate(ctx context.Context, _ repositories.SQLExecutor, id uuid.UUID) (*models.Tournament, error) {
	return r.GetByID(ctx, id)
}

func (r memTournamentRepo) List(_ context.Context, f repositories.ListTournamentsFilter) ([]*models.Tournament, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := make([]*models.Tournament, 0)
	for _, t := range r.db.tournaments {
		t := t
		if f.StoreID != nil && t.StoreID != *f.StoreID {
			continue
		}
		if f.Game != nil && t.Game != *f.Game {
			continue
		}
		if len(f.Statuses) > 0 {
			match := false
			for _, s := range f.Statuses {
				match = match || s == t.Status
			}
			if !match {
				continue
			}
		}
		if f.FromDate != nil && t.StartDate.Before(f.FromDate.Time) {
			continue
		}
		if f.ToDate != nil && t.StartDate.After(f.ToDate.Time) {
			continue
		}
		out = append(out, &t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate.Time) })
	return out, nil
}

func (r memTournamentRepo) cas(id uuid.UUID, expected models.TournamentStatus, apply func(*models.Tournament)) (*models.Tournament, error) {
	if hook := r.db.beforeStatusUpdate; hook != nil {
		hook()
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	t, ok := r.db.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	if t.Status != expected {
		return nil, repositories.ErrStatusConflict
	}
	apply(&t)
	t.UpdatedAt = testNow
	r.db.tournaments[id] = t
	return &t, nil
}

func (r memTournamentRepo) Update(_ context.Context, _ repositories.SQLExecutor, t *models.Tournament, expected models.TournamentStatus) error {
	_, err := r.cas(t.ID, expected, func(stored *models.Tournament) {
		status, results := stored.Status, stored.Results
		*stored = *t
		stored.Status, stored.Results = status, results
	})
	return err
}

func (r memTournamentRepo) UpdateStatus(_ context.Context, _ repositories.SQLExecutor, id uuid.UUID, from, to models.TournamentStatus) (*models.Tournament, error) {
	return r.cas(id, from, func(t *models.Tournament) { t.Status = to })
}

func (r memTournamentRepo) Complete(_ context.Context, _ repositories.SQLExecutor, id uuid.UUID, from models.TournamentStatus, results models.TournamentResults) (*models.Tournament, error) {
	return r.cas(id, from, func(t *models.Tournament) {
		t.Status = models.StatusCompleted
		t.Results = append(models.TournamentResults(nil), results...)
	})
}

// registration repository

type memRegistrationRepo struct{ db *memDB }

func (r memRegistrationRepo) Create(_ context.Context, _ repositories.SQLExecutor, reg *models.Registration) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, row := range r.db.registrations {
		if row.reg.TournamentID == reg.TournamentID && row.reg.PlayerID == reg.PlayerID {
			return repositories.ErrRegistrationConflict
		}
	}
	r.db.seq++
	reg.CreatedAt, reg.UpdatedAt = testNow, testNow
	r.db.registrations[reg.ID] = regRow{reg: *reg, seq: r.db.seq}
	return nil
}

func (r memRegistrationRepo) withNickname(reg models.Registration) *models.Registration {
	if n, ok := r.db.nicknames[reg.PlayerID]; ok {
		reg.PlayerNickname = &n
	}
	return &reg
}

func (r memRegistrationRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Registration, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	row, ok := r.db.registrations[id]
	if !ok {
		return nil, repositories.ErrRegistrationNotFound
	}
	return r.withNickname(row.reg), nil
}

func (r memRegistrationRepo) FindByTournamentAndPlayer(_ context.Context, _ repositories.SQLExecutor, tournamentID, playerID uuid.UUID) (*models.Registration, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, row := range r.db.registrations {
		if row.reg.TournamentID == tournamentID && row.reg.PlayerID == playerID {
			return r.withNickname(row.reg), nil
		}
	}
	return nil, repositories.ErrRegistrationNotFound
}

func (r memRegistrationRepo) ListByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID uuid.UUID, statuses []models.RegistrationStatus) ([]*models.Registration, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := make([]*models.Registration, 0)
	for _, row := range r.db.sortedRows(tournamentID) {
		if len(statuses) > 0 {
			match := false
			for _, s := range statuses {
				match = match || s == row.reg.Status
			}
			if !match {
				continue
			}
		}
		out = append(out, r.withNickname(row.reg))
	}
	return out, nil
}

func (r memRegistrationRepo) CountActive(_ context.Context, _ repositories.SQLExecutor, tournamentID uuid.UUID) (int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	n := 0
	for _, row := range r.db.registrations {
		if row.reg.TournamentID == tournamentID && row.reg.Status.IsActive() {
			n++
		}
	}
	return n, nil
}

func (r memRegistrationRepo) CountAll(_ context.Context, tournamentID uuid.UUID) (int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return len(r.db.sortedRows(tournamentID)), nil
}

func (r memRegistrationRepo) cas(id uuid.UUID, from models.RegistrationStatus, apply func(*models.Registration)) (*models.Registration, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	row, ok := r.db.registrations[id]
	if !ok {
		return nil, repositories.ErrRegistrationNotFound
	}
	if row.reg.Status != from {
		return nil, repositories.ErrStatusConflict
	}
	apply(&row.reg)
	row.reg.UpdatedAt = testNow
	r.db.registrations[id] = row
	reg := row.reg
	return &reg, nil
}

func (r memRegistrationRepo) Reactivate(_ context.Context, _ repositories.SQLExecutor, id uuid.UUID, from models.RegistrationStatus) (*models.Registration, error) {
	return r.cas(id, from, func(reg *models.Registration) {
		reg.Status, reg.PaymentStatus = models.RegistrationPending, models.PaymentPending
		reg.PaidAt, reg.CheckedInAt, reg.Position, reg.Points = nil, nil, nil, nil
	})
}

func (r memRegistrationRepo) UpdateStatus(_ context.Context, _ repositories.SQLExecutor, id uuid.UUID, from, to models.RegistrationStatus, checkedInAt *time.Time) (*models.Registration, error) {
	return r.cas(id, from, func(reg *models.Registration) {
		reg.Status, reg.CheckedInAt = to, checkedInAt
	})
}

func (r memRegistrationRepo) UpdatePayment(_ context.Context, _ repositories.SQLExecutor, id uuid.UUID, from, to models.PaymentStatus, paidAt *time.Time) (*models.Registration, error) {
	if hook := r.db.beforePaymentUpdate; hook != nil {
		hook()
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	row, ok := r.db.registrations[id]
	if !ok {
		return nil, repositories.ErrRegistrationNotFound
	}
	if row.reg.PaymentStatus != from {
		return nil, repositories.ErrStatusConflict
	}
	row.reg.PaymentStatus, row.reg.PaidAt = to, paidAt
	r.db.registrations[id] = row
	reg := row.reg
	return &reg, nil
}

func (r memRegistrationRepo) BulkCheckIn(_ context.Context, _ repositories.SQLExecutor, tournamentID uuid.UUID, at time.Time) (int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	n := 0
	for id, row := range r.db.registrations {
		s := row.reg.Status
		if row.reg.TournamentID != tournamentID || s == models.RegistrationPresent || !s.IsActive() {
			continue
		}
		at := at
		row.reg.Status, row.reg.CheckedInAt = models.RegistrationPresent, &at
		r.db.registrations[id] = row
		n++
	}
	return n, nil
}

func (r memRegistrationRepo) SetResults(_ context.Context, _ repositories.SQLExecutor, tournamentID uuid.UUID, results models.TournamentResults) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	updated := 0
	for _, res := range results {
		for id, row := range r.db.registrations {
			if row.reg.TournamentID == tournamentID && row.reg.PlayerID == res.PlayerID {
				pos, pts := res.Position, res.Points
				row.reg.Position, row.reg.Points = &pos, &pts
				r.db.registrations[id] = row
				updated++
			}
		}
	}
	if updated != len(results) {
		return repositories.ErrResultsMismatch
	}
	return nil
}

func (r memRegistrationRepo) Delete(_ context.Context, _ repositories.SQLExecutor, id uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.registrations[id]; !ok {
		return repositories.ErrRegistrationNotFound
	}
	delete(r.db.registrations, id)
	return nil
}

// schedule repository

type memScheduleRepo struct{ db *memDB }

func (r memScheduleRepo) Create(_ context.Context, _ repositories.SQLExecutor, s *models.RecurringSchedule) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.owners[s.StoreID]; !ok {
		return repositories.ErrScheduleInvalidStore
	}
	s.CreatedAt = testNow
	r.db.schedules[s.ID] = *s
	return nil
}

func (r memScheduleRepo) GetByID(_ context.Context, _ repositories.SQLExecutor, id uuid.UUID) (*models.RecurringSchedule, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	s, ok := r.db.schedules[id]
	if !ok {
		return nil, repositories.ErrScheduleNotFound
	}
	return &s, nil
}

func (r memScheduleRepo) ListByStore(_ context.Context, storeID uuid.UUID) ([]*models.RecurringSchedule, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := make([]*models.RecurringSchedule, 0)
	for _, s := range r.db.schedules {
		s := s
		if s.StoreID == storeID {
			out = append(out, &s)
		}
	}
	return out, nil
}

func (r memScheduleRepo) ListDue(_ context.Context, day models.Date) ([]*models.RecurringSchedule, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := make([]*models.RecurringSchedule, 0)
	for _, s := range r.db.schedules {
		s := s
		if s.IsActive && (s.NextOccurrence == nil || !s.NextOccurrence.After(day.Time)) {
			out = append(out, &s)
		}
	}
	return out, nil
}

func (r memScheduleRepo) SetNextOccurrence(_ context.Context, _ repositories.SQLExecutor, id uuid.UUID, next models.Date) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	s, ok := r.db.schedules[id]
	if !ok {
		return repositories.ErrScheduleNotFound
	}
	s.NextOccurrence = &next
	r.db.schedules[id] = s
	return nil
}

func (r memScheduleRepo) SetActive(_ context.Context, id uuid.UUID, active bool) (*models.RecurringSchedule, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	s, ok := r.db.schedules[id]
	if !ok {
		return nil, repositories.ErrScheduleNotFound
	}
	s.IsActive = active
	r.db.schedules[id] = s
	return &s, nil
}

func (r memScheduleRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.schedules[id]; !ok {
		return repositories.ErrScheduleNotFound
	}
	delete(r.db.schedules, id)
	return nil
}

// store repository

type memStoreRepo struct{ db *memDB }

func (r memStoreRepo) GetOwnerID(_ context.Context, storeID uuid.UUID) (uuid.UUID, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	owner, ok := r.db.owners[storeID]
	if !ok {
		return uuid.Nil, repositories.ErrStoreNotFound
	}
	return owner, nil
}

func (r memStoreRepo) GetNickname(_ context.Context, profileID uuid.UUID) (string, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	n, ok := r.db.nicknames[profileID]
	if !ok {
		return "", repositories.ErrProfileNotFound
	}
	return n, nil
}

// side effects

type recordingNotifier struct {
	mu       sync.Mutex
	requests []models.NotificationRequest
	fail     bool
}

func (n *recordingNotifier) Notify(_ context.Context, req models.NotificationRequest) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail {
		return errors.New("notification sink unavailable")
	}
	n.requests = append(n.requests, req)
	return nil
}

func (n *recordingNotifier) sent() []models.NotificationRequest {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]models.NotificationRequest(nil), n.requests...)
}

type recordingBroadcaster struct {
	mu       sync.Mutex
	messages []live.Message
}

func (b *recordingBroadcaster) BroadcastToRoom(roomID string, msg live.Message) {
	b.mu.Lock()
	defer b.mu.Unlock()
	msg.RoomID = roomID
	b.messages = append(b.messages, msg)
}

type fakePublisher struct {
	published []uuid.UUID
	err       error
}

func (p *fakePublisher) Publish(_ context.Context, t *models.Tournament, _ map[string]string, _ time.Time) (string, error) {
	if p.err != nil {
		return "", p.err
	}
	p.published = append(p.published, t.ID)
	return "https://cdn.example.com/" + t.ID.String() + ".json", nil
}

// fixture wires every service to one memDB.
type memTemplateRepo struct{ db *memDB }

func (r memTemplateRepo) Create(_ context.Context, t *models.SavedTemplate) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	r.db.seq++
	t.CreatedAt = testNow.Add(time.Duration(r.db.seq) * time.Second)
	r.db.templates[t.ID] = *t
	return nil
}

func (r memTemplateRepo) GetByID(_ context.Context, id uuid.UUID) (*models.SavedTemplate, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	t, ok := r.db.templates[id]
	if !ok {
		return nil, repositories.ErrTemplateNotFound
	}
	return &t, nil
}

func (r memTemplateRepo) ListByOwner(_ context.Context, ownerID uuid.UUID) ([]*models.SavedTemplate, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := make([]*models.SavedTemplate, 0)
	for _, t := range r.db.templates {
		if t.OwnerID == ownerID {
			t := t
			out = append(out, &t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r memTemplateRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.templates[id]; !ok {
		return repositories.ErrTemplateNotFound
	}
	delete(r.db.templates, id)
	return nil
}

type memMessageRepo struct{ db *memDB }

func (r memMessageRepo) Create(_ context.Context, _ repositories.SQLExecutor, m *models.TournamentMessage) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.tournaments[m.TournamentID]; !ok {
		return repositories.ErrMessageInvalidTournament
	}
	r.db.seq++
	m.CreatedAt = testNow.Add(time.Duration(r.db.seq) * time.Second)
	r.db.messages = append(r.db.messages, *m)
	return nil
}

func (r memMessageRepo) ListByTournament(_ context.Context, tournamentID uuid.UUID) ([]*models.TournamentMessage, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := make([]*models.TournamentMessage, 0)
	for _, m := range r.db.messages {
		if m.TournamentID != tournamentID {
			continue
		}
		m := m
		if n, ok := r.db.nicknames[m.AuthorID]; ok {
			m.AuthorNickname = &n
		}
		out = append(out, &m)
	}
	return out, nil
}

type fixture struct {
	db            *memDB
	notifier      *recordingNotifier
	broadcaster   *recordingBroadcaster
	publisher     *fakePublisher
	tournaments   TournamentService
	registrations RegistrationService
	schedules     ScheduleService
	templates     TemplateService
	messages      MessageService

	storeID uuid.UUID
	owner   models.Actor
}

func newFixture() *fixture {
	db := newMemDB()
	f := &fixture{
		db:          db,
		notifier:    &recordingNotifier{},
		broadcaster: &recordingBroadcaster{},
		publisher:   &fakePublisher{},
		storeID:     uuid.New(),
		owner:       models.Actor{ID: uuid.New(), Role: models.RoleOwner},
	}
	db.owners[f.storeID] = f.owner.ID

	events := NewEvents(f.notifier, f.broadcaster, discardLogger())
	tRepo, rRepo, sRepo, stRepo := memTournamentRepo{db}, memRegistrationRepo{db}, memScheduleRepo{db}, memStoreRepo{db}
	tplRepo := memTemplateRepo{db}
	f.tournaments = NewTournamentService(db, tRepo, rRepo, sRepo, stRepo, tplRepo, events, f.publisher, testClock(), discardLogger())
	f.registrations = NewRegistrationService(db, tRepo, rRepo, stRepo, events, testClock(), discardLogger())
	f.schedules = NewScheduleService(db, sRepo, tRepo, stRepo, events, testClock(), discardLogger())
	f.templates = NewTemplateService(tplRepo, discardLogger())
	f.messages = NewMessageService(tRepo, rRepo, memMessageRepo{db}, stRepo, events, discardLogger())
	return f
}

// seedTournament stores a tournament of the fixture store in the given status.
func (f *fixture) seedTournament(status models.TournamentStatus, maxParticipants *int) models.Tournament {
	t := models.Tournament{
		ID:                              uuid.New(),
		StoreID:                         f.storeID,
		Name:                            "Friday Modern",
		Game:                            models.GameMagic,
		Format:                          models.FormatSwiss,
		StartDate:                       models.NewDate(2024, time.February, 16),
		StartTime:                       "19:00",
		MinParticipants:                 2,
		MaxParticipants:                 maxParticipants,
		RegistrationClosesMinutesBefore: 30,
		Status:                          status,
		Results:                         models.TournamentResults{},
	}
	f.db.putTournament(t)
	return t
}

// seedRegistration inserts a registration directly, in creation order.
func (f *fixture) seedRegistration(tournamentID uuid.UUID, status models.RegistrationStatus) models.Registration {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	f.db.seq++
	reg := models.Registration{
		ID:            uuid.New(),
		TournamentID:  tournamentID,
		PlayerID:      uuid.New(),
		Status:        status,
		PaymentStatus: models.PaymentPending,
	}
	f.db.registrations[reg.ID] = regRow{reg: reg, seq: f.db.seq}
	return reg
}

func player(id uuid.UUID) models.Actor {
	return models.Actor{ID: id, Role: models.RolePlayer}
}

func intPtr(v int) *int { return &v }
