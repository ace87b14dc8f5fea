package service

import (
	"context"
	"sync"
	"time"

	"github.com/roadshare/carpool-backend/internal/model"
	"github.com/roadshare/carpool-backend/internal/repository"
	"github.com/roadshare/carpool-backend/internal/search"
	"github.com/roadshare/carpool-backend/internal/utils"
)

// hashForTest mirrors the repository's bcrypt hashing at the given cost.
func hashForTest(password string, cost int) (string, error) {
	return utils.HashPassword(password, cost)
}

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return testNow }

// fakeRideStore keeps rides in a map and answers Search with everything
// that matches the pushed-down window and seat conditions, mimicking what
// the SQL layer would return.
type fakeRideStore struct {
	mu     sync.Mutex
	nextID uint64
	rides  map[uint64]model.Ride

	searchResult []model.Ride
	overlap      bool
}

func newFakeRideStore() *fakeRideStore {
	return &fakeRideStore{nextID: 1, rides: make(map[uint64]model.Ride)}
}

func (f *fakeRideStore) Create(_ context.Context, ride *model.Ride) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.nextID
	f.nextID++
	ride.ID = id
	f.rides[id] = *ride
	return id, nil
}

func (f *fakeRideStore) GetByID(_ context.Context, id uint64) (model.Ride, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rides[id]
	if !ok {
		return model.Ride{}, repository.ErrRideNotFound
	}
	return r, nil
}

func (f *fakeRideStore) ListByDriver(_ context.Context, driverID uint64) ([]model.Ride, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Ride
	for _, r := range f.rides {
		if r.DriverID == driverID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRideStore) Search(_ context.Context, _ *search.Query) ([]model.Ride, error) {
	return f.searchResult, nil
}

func (f *fakeRideStore) UpdateDetails(_ context.Context, ride *model.Ride) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rides[ride.ID] = *ride
	return nil
}

func (f *fakeRideStore) UpdateStatus(_ context.Context, id uint64, from, to string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rides[id]
	if !ok || r.Status != from {
		return false, nil
	}
	r.Status = to
	f.rides[id] = r
	return true, nil
}

func (f *fakeRideStore) HasOverlapping(_ context.Context, _ uint64, _ time.Time, _ uint64) (bool, error) {
	return f.overlap, nil
}

// fakeRequestReader returns a fixed accepted-request list.
type fakeRequestReader struct {
	requests []model.JoinRequest
}

func (f *fakeRequestReader) ListByRide(_ context.Context, rideID uint64, status string) ([]model.JoinRequest, error) {
	var out []model.JoinRequest
	for _, r := range f.requests {
		if r.RideID == rideID && (status == "" || r.Status == status) {
			out = append(out, r)
		}
	}
	return out, nil
}

// fakeRatingCreator records created slots and reports duplicates the way
// the real repository does. Setting createErr makes every Create fail, as
// an unreachable database would.
type fakeRatingCreator struct {
	mu        sync.Mutex
	nextID    uint64
	slots     []model.RatingRequest
	createErr error
}

func (f *fakeRatingCreator) Create(_ context.Context, rr *model.RatingRequest) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return 0, f.createErr
	}
	for _, s := range f.slots {
		if s.RaterID == rr.RaterID && s.RatedID == rr.RatedID && s.RideID == rr.RideID {
			return 0, repository.ErrDuplicateKey
		}
	}
	f.nextID++
	rr.ID = f.nextID
	f.slots = append(f.slots, *rr)
	return rr.ID, nil
}

// published is one captured broker message.
type published struct {
	queue string
	event any
}

// fakePublisher captures events instead of talking to a broker.
type fakePublisher struct {
	mu     sync.Mutex
	events []published
}

func (f *fakePublisher) Publish(_ context.Context, queueName string, event any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, published{queue: queueName, event: event})
	return nil
}

func (f *fakePublisher) byQueue(queueName string) []published {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []published
	for _, p := range f.events {
		if p.queue == queueName {
			out = append(out, p)
		}
	}
	return out
}

// fakeCodeStore keeps verification codes in a map keyed by email.
type fakeCodeStore struct {
	mu    sync.Mutex
	codes map[string]model.VerificationCode
}

func newFakeCodeStore() *fakeCodeStore {
	return &fakeCodeStore{codes: make(map[string]model.VerificationCode)}
}

func (f *fakeCodeStore) Upsert(_ context.Context, code *model.VerificationCode) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.codes[code.Email] = *code
	return nil
}

func (f *fakeCodeStore) Get(_ context.Context, email string) (model.VerificationCode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.codes[email]
	if !ok {
		return model.VerificationCode{}, repository.ErrCodeNotFound
	}
	return c, nil
}

func (f *fakeCodeStore) Delete(_ context.Context, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.codes, email)
	return nil
}

// fakeUserStore keeps accounts in memory, hashing passwords like the real
// repository does.
type fakeUserStore struct {
	mu     sync.Mutex
	nextID uint64
	users  map[string]model.User // by email
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{nextID: 1, users: make(map[string]model.User)}
}

func (f *fakeUserStore) Create(_ context.Context, u *model.User, password string, cost int) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[u.Email]; ok {
		return 0, repository.ErrEmailExists
	}
	hash, err := hashForTest(password, cost)
	if err != nil {
		return 0, err
	}
	id := f.nextID
	f.nextID++
	u.ID = id
	u.PasswordHash = hash
	f.users[u.Email] = *u
	return id, nil
}

func (f *fakeUserStore) GetByEmail(_ context.Context, email string) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[email]
	if !ok {
		return model.User{}, repository.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUserStore) GetByID(_ context.Context, id uint64) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return model.User{}, repository.ErrUserNotFound
}

func (f *fakeUserStore) UpdateProfile(_ context.Context, id uint64, firstName, lastName, phoneNumber string, birthday time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for email, u := range f.users {
		if u.ID == id {
			u.FirstName, u.LastName, u.PhoneNumber, u.Birthday = firstName, lastName, phoneNumber, birthday
			f.users[email] = u
			return nil
		}
	}
	return repository.ErrUserNotFound
}

func (f *fakeUserStore) UpdatePassword(_ context.Context, email, password string, cost int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[email]
	if !ok {
		return repository.ErrUserNotFound
	}
	hash, err := hashForTest(password, cost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	f.users[email] = u
	return nil
}

func (f *fakeUserStore) SetApproved(_ context.Context, email string, approved bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[email]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.Approved = approved
	f.users[email] = u
	return nil
}
