package service

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"rentease-service/internal/model"
	"rentease-service/internal/notify"
	"rentease-service/internal/payment"
	"rentease-service/internal/repository"
)

var (
	admin  = model.Actor{UserID: "a1", Email: "admin@rentease.in", Role: model.RoleAdmin}
	owner  = model.Actor{UserID: "o1", Email: "owner@example.com", Role: model.RoleUser}
	tenant = model.Actor{UserID: "t1", Email: "tenant@example.com", Name: "Asha", Role: model.RoleUser}
	nobody = model.Actor{}
)

type recorder struct {
	mu   sync.Mutex
	sent []notify.Notification
}

func (r *recorder) Notify(_ context.Context, n notify.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, n)
	return nil
}

func (r *recorder) all() []notify.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notify.Notification(nil), r.sent...)
}

type fakeGateway struct {
	intents []string
	event   *payment.Event
	err     error
}

func (g *fakeGateway) CreateIntent(_ context.Context, interestID string, amount decimal.Decimal, _ string) (*payment.Intent, error) {
	if g.err != nil {
		return nil, g.err
	}
	g.intents = append(g.intents, interestID)
	return &payment.Intent{ID: "pi_" + interestID, ClientSecret: "secret", Amount: payment.MinorUnits(amount), Currency: "inr"}, nil
}

func (g *fakeGateway) ParseEvent(_ []byte, signature string) (*payment.Event, error) {
	if signature != "valid" {
		return nil, errBadSignature
	}
	return g.event, nil
}

type sigError string

func (e sigError) Error() string { return string(e) }

const errBadSignature = sigError("bad signature")

type fixture struct {
	store     *repository.MemoryStore
	props     *repository.PropertyRepository
	interests *repository.InterestRepository
	settings  *repository.SettingsRepository
	users     *repository.UserRepository
	messages  *repository.MessageRepository
	mail      *recorder
}

func newFixture() *fixture {
	store := repository.NewMemoryStore()
	return &fixture{
		store:     store,
		props:     repository.NewPropertyRepository(store),
		interests: repository.NewInterestRepository(store),
		settings:  repository.NewSettingsRepository(store),
		users:     repository.NewUserRepository(store),
		messages:  repository.NewMessageRepository(store),
		mail:      &recorder{},
	}
}

func sampleProperty(rent int64) model.Property {
	return model.Property{
		Name:          "Sea View 2BHK",
		PropertyType:  "apartment",
		MonthlyRent:   decimal.NewFromInt(rent),
		Bedrooms:      2,
		Address:       "12 Marine Drive",
		City:          "Mumbai",
		State:         "Maharashtra",
		Pincode:       "400002",
		ContactNumber: "9876543210",
		Description:   "Bright flat facing the sea",
	}
}

// seedListing stores a listing with the given status directly.
func (f *fixture) seedListing(t *testing.T, rent int64, status model.Status) model.Property {
	t.Helper()
	p := sampleProperty(rent)
	p.Status = status
	p.OwnerID = owner.UserID
	p.OwnerEmail = owner.Email
	require.NoError(t, f.props.Create(context.Background(), &p))
	return p
}
