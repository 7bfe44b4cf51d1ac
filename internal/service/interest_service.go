package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"rentease-service/internal/fee"
	"rentease-service/internal/model"
	"rentease-service/internal/notify"
	"rentease-service/internal/payment"
	"rentease-service/internal/repository"
	"rentease-service/internal/workflow"
)

// InterestInput is the questionnaire a tenant fills in. Field formats are
// checked when the request is bound.
type InterestInput struct {
	ContactNumber    string `json:"contactNumber" binding:"required,len=10,number"`
	Religion         string `json:"religion" binding:"required"`
	Occupation       string `json:"occupation" binding:"required"`
	MaritalStatus    string `json:"maritalStatus" binding:"required"`
	FamilyMembers    string `json:"familyMembers"`
	AgeGroup         string `json:"ageGroup"`
	StudentOrWorking string `json:"studentOrWorking"`
	VideoTour        bool   `json:"videoTour"`
	AgreeToFee       bool   `json:"agreeToFee"`
}

func (in InterestInput) normalize() InterestInput {
	in.ContactNumber = strings.TrimSpace(in.ContactNumber)
	in.Religion = strings.TrimSpace(in.Religion)
	in.Occupation = strings.TrimSpace(in.Occupation)
	in.MaritalStatus = strings.ToLower(strings.TrimSpace(in.MaritalStatus))
	if in.MaritalStatus == model.MaritalMarried {
		in.StudentOrWorking = ""
	} else {
		in.FamilyMembers = ""
		in.AgeGroup = ""
	}
	return in
}

func (in InterestInput) validate() error {
	if !in.AgreeToFee {
		return invalid("you must agree to pay the consultant fee")
	}
	return nil
}

// PaymentStart is handed to the client to complete a fee payment.
type PaymentStart struct {
	Interest   model.Interest  `json:"interest"`
	Intent     *payment.Intent `json:"intent,omitempty"`
	UPIAddress string          `json:"upiAddress,omitempty"`
}

type InterestService struct {
	interests *repository.InterestRepository
	props     *repository.PropertyRepository
	settings  *repository.SettingsRepository
	gateway   payment.Gateway
	notifier  notify.Notifier
	adminDesk string
	now       func() time.Time
}

func NewInterestService(
	interests *repository.InterestRepository,
	props *repository.PropertyRepository,
	settings *repository.SettingsRepository,
	gateway payment.Gateway,
	notifier notify.Notifier,
	adminEmail string,
) *InterestService {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &InterestService{
		interests: interests,
		props:     props,
		settings:  settings,
		gateway:   gateway,
		notifier:  notifier,
		adminDesk: adminEmail,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Submit records actor's interest in an approved listing. The fee is
// resolved once, from the settings read here, and stored with the record.
func (s *InterestService) Submit(ctx context.Context, actor model.Actor, propertyID string, in InterestInput) (*model.Interest, error) {
	if actor.Anonymous() {
		return nil, ErrUnauthenticated
	}
	in = in.normalize()
	if err := in.validate(); err != nil {
		return nil, err
	}

	p, err := s.props.GetByID(ctx, propertyID)
	if err != nil {
		return nil, fmt.Errorf("InterestService.Submit: %w", err)
	}
	if !workflow.IsPubliclyVisible(*p) {
		return nil, fmt.Errorf("InterestService.Submit: %s: %w", propertyID, ErrNotFound)
	}

	settings, _, err := s.settings.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("InterestService.Submit: %w", err)
	}

	interest := &model.Interest{
		PropertyID:       p.ID,
		PropertyName:     p.Name,
		PropertyType:     p.PropertyType,
		UserID:           actor.UserID,
		UserEmail:        actor.Email,
		UserName:         actor.Name,
		ContactNumber:    in.ContactNumber,
		Religion:         in.Religion,
		Occupation:       in.Occupation,
		MaritalStatus:    in.MaritalStatus,
		FamilyMembers:    in.FamilyMembers,
		AgeGroup:         in.AgeGroup,
		StudentOrWorking: in.StudentOrWorking,
		VideoTour:        in.VideoTour,
		AgreeToFee:       in.AgreeToFee,
		PaymentAmount:    fee.Resolve(p.MonthlyRent, settings),
		MonthlyRent:      p.MonthlyRent,
		PaymentStatus:    model.PaymentPending,
		CreatedAt:        s.now(),
	}
	if err := s.interests.Insert(ctx, interest); err != nil {
		return nil, fmt.Errorf("InterestService.Submit: %w", err)
	}
	log.Printf("[InterestService.Submit] interest %s in %s by %s, fee %s", interest.ID, p.ID, actor.UserID, interest.PaymentAmount)

	n := notify.InterestReceived(s.adminDesk, p.Name, actor.Email, interest.PaymentAmount.String())
	if err := s.notifier.Notify(ctx, n); err != nil {
		log.Printf("[InterestService.Submit] admin notification failed: %v", err)
	}
	return interest, nil
}

// ListMine returns actor's own interest expressions.
func (s *InterestService) ListMine(ctx context.Context, actor model.Actor) ([]model.Interest, error) {
	if actor.Anonymous() {
		return nil, ErrUnauthenticated
	}
	list, err := s.interests.FindByUser(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("InterestService.ListMine: %w", err)
	}
	return list, nil
}

// ListForOwner returns the interests expressed in actor's listings. Tenant
// contact numbers stay with the admin desk.
func (s *InterestService) ListForOwner(ctx context.Context, actor model.Actor) ([]model.Interest, error) {
	if actor.Anonymous() {
		return nil, ErrUnauthenticated
	}
	props, err := s.props.GetByOwner(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("InterestService.ListForOwner: %w", err)
	}
	out := []model.Interest{}
	for _, p := range props {
		list, err := s.interests.FindByProperty(ctx, p.ID)
		if err != nil {
			return nil, fmt.Errorf("InterestService.ListForOwner: %w", err)
		}
		for _, in := range list {
			if !actor.IsAdmin() {
				in.ContactNumber = ""
			}
			out = append(out, in)
		}
	}
	return out, nil
}

func (s *InterestService) ListAll(ctx context.Context, actor model.Actor) ([]model.Interest, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	list, err := s.interests.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("InterestService.ListAll: %w", err)
	}
	return list, nil
}

// StartPayment opens a card payment for the stored fee. Without a gateway
// only the UPI address is returned.
func (s *InterestService) StartPayment(ctx context.Context, actor model.Actor, interestID string) (*PaymentStart, error) {
	if actor.Anonymous() {
		return nil, ErrUnauthenticated
	}
	in, err := s.interests.GetByID(ctx, interestID)
	if err != nil {
		return nil, fmt.Errorf("InterestService.StartPayment: %w", err)
	}
	if in.UserID != actor.UserID && !actor.IsAdmin() {
		return nil, fmt.Errorf("InterestService.StartPayment: %s: %w", interestID, ErrForbidden)
	}
	if in.PaymentStatus.Collected() {
		return nil, invalid("the fee for this interest has already been paid")
	}

	settings, _, err := s.settings.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("InterestService.StartPayment: %w", err)
	}
	out := &PaymentStart{Interest: *in, UPIAddress: settings.UPIAddress}
	if s.gateway == nil {
		return out, nil
	}

	intent, err := s.gateway.CreateIntent(ctx, in.ID, in.PaymentAmount, in.UserEmail)
	if err != nil {
		return nil, fmt.Errorf("InterestService.StartPayment: %w", err)
	}
	if err := s.interests.SetPayment(ctx, in.ID, model.PaymentPending, intent.ID); err != nil {
		return nil, fmt.Errorf("InterestService.StartPayment: %w", err)
	}
	out.Interest.PaymentReference = intent.ID
	out.Intent = intent
	return out, nil
}

// HandlePaymentEvent applies a verified gateway callback. Events other than
// a succeeded payment are ignored.
func (s *InterestService) HandlePaymentEvent(ctx context.Context, payload []byte, signature string) error {
	if s.gateway == nil {
		return fmt.Errorf("InterestService.HandlePaymentEvent: payments are not configured: %w", ErrForbidden)
	}
	ev, err := s.gateway.ParseEvent(payload, signature)
	if err != nil {
		return invalid("webhook: %v", err)
	}
	if ev.Type != payment.EventSucceeded {
		return nil
	}
	if ev.InterestID == "" {
		log.Printf("[InterestService.HandlePaymentEvent] %s without an interest reference", ev.Reference)
		return nil
	}
	return s.MarkPaid(ctx, ev.InterestID, ev.Reference)
}

// MarkPaid records a collected fee. The amount is left untouched.
func (s *InterestService) MarkPaid(ctx context.Context, interestID, reference string) error {
	if err := s.interests.SetPayment(ctx, interestID, model.PaymentPaid, reference); err != nil {
		return fmt.Errorf("InterestService.MarkPaid: %w", err)
	}
	log.Printf("[InterestService.MarkPaid] interest %s paid (%s)", interestID, reference)
	return nil
}
