package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"rentease-service/internal/cache"
	"rentease-service/internal/model"
	"rentease-service/internal/notify"
	"rentease-service/internal/repository"
	"rentease-service/internal/workflow"
)

const listingsCachePrefix = "listings"

// PropertyService contains the listing use cases. All moderation rules are
// delegated to the workflow package.
type PropertyService struct {
	props    *repository.PropertyRepository
	blobs    repository.BlobStore
	cache    QueryCache
	notifier notify.Notifier
	now      func() time.Time
}

func NewPropertyService(
	props *repository.PropertyRepository,
	blobs repository.BlobStore,
	qc QueryCache,
	notifier notify.Notifier,
) *PropertyService {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &PropertyService{
		props:    props,
		blobs:    blobs,
		cache:    qc,
		notifier: notifier,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// ListingQuery filters the public catalogue.
type ListingQuery struct {
	City         string
	PropertyType string
	Text         string
	MinRent      decimal.NullDecimal
	MaxRent      decimal.NullDecimal
	Bedrooms     int
	Limit        int
	Offset       int
}

func (q ListingQuery) params() map[string]string {
	p := map[string]string{
		"city": strings.ToLower(q.City),
		"type": strings.ToLower(q.PropertyType),
		"q":    strings.ToLower(q.Text),
	}
	if q.MinRent.Valid {
		p["min"] = q.MinRent.Decimal.String()
	}
	if q.MaxRent.Valid {
		p["max"] = q.MaxRent.Decimal.String()
	}
	if q.Bedrooms > 0 {
		p["bedrooms"] = strconv.Itoa(q.Bedrooms)
	}
	return p
}

// Matches applies every filter but pagination.
func (q ListingQuery) Matches(p model.Property) bool {
	if q.City != "" && !strings.EqualFold(q.City, p.City) {
		return false
	}
	if q.PropertyType != "" && !strings.EqualFold(q.PropertyType, p.PropertyType) {
		return false
	}
	if q.MinRent.Valid && p.MonthlyRent.LessThan(q.MinRent.Decimal) {
		return false
	}
	if q.MaxRent.Valid && p.MonthlyRent.GreaterThan(q.MaxRent.Decimal) {
		return false
	}
	if q.Bedrooms > 0 && p.Bedrooms < q.Bedrooms {
		return false
	}
	if q.Text == "" {
		return true
	}
	needle := strings.ToLower(strings.TrimSpace(q.Text))
	for _, hay := range []string{p.Name, p.Address, p.City, p.State, p.Description, p.PropertyType, p.Location()} {
		if strings.Contains(strings.ToLower(hay), needle) {
			return true
		}
	}
	return false
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

func project(actor model.Actor, props []model.Property) []model.PropertyView {
	out := make([]model.PropertyView, 0, len(props))
	for _, p := range props {
		out = append(out, workflow.Project(actor, p))
	}
	return out
}

// ListPublic returns approved listings matching q, newest first.
func (s *PropertyService) ListPublic(ctx context.Context, actor model.Actor, q ListingQuery) ([]model.PropertyView, error) {
	matched, err := s.publicMatches(ctx, q)
	if err != nil {
		return nil, err
	}
	return project(actor, paginate(matched, q.Limit, q.Offset)), nil
}

func (s *PropertyService) publicMatches(ctx context.Context, q ListingQuery) ([]model.Property, error) {
	key := cache.QueryKey(listingsCachePrefix, q.params())
	if s.cache != nil {
		var cached []model.Property
		hit, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			log.Printf("[PropertyService.ListPublic] cache read failed: %v", err)
		}
		if hit {
			return cached, nil
		}
	}

	approved, err := s.props.GetByStatus(ctx, model.StatusApproved)
	if err != nil {
		return nil, fmt.Errorf("PropertyService.ListPublic: %w", err)
	}
	matched := make([]model.Property, 0, len(approved))
	for _, p := range approved {
		if workflow.IsPubliclyVisible(p) && q.Matches(p) {
			matched = append(matched, p)
		}
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, matched); err != nil {
			log.Printf("[PropertyService.ListPublic] cache write failed: %v", err)
		}
	}
	return matched, nil
}

func (s *PropertyService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidatePrefix(ctx, listingsCachePrefix+":"); err != nil {
		log.Printf("[PropertyService] cache invalidation failed: %v", err)
	}
}

// Get returns the listing if actor may see it. Hidden listings are reported
// as not found.
func (s *PropertyService) Get(ctx context.Context, actor model.Actor, id string) (*model.PropertyView, error) {
	p, err := s.props.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("PropertyService.Get: %w", err)
	}
	if !workflow.CanView(actor, *p) {
		return nil, fmt.Errorf("PropertyService.Get: %s: %w", id, ErrNotFound)
	}
	v := workflow.Project(actor, *p)
	return &v, nil
}

func validateProperty(p model.Property) error {
	switch {
	case strings.TrimSpace(p.Name) == "":
		return invalid("property name is required")
	case strings.TrimSpace(p.PropertyType) == "":
		return invalid("property type is required")
	case strings.TrimSpace(p.City) == "":
		return invalid("city is required")
	case p.MonthlyRent.IsNegative():
		return invalid("monthly rent must not be negative")
	case p.SecurityDeposit.IsNegative() || p.MaintenanceCharges.IsNegative():
		return invalid("charges must not be negative")
	case p.Bedrooms < 0 || p.Bathrooms < 0:
		return invalid("room counts must not be negative")
	case p.Pincode != "" && !matches(p.Pincode, pincodeRule):
		return invalid("pincode must be 6 digits")
	case p.ContactNumber != "" && !matches(p.ContactNumber, contactNumberRule):
		return invalid("contact number must be 10 digits")
	}
	return nil
}

// Create stores a new listing owned by actor. New listings always start
// pending, whatever the input says.
func (s *PropertyService) Create(ctx context.Context, actor model.Actor, in model.Property) (*model.PropertyView, error) {
	if actor.Anonymous() {
		return nil, ErrUnauthenticated
	}
	if err := validateProperty(in); err != nil {
		return nil, err
	}

	now := s.now()
	p := in
	p.ID = ""
	p.Status = model.StatusPending
	p.OwnerID = actor.UserID
	p.OwnerEmail = actor.Email
	p.CreatedAt = now
	p.UpdatedAt = now

	if err := s.props.Create(ctx, &p); err != nil {
		return nil, fmt.Errorf("PropertyService.Create: %w", err)
	}
	log.Printf("[PropertyService.Create] listing %s created by %s", p.ID, actor.UserID)

	v := workflow.Project(actor, p)
	return &v, nil
}

// Update replaces the editable fields of a listing. Ownership, creation
// time and the image are kept; the status follows workflow.StatusAfterEdit.
func (s *PropertyService) Update(ctx context.Context, actor model.Actor, id string, in model.Property) (*model.PropertyView, error) {
	if actor.Anonymous() {
		return nil, ErrUnauthenticated
	}
	current, err := s.props.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("PropertyService.Update: %w", err)
	}
	if !workflow.CanEdit(actor, *current) {
		return nil, fmt.Errorf("PropertyService.Update: %s: %w", id, ErrForbidden)
	}
	if err := validateProperty(in); err != nil {
		return nil, err
	}

	p := in
	p.ID = current.ID
	p.OwnerID = current.OwnerID
	p.OwnerEmail = current.OwnerEmail
	p.CreatedAt = current.CreatedAt
	p.Status = workflow.StatusAfterEdit(actor, *current)
	p.UpdatedAt = s.now()
	if p.ImageURL == "" {
		p.ImageURL = current.ImageURL
	}

	if err := s.props.Update(ctx, &p); err != nil {
		return nil, fmt.Errorf("PropertyService.Update: %w", err)
	}
	if p.Status != current.Status {
		log.Printf("[PropertyService.Update] listing %s back to %s after edit by %s", id, p.Status, actor.UserID)
	}
	s.invalidate(ctx)

	v := workflow.Project(actor, p)
	return &v, nil
}

func (s *PropertyService) Delete(ctx context.Context, actor model.Actor, id string) error {
	current, err := s.props.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("PropertyService.Delete: %w", err)
	}
	if !workflow.CanEdit(actor, *current) {
		return fmt.Errorf("PropertyService.Delete: %s: %w", id, ErrForbidden)
	}
	if err := s.props.Delete(ctx, id); err != nil {
		return fmt.Errorf("PropertyService.Delete: %w", err)
	}
	log.Printf("[PropertyService.Delete] listing %s deleted by %s", id, actor.UserID)
	s.invalidate(ctx)
	return nil
}

// ListMine returns every listing owned by actor, in any status.
func (s *PropertyService) ListMine(ctx context.Context, actor model.Actor) ([]model.PropertyView, error) {
	if actor.Anonymous() {
		return nil, ErrUnauthenticated
	}
	props, err := s.props.GetByOwner(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("PropertyService.ListMine: %w", err)
	}
	return project(actor, props), nil
}

// ListByStatus is the admin moderation queue. An empty status lists all.
func (s *PropertyService) ListByStatus(ctx context.Context, actor model.Actor, status model.Status) ([]model.PropertyView, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	var (
		props []model.Property
		err   error
	)
	switch {
	case status == "":
		props, err = s.props.GetAll(ctx)
	case status.Valid():
		props, err = s.props.GetByStatus(ctx, status)
	default:
		return nil, invalid("unknown status %q", status)
	}
	if err != nil {
		return nil, fmt.Errorf("PropertyService.ListByStatus: %w", err)
	}
	return project(actor, props), nil
}

// ListVideoRequests lists listings whose owner asked for a video shoot.
func (s *PropertyService) ListVideoRequests(ctx context.Context, actor model.Actor) ([]model.PropertyView, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	props, err := s.props.GetVideoRequests(ctx)
	if err != nil {
		return nil, fmt.Errorf("PropertyService.ListVideoRequests: %w", err)
	}
	return project(actor, props), nil
}

// Transition applies a moderation decision and tells the owner about it.
func (s *PropertyService) Transition(ctx context.Context, actor model.Actor, id string, to model.Status) (*model.PropertyView, error) {
	current, err := s.props.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("PropertyService.Transition: %w", err)
	}
	next, err := workflow.Transition(actor, *current, to)
	if err != nil {
		return nil, fmt.Errorf("PropertyService.Transition: %s: %w", id, err)
	}
	err = s.props.MoveStatus(ctx, id, current.Status, next.Status)
	if errors.Is(err, repository.ErrConflict) {
		return nil, fmt.Errorf("PropertyService.Transition: %s already decided: %w", id, workflow.ErrInvalidTransition)
	}
	if err != nil {
		return nil, fmt.Errorf("PropertyService.Transition: %w", err)
	}
	log.Printf("[PropertyService.Transition] listing %s %s -> %s by %s", id, current.Status, next.Status, actor.UserID)
	s.invalidate(ctx)

	if err := s.notifier.Notify(ctx, notify.ListingReviewed(next.OwnerEmail, next.Name, string(next.Status))); err != nil {
		log.Printf("[PropertyService.Transition] owner notification failed: %v", err)
	}
	v := workflow.Project(actor, next)
	return &v, nil
}

func (s *PropertyService) Approve(ctx context.Context, actor model.Actor, id string) (*model.PropertyView, error) {
	return s.Transition(ctx, actor, id, model.StatusApproved)
}

func (s *PropertyService) Reject(ctx context.Context, actor model.Actor, id string) (*model.PropertyView, error) {
	return s.Transition(ctx, actor, id, model.StatusRejected)
}

// UploadImage stores an image for the listing and records its URL.
func (s *PropertyService) UploadImage(ctx context.Context, actor model.Actor, id, filename string, r io.Reader) (string, error) {
	current, err := s.props.GetByID(ctx, id)
	if err != nil {
		return "", fmt.Errorf("PropertyService.UploadImage: %w", err)
	}
	if !workflow.CanEdit(actor, *current) {
		return "", fmt.Errorf("PropertyService.UploadImage: %s: %w", id, ErrForbidden)
	}

	name := fmt.Sprintf("listing_%s_%s", id, path.Base(filename))
	url, err := s.blobs.Upload(ctx, name, r)
	if err != nil {
		return "", fmt.Errorf("PropertyService.UploadImage: %w", err)
	}
	if err := s.props.SetImageURL(ctx, id, url); err != nil {
		return "", fmt.Errorf("PropertyService.UploadImage: %w", err)
	}
	s.invalidate(ctx)
	return url, nil
}

// OpenFile streams a stored upload.
func (s *PropertyService) OpenFile(ctx context.Context, id string) (io.ReadCloser, string, error) {
	rc, name, err := s.blobs.Open(ctx, id)
	if err != nil {
		return nil, "", fmt.Errorf("PropertyService.OpenFile: %w", err)
	}
	return rc, name, nil
}
