package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"rentease-service/internal/model"
	"rentease-service/internal/report"
	"rentease-service/internal/repository"
)

// ReportRequest selects a report, its inclusive date range and columns.
type ReportRequest struct {
	Kind   report.Kind
	Start  time.Time
	End    time.Time
	Fields []string
}

type ReportService struct {
	props     *repository.PropertyRepository
	interests *repository.InterestRepository
	users     *repository.UserRepository
	now       func() time.Time
}

func NewReportService(
	props *repository.PropertyRepository,
	interests *repository.InterestRepository,
	users *repository.UserRepository,
) *ReportService {
	return &ReportService{
		props:     props,
		interests: interests,
		users:     users,
		now:       time.Now,
	}
}

// Generate builds the requested report. The collections report always
// covers the current day.
func (s *ReportService) Generate(ctx context.Context, actor model.Actor, req ReportRequest) (report.Table, error) {
	if !actor.IsAdmin() {
		return report.Table{}, ErrForbidden
	}
	fields, err := report.Fields(req.Kind, req.Fields)
	if err != nil {
		if errors.Is(err, report.ErrUnknownKind) || errors.Is(err, report.ErrUnknownField) {
			return report.Table{}, invalid("%v", err)
		}
		return report.Table{}, err
	}

	var rows []report.Row
	switch req.Kind {
	case report.KindProperties:
		rows, err = s.propertyRows(ctx, req.Start, req.End)
	case report.KindInterests:
		rows, err = s.interestRows(ctx, req.Start, req.End)
	case report.KindCollections:
		rows, err = s.collectionRows(ctx)
	}
	if err != nil {
		return report.Table{}, fmt.Errorf("ReportService.Generate %s: %w", req.Kind, err)
	}
	return report.Select(rows, fields), nil
}

func (s *ReportService) propertyRows(ctx context.Context, start, end time.Time) ([]report.Row, error) {
	props, err := s.props.GetCreatedBetween(ctx, start, end)
	if err != nil {
		return nil, err
	}
	rows := make([]report.Row, 0, len(props))
	for _, p := range props {
		rows = append(rows, report.PropertyRow(p))
	}
	return rows, nil
}

func (s *ReportService) interestRows(ctx context.Context, start, end time.Time) ([]report.Row, error) {
	list, err := s.interests.FindCreatedBetween(ctx, start, end)
	if err != nil {
		return nil, err
	}
	props, err := s.props.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	users, err := s.users.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	propByID := make(map[string]*model.Property, len(props))
	for i := range props {
		propByID[props[i].ID] = &props[i]
	}
	userByID := make(map[string]*model.User, len(users))
	for i := range users {
		userByID[users[i].ID] = &users[i]
	}

	rows := make([]report.Row, 0, len(list))
	for _, in := range list {
		rows = append(rows, report.InterestRow(in, propByID[in.PropertyID], userByID[in.UserID]))
	}
	return rows, nil
}

func (s *ReportService) collectionRows(ctx context.Context) ([]report.Row, error) {
	start, end := report.DayRange(s.now())
	list, err := s.interests.FindCreatedBetween(ctx, start, end)
	if err != nil {
		return nil, err
	}
	rows, _ := report.CollectionRows(list)
	return rows, nil
}
