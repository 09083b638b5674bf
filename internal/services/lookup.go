package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shoushou-fitness/clubbot/internal/domain"
	"github.com/shoushou-fitness/clubbot/internal/metrics"
	"github.com/shoushou-fitness/clubbot/internal/textkey"
	"github.com/shoushou-fitness/clubbot/pkg/logging"
)

// LookupService answers queries by scanning a freshly fetched sheet.
type LookupService struct {
	gateway domain.DataGateway
	sheets  domain.SheetNames
	metrics *metrics.BotMetrics
	logger  *logging.Logger
}

// NewLookupService wires the lookup engine to a gateway. metrics may be nil.
func NewLookupService(gateway domain.DataGateway, sheets domain.SheetNames, m *metrics.BotMetrics, logger *logging.Logger) *LookupService {
	if logger == nil {
		logger = logging.Default()
	}
	return &LookupService{gateway: gateway, sheets: sheets, metrics: m, logger: logger}
}

// matcher selects the sheet and row predicate for one query.
type matcher struct {
	sheet string
	match func(domain.Record) bool
}

func (s *LookupService) matcherFor(req domain.QueryRequest) (matcher, error) {
	switch req.Kind {
	case domain.QueryMemberByID:
		key := textkey.Digits(req.Key)
		return matcher{s.sheets.Members, func(r domain.Record) bool {
			return key != "" && textkey.Digits(r.String(domain.ColMemberID)) == key
		}}, nil

	case domain.QueryMemberByNameAndPhone:
		return matcher{s.sheets.Members, namePhone(req, domain.ColMemberName, domain.ColMemberPhone)}, nil

	case domain.QueryFitnessLogByNameAndPhone:
		return matcher{s.sheets.FitnessLog, namePhone(req, domain.ColLogName, domain.ColLogPhone)}, nil

	case domain.QueryFaqByCategory:
		return matcher{s.sheets.FAQ, sameText(req.Key, domain.ColFaqCategory)}, nil

	case domain.QueryFacilityByCategory:
		return matcher{s.sheets.Facilities, sameText(req.Key, domain.ColFacilityCategory)}, nil

	case domain.QueryFacilityByExactName:
		key := strings.TrimSpace(req.Key)
		return matcher{s.sheets.Facilities, func(r domain.Record) bool {
			return key != "" && r.String(domain.ColFacilityName) == key
		}}, nil

	case domain.QueryCourseByType:
		return matcher{s.sheets.Courses, sameText(req.Key, domain.ColCourseType)}, nil

	case domain.QueryCourseByDate:
		key := textkey.Date(req.Key)
		return matcher{s.sheets.Courses, func(r domain.Record) bool {
			return key != "" && textkey.Date(r.String(domain.ColCourseDate)) == key
		}}, nil

	case domain.QueryCoachByType:
		return matcher{s.sheets.Coaches, sameText(req.Key, domain.ColCoachType)}, nil
	}
	return matcher{}, fmt.Errorf("unknown query kind %q", req.Kind)
}

// namePhone compares whitespace-free names and phones without a leading zero.
func namePhone(req domain.QueryRequest, nameCol, phoneCol string) func(domain.Record) bool {
	name := textkey.Name(req.Name)
	phone := textkey.Phone(req.Phone)
	return func(r domain.Record) bool {
		if name == "" || phone == "" {
			return false
		}
		return textkey.Name(r.String(nameCol)) == name && textkey.Phone(r.String(phoneCol)) == phone
	}
}

// sameText compares category-like cells case-insensitively.
func sameText(key, column string) func(domain.Record) bool {
	key = strings.TrimSpace(key)
	return func(r domain.Record) bool {
		return key != "" && strings.EqualFold(r.String(column), key)
	}
}

// Query fetches the sheet for req.Kind and returns the matching rows. Point
// lookups stop at the first match.
func (s *LookupService) Query(ctx context.Context, req domain.QueryRequest) (domain.QueryResult, error) {
	m, err := s.matcherFor(req)
	if err != nil {
		return domain.QueryResult{}, err
	}

	start := time.Now()
	records, err := s.gateway.AllRecords(ctx, m.sheet)
	if err != nil {
		s.metrics.ObserveLookup(string(req.Kind), "error", time.Since(start))
		s.logger.Error("sheet fetch failed", "kind", req.Kind, "sheet", m.sheet, "error", err)
		return domain.QueryResult{}, &domain.BackendError{Sheet: m.sheet, Err: err}
	}

	res := domain.QueryResult{Kind: req.Kind, Point: req.Kind.IsPoint()}
	for _, rec := range records {
		if !m.match(rec) {
			continue
		}
		res.Records = append(res.Records, rec)
		if res.Point {
			break
		}
	}

	outcome := "hit"
	if !res.Found() {
		outcome = "miss"
	}
	s.metrics.ObserveLookup(string(req.Kind), outcome, time.Since(start))
	s.logger.Debug("lookup done", "kind", req.Kind, "sheet", m.sheet, "rows", len(records), "matches", len(res.Records))
	return res, nil
}
