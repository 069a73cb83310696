package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	markupruledomain "github.com/nalotext/smsmargin/internal/markuprule/domain"
	"github.com/nalotext/smsmargin/internal/resellerctx"
	"github.com/nalotext/smsmargin/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  markupruledomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  markupruledomain.Repository
}

func New(p Params) markupruledomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("markuprule.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req markupruledomain.CreateRequest) (*markupruledomain.Response, error) {
	resellerID, err := s.resellerIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, markupruledomain.ErrInvalidName
	}

	kind := req.Kind
	if kind == "" {
		kind = markupruledomain.RuleKindMarkup
	}
	if kind != markupruledomain.RuleKindMarkup && kind != markupruledomain.RuleKindVolumeTier {
		return nil, markupruledomain.ErrInvalidKind
	}

	if err := validateEffect(req.MarkupType, req.MarkupValue); err != nil {
		return nil, err
	}
	if err := validateBand(req.MinVolume, req.MaxVolume); err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByName(ctx, s.db, resellerID, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, markupruledomain.ErrDuplicateName
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	now := time.Now().UTC()
	entity := &markupruledomain.MarkupRule{
		ID:          s.genID.Generate(),
		ResellerID:  resellerID,
		Name:        name,
		Kind:        kind,
		MinVolume:   req.MinVolume,
		MaxVolume:   req.MaxVolume,
		CountryCode: normalizeScope(req.CountryCode),
		SMSType:     normalizeScope(req.SMSType),
		MarkupType:  req.MarkupType,
		MarkupValue: req.MarkupValue,
		Priority:    req.Priority,
		IsActive:    active,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Insert(ctx, s.db, entity); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, markupruledomain.ErrDuplicateName
		}
		return nil, err
	}

	return toResponse(entity), nil
}

func (s *Service) Update(ctx context.Context, id string, req markupruledomain.UpdateRequest) (*markupruledomain.Response, error) {
	resellerID, err := s.resellerIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	ruleID, err := parseID(id)
	if err != nil {
		return nil, markupruledomain.ErrInvalidID
	}

	entity, err := s.repo.FindByID(ctx, s.db, resellerID, ruleID)
	if err != nil {
		return nil, err
	}
	if entity == nil {
		return nil, markupruledomain.ErrNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, markupruledomain.ErrInvalidName
		}
		if name != entity.Name {
			other, err := s.repo.FindByName(ctx, s.db, resellerID, name)
			if err != nil {
				return nil, err
			}
			if other != nil && other.ID != entity.ID {
				return nil, markupruledomain.ErrDuplicateName
			}
		}
		entity.Name = name
	}
	if req.MinVolume != nil {
		entity.MinVolume = *req.MinVolume
	}
	if req.MaxVolume != nil {
		entity.MaxVolume = req.MaxVolume
	}
	if req.CountryCode != nil {
		entity.CountryCode = normalizeScope(req.CountryCode)
	}
	if req.SMSType != nil {
		entity.SMSType = normalizeScope(req.SMSType)
	}
	if req.MarkupType != nil {
		entity.MarkupType = *req.MarkupType
	}
	if req.MarkupValue != nil {
		entity.MarkupValue = *req.MarkupValue
	}
	if req.Priority != nil {
		entity.Priority = *req.Priority
	}
	if req.IsActive != nil {
		entity.IsActive = *req.IsActive
	}

	if err := validateEffect(entity.MarkupType, entity.MarkupValue); err != nil {
		return nil, err
	}
	if err := validateBand(entity.MinVolume, entity.MaxVolume); err != nil {
		return nil, err
	}

	entity.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, s.db, entity); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, markupruledomain.ErrDuplicateName
		}
		return nil, err
	}

	return toResponse(entity), nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	resellerID, err := s.resellerIDFromContext(ctx)
	if err != nil {
		return err
	}

	ruleID, err := parseID(id)
	if err != nil {
		return markupruledomain.ErrInvalidID
	}

	entity, err := s.repo.FindByID(ctx, s.db, resellerID, ruleID)
	if err != nil {
		return err
	}
	if entity == nil {
		return markupruledomain.ErrNotFound
	}

	return s.repo.Delete(ctx, s.db, resellerID, ruleID)
}

func (s *Service) Get(ctx context.Context, id string) (*markupruledomain.Response, error) {
	resellerID, err := s.resellerIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	ruleID, err := parseID(id)
	if err != nil {
		return nil, markupruledomain.ErrInvalidID
	}

	entity, err := s.repo.FindByID(ctx, s.db, resellerID, ruleID)
	if err != nil {
		return nil, err
	}
	if entity == nil {
		return nil, markupruledomain.ErrNotFound
	}

	return toResponse(entity), nil
}

func (s *Service) List(ctx context.Context, filter markupruledomain.ListFilter) ([]markupruledomain.Response, error) {
	resellerID, err := s.resellerIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	items, err := s.repo.List(ctx, s.db, resellerID, filter)
	if err != nil {
		return nil, err
	}

	resp := make([]markupruledomain.Response, 0, len(items))
	for i := range items {
		resp = append(resp, *toResponse(&items[i]))
	}
	return resp, nil
}

func (s *Service) resellerIDFromContext(ctx context.Context) (snowflake.ID, error) {
	resellerID, ok := resellerctx.ResellerIDFromContext(ctx)
	if !ok || resellerID == 0 {
		return 0, markupruledomain.ErrInvalidReseller
	}
	return resellerID, nil
}

func validateEffect(markupType markupruledomain.MarkupType, value float64) error {
	if !markupType.Valid() {
		return markupruledomain.ErrInvalidMarkupType
	}
	if value < 0 {
		return markupruledomain.ErrInvalidMarkupValue
	}
	if markupType == markupruledomain.MarkupTypePercentage && value > markupruledomain.MaxPercentageValue {
		return markupruledomain.ErrPercentageTooLarge
	}
	return nil
}

func validateBand(minVolume int64, maxVolume *int64) error {
	if minVolume < 0 {
		return markupruledomain.ErrInvalidVolumeBand
	}
	if maxVolume != nil && *maxVolume < minVolume {
		return markupruledomain.ErrInvalidVolumeBand
	}
	return nil
}

func normalizeScope(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func toResponse(r *markupruledomain.MarkupRule) *markupruledomain.Response {
	return &markupruledomain.Response{
		ID:          r.ID.String(),
		ResellerID:  r.ResellerID.String(),
		Name:        r.Name,
		Kind:        r.Kind,
		MinVolume:   r.MinVolume,
		MaxVolume:   r.MaxVolume,
		CountryCode: r.CountryCode,
		SMSType:     r.SMSType,
		MarkupType:  r.MarkupType,
		MarkupValue: r.MarkupValue,
		Priority:    r.Priority,
		IsActive:    r.IsActive,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func parseID(value string) (snowflake.ID, error) {
	return snowflake.ParseString(strings.TrimSpace(value))
}
