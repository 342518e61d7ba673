package service

import (
	"context"
	"errors"

	"github.com/ikkim/shoplive-catalog/internal/app/repository"
	"github.com/ikkim/shoplive-catalog/internal/variant"
	"github.com/ikkim/shoplive-catalog/pkg/logger"
)

var (
	ErrSessionNotFound = errors.New("variant session not found")
	ErrSessionConflict = errors.New("variant session modified concurrently")
)

// SessionView is a session's derived view plus the media the storefront
// should keep showing while the selection is unresolved.
type SessionView struct {
	SessionID string `json:"session_id"`
	ProductID uint   `json:"product_id"`
	variant.View
	Media   []string `json:"media"`
	Changed bool     `json:"changed"`
}

type VariantService interface {
	// GetView derives a stateless view. An empty selection means the default.
	GetView(productID uint, selected []variant.ValueID) (*variant.View, error)
	StartSession(ctx context.Context, productID uint) (*SessionView, error)
	GetSession(ctx context.Context, sessionID string) (*SessionView, error)
	Choose(ctx context.Context, sessionID string, choice variant.Choice) (*SessionView, error)
	ResetSession(ctx context.Context, sessionID string) (*SessionView, error)
	EndSession(ctx context.Context, sessionID string) error
	// NewLiveSession returns an in-memory session owned by the caller.
	NewLiveSession(productID uint) (*variant.Session, error)
	// RefreshLiveSession rebuilds prev against the current index, keeping
	// its selection and media. Observers are not carried over.
	RefreshLiveSession(productID uint, prev *variant.Session) (*variant.Session, error)
	Invalidate(productID uint)
}

type indexSource interface {
	Get(productID uint) (*variant.Index, variant.Warnings, error)
	IndexInvalidator
}

type variantService struct {
	indexes indexSource
	store   repository.SelectionStore
}

func NewVariantService(indexes *IndexCache, store repository.SelectionStore) VariantService {
	return &variantService{indexes: indexes, store: store}
}

func (s *variantService) index(productID uint) (*variant.Index, error) {
	x, _, err := s.indexes.Get(productID)
	return x, err
}

func (s *variantService) GetView(productID uint, selected []variant.ValueID) (*variant.View, error) {
	x, err := s.index(productID)
	if err != nil {
		return nil, err
	}

	sel := x.DefaultSelection()
	if len(selected) > 0 {
		sel = x.SelectionFrom(selected)
	}
	view := variant.NewView(x, sel)
	return &view, nil
}

func (s *variantService) StartSession(ctx context.Context, productID uint) (*SessionView, error) {
	x, err := s.index(productID)
	if err != nil {
		return nil, err
	}

	session := variant.NewSession(x)
	state := &repository.SelectionState{
		ProductID: productID,
		ValueIDs:  session.Selection().IDs(),
		Media:     session.Media(),
	}
	id, err := s.store.Create(ctx, state)
	if err != nil {
		return nil, err
	}

	logger.Debug("Variant session started", logger.Fields{
		"session_id": id,
		"product_id": productID,
	})
	return toSessionView(id, productID, session, true), nil
}

func (s *variantService) GetSession(ctx context.Context, sessionID string) (*SessionView, error) {
	state, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, mapSelectionError(err)
	}

	x, err := s.index(state.ProductID)
	if err != nil {
		return nil, err
	}
	session := variant.RestoreSession(x, state.ValueIDs, state.Media)
	return toSessionView(sessionID, state.ProductID, session, false), nil
}

func (s *variantService) Choose(ctx context.Context, sessionID string, choice variant.Choice) (*SessionView, error) {
	return s.transition(ctx, sessionID, func(session *variant.Session) bool {
		return session.Choose(choice.ValueID, choice.DimensionIndex)
	})
}

func (s *variantService) ResetSession(ctx context.Context, sessionID string) (*SessionView, error) {
	return s.transition(ctx, sessionID, (*variant.Session).Reset)
}

// transition replays the stored session, applies step and writes the result
// back inside one optimistic Redis transaction.
func (s *variantService) transition(ctx context.Context, sessionID string, step func(*variant.Session) bool) (*SessionView, error) {
	var result *SessionView

	_, err := s.store.Update(ctx, sessionID, func(state *repository.SelectionState) error {
		x, err := s.index(state.ProductID)
		if err != nil {
			return err
		}
		session := variant.RestoreSession(x, state.ValueIDs, state.Media)
		changed := step(session)

		state.ValueIDs = session.Selection().IDs()
		state.Media = session.Media()
		result = toSessionView(sessionID, state.ProductID, session, changed)
		return nil
	})
	if err != nil {
		return nil, mapSelectionError(err)
	}
	return result, nil
}

func (s *variantService) EndSession(ctx context.Context, sessionID string) error {
	return mapSelectionError(s.store.Delete(ctx, sessionID))
}

func (s *variantService) NewLiveSession(productID uint) (*variant.Session, error) {
	x, err := s.index(productID)
	if err != nil {
		return nil, err
	}
	return variant.NewSession(x), nil
}

func (s *variantService) RefreshLiveSession(productID uint, prev *variant.Session) (*variant.Session, error) {
	x, err := s.index(productID)
	if err != nil {
		return nil, err
	}
	return variant.RestoreSession(x, prev.Selection().IDs(), prev.Media()), nil
}

func (s *variantService) Invalidate(productID uint) {
	s.indexes.Invalidate(productID)
}

func toSessionView(id string, productID uint, session *variant.Session, changed bool) *SessionView {
	return &SessionView{
		SessionID: id,
		ProductID: productID,
		View:      session.View(),
		Media:     session.Media(),
		Changed:   changed,
	}
}

func mapSelectionError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrSelectionNotFound):
		return ErrSessionNotFound
	case errors.Is(err, repository.ErrSelectionConflict):
		return ErrSessionConflict
	}
	return err
}
