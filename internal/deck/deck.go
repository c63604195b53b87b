// Package deck implements the presentation and slide operations shared by
// the HTTP routes, the agent tools, and the gateway adapter. All mutations
// preserve the ordering invariant: slide Order values form a dense
// zero-based permutation after every operation.
package deck

import (
	"fmt"
	"sync"

	"slideclaw/internal/logging"
	"slideclaw/internal/store"
	"slideclaw/internal/types"
)

// Service wraps a store with the domain operations. Mutations to the same
// presentation id are serialized within the process; cross-process writers
// still race (last write wins), which the storage layer documents as an
// accepted limitation.
type Service struct {
	store *store.Store

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewService creates the domain service over a store.
func NewService(s *store.Store) *Service {
	return &Service{store: s, locks: make(map[string]*sync.Mutex)}
}

// lockFor returns the per-presentation mutex, creating it on first use.
// Entries are never removed; a single user's deck count stays small.
func (svc *Service) lockFor(id string) *sync.Mutex {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	l, ok := svc.locks[id]
	if !ok {
		l = &sync.Mutex{}
		svc.locks[id] = l
	}
	return l
}

// CreatePresentation creates an empty presentation. The title is required.
func (svc *Service) CreatePresentation(title, description string) (*types.Presentation, error) {
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}
	now := store.Now()
	p := &types.Presentation{
		ID:          store.NewID(),
		Title:       title,
		Description: description,
		Slides:      []types.Slide{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := svc.store.Save(p); err != nil {
		return nil, err
	}
	logging.Deck("created presentation %s (%q)", p.ID, p.Title)
	return p, nil
}

// GetPresentation returns the presentation or store.ErrNotFound.
func (svc *Service) GetPresentation(id string) (*types.Presentation, error) {
	return svc.store.Get(id)
}

// ListPresentations returns all presentations sorted by creation time
// ascending, plus the count of corrupt entries skipped during the scan.
func (svc *Service) ListPresentations() ([]types.Presentation, int, error) {
	return svc.store.List()
}

// DeletePresentation permanently removes a presentation.
func (svc *Service) DeletePresentation(id string) error {
	existed, err := svc.store.Delete(id)
	if err != nil {
		return err
	}
	if !existed {
		return fmt.Errorf("%s: %w", id, store.ErrNotFound)
	}
	return nil
}

// AddSlide appends a slide to the end of the deck. Title and HTML are
// required; Order is assigned as the current slide count.
func (svc *Service) AddSlide(presentationID, title, html, notes string) (*types.Slide, error) {
	if title == "" || html == "" {
		return nil, fmt.Errorf("%w: title and html are required", ErrValidation)
	}

	l := svc.lockFor(presentationID)
	l.Lock()
	defer l.Unlock()

	p, err := svc.store.Get(presentationID)
	if err != nil {
		return nil, err
	}

	now := store.Now()
	slide := types.Slide{
		ID:        store.NewID(),
		Title:     title,
		HTML:      html,
		Notes:     notes,
		Order:     len(p.Slides),
		CreatedAt: now,
		UpdatedAt: now,
	}
	p.Slides = append(p.Slides, slide)
	p.UpdatedAt = now

	if err := svc.store.Save(p); err != nil {
		return nil, err
	}
	logging.DeckDebug("added slide %s to %s at order %d", slide.ID, presentationID, slide.Order)
	return &slide, nil
}

// SlidePatch carries the optional fields of a slide update. Nil pointers
// leave the stored value untouched.
type SlidePatch struct {
	Title *string
	HTML  *string
	Notes *string
}

// UpdateSlide overwrites only the supplied fields and bumps both the slide
// and presentation timestamps.
func (svc *Service) UpdateSlide(presentationID, slideID string, patch SlidePatch) (*types.Slide, error) {
	l := svc.lockFor(presentationID)
	l.Lock()
	defer l.Unlock()

	p, err := svc.store.Get(presentationID)
	if err != nil {
		return nil, err
	}

	idx := slideIndex(p, slideID)
	if idx < 0 {
		return nil, fmt.Errorf("%s: %w", slideID, ErrSlideNotFound)
	}

	slide := &p.Slides[idx]
	if patch.Title != nil {
		slide.Title = *patch.Title
	}
	if patch.HTML != nil {
		slide.HTML = *patch.HTML
	}
	if patch.Notes != nil {
		slide.Notes = *patch.Notes
	}
	now := store.Now()
	slide.UpdatedAt = now
	p.UpdatedAt = now

	if err := svc.store.Save(p); err != nil {
		return nil, err
	}
	out := *slide
	return &out, nil
}

// DeleteSlide removes a slide and renumbers the remainder so Order stays a
// dense zero-based sequence. Deleting the only slide leaves an empty,
// still-valid presentation.
func (svc *Service) DeleteSlide(presentationID, slideID string) error {
	l := svc.lockFor(presentationID)
	l.Lock()
	defer l.Unlock()

	p, err := svc.store.Get(presentationID)
	if err != nil {
		return err
	}

	idx := slideIndex(p, slideID)
	if idx < 0 {
		return fmt.Errorf("%s: %w", slideID, ErrSlideNotFound)
	}

	p.Slides = append(p.Slides[:idx], p.Slides[idx+1:]...)
	for i := range p.Slides {
		p.Slides[i].Order = i
	}
	p.UpdatedAt = store.Now()

	return svc.store.Save(p)
}

// ReorderSlides sets the deck order to exactly the supplied id sequence.
// The sequence must contain every existing slide id exactly once; the ids
// are validated before anything is mutated, so a failed reorder leaves
// both memory and storage untouched.
func (svc *Service) ReorderSlides(presentationID string, slideIDs []string) (*types.Presentation, error) {
	l := svc.lockFor(presentationID)
	l.Lock()
	defer l.Unlock()

	p, err := svc.store.Get(presentationID)
	if err != nil {
		return nil, err
	}

	if len(slideIDs) != len(p.Slides) {
		return nil, fmt.Errorf("%w: got %d slide ids, presentation has %d", ErrValidation, len(slideIDs), len(p.Slides))
	}
	byID := make(map[string]int, len(p.Slides))
	for i, s := range p.Slides {
		byID[s.ID] = i
	}
	seen := make(map[string]bool, len(slideIDs))
	for _, id := range slideIDs {
		if _, ok := byID[id]; !ok {
			return nil, fmt.Errorf("%w: unknown slide id %s", ErrValidation, id)
		}
		if seen[id] {
			return nil, fmt.Errorf("%w: duplicate slide id %s", ErrValidation, id)
		}
		seen[id] = true
	}

	reordered := make([]types.Slide, 0, len(slideIDs))
	for i, id := range slideIDs {
		slide := p.Slides[byID[id]]
		slide.Order = i
		reordered = append(reordered, slide)
	}
	p.Slides = reordered
	p.UpdatedAt = store.Now()

	if err := svc.store.Save(p); err != nil {
		return nil, err
	}
	logging.DeckDebug("reordered %d slides in %s", len(slideIDs), presentationID)
	return p, nil
}

func slideIndex(p *types.Presentation, slideID string) int {
	for i := range p.Slides {
		if p.Slides[i].ID == slideID {
			return i
		}
	}
	return -1
}
