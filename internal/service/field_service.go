package service

import (
	"context"
	"io"
	"strings"
	"sync"
	"time"

	"fieldbook/internal/export"
	"fieldbook/internal/models"
	"fieldbook/internal/validation"

	"github.com/rs/zerolog/log"
)

// StatusAll is the filter value that disables status filtering.
const StatusAll = "All"

// Event types sent to subscribers.
const (
	EventCreated = "field.created"
	EventUpdated = "field.updated"
	EventDeleted = "field.deleted"
)

// Event describes a change to one field.
type Event struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// ListQuery selects and orders fields. Query and Status may be combined.
type ListQuery struct {
	Query  string
	Status string
	Sort   string
	Desc   bool
}

type nopPublisher struct{}

func (nopPublisher) Publish(Event) {}

// FieldService applies the field rules on top of a FieldStore. The store is
// used by one caller at a time.
type FieldService struct {
	mu    sync.Mutex
	store FieldStore
	pub   Publisher
}

// New returns a service over store. pub may be nil.
func New(store FieldStore, pub Publisher) *FieldService {
	if pub == nil {
		pub = nopPublisher{}
	}
	return &FieldService{store: store, pub: pub}
}

func (s *FieldService) documents(ctx context.Context, q ListQuery) ([]models.Document, error) {
	query := strings.TrimSpace(q.Query)
	status := strings.TrimSpace(q.Status)
	if status == StatusAll {
		status = ""
	}

	if status != "" {
		if err := validation.RequireMember(status, "Status", models.Statuses()); err != nil {
			return nil, validation.Errors{err.Error()}
		}
	}

	switch {
	case status != "" && query == "":
		return s.store.FilterByStatus(ctx, status)
	case query != "":
		docs, err := s.store.Search(ctx, query)
		if err != nil || status == "" {
			return docs, err
		}
		kept := docs[:0]
		for _, doc := range docs {
			if models.FromDocument(doc).Status == models.Status(status) {
				kept = append(kept, doc)
			}
		}
		return kept, nil
	}
	return s.store.GetAll(ctx)
}

// List returns the fields selected by q.
func (s *FieldService) List(ctx context.Context, q ListQuery) ([]models.Field, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	docs, err := s.documents(ctx, q)
	if err != nil {
		return nil, err
	}

	fields := make([]models.Field, 0, len(docs))
	for _, doc := range docs {
		fields = append(fields, models.FromDocument(doc))
	}
	if q.Sort != "" {
		if err := models.SortFields(fields, q.Sort, q.Desc); err != nil {
			return nil, validation.Errors{err.Error()}
		}
	}
	return fields, nil
}

// Get returns one field.
func (s *FieldService) Get(ctx context.Context, id string) (models.Field, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.get(ctx, id)
}

func (s *FieldService) get(ctx context.Context, id string) (models.Field, error) {
	doc, err := s.store.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return models.Field{}, err
	}
	return models.FromDocument(doc), nil
}

// Create validates form and stores a new field.
func (s *FieldService) Create(ctx context.Context, form models.FieldForm) (models.Field, error) {
	f, err := form.Field()
	if err != nil {
		return models.Field{}, err
	}

	if err := f.Check(); err != nil {
		return models.Field{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc := f.ToDocument()
	id, err := s.store.Create(ctx, doc)
	if err != nil {
		return models.Field{}, err
	}
	f.ID = id
	f.UpdatedAt, _ = doc[models.KeyUpdatedAt].(time.Time)

	log.Info().Str("id", id).Str("name", f.Name).Msg("field created")
	s.pub.Publish(Event{Type: EventCreated, ID: id})
	return f, nil
}

// Update applies form to the stored field. The creation time is kept.
func (s *FieldService) Update(ctx context.Context, id string, form models.FieldForm) (models.Field, error) {
	if errs := form.Validate(); len(errs) > 0 {
		return models.Field{}, validation.Errors(errs)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.get(ctx, id)
	if err != nil {
		return models.Field{}, err
	}
	if err := form.Apply(&f); err != nil {
		return models.Field{}, err
	}
	if err := f.Check(); err != nil {
		return models.Field{}, err
	}

	doc := f.ToDocument()
	if err := s.store.Update(ctx, f.ID, doc); err != nil {
		return models.Field{}, err
	}
	f.UpdatedAt, _ = doc[models.KeyUpdatedAt].(time.Time)

	log.Info().Str("id", f.ID).Msg("field updated")
	s.pub.Publish(Event{Type: EventUpdated, ID: f.ID})
	return f, nil
}

// Delete removes a field.
func (s *FieldService) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id = strings.TrimSpace(id)
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}

	log.Info().Str("id", id).Msg("field deleted")
	s.pub.Publish(Event{Type: EventDeleted, ID: id})
	return nil
}

// Export writes the fields selected by q as CSV and returns how many were written.
// Sorting is ignored.
func (s *FieldService) Export(ctx context.Context, w io.Writer, q ListQuery) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	docs, err := s.documents(ctx, q)
	if err != nil {
		return 0, err
	}
	if err := export.WriteCSV(w, docs); err != nil {
		return 0, err
	}
	return len(docs), nil
}

// Report summarizes every stored field.
func (s *FieldService) Report(ctx context.Context) (export.Summary, error) {
	fields, err := s.List(ctx, ListQuery{})
	if err != nil {
		return export.Summary{}, err
	}
	return export.Summarize(fields), nil
}

// Health pings the store.
func (s *FieldService) Health(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.store.Ping(ctx)
}

// Connected reports the store's last known connection state.
func (s *FieldService) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.store.IsConnected()
}
