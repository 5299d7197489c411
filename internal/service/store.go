package service

//go:generate go run go.uber.org/mock/mockgen -source=./store.go -destination=./mocks/store_mock.go -package=mocks

import (
	"context"

	"fieldbook/internal/models"
)

// FieldStore is the persistence the service needs. *database.Gateway implements it.
type FieldStore interface {
	Create(ctx context.Context, doc models.Document) (string, error)
	GetAll(ctx context.Context) ([]models.Document, error)
	GetByID(ctx context.Context, id string) (models.Document, error)
	Update(ctx context.Context, id string, doc models.Document) error
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, query string) ([]models.Document, error)
	FilterByStatus(ctx context.Context, status string) ([]models.Document, error)
	Ping(ctx context.Context) error
	IsConnected() bool
}

// Publisher receives change events after successful writes.
type Publisher interface {
	Publish(event Event)
}
