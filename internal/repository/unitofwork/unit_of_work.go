package unitofwork

import (
	"context"

	"ai-docqa-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	DocumentChunkRepository() contract.DocumentChunkRepository
}
