package contract

import (
	"context"

	"trainers-ally-be/internal/entity"
	"trainers-ally-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ChatRepository interface {
	// Save upserts the full chat, conversation log included. The log is
	// append-only at the domain level; persistence always writes the whole
	// updated value.
	Save(ctx context.Context, chat *entity.Chat) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Chat, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Chat, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
