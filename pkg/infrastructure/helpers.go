package infrastructure

import (
	"github.com/google/uuid"

	"github.com/mateusmacedo/van-bff/pkg/domain"
)

func GenerateUUID() string {
	return uuid.New().String()
}

// NewUUIDGenerator devolve um IDGenerator baseado em UUID v4.
func NewUUIDGenerator() domain.IDGenerator[string] {
	return GenerateUUID
}
