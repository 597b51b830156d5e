package utils

import "github.com/google/uuid"

// NewID 统一的实体主键生成
func NewID() string { return uuid.NewString() }
