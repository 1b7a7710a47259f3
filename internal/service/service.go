package service

import (
	"github.com/smartcity/crimedash/internal/domain"
)

// QueryLogRepository is re-exported from domain for convenience
type QueryLogRepository = domain.QueryLogRepository
