package logistics

import (
	"context"

	"github.com/google/uuid"
)

// CompanyRepository defines the persistence interface for logistics companies
type CompanyRepository interface {
	Save(ctx context.Context, company *LogisticsCompany) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*LogisticsCompany, error)
	FindAll(ctx context.Context, tenantID uuid.UUID, activeOnly bool) ([]*LogisticsCompany, error)
}
