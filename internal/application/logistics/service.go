package logistics

import (
	"context"

	"github.com/google/uuid"

	"github.com/merchantry/backend/internal/application/unitofwork"
	"github.com/merchantry/backend/internal/domain/logistics"
	"github.com/merchantry/backend/internal/domain/shared"
)

// Service manages logistics companies and their COD fee configuration.
// The fee strategies themselves are pure domain functions; this service
// only edits the configuration the order dispatch path snapshots.
type Service struct {
	scope unitofwork.TransactionScope
}

// NewService creates a new logistics Service
func NewService(scope unitofwork.TransactionScope) *Service {
	return &Service{scope: scope}
}

// Create registers a logistics company, optionally with its fee setup
func (s *Service) Create(ctx context.Context, tenantID uuid.UUID, req CreateCompanyRequest) (*CompanyResponse, error) {
	company, err := logistics.NewLogisticsCompany(tenantID, req.Name, req.CodFeePaidBy)
	if err != nil {
		return nil, err
	}
	company.ContactPhone = req.ContactPhone

	if req.FeeConfig != nil {
		if err := applyFeeConfig(company, *req.FeeConfig); err != nil {
			return nil, err
		}
	}

	err = s.scope.Execute(ctx, func(repos unitofwork.Repositories) error {
		return repos.Companies().Save(ctx, company)
	})
	if err != nil {
		return nil, err
	}

	response := ToCompanyResponse(company)
	return &response, nil
}

// ConfigureFees replaces a company's COD fee configuration
func (s *Service) ConfigureFees(ctx context.Context, tenantID, companyID uuid.UUID, req ConfigureFeesRequest) (*CompanyResponse, error) {
	var response CompanyResponse
	err := s.scope.Execute(ctx, func(repos unitofwork.Repositories) error {
		company, err := repos.Companies().FindByID(ctx, tenantID, companyID)
		if err != nil {
			return err
		}
		if err := applyFeeConfig(company, req); err != nil {
			return err
		}
		if err := repos.Companies().Save(ctx, company); err != nil {
			return err
		}
		response = ToCompanyResponse(company)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// GetByID retrieves a logistics company
func (s *Service) GetByID(ctx context.Context, tenantID, companyID uuid.UUID) (*CompanyResponse, error) {
	var response CompanyResponse
	err := s.scope.Execute(ctx, func(repos unitofwork.Repositories) error {
		company, err := repos.Companies().FindByID(ctx, tenantID, companyID)
		if err != nil {
			return err
		}
		response = ToCompanyResponse(company)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// List returns the tenant's logistics companies
func (s *Service) List(ctx context.Context, tenantID uuid.UUID, activeOnly bool) ([]CompanyResponse, error) {
	var responses []CompanyResponse
	err := s.scope.Execute(ctx, func(repos unitofwork.Repositories) error {
		companies, err := repos.Companies().FindAll(ctx, tenantID, activeOnly)
		if err != nil {
			return err
		}
		responses = make([]CompanyResponse, len(companies))
		for i, c := range companies {
			responses[i] = ToCompanyResponse(c)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return responses, nil
}

// Deactivate stops a company from being selectable on new orders.
// Dispatched orders keep their fee snapshots.
func (s *Service) Deactivate(ctx context.Context, tenantID, companyID uuid.UUID) (*CompanyResponse, error) {
	var response CompanyResponse
	err := s.scope.Execute(ctx, func(repos unitofwork.Repositories) error {
		company, err := repos.Companies().FindByID(ctx, tenantID, companyID)
		if err != nil {
			return err
		}
		company.Deactivate()
		if err := repos.Companies().Save(ctx, company); err != nil {
			return err
		}
		response = ToCompanyResponse(company)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

func applyFeeConfig(company *logistics.LogisticsCompany, req ConfigureFeesRequest) error {
	switch req.FeeType {
	case logistics.CodFeeTypePercentage:
		return company.ConfigurePercentageFee(req.Percentage)
	case logistics.CodFeeTypeFixed:
		return company.ConfigureFixedFee(req.FixedFee)
	case logistics.CodFeeTypeRangeBased:
		ranges := make([]logistics.CodFeeRange, len(req.Ranges))
		for i, r := range req.Ranges {
			ranges[i] = logistics.CodFeeRange{
				BaseEntity: shared.NewBaseEntity(),
				Min:        r.Min,
				Max:        r.Max,
				Fee:        r.Fee,
			}
		}
		return company.ConfigureRangeFee(ranges)
	default:
		return shared.NewDomainError("INVALID_FEE_TYPE", "Unknown COD fee type")
	}
}
