package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/storefront-admin/internal/domain/entity"
	"github.com/sangkips/storefront-admin/internal/domain/enum"
	"github.com/sangkips/storefront-admin/internal/domain/event"
	"github.com/sangkips/storefront-admin/internal/domain/repository"
	"github.com/sangkips/storefront-admin/pkg/apperror"
	"github.com/sangkips/storefront-admin/pkg/pagination"
)

// CustomerService handles customer-related operations
type CustomerService struct {
	customerRepo repository.CustomerRepository
	publisher    event.Publisher
}

// NewCustomerService creates a new customer service
func NewCustomerService(customerRepo repository.CustomerRepository, publisher event.Publisher) *CustomerService {
	return &CustomerService{customerRepo: customerRepo, publisher: publisher}
}

// CreateCustomerInput represents the create customer input
type CreateCustomerInput struct {
	UserID           uuid.UUID
	Name             string
	Email            *string
	Phone            *string
	Address          *string
	Notes            *string
	Tags             []string
	AcceptsMarketing bool
}

// CreateCustomer creates a new customer. Email and phone are unique within
// the tenant.
func (s *CustomerService) CreateCustomer(ctx context.Context, input *CreateCustomerInput) (*entity.Customer, error) {
	tenantID, err := requireTenant(ctx)
	if err != nil {
		return nil, err
	}

	email := normalizeEmail(input.Email)
	phone := trimmed(input.Phone)
	if err := s.checkContactUnique(ctx, uuid.Nil, email, phone); err != nil {
		return nil, err
	}

	customer := &entity.Customer{
		TenantID:         tenantID,
		UserID:           input.UserID,
		Name:             input.Name,
		Email:            email,
		Phone:            phone,
		Address:          input.Address,
		Notes:            input.Notes,
		Tags:             entity.NormalizeTags(input.Tags),
		AcceptsMarketing: input.AcceptsMarketing,
	}

	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return nil, err
	}

	return customer, nil
}

// GetCustomer retrieves a customer by ID
func (s *CustomerService) GetCustomer(ctx context.Context, id uuid.UUID) (*entity.Customer, error) {
	customer, err := s.customerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, apperror.NewNotFoundError("Customer")
	}
	return customer, nil
}

// ListCustomers lists the customers of the current tenant
func (s *CustomerService) ListCustomers(ctx context.Context, params *repository.CustomerFilterParams) (*pagination.Result[entity.Customer], error) {
	if params.Pagination == nil {
		params.Pagination = pagination.Default()
	}
	params.Tag = strings.ToLower(strings.TrimSpace(params.Tag))

	customers, total, err := s.customerRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}
	return pagination.NewResult(customers, params.Pagination, total), nil
}

// UpdateCustomerInput represents the update customer input
type UpdateCustomerInput struct {
	ID               uuid.UUID
	Name             *string
	Email            *string
	Phone            *string
	Address          *string
	Notes            *string
	Tags             *[]string
	AcceptsMarketing *bool
}

// UpdateCustomer updates a customer's profile. Loyalty counters are not
// writable here.
func (s *CustomerService) UpdateCustomer(ctx context.Context, input *UpdateCustomerInput) (*entity.Customer, error) {
	customer, err := s.GetCustomer(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	email := normalizeEmail(input.Email)
	phone := trimmed(input.Phone)
	if err := s.checkContactUnique(ctx, customer.ID, email, phone); err != nil {
		return nil, err
	}

	if input.Name != nil {
		customer.Name = *input.Name
	}
	if input.Email != nil {
		customer.Email = email
	}
	if input.Phone != nil {
		customer.Phone = phone
	}
	if input.Address != nil {
		customer.Address = input.Address
	}
	if input.Notes != nil {
		customer.Notes = input.Notes
	}
	if input.Tags != nil {
		customer.Tags = entity.NormalizeTags(*input.Tags)
	}
	if input.AcceptsMarketing != nil {
		customer.AcceptsMarketing = *input.AcceptsMarketing
	}

	if err := s.customerRepo.Update(ctx, customer); err != nil {
		return nil, err
	}

	return customer, nil
}

// DeleteCustomer deletes a customer
func (s *CustomerService) DeleteCustomer(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetCustomer(ctx, id); err != nil {
		return err
	}
	return s.customerRepo.Delete(ctx, id)
}

// ListPoints returns the points ledger of a customer, newest first
func (s *CustomerService) ListPoints(ctx context.Context, customerID uuid.UUID, params *pagination.CursorParams) (*pagination.CursorResult[entity.PointTransaction], error) {
	if _, err := s.GetCustomer(ctx, customerID); err != nil {
		return nil, err
	}
	params.Normalize()
	if _, err := params.Decode(); err != nil {
		return nil, apperror.NewBadRequestError(err.Error())
	}

	entries, err := s.customerRepo.ListPoints(ctx, customerID, params)
	if err != nil {
		return nil, err
	}
	return pagination.NewCursorResult(entries, params.Limit, pointTransactionKey), nil
}

func pointTransactionKey(p entity.PointTransaction) (string, time.Time) {
	return p.ID.String(), p.CreatedAt
}

// AdjustPointsInput represents a manual balance correction
type AdjustPointsInput struct {
	UserID     uuid.UUID
	CustomerID uuid.UUID
	Points     int64
	Reason     string
}

// AdjustPoints adds or removes points by hand. The balance never goes below
// zero.
func (s *CustomerService) AdjustPoints(ctx context.Context, input *AdjustPointsInput) (*entity.PointTransaction, error) {
	if input.Points == 0 {
		return nil, apperror.NewBadRequestError("Points must not be zero")
	}
	if strings.TrimSpace(input.Reason) == "" {
		return nil, apperror.NewBadRequestError("Reason is required")
	}
	if _, err := s.GetCustomer(ctx, input.CustomerID); err != nil {
		return nil, err
	}

	userID := input.UserID
	entry := &entity.PointTransaction{
		CustomerID: input.CustomerID,
		Points:     input.Points,
		Source:     enum.PointSourceAdjustment,
		Reason:     strings.TrimSpace(input.Reason),
		CreatedBy:  &userID,
	}

	customer, err := s.customerRepo.ApplyPoints(ctx, entry)
	if errors.Is(err, repository.ErrInsufficientPoints) {
		return nil, apperror.NewRejection("insufficient_points", "Customer does not have enough points")
	}
	if err != nil {
		return nil, err
	}

	publish(ctx, s.publisher, pointsEvent(event.PointsAdjusted, entry, customer.PointsBalance))
	return entry, nil
}

func (s *CustomerService) checkContactUnique(ctx context.Context, self uuid.UUID, email, phone *string) error {
	if email != nil {
		existing, err := s.customerRepo.GetByEmail(ctx, *email)
		if err != nil {
			return err
		}
		if existing != nil && existing.ID != self {
			return apperror.NewConflictError("A customer with this email already exists")
		}
	}
	if phone != nil {
		existing, err := s.customerRepo.GetByPhone(ctx, *phone)
		if err != nil {
			return err
		}
		if existing != nil && existing.ID != self {
			return apperror.NewConflictError("A customer with this phone number already exists")
		}
	}
	return nil
}

func normalizeEmail(email *string) *string {
	if email == nil {
		return nil
	}
	v := strings.ToLower(strings.TrimSpace(*email))
	if v == "" {
		return nil
	}
	return &v
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
