package service

import (
	"context"
	"fmt"
	"net/mail"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/shestoi/GoShop/internal/repository"
)

// CustomerService справочник покупателей (только для администраторов)
type CustomerService struct {
	logger  *zap.Logger
	repo    repository.CustomerRepository
	auditor Auditor
}

// NewCustomerService создаёт новый экземпляр CustomerService
func NewCustomerService(logger *zap.Logger, repo repository.CustomerRepository, auditor Auditor) *CustomerService {
	return &CustomerService{
		logger:  logger,
		repo:    repo,
		auditor: auditor,
	}
}

// CustomerInput данные покупателя
type CustomerInput struct {
	Name  string
	Phone string
	Email string
	Note  string
}

func (in CustomerInput) normalize() (repository.Customer, error) {
	name, err := validateName("name", in.Name)
	if err != nil {
		return repository.Customer{}, err
	}
	phone, err := NormalizePhone(in.Phone)
	if err != nil {
		return repository.Customer{}, err
	}
	email := strings.TrimSpace(in.Email)
	if email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			return repository.Customer{}, invalid("email", "invalid address")
		}
	}
	note := strings.TrimSpace(in.Note)
	if len([]rune(note)) > maxNoteLength {
		return repository.Customer{}, invalid("note", "must be at most %d characters", maxNoteLength)
	}
	return repository.Customer{Name: name, Phone: phone, Email: email, Note: note}, nil
}

// CreateCustomer создаёт покупателя; ErrAlreadyExists при повторном телефоне
func (s *CustomerService) CreateCustomer(ctx context.Context, actor Actor, input CustomerInput) (repository.Customer, error) {
	if err := requireAdmin(actor); err != nil {
		return repository.Customer{}, err
	}
	c, err := input.normalize()
	if err != nil {
		return repository.Customer{}, err
	}
	created, err := s.repo.Create(ctx, c)
	if err != nil {
		return repository.Customer{}, fmt.Errorf("create customer: %w", err)
	}
	s.logger.Info("customer created", zap.Int64("customer_id", created.ID))
	s.auditor.Record(ctx, actor.UserID, "customer.create", "customer", strconv.FormatInt(created.ID, 10), map[string]any{
		"name":  created.Name,
		"phone": created.Phone,
	})
	return created, nil
}

// UpdateCustomer полностью заменяет данные покупателя
func (s *CustomerService) UpdateCustomer(ctx context.Context, actor Actor, id int64, input CustomerInput) (repository.Customer, error) {
	if err := requireAdmin(actor); err != nil {
		return repository.Customer{}, err
	}
	c, err := input.normalize()
	if err != nil {
		return repository.Customer{}, err
	}
	c.ID = id
	updated, err := s.repo.Update(ctx, c)
	if err != nil {
		return repository.Customer{}, fmt.Errorf("update customer: %w", err)
	}
	s.auditor.Record(ctx, actor.UserID, "customer.update", "customer", strconv.FormatInt(id, 10), map[string]any{
		"name":  updated.Name,
		"phone": updated.Phone,
	})
	return updated, nil
}

// GetCustomer покупатель по id
func (s *CustomerService) GetCustomer(ctx context.Context, actor Actor, id int64) (repository.Customer, error) {
	if err := requireAdmin(actor); err != nil {
		return repository.Customer{}, err
	}
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return repository.Customer{}, fmt.Errorf("get customer: %w", err)
	}
	return c, nil
}

// ListCustomersOutput страница покупателей
type ListCustomersOutput struct {
	Items      []repository.Customer
	Total      int64
	Page       Page
	TotalPages int64
}

// ListCustomers поиск по подстроке имени или телефона
func (s *CustomerService) ListCustomers(ctx context.Context, actor Actor, search string, page Page) (*ListCustomersOutput, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	page = page.Normalize()
	items, total, err := s.repo.List(ctx, repository.CustomerFilter{
		Search: strings.TrimSpace(search),
		Limit:  page.Size,
		Offset: page.Offset(),
	})
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	return &ListCustomersOutput{
		Items:      items,
		Total:      total,
		Page:       page,
		TotalPages: page.TotalPages(total),
	}, nil
}
