package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/shestoi/GoShop/internal/repository"
)

const (
	maxNameLength        = 200
	maxDescriptionLength = 10000
)

// CatalogService категории и товары
type CatalogService struct {
	logger    *zap.Logger
	repo      repository.CatalogRepository
	inventory *InventoryService
	settings  Settings
	auditor   Auditor
	policy    *bluemonday.Policy
}

// NewCatalogService создаёт новый экземпляр CatalogService.
// Описание товара очищается политикой UGC (bluemonday).
func NewCatalogService(
	logger *zap.Logger,
	repo repository.CatalogRepository,
	inventory *InventoryService,
	settings Settings,
	auditor Auditor,
) *CatalogService {
	return &CatalogService{
		logger:    logger,
		repo:      repo,
		inventory: inventory,
		settings:  settings,
		auditor:   auditor,
		policy:    bluemonday.UGCPolicy(),
	}
}

func validateName(field, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", invalid(field, "is required")
	}
	if len([]rune(name)) > maxNameLength {
		return "", invalid(field, "must be at most %d characters", maxNameLength)
	}
	return name, nil
}

// CreateCategory создаёт категорию
func (s *CatalogService) CreateCategory(ctx context.Context, actor Actor, name string) (repository.Category, error) {
	if err := requireAdmin(actor); err != nil {
		return repository.Category{}, err
	}
	name, err := validateName("name", name)
	if err != nil {
		return repository.Category{}, err
	}
	c, err := s.repo.CreateCategory(ctx, name)
	if err != nil {
		return repository.Category{}, fmt.Errorf("create category: %w", err)
	}
	s.auditor.Record(ctx, actor.UserID, "category.create", "category", strconv.FormatInt(c.ID, 10), map[string]any{"name": c.Name})
	return c, nil
}

// UpdateCategory переименовывает категорию
func (s *CatalogService) UpdateCategory(ctx context.Context, actor Actor, id int64, name string) (repository.Category, error) {
	if err := requireAdmin(actor); err != nil {
		return repository.Category{}, err
	}
	name, err := validateName("name", name)
	if err != nil {
		return repository.Category{}, err
	}
	c, err := s.repo.UpdateCategory(ctx, id, name)
	if err != nil {
		return repository.Category{}, fmt.Errorf("update category: %w", err)
	}
	s.auditor.Record(ctx, actor.UserID, "category.update", "category", strconv.FormatInt(id, 10), map[string]any{"name": c.Name})
	return c, nil
}

// DeleteCategory удаляет категорию; ErrConflict если в ней есть товары
func (s *CatalogService) DeleteCategory(ctx context.Context, actor Actor, id int64) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if err := s.repo.DeleteCategory(ctx, id); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	s.auditor.Record(ctx, actor.UserID, "category.delete", "category", strconv.FormatInt(id, 10), nil)
	return nil
}

// ListCategories список категорий по имени
func (s *CatalogService) ListCategories(ctx context.Context) ([]repository.Category, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// CreateProductInput входные данные товара; InitialStock > 0 записывается как IN/ADJUSTMENT
type CreateProductInput struct {
	Actor        Actor
	Name         string
	Description  string
	CategoryID   *int64
	Color        string
	Size         string
	Price        decimal.Decimal
	ImageID      *string
	Active       *bool
	InitialStock int64
}

// CreateProduct создаёт товар с нулевым остатком и, при необходимости, приходует начальный остаток
func (s *CatalogService) CreateProduct(ctx context.Context, input CreateProductInput) (repository.Product, error) {
	if err := requireAdmin(input.Actor); err != nil {
		return repository.Product{}, err
	}
	name, err := validateName("name", input.Name)
	if err != nil {
		return repository.Product{}, err
	}
	if err := checkMoney("price", input.Price); err != nil {
		return repository.Product{}, err
	}
	if input.InitialStock < 0 {
		return repository.Product{}, invalid("initial_stock", "must not be negative")
	}
	description, err := s.sanitizeDescription(input.Description)
	if err != nil {
		return repository.Product{}, err
	}
	if err := s.checkCategory(ctx, input.CategoryID); err != nil {
		return repository.Product{}, err
	}

	active := true
	if input.Active != nil {
		active = *input.Active
	}
	// движения по неактивному товару запрещены, начальный остаток не записать
	if input.InitialStock > 0 && !active {
		return repository.Product{}, invalid("initial_stock", "must be 0 for an inactive product")
	}

	p, err := s.repo.CreateProduct(ctx, repository.Product{
		Name:        name,
		Description: description,
		CategoryID:  input.CategoryID,
		Color:       strings.TrimSpace(input.Color),
		Size:        strings.TrimSpace(input.Size),
		Price:       input.Price.Round(2),
		ImageID:     input.ImageID,
		Active:      active,
	})
	if err != nil {
		return repository.Product{}, fmt.Errorf("create product: %w", err)
	}
	s.auditor.Record(ctx, input.Actor.UserID, "product.create", "product", strconv.FormatInt(p.ID, 10), map[string]any{
		"name":  p.Name,
		"price": p.Price.StringFixed(2),
	})
	s.logger.Info("product created", zap.Int64("product_id", p.ID), zap.String("name", p.Name))

	if input.InitialStock > 0 {
		if _, err := s.inventory.CreateTransaction(ctx, CreateTransactionInput{
			Actor:     input.Actor,
			ProductID: p.ID,
			Type:      repository.TransactionIn,
			Reason:    repository.ReasonAdjustment,
			Quantity:  input.InitialStock,
			Note:      "initial stock",
		}); err != nil {
			return repository.Product{}, fmt.Errorf("record initial stock: %w", err)
		}
		if p, err = s.repo.GetProduct(ctx, p.ID); err != nil {
			return repository.Product{}, fmt.Errorf("get product: %w", err)
		}
	}
	return p, nil
}

// UpdateProductInput частичное обновление: nil поля не меняются.
// ClearCategory/ClearImage убирают ссылку. Остаток через этот метод не меняется.
type UpdateProductInput struct {
	Actor         Actor
	ID            int64
	Name          *string
	Description   *string
	CategoryID    *int64
	ClearCategory bool
	Color         *string
	Size          *string
	Price         *decimal.Decimal
	ImageID       *string
	ClearImage    bool
	Active        *bool
}

// UpdateProduct частично обновляет товар
func (s *CatalogService) UpdateProduct(ctx context.Context, input UpdateProductInput) (repository.Product, error) {
	if err := requireAdmin(input.Actor); err != nil {
		return repository.Product{}, err
	}
	p, err := s.repo.GetProduct(ctx, input.ID)
	if err != nil {
		return repository.Product{}, fmt.Errorf("get product: %w", err)
	}

	changed := map[string]any{}
	if input.Name != nil {
		if p.Name, err = validateName("name", *input.Name); err != nil {
			return repository.Product{}, err
		}
		changed["name"] = p.Name
	}
	if input.Description != nil {
		if p.Description, err = s.sanitizeDescription(*input.Description); err != nil {
			return repository.Product{}, err
		}
		changed["description"] = true
	}
	switch {
	case input.ClearCategory:
		p.CategoryID = nil
		changed["category_id"] = nil
	case input.CategoryID != nil:
		if err := s.checkCategory(ctx, input.CategoryID); err != nil {
			return repository.Product{}, err
		}
		p.CategoryID = input.CategoryID
		changed["category_id"] = *input.CategoryID
	}
	if input.Color != nil {
		p.Color = strings.TrimSpace(*input.Color)
		changed["color"] = p.Color
	}
	if input.Size != nil {
		p.Size = strings.TrimSpace(*input.Size)
		changed["size"] = p.Size
	}
	if input.Price != nil {
		if err := checkMoney("price", *input.Price); err != nil {
			return repository.Product{}, err
		}
		p.Price = input.Price.Round(2)
		changed["price"] = p.Price.StringFixed(2)
	}
	switch {
	case input.ClearImage:
		p.ImageID = nil
		changed["image_id"] = nil
	case input.ImageID != nil:
		p.ImageID = input.ImageID
		changed["image_id"] = *input.ImageID
	}
	if input.Active != nil {
		p.Active = *input.Active
		changed["active"] = p.Active
	}

	updated, err := s.repo.UpdateProduct(ctx, p)
	if err != nil {
		return repository.Product{}, fmt.Errorf("update product: %w", err)
	}
	s.auditor.Record(ctx, input.Actor.UserID, "product.update", "product", strconv.FormatInt(p.ID, 10), changed)
	return updated, nil
}

// DeleteProduct удаляет товар; записи журнала сохраняют снимок
func (s *CatalogService) DeleteProduct(ctx context.Context, actor Actor, id int64) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if err := s.repo.DeleteProduct(ctx, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	s.auditor.Record(ctx, actor.UserID, "product.delete", "product", strconv.FormatInt(id, 10), nil)
	s.logger.Info("product deleted", zap.Int64("product_id", id))
	return nil
}

// GetProduct возвращает товар
func (s *CatalogService) GetProduct(ctx context.Context, id int64) (repository.Product, error) {
	p, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return repository.Product{}, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// ListProductsInput фильтры каталога; LowStockOnly использует порог из настроек
type ListProductsInput struct {
	CategoryID   *int64
	Active       *bool
	Search       string
	LowStockOnly bool
	Page         Page
}

// ListProductsOutput страница товаров
type ListProductsOutput struct {
	Items      []repository.Product
	Total      int64
	Page       Page
	TotalPages int64
}

// ListProducts возвращает страницу каталога
func (s *CatalogService) ListProducts(ctx context.Context, input ListProductsInput) (*ListProductsOutput, error) {
	page := input.Page.Normalize()
	filter := repository.ProductFilter{
		CategoryID: input.CategoryID,
		Active:     input.Active,
		Search:     strings.TrimSpace(input.Search),
		Limit:      page.Size,
		Offset:     page.Offset(),
	}
	if input.LowStockOnly {
		threshold := s.settings.Int(SettingLowStockThreshold, DefaultLowStockThreshold)
		filter.LowStockMax = &threshold
	}

	items, total, err := s.repo.ListProducts(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return &ListProductsOutput{
		Items:      items,
		Total:      total,
		Page:       page,
		TotalPages: page.TotalPages(total),
	}, nil
}

func (s *CatalogService) sanitizeDescription(raw string) (string, error) {
	clean := strings.TrimSpace(s.policy.Sanitize(raw))
	if len([]rune(clean)) > maxDescriptionLength {
		return "", invalid("description", "must be at most %d characters", maxDescriptionLength)
	}
	return clean, nil
}

func (s *CatalogService) checkCategory(ctx context.Context, id *int64) error {
	if id == nil {
		return nil
	}
	if _, err := s.repo.GetCategory(ctx, *id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return invalid("category_id", "category %d not found", *id)
		}
		return fmt.Errorf("get category: %w", err)
	}
	return nil
}
