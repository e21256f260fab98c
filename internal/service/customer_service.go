package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/RoyceAzure/lab/cartorder/internal/domain/model"
	"github.com/RoyceAzure/lab/cartorder/internal/infra/repository/db"
	"github.com/go-playground/validator/v10"
)

var ErrCustomerEmailExists = errors.New("customer email already exists")

// 與 dto.CreateCustomerRequest 的 validate tag 相同
const customerEmailRule = "required,email,max=255"

var fieldValidator = validator.New()

type ICustomerService interface {
	CreateCustomer(ctx context.Context, name, email string) (*model.Customer, error)
	GetCustomer(ctx context.Context, customerID int64) (*model.Customer, error)
	Exists(ctx context.Context, customerID int64) (bool, error)
}

type CustomerService struct {
	dbRepo db.UnifiedDB
}

func NewCustomerService(dbRepo db.UnifiedDB) *CustomerService {
	if dbRepo == nil {
		panic("customer service dbRepo is nil")
	}
	return &CustomerService{dbRepo: dbRepo}
}

func (c *CustomerService) CreateCustomer(ctx context.Context, name, email string) (*model.Customer, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidArgument)
	}
	if err := fieldValidator.Var(email, customerEmailRule); err != nil {
		return nil, fmt.Errorf("%w: email %q is invalid", ErrInvalidArgument, email)
	}

	customer := &model.Customer{Name: name, Email: email}
	if err := c.dbRepo.CreateCustomer(ctx, customer); err != nil {
		if errors.Is(err, db.ErrDuplicatedKey) {
			return nil, ErrCustomerEmailExists
		}
		return nil, fmt.Errorf("create customer failed: %w", err)
	}
	return customer, nil
}

func (c *CustomerService) GetCustomer(ctx context.Context, customerID int64) (*model.Customer, error) {
	customer, err := c.dbRepo.GetCustomerByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, db.ErrRecordNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("get customer failed: %w", err)
	}
	return customer, nil
}

func (c *CustomerService) Exists(ctx context.Context, customerID int64) (bool, error) {
	return c.dbRepo.CustomerExists(ctx, customerID)
}

// requireCustomer 在呼叫端的交易內確認客戶存在
func requireCustomer(ctx context.Context, repo db.ICustomerRepository, customerID int64) error {
	exists, err := repo.CustomerExists(ctx, customerID)
	if err != nil {
		return fmt.Errorf("check customer failed: %w", err)
	}
	if !exists {
		return ErrCustomerNotFound
	}
	return nil
}

var _ ICustomerService = (*CustomerService)(nil)
