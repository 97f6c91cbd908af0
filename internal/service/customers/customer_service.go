package customers

import (
	"context"
	"errors"
	"strings"

	"github.com/Domenick1991/railbooking/internal/auth"
	"github.com/Domenick1991/railbooking/internal/domain"
	"github.com/Domenick1991/railbooking/internal/repository"
	"github.com/Domenick1991/railbooking/internal/validate"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

type CustomerUseCase interface {
	Register(ctx context.Context, input RegisterInput) (*domain.Customer, error)
	Authenticate(ctx context.Context, loginID, password string) (bool, error)
	Login(ctx context.Context, loginID, password string) (*LoginResult, error)
	Profile(ctx context.Context, id int64) (*domain.Customer, error)
}

type TokenIssuer interface {
	Issue(customerID int64, loginID string) (auth.AccessToken, error)
}

type RegisterInput struct {
	LoginID  string `json:"login_id" validate:"required,min=3,max=32"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,max=100"`
	Phone    string `json:"phone" validate:"required,len=10,numeric"`
}

type LoginResult struct {
	Customer *domain.Customer `json:"customer"`
	Token    auth.AccessToken `json:"token"`
}

type CustomerService struct {
	repo       repository.CustomerRepository
	tokens     TokenIssuer
	bcryptCost int
	log        logrus.FieldLogger
}

func NewCustomerService(repo repository.CustomerRepository, tokens TokenIssuer, bcryptCost int, log logrus.FieldLogger) *CustomerService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &CustomerService{repo: repo, tokens: tokens, bcryptCost: bcryptCost, log: log}
}

func (s *CustomerService) Register(ctx context.Context, input RegisterInput) (*domain.Customer, error) {
	input.LoginID = strings.TrimSpace(input.LoginID)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.Name = strings.TrimSpace(input.Name)
	if err := validate.Struct(input); err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrCustomerExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.bcryptCost)
	if err != nil {
		return nil, err
	}

	customer := &domain.Customer{
		LoginID:      input.LoginID,
		PasswordHash: string(hash),
		Email:        input.Email,
		Name:         input.Name,
		Phone:        input.Phone,
		Active:       true,
	}
	if err := s.repo.Create(ctx, customer); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"customer_id": customer.ID, "login_id": customer.LoginID}).Info("customer registered")
	return customer, nil
}

// Authenticate reports whether the credentials match an active customer.
// Unknown logins and wrong passwords are a false result, not an error.
func (s *CustomerService) Authenticate(ctx context.Context, loginID, password string) (bool, error) {
	_, err := s.verify(ctx, loginID, password)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, domain.ErrInvalidCredentials):
		return false, nil
	default:
		return false, err
	}
}

func (s *CustomerService) Login(ctx context.Context, loginID, password string) (*LoginResult, error) {
	customer, err := s.verify(ctx, loginID, password)
	if err != nil {
		return nil, err
	}
	token, err := s.tokens.Issue(customer.ID, customer.LoginID)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Customer: customer, Token: token}, nil
}

func (s *CustomerService) verify(ctx context.Context, loginID, password string) (*domain.Customer, error) {
	loginID = strings.TrimSpace(loginID)
	if len(loginID) < 3 || len(password) < 6 {
		return nil, domain.ErrInvalidCredentials
	}

	customer, err := s.repo.GetByLoginID(ctx, loginID)
	if err != nil {
		if errors.Is(err, domain.ErrCustomerNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if !customer.Active {
		return nil, domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(customer.PasswordHash), []byte(password)); err != nil {
		s.log.WithField("login_id", loginID).Info("password mismatch")
		return nil, domain.ErrInvalidCredentials
	}
	return customer, nil
}

func (s *CustomerService) Profile(ctx context.Context, id int64) (*domain.Customer, error) {
	return s.repo.GetByID(ctx, id)
}

var _ CustomerUseCase = (*CustomerService)(nil)
