package auth

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/channelworks/partnerhub-backend/internal/audit"
	"github.com/channelworks/partnerhub-backend/internal/partners"
	"github.com/channelworks/partnerhub-backend/internal/users"
	"github.com/channelworks/partnerhub-backend/pkg/config"
	"github.com/channelworks/partnerhub-backend/pkg/db/models"
	"github.com/channelworks/partnerhub-backend/pkg/enums"
	pkgerrors "github.com/channelworks/partnerhub-backend/pkg/errors"
	"github.com/channelworks/partnerhub-backend/pkg/security"
)

// RegisterService handles the self-registration transaction: one user with
// the partner role plus their draft application.
type RegisterService interface {
	Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type registerUserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error)
}

type registerPartnerRepository interface {
	Create(ctx context.Context, partner *models.Partner, entry *audit.Entry) (*models.Partner, error)
}

// RegisterServiceParams packages the dependencies for the registration flow.
// The repo factories are rebound to the transaction so every write commits or
// rolls back together.
type RegisterServiceParams struct {
	TxRunner           txRunner
	UserRepoFactory    func(tx *gorm.DB) registerUserRepository
	PartnerRepoFactory func(tx *gorm.DB) registerPartnerRepository
	PasswordConfig     config.PasswordConfig
}

type registerService struct {
	tx          txRunner
	userRepo    func(tx *gorm.DB) registerUserRepository
	partnerRepo func(tx *gorm.DB) registerPartnerRepository
	passwordCfg config.PasswordConfig
}

// NewRegisterService builds a registration service with the provided dependencies.
func NewRegisterService(params RegisterServiceParams) (RegisterService, error) {
	if params.TxRunner == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction runner required")
	}
	if params.UserRepoFactory == nil {
		params.UserRepoFactory = func(tx *gorm.DB) registerUserRepository {
			return users.NewRepository(tx)
		}
	}
	if params.PartnerRepoFactory == nil {
		params.PartnerRepoFactory = func(tx *gorm.DB) registerPartnerRepository {
			return partners.NewRepository(tx)
		}
	}
	return &registerService{
		tx:          params.TxRunner,
		userRepo:    params.UserRepoFactory,
		partnerRepo: params.PartnerRepoFactory,
		passwordCfg: params.PasswordConfig,
	}, nil
}

func (s *registerService) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	fullName := strings.TrimSpace(req.FullName)
	if fullName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "full name is required")
	}
	companyName := strings.TrimSpace(req.CompanyName)
	if companyName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "company name is required")
	}
	businessType := strings.TrimSpace(req.BusinessType)
	if businessType == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "business type is required")
	}
	if len(req.Password) < 8 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password must be at least 8 characters")
	}

	passwordHash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	var resp RegisterResponse
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		userRepo := s.userRepo(tx)
		partnerRepo := s.partnerRepo(tx)

		if _, err := userRepo.FindByEmail(ctx, email); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check user email")
		}

		user, err := userRepo.Create(ctx, users.CreateUserDTO{
			Email:        email,
			PasswordHash: passwordHash,
			FullName:     fullName,
			Phone:        req.Phone,
			Role:         enums.ActorRolePartner,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
		}

		ownerID := user.ID
		partner := &models.Partner{
			OwnerUserID:           &ownerID,
			CreatedBy:             user.ID,
			CreatedByRole:         enums.ActorRolePartner,
			CompanyName:           companyName,
			BusinessType:          businessType,
			TaxID:                 req.TaxID,
			YearsInBusiness:       req.YearsInBusiness,
			EmployeeCount:         req.EmployeeCount,
			ExpectedMonthlyVolume: req.ExpectedMonthlyVolume,
			BusinessAddress:       req.BusinessAddress,
			Website:               req.Website,
			ContactName:           fullName,
			ContactEmail:          email,
			ContactPhone:          req.ContactPhone,
			ContactDesignation:    req.ContactDesignation,
			Status:                enums.PartnerStatusDraft,
		}
		partner, err = partnerRepo.Create(ctx, partner, &audit.Entry{
			ActorID:   user.ID,
			ActorRole: string(enums.ActorRolePartner),
			Action:    "partner.register",
			After:     partners.Snapshot(partner),
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create draft application")
		}

		resp = RegisterResponse{UserID: user.ID, PartnerID: partner.ID}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}
