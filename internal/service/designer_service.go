package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/baguri-ro/baguri-api/internal/cache"
	"github.com/baguri-ro/baguri-api/internal/config"
	"github.com/baguri-ro/baguri-api/internal/constants"
	"github.com/baguri-ro/baguri-api/internal/logger"
	"github.com/baguri-ro/baguri-api/internal/models"
	"github.com/baguri-ro/baguri-api/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// DesignerService handles designer onboarding, auth, and admin review.
type DesignerService struct {
	cfg          *config.Config
	designerRepo repository.DesignerRepository
}

// DesignerApplyInput is the onboarding application payload.
type DesignerApplyInput struct {
	Email        string
	Password     string
	BrandName    string
	Description  string
	City         string
	WebsiteURL   string
	InstagramURL string
}

// DesignerProfileUpdateInput updates the designer's own profile.
type DesignerProfileUpdateInput struct {
	Description  *string
	City         *string
	WebsiteURL   *string
	InstagramURL *string
}

// NewDesignerService builds a designer service.
func NewDesignerService(cfg *config.Config, designerRepo repository.DesignerRepository) *DesignerService {
	return &DesignerService{
		cfg:          cfg,
		designerRepo: designerRepo,
	}
}

// Apply registers a new designer application in pending status.
func (s *DesignerService) Apply(input DesignerApplyInput) (*models.Designer, error) {
	email := strings.TrimSpace(strings.ToLower(input.Email))
	brand := strings.TrimSpace(input.BrandName)
	if email == "" || brand == "" {
		return nil, ErrDesignerStatusInvalid
	}
	if err := validatePassword(s.cfg.Security.PasswordPolicy, input.Password); err != nil {
		return nil, err
	}

	existing, err := s.designerRepo.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDesignerEmailTaken
	}

	slug, err := s.uniqueSlug(brand)
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	designer := &models.Designer{
		Email:        email,
		PasswordHash: string(hash),
		BrandName:    brand,
		Slug:         slug,
		Description:  strings.TrimSpace(input.Description),
		City:         strings.TrimSpace(input.City),
		WebsiteURL:   strings.TrimSpace(input.WebsiteURL),
		InstagramURL: strings.TrimSpace(input.InstagramURL),
		Status:       constants.DesignerStatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.designerRepo.Create(designer); err != nil {
		return nil, err
	}

	logger.Infow("designer_applied", "designer_id", designer.ID, "brand", brand)
	return designer, nil
}

var slugCleaner = regexp.MustCompile(`[^a-z0-9]+`)

func slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = slugCleaner.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

func (s *DesignerService) uniqueSlug(brand string) (string, error) {
	base := slugify(brand)
	if base == "" {
		base = "designer"
	}
	slug := base
	for i := 2; ; i++ {
		existing, err := s.designerRepo.GetBySlug(slug)
		if err != nil {
			return "", err
		}
		if existing == nil {
			return slug, nil
		}
		if i > 50 {
			return "", ErrDesignerSlugTaken
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
}

// DesignerJWTClaims are the designer token claims.
type DesignerJWTClaims struct {
	DesignerID uint   `json:"designer_id"`
	Email      string `json:"email"`
	jwt.RegisteredClaims
}

// GenerateJWT signs a designer token.
func (s *DesignerService) GenerateJWT(designer *models.Designer) (string, time.Time, error) {
	expiresAt := time.Now().Add(time.Duration(s.cfg.DesignerJWT.ExpireHours) * time.Hour)

	claims := DesignerJWTClaims{
		DesignerID: designer.ID,
		Email:      designer.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.cfg.DesignerJWT.SecretKey))
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// ParseJWT verifies and parses a designer token.
func (s *DesignerService) ParseJWT(tokenString string) (*DesignerJWTClaims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	token, err := parser.ParseWithClaims(tokenString, &DesignerJWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.DesignerJWT.SecretKey), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*DesignerJWTClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}

// Login authenticates a designer. Pending designers may log in to check
// their application status; rejected ones may not.
func (s *DesignerService) Login(email, password string) (*models.Designer, string, time.Time, error) {
	designer, err := s.designerRepo.GetByEmail(email)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if designer == nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(designer.PasswordHash), []byte(password)); err != nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}
	if designer.Status == constants.DesignerStatusRejected {
		return nil, "", time.Time{}, ErrDesignerStatusInvalid
	}

	token, expiresAt, err := s.GenerateJWT(designer)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	now := time.Now()
	designer.LastLoginAt = &now
	if err := s.designerRepo.Update(designer); err != nil {
		return nil, "", time.Time{}, err
	}
	_ = cache.SetDesignerAuthState(context.Background(), cache.BuildDesignerAuthState(designer))

	return designer, token, expiresAt, nil
}

// GetByID fetches a designer.
func (s *DesignerService) GetByID(id uint) (*models.Designer, error) {
	designer, err := s.designerRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if designer == nil {
		return nil, ErrDesignerNotFound
	}
	return designer, nil
}

// GetBySlug fetches a designer by public slug; only approved profiles are
// visible.
func (s *DesignerService) GetBySlug(slug string) (*models.Designer, error) {
	designer, err := s.designerRepo.GetBySlug(slug)
	if err != nil {
		return nil, err
	}
	if designer == nil || designer.Status != constants.DesignerStatusApproved {
		return nil, ErrDesignerNotFound
	}
	return designer, nil
}

// List pages through designers.
func (s *DesignerService) List(filter repository.DesignerListFilter) ([]models.Designer, int64, error) {
	return s.designerRepo.List(filter)
}

// UpdateProfile updates the designer's own profile fields.
func (s *DesignerService) UpdateProfile(designerID uint, input DesignerProfileUpdateInput) (*models.Designer, error) {
	designer, err := s.GetByID(designerID)
	if err != nil {
		return nil, err
	}
	if input.Description != nil {
		designer.Description = strings.TrimSpace(*input.Description)
	}
	if input.City != nil {
		designer.City = strings.TrimSpace(*input.City)
	}
	if input.WebsiteURL != nil {
		designer.WebsiteURL = strings.TrimSpace(*input.WebsiteURL)
	}
	if input.InstagramURL != nil {
		designer.InstagramURL = strings.TrimSpace(*input.InstagramURL)
	}
	designer.UpdatedAt = time.Now()
	if err := s.designerRepo.Update(designer); err != nil {
		return nil, err
	}
	return designer, nil
}

// Approve moves a pending designer to approved.
func (s *DesignerService) Approve(designerID, adminID uint) (*models.Designer, error) {
	designer, err := s.GetByID(designerID)
	if err != nil {
		return nil, err
	}
	if designer.Status != constants.DesignerStatusPending {
		return nil, ErrDesignerStatusInvalid
	}
	now := time.Now()
	designer.Status = constants.DesignerStatusApproved
	designer.ApprovedAt = &now
	designer.RejectReason = ""
	designer.UpdatedAt = now
	if err := s.designerRepo.Update(designer); err != nil {
		return nil, err
	}
	_ = cache.SetDesignerAuthState(context.Background(), cache.BuildDesignerAuthState(designer))
	logger.Infow("designer_approved", "designer_id", designer.ID, "admin_id", adminID)
	return designer, nil
}

// Reject moves a pending designer to rejected with a reason.
func (s *DesignerService) Reject(designerID, adminID uint, reason string) (*models.Designer, error) {
	designer, err := s.GetByID(designerID)
	if err != nil {
		return nil, err
	}
	if designer.Status != constants.DesignerStatusPending {
		return nil, ErrDesignerStatusInvalid
	}
	designer.Status = constants.DesignerStatusRejected
	designer.RejectReason = strings.TrimSpace(reason)
	designer.UpdatedAt = time.Now()
	if err := s.designerRepo.Update(designer); err != nil {
		return nil, err
	}
	_ = cache.DelDesignerAuthState(context.Background(), designer.ID)
	logger.Infow("designer_rejected", "designer_id", designer.ID, "admin_id", adminID, "reason", designer.RejectReason)
	return designer, nil
}
