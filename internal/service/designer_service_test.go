package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/baguri-ro/baguri-api/internal/config"
	"github.com/baguri-ro/baguri-api/internal/constants"
	"github.com/baguri-ro/baguri-api/internal/models"
	"github.com/baguri-ro/baguri-api/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupDesignerServiceTest(t *testing.T) (*DesignerService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:designer_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Designer{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db
	cfg := &config.Config{
		DesignerJWT: config.JWTConfig{
			SecretKey:   "designer-test-secret-key-0123456789",
			ExpireHours: 24,
		},
		Security: config.SecurityConfig{
			PasswordPolicy: config.PasswordPolicyConfig{
				MinLength:     8,
				RequireNumber: true,
			},
		},
	}
	return NewDesignerService(cfg, repository.NewDesignerRepository(db)), db
}

func TestDesignerServiceApply(t *testing.T) {
	svc, _ := setupDesignerServiceTest(t)

	designer, err := svc.Apply(DesignerApplyInput{
		Email:     "Ana@Atelier.RO",
		Password:  "parola123",
		BrandName: "Atelier Ana",
		City:      "Bucharest",
	})
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if designer.Status != constants.DesignerStatusPending {
		t.Fatalf("unexpected status: %s", designer.Status)
	}
	if designer.Email != "ana@atelier.ro" {
		t.Fatalf("email not normalized: %s", designer.Email)
	}
	if designer.Slug != "atelier-ana" {
		t.Fatalf("unexpected slug: %s", designer.Slug)
	}
	if designer.PasswordHash == "parola123" || designer.PasswordHash == "" {
		t.Fatalf("password stored in clear")
	}

	if _, err := svc.Apply(DesignerApplyInput{
		Email:     "ana@atelier.ro",
		Password:  "parola123",
		BrandName: "Another Brand",
	}); !errors.Is(err, ErrDesignerEmailTaken) {
		t.Fatalf("expected email-taken error, got: %v", err)
	}

	// Same brand name gets a numbered slug instead of a conflict.
	second, err := svc.Apply(DesignerApplyInput{
		Email:     "ana2@atelier.ro",
		Password:  "parola123",
		BrandName: "Atelier Ana",
	})
	if err != nil {
		t.Fatalf("second apply failed: %v", err)
	}
	if second.Slug != "atelier-ana-2" {
		t.Fatalf("unexpected slug: %s", second.Slug)
	}
}

func TestDesignerServiceApplyWeakPassword(t *testing.T) {
	svc, _ := setupDesignerServiceTest(t)
	_, err := svc.Apply(DesignerApplyInput{
		Email:     "weak@atelier.ro",
		Password:  "short",
		BrandName: "Weak Brand",
	})
	if !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("expected weak-password error, got: %v", err)
	}
}

func TestDesignerServiceLogin(t *testing.T) {
	svc, _ := setupDesignerServiceTest(t)
	if _, err := svc.Apply(DesignerApplyInput{
		Email:     "login@atelier.ro",
		Password:  "parola123",
		BrandName: "Login Brand",
	}); err != nil {
		t.Fatalf("apply failed: %v", err)
	}

	designer, token, expiresAt, err := svc.Login("login@atelier.ro", "parola123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if token == "" || !expiresAt.After(time.Now()) {
		t.Fatalf("unexpected token: %q expires %v", token, expiresAt)
	}
	if designer.LastLoginAt == nil {
		t.Fatalf("last login not recorded")
	}

	claims, err := svc.ParseJWT(token)
	if err != nil {
		t.Fatalf("parse token failed: %v", err)
	}
	if claims.DesignerID != designer.ID || claims.Email != designer.Email {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	if _, _, _, err := svc.Login("login@atelier.ro", "wrong-pass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got: %v", err)
	}
	if _, _, _, err := svc.Login("nobody@atelier.ro", "parola123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got: %v", err)
	}
}

func TestDesignerServiceLoginRejectedDenied(t *testing.T) {
	svc, db := setupDesignerServiceTest(t)
	applied, err := svc.Apply(DesignerApplyInput{
		Email:     "rejected@atelier.ro",
		Password:  "parola123",
		BrandName: "Rejected Brand",
	})
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if err := db.Model(&models.Designer{}).Where("id = ?", applied.ID).
		Update("status", constants.DesignerStatusRejected).Error; err != nil {
		t.Fatalf("mark rejected failed: %v", err)
	}

	if _, _, _, err := svc.Login("rejected@atelier.ro", "parola123"); !errors.Is(err, ErrDesignerStatusInvalid) {
		t.Fatalf("expected status-invalid error, got: %v", err)
	}
}

func TestDesignerServiceReviewFlow(t *testing.T) {
	svc, _ := setupDesignerServiceTest(t)
	applied, err := svc.Apply(DesignerApplyInput{
		Email:     "review@atelier.ro",
		Password:  "parola123",
		BrandName: "Review Brand",
	})
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}

	// Not visible publicly while pending.
	if _, err := svc.GetBySlug(applied.Slug); !errors.Is(err, ErrDesignerNotFound) {
		t.Fatalf("pending designer visible: %v", err)
	}

	approved, err := svc.Approve(applied.ID, 1)
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if approved.Status != constants.DesignerStatusApproved || approved.ApprovedAt == nil {
		t.Fatalf("unexpected state: %+v", approved)
	}
	if _, err := svc.GetBySlug(applied.Slug); err != nil {
		t.Fatalf("approved designer not visible: %v", err)
	}

	// Review is one-shot.
	if _, err := svc.Approve(applied.ID, 1); !errors.Is(err, ErrDesignerStatusInvalid) {
		t.Fatalf("expected status-invalid on double approve, got: %v", err)
	}
	if _, err := svc.Reject(applied.ID, 1, "late"); !errors.Is(err, ErrDesignerStatusInvalid) {
		t.Fatalf("expected status-invalid on reject after approve, got: %v", err)
	}
}

func TestDesignerServiceReject(t *testing.T) {
	svc, _ := setupDesignerServiceTest(t)
	applied, err := svc.Apply(DesignerApplyInput{
		Email:     "no@atelier.ro",
		Password:  "parola123",
		BrandName: "No Brand",
	})
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}

	rejected, err := svc.Reject(applied.ID, 2, "incomplete portfolio")
	if err != nil {
		t.Fatalf("reject failed: %v", err)
	}
	if rejected.Status != constants.DesignerStatusRejected || rejected.RejectReason != "incomplete portfolio" {
		t.Fatalf("unexpected state: %+v", rejected)
	}
}
