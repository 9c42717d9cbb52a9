package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/baguri-ro/baguri-api/internal/models"
)

const authStateCacheTTL = 10 * time.Minute

// DesignerAuthState is a designer auth snapshot kept in redis so token
// checks avoid a database round trip.
type DesignerAuthState struct {
	DesignerID int64  `json:"designer_id"`
	Status     string `json:"status"`
	UpdatedAt  int64  `json:"updated_at"`
}

// AdminAuthState is an admin auth snapshot. token_invalid_before is a Unix
// second timestamp, 0 when unset.
type AdminAuthState struct {
	AdminID            uint   `json:"admin_id"`
	Username           string `json:"username"`
	TokenVersion       uint64 `json:"token_version"`
	TokenInvalidBefore int64  `json:"token_invalid_before"`
	IsSuper            bool   `json:"is_super"`
	UpdatedAt          int64  `json:"updated_at"`
}

func designerAuthStateKey(designerID uint) string {
	return fmt.Sprintf("auth:designer:%d", designerID)
}

func adminAuthStateKey(adminID uint) string {
	return fmt.Sprintf("auth:admin:%d", adminID)
}

// BuildDesignerAuthState builds the snapshot from a designer model.
func BuildDesignerAuthState(designer *models.Designer) *DesignerAuthState {
	if designer == nil {
		return nil
	}
	return &DesignerAuthState{
		DesignerID: int64(designer.ID),
		Status:     designer.Status,
		UpdatedAt:  time.Now().Unix(),
	}
}

// BuildAdminAuthState builds the snapshot from an admin model.
func BuildAdminAuthState(admin *models.Admin) *AdminAuthState {
	if admin == nil {
		return nil
	}
	state := &AdminAuthState{
		AdminID:      admin.ID,
		Username:     admin.Username,
		TokenVersion: admin.TokenVersion,
		IsSuper:      admin.IsSuper,
		UpdatedAt:    time.Now().Unix(),
	}
	if admin.TokenInvalidBefore != nil {
		state.TokenInvalidBefore = admin.TokenInvalidBefore.Unix()
	}
	return state
}

// GetDesignerAuthState reads a designer snapshot.
func GetDesignerAuthState(ctx context.Context, designerID uint) (*DesignerAuthState, bool, error) {
	if designerID == 0 {
		return nil, false, nil
	}
	var state DesignerAuthState
	hit, err := GetJSON(ctx, designerAuthStateKey(designerID), &state)
	if err != nil || !hit {
		return nil, hit, err
	}
	return &state, true, nil
}

// SetDesignerAuthState writes a designer snapshot.
func SetDesignerAuthState(ctx context.Context, state *DesignerAuthState) error {
	if state == nil || state.DesignerID == 0 {
		return nil
	}
	return SetJSON(ctx, designerAuthStateKey(uint(state.DesignerID)), state, authStateCacheTTL)
}

// DelDesignerAuthState removes a designer snapshot.
func DelDesignerAuthState(ctx context.Context, designerID uint) error {
	if designerID == 0 {
		return nil
	}
	return Del(ctx, designerAuthStateKey(designerID))
}

// GetAdminAuthState reads an admin snapshot.
func GetAdminAuthState(ctx context.Context, adminID uint) (*AdminAuthState, bool, error) {
	if adminID == 0 {
		return nil, false, nil
	}
	var state AdminAuthState
	hit, err := GetJSON(ctx, adminAuthStateKey(adminID), &state)
	if err != nil || !hit {
		return nil, hit, err
	}
	return &state, true, nil
}

// SetAdminAuthState writes an admin snapshot.
func SetAdminAuthState(ctx context.Context, state *AdminAuthState) error {
	if state == nil || state.AdminID == 0 {
		return nil
	}
	return SetJSON(ctx, adminAuthStateKey(state.AdminID), state, authStateCacheTTL)
}
