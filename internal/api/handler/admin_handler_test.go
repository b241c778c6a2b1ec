package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/quotable/quotes-platform/internal/api/middleware"
	"github.com/quotable/quotes-platform/internal/core/domain"
)

type stubAdminService struct {
	user          *domain.User
	err           error
	entries       []*domain.ApprovalEntry
	lastTarget    string
	lastActor     string
	lastOverrides map[string]bool
}

func (s *stubAdminService) Approve(_ context.Context, targetID, actorID string, _ domain.Provenance) (*domain.User, error) {
	s.lastTarget, s.lastActor = targetID, actorID
	return s.user, s.err
}

func (s *stubAdminService) Suspend(_ context.Context, targetID, actorID string, _ domain.Provenance) (*domain.User, error) {
	s.lastTarget, s.lastActor = targetID, actorID
	return s.user, s.err
}

func (s *stubAdminService) Reactivate(_ context.Context, targetID, actorID string, _ domain.Provenance) (*domain.User, error) {
	s.lastTarget, s.lastActor = targetID, actorID
	return s.user, s.err
}

func (s *stubAdminService) OverridePermissions(_ context.Context, targetID, actorID string, overrides map[string]bool, _ domain.Provenance) (*domain.User, error) {
	s.lastTarget, s.lastActor, s.lastOverrides = targetID, actorID, overrides
	return s.user, s.err
}

func (s *stubAdminService) PendingApprovals(_ context.Context) ([]*domain.ApprovalEntry, error) {
	return s.entries, s.err
}

func TestApproveHandler(t *testing.T) {
	svc := &stubAdminService{user: &domain.User{ID: "g1", Role: domain.RoleUser, Status: domain.StatusActive}}
	h := NewAdminHandler(svc)

	c, rec := newTestContext(http.MethodPost, "/admin/users/g1/approve", "")
	c.SetParamNames("id")
	c.SetParamValues("g1")
	c.Set(middleware.SubjectKey, "admin-1")

	if err := h.Approve(c); err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if svc.lastTarget != "g1" || svc.lastActor != "admin-1" {
		t.Errorf("target = %q actor = %q", svc.lastTarget, svc.lastActor)
	}

	var resp userResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.User == nil || resp.User.Status != domain.StatusActive {
		t.Errorf("response = %+v", resp)
	}
}

func TestGrantAndRevokeWriteShortcuts(t *testing.T) {
	svc := &stubAdminService{user: &domain.User{ID: "g1"}}
	h := NewAdminHandler(svc)

	c, _ := newTestContext(http.MethodPost, "/admin/users/g1/grant-write", "")
	c.SetParamNames("id")
	c.SetParamValues("g1")
	c.Set(middleware.SubjectKey, "admin-1")
	if err := h.GrantWrite(c); err != nil {
		t.Fatal(err)
	}
	if len(svc.lastOverrides) != 1 || !svc.lastOverrides[domain.PermWrite] {
		t.Errorf("grant overrides = %v", svc.lastOverrides)
	}

	c, _ = newTestContext(http.MethodPost, "/admin/users/g1/revoke-write", "")
	c.SetParamNames("id")
	c.SetParamValues("g1")
	c.Set(middleware.SubjectKey, "admin-1")
	if err := h.RevokeWrite(c); err != nil {
		t.Fatal(err)
	}
	if granted, ok := svc.lastOverrides[domain.PermWrite]; !ok || granted {
		t.Errorf("revoke overrides = %v", svc.lastOverrides)
	}
}

func TestPatchPermissionsForwardsPayload(t *testing.T) {
	svc := &stubAdminService{user: &domain.User{ID: "g1"}}
	h := NewAdminHandler(svc)

	c, _ := newTestContext(http.MethodPatch, "/admin/users/g1/permissions",
		`{"permissions":{"write":true,"delete":false}}`)
	c.SetParamNames("id")
	c.SetParamValues("g1")
	c.Set(middleware.SubjectKey, "admin-1")

	if err := h.PatchPermissions(c); err != nil {
		t.Fatal(err)
	}
	if !svc.lastOverrides["write"] || svc.lastOverrides["delete"] {
		t.Errorf("overrides = %v", svc.lastOverrides)
	}
}

func TestPatchPermissionsProtectedKeyPropagates(t *testing.T) {
	svc := &stubAdminService{err: domain.ErrProtectedKey}
	h := NewAdminHandler(svc)

	c, _ := newTestContext(http.MethodPatch, "/admin/users/g1/permissions",
		`{"permissions":{"manage_users":true}}`)
	c.SetParamNames("id")
	c.SetParamValues("g1")
	c.Set(middleware.SubjectKey, "admin-1")

	if err := h.PatchPermissions(c); !errors.Is(err, domain.ErrProtectedKey) {
		t.Fatalf("err = %v, want ErrProtectedKey", err)
	}
}

func TestListApprovals(t *testing.T) {
	svc := &stubAdminService{entries: []*domain.ApprovalEntry{
		{UserID: "g1", Email: "g1@example.net"},
	}}
	h := NewAdminHandler(svc)

	c, rec := newTestContext(http.MethodGet, "/admin/approvals", "")
	if err := h.ListApprovals(c); err != nil {
		t.Fatal(err)
	}

	var resp struct {
		Approvals []*domain.ApprovalEntry `json:"approvals"`
	}
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if len(resp.Approvals) != 1 || resp.Approvals[0].UserID != "g1" {
		t.Errorf("response = %+v", resp)
	}
}
