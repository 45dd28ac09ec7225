package app

import (
	"context"
	"errors"
	"testing"

	"colab/internal/adapter/memory"
	"colab/internal/domain"
)

func newProjectFixture(t *testing.T) (*ProjectService, *memory.DB, *mockMailer) {
	t.Helper()
	db := memory.New()
	ctx := context.Background()
	for _, u := range []*domain.User{
		{ID: "alice", Name: "Alice", Email: "alice@example.com", Role: domain.RoleAdmin},
		{ID: "bob", Name: "Bob", Email: "bob@example.com", Role: domain.RoleUser},
	} {
		if err := db.Users().Create(ctx, u); err != nil {
			t.Fatalf("seed user: %v", err)
		}
	}
	mailer := &mockMailer{}
	return NewProjectService(db.Projects(), db.Members(), db.Users(), mailer, "http://localhost:8080"), db, mailer
}

func TestProjectCreateEnrollsCreatorAsAdmin(t *testing.T) {
	svc, db, _ := newProjectFixture(t)
	ctx := context.Background()

	project, err := svc.Create(ctx, "alice", "Launch", "ship it")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	member, err := db.Members().Get(ctx, project.ID, "alice")
	if err != nil || member == nil {
		t.Fatalf("creator should be a member: %v, %v", member, err)
	}
	if member.Role != domain.MemberRoleAdmin {
		t.Errorf("creator should be a project admin, got %s", member.Role)
	}

	if _, err := svc.Create(ctx, "alice", "  ", ""); err == nil {
		t.Error("blank name should be rejected")
	}
}

func TestProjectAccessHidesExistenceFromNonMembers(t *testing.T) {
	svc, _, _ := newProjectFixture(t)
	ctx := context.Background()

	project, err := svc.Create(ctx, "alice", "Secret", "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Non-members get not-found, never forbidden, so project ids cannot be
	// probed.
	if _, err := svc.Get(ctx, project.ID, "bob"); !errors.Is(err, ErrProjectNotFound) {
		t.Errorf("expected ErrProjectNotFound, got %v", err)
	}
	if _, err := svc.Get(ctx, "no-such-project", "bob"); !errors.Is(err, ErrProjectNotFound) {
		t.Errorf("expected ErrProjectNotFound, got %v", err)
	}
}

func TestProjectAddMemberExistingUser(t *testing.T) {
	svc, db, mailer := newProjectFixture(t)
	ctx := context.Background()

	project, err := svc.Create(ctx, "alice", "Launch", "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	member, err := svc.AddMember(ctx, project.ID, "alice", "bob@example.com", domain.MemberRoleMember)
	if err != nil {
		t.Fatalf("AddMember: %v", err)
	}
	if member.UserID != "bob" {
		t.Errorf("expected bob, got %s", member.UserID)
	}
	if len(mailer.inviteURLs) != 1 {
		t.Fatalf("expected a notification mail, got %d", len(mailer.inviteURLs))
	}

	if _, err := svc.AddMember(ctx, project.ID, "alice", "bob@example.com", domain.MemberRoleMember); !errors.Is(err, ErrAlreadyMember) {
		t.Errorf("expected ErrAlreadyMember, got %v", err)
	}

	// Plain members cannot manage membership.
	if _, err := svc.AddMember(ctx, project.ID, "bob", "x@example.com", domain.MemberRoleMember); !errors.Is(err, ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}

	count, _ := db.Users().Count(ctx)
	if count != 2 {
		t.Errorf("adding an existing user must not create accounts, got %d", count)
	}
}

func TestProjectAddMemberProvisionsUnknownEmail(t *testing.T) {
	svc, db, mailer := newProjectFixture(t)
	ctx := context.Background()

	project, err := svc.Create(ctx, "alice", "Launch", "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	member, err := svc.AddMember(ctx, project.ID, "alice", "carol@example.com", domain.MemberRoleMember)
	if err != nil {
		t.Fatalf("AddMember: %v", err)
	}

	invitee, err := db.Users().GetByEmail(ctx, "carol@example.com")
	if err != nil || invitee == nil {
		t.Fatalf("provisional user should exist: %v, %v", invitee, err)
	}
	if invitee.InviteToken == "" {
		t.Error("provisional user needs an invite token")
	}
	if invitee.EmailVerified {
		t.Error("provisional user starts unverified")
	}
	if member.UserID != invitee.ID {
		t.Error("membership should point at the provisional user")
	}
	if len(mailer.inviteURLs) != 1 || mailer.inviteTargets[0] != "carol@example.com" {
		t.Fatalf("expected an invite mail to carol, got %v", mailer.inviteTargets)
	}
}

func TestProjectDeleteIsOwnerOnly(t *testing.T) {
	svc, _, _ := newProjectFixture(t)
	ctx := context.Background()

	project, err := svc.Create(ctx, "alice", "Launch", "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.AddMember(ctx, project.ID, "alice", "bob@example.com", domain.MemberRoleAdmin); err != nil {
		t.Fatalf("AddMember: %v", err)
	}

	// Even a project admin cannot delete if they did not create it.
	if err := svc.Delete(ctx, project.ID, "bob"); !errors.Is(err, ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
	if err := svc.Delete(ctx, project.ID, "alice"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := svc.Get(ctx, project.ID, "alice"); !errors.Is(err, ErrProjectNotFound) {
		t.Errorf("expected ErrProjectNotFound after delete, got %v", err)
	}
}

func TestProjectRemoveMember(t *testing.T) {
	svc, _, _ := newProjectFixture(t)
	ctx := context.Background()

	project, err := svc.Create(ctx, "alice", "Launch", "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.AddMember(ctx, project.ID, "alice", "bob@example.com", domain.MemberRoleMember); err != nil {
		t.Fatalf("AddMember: %v", err)
	}

	if err := svc.RemoveMember(ctx, project.ID, "bob", "alice"); !errors.Is(err, ErrForbidden) {
		t.Errorf("plain members cannot remove others, got %v", err)
	}
	if err := svc.RemoveMember(ctx, project.ID, "alice", "bob"); err != nil {
		t.Fatalf("RemoveMember: %v", err)
	}
	if _, err := svc.Get(ctx, project.ID, "bob"); !errors.Is(err, ErrProjectNotFound) {
		t.Errorf("removed member should lose access, got %v", err)
	}
}
