package memory

import (
	"context"
	"testing"
	"time"

	"colab/internal/domain"
)

func seedUser(t *testing.T, db *DB, id, email string) {
	t.Helper()
	err := db.Users().Create(context.Background(), &domain.User{
		ID: id, Name: id, Email: email, Role: domain.RoleUser, CreatedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("seed user %s: %v", id, err)
	}
}

func TestUserRepository(t *testing.T) {
	db := New()
	ctx := context.Background()

	user := &domain.User{
		ID:                "u1",
		Name:              "Alice",
		Email:             "alice@example.com",
		Role:              domain.RoleAdmin,
		VerificationToken: "verify-1",
		CreatedAt:         time.Now(),
	}
	if err := db.Users().Create(ctx, user); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := db.Users().GetByEmail(ctx, "alice@example.com")
	if err != nil || got == nil {
		t.Fatalf("GetByEmail: %v, %v", got, err)
	}
	if got.Name != "Alice" {
		t.Errorf("expected Alice, got %s", got.Name)
	}

	// Repositories hand out copies, not shared pointers.
	got.Name = "mutated"
	again, _ := db.Users().GetByID(ctx, "u1")
	if again.Name != "Alice" {
		t.Error("stored user must not be affected by caller mutation")
	}

	byToken, _ := db.Users().GetByVerificationToken(ctx, "verify-1")
	if byToken == nil || byToken.ID != "u1" {
		t.Error("expected lookup by verification token")
	}
	if none, _ := db.Users().GetByVerificationToken(ctx, ""); none != nil {
		t.Error("empty token must not match")
	}

	if missing, _ := db.Users().GetByEmail(ctx, "nobody@example.com"); missing != nil {
		t.Error("expected nil for unknown email")
	}

	counts, _ := db.Users().CountByRole(ctx)
	if counts[domain.RoleAdmin] != 1 {
		t.Errorf("expected 1 admin, got %d", counts[domain.RoleAdmin])
	}
}

func TestUserDeleteCascades(t *testing.T) {
	db := New()
	ctx := context.Background()
	seedUser(t, db, "u1", "u1@example.com")

	_ = db.Sessions().Create(ctx, &domain.Session{ID: "s1", UserID: "u1", CreatedAt: time.Now()})
	_ = db.Members().Add(ctx, &domain.ProjectMember{UserID: "u1", ProjectID: "p1", Role: domain.MemberRoleMember})

	if err := db.Users().Delete(ctx, "u1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if s, _ := db.Sessions().GetByID(ctx, "s1"); s != nil {
		t.Error("deleting a user should remove their sessions")
	}
	if m, _ := db.Members().Get(ctx, "p1", "u1"); m != nil {
		t.Error("deleting a user should remove their memberships")
	}
}

func TestProjectAggregateCounts(t *testing.T) {
	db := New()
	ctx := context.Background()
	seedUser(t, db, "u1", "u1@example.com")

	project := &domain.Project{ID: "p1", Name: "Board", CreatedBy: "u1", CreatedAt: time.Now()}
	if err := db.Projects().Create(ctx, project); err != nil {
		t.Fatalf("Create: %v", err)
	}
	_ = db.Members().Add(ctx, &domain.ProjectMember{UserID: "u1", ProjectID: "p1", Role: domain.MemberRoleAdmin})
	_ = db.Tasks().Create(ctx, &domain.Task{ID: "t1", ProjectID: "p1", UserID: "u1"})
	_ = db.Tasks().Create(ctx, &domain.Task{ID: "t2", ProjectID: "p1", UserID: "u1"})
	_ = db.Files().Create(ctx, &domain.File{ID: "f1", ProjectID: "p1", UploadedBy: "u1"})
	_ = db.Messages().Create(ctx, &domain.Message{ID: "m1", ProjectID: "p1", UserID: "u1"})

	got, err := db.Projects().GetByID(ctx, "p1")
	if err != nil || got == nil {
		t.Fatalf("GetByID: %v, %v", got, err)
	}
	if got.TaskCount != 2 || got.FileCount != 1 || got.MessageCount != 1 {
		t.Errorf("unexpected counts: %d tasks, %d files, %d messages",
			got.TaskCount, got.FileCount, got.MessageCount)
	}

	mine, _ := db.Projects().ListForUser(ctx, "u1")
	if len(mine) != 1 || mine[0].TaskCount != 2 {
		t.Errorf("list should carry counts, got %+v", mine)
	}
	if theirs, _ := db.Projects().ListForUser(ctx, "other"); len(theirs) != 0 {
		t.Errorf("non-member should see nothing, got %d", len(theirs))
	}
}

func TestProjectDeleteCascades(t *testing.T) {
	db := New()
	ctx := context.Background()
	seedUser(t, db, "u1", "u1@example.com")

	_ = db.Projects().Create(ctx, &domain.Project{ID: "p1", Name: "Board", CreatedBy: "u1"})
	_ = db.Members().Add(ctx, &domain.ProjectMember{UserID: "u1", ProjectID: "p1", Role: domain.MemberRoleAdmin})
	_ = db.Tasks().Create(ctx, &domain.Task{ID: "t1", ProjectID: "p1", UserID: "u1"})
	_ = db.Files().Create(ctx, &domain.File{ID: "f1", ProjectID: "p1", UploadedBy: "u1"})
	_ = db.Messages().Create(ctx, &domain.Message{ID: "m1", ProjectID: "p1", UserID: "u1"})

	if err := db.Projects().Delete(ctx, "p1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if tk, _ := db.Tasks().GetByID(ctx, "t1"); tk != nil {
		t.Error("tasks should cascade")
	}
	if f, _ := db.Files().GetByID(ctx, "f1"); f != nil {
		t.Error("files should cascade")
	}
	if n, _ := db.Messages().Count(ctx); n != 0 {
		t.Error("messages should cascade")
	}
	if m, _ := db.Members().Get(ctx, "p1", "u1"); m != nil {
		t.Error("memberships should cascade")
	}
}

func TestMemberListDenormalizesUserFields(t *testing.T) {
	db := New()
	ctx := context.Background()
	_ = db.Users().Create(ctx, &domain.User{
		ID: "u1", Name: "Alice", Email: "alice@example.com",
		ProfilePictureURL: "http://pics/alice.png", Role: domain.RoleUser,
	})
	_ = db.Members().Add(ctx, &domain.ProjectMember{UserID: "u1", ProjectID: "p1", Role: domain.MemberRoleAdmin})

	members, err := db.Members().List(ctx, "p1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(members) != 1 {
		t.Fatalf("expected 1 member, got %d", len(members))
	}
	m := members[0]
	if m.Name != "Alice" || m.Email != "alice@example.com" || m.ProfilePictureURL != "http://pics/alice.png" {
		t.Errorf("member should carry user fields, got %+v", m)
	}
}

func TestTaskListFilterAndOrder(t *testing.T) {
	db := New()
	ctx := context.Background()
	base := time.Now()
	_ = db.Tasks().Create(ctx, &domain.Task{ID: "t1", ProjectID: "p1", Status: domain.TaskStatusTodo, CreatedAt: base})
	_ = db.Tasks().Create(ctx, &domain.Task{ID: "t2", ProjectID: "p1", Status: domain.TaskStatusDone, CreatedAt: base.Add(time.Second)})
	_ = db.Tasks().Create(ctx, &domain.Task{ID: "t3", ProjectID: "p2", Status: domain.TaskStatusTodo, CreatedAt: base})

	all, err := db.Tasks().ListForProject(ctx, "p1", "")
	if err != nil {
		t.Fatalf("ListForProject: %v", err)
	}
	if len(all) != 2 || all[0].ID != "t2" {
		t.Errorf("expected newest first, got %+v", all)
	}

	todo, _ := db.Tasks().ListForProject(ctx, "p1", domain.TaskStatusTodo)
	if len(todo) != 1 || todo[0].ID != "t1" {
		t.Errorf("expected only t1, got %+v", todo)
	}

	byStatus, _ := db.Tasks().CountByStatus(ctx)
	if byStatus[domain.TaskStatusTodo] != 2 || byStatus[domain.TaskStatusDone] != 1 {
		t.Errorf("unexpected status counts: %v", byStatus)
	}
}

func TestTaskDeleteDetachesFiles(t *testing.T) {
	db := New()
	ctx := context.Background()
	_ = db.Tasks().Create(ctx, &domain.Task{ID: "t1", ProjectID: "p1"})
	_ = db.Files().Create(ctx, &domain.File{ID: "f1", ProjectID: "p1", TaskID: "t1"})

	if err := db.Tasks().Delete(ctx, "t1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	f, _ := db.Files().GetByID(ctx, "f1")
	if f == nil {
		t.Fatal("file record should survive task deletion")
	}
	if f.TaskID != "" {
		t.Errorf("file should be detached, got task id %q", f.TaskID)
	}
}

func TestMessageListLimitAndOrder(t *testing.T) {
	db := New()
	ctx := context.Background()
	seedUser(t, db, "u1", "u1@example.com")

	base := time.Now()
	for i, id := range []string{"m1", "m2", "m3"} {
		_ = db.Messages().Create(ctx, &domain.Message{
			ID: id, ProjectID: "p1", UserID: "u1", Body: id,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		})
	}

	got, err := db.Messages().ListForProject(ctx, "p1", 2)
	if err != nil {
		t.Fatalf("ListForProject: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(got))
	}
	// The newest two, oldest first.
	if got[0].ID != "m2" || got[1].ID != "m3" {
		t.Errorf("expected m2 then m3, got %s, %s", got[0].ID, got[1].ID)
	}
	if got[0].AuthorName != "u1" {
		t.Errorf("messages should carry author fields, got %+v", got[0])
	}
}

func TestSessionRepository(t *testing.T) {
	db := New()
	ctx := context.Background()

	now := time.Now()
	session := &domain.Session{
		ID: "s1", UserID: "u1", SecretHash: []byte("hash"),
		CreatedAt: now, LastVerifiedAt: now,
	}
	if err := db.Sessions().Create(ctx, session); err != nil {
		t.Fatalf("Create: %v", err)
	}

	later := now.Add(2 * time.Hour)
	if err := db.Sessions().UpdateLastVerifiedAt(ctx, "s1", later); err != nil {
		t.Fatalf("UpdateLastVerifiedAt: %v", err)
	}
	got, _ := db.Sessions().GetByID(ctx, "s1")
	if !got.LastVerifiedAt.Equal(later) {
		t.Errorf("expected touch to persist, got %v", got.LastVerifiedAt)
	}

	if err := db.Sessions().Delete(ctx, "s1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got, _ := db.Sessions().GetByID(ctx, "s1"); got != nil {
		t.Error("expected nil after delete")
	}
	// Unknown delete is a no-op.
	if err := db.Sessions().Delete(ctx, "s1"); err != nil {
		t.Errorf("deleting unknown id: %v", err)
	}
}
