// Package memory implements the domain repository ports in process memory
// for development and testing.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"colab/internal/domain"
)

// DB is an in-memory database. All repositories returned from one DB share
// a single lock, so cross-repository reads see consistent state.
type DB struct {
	mu       sync.Mutex
	users    map[string]*domain.User
	sessions map[string]*domain.Session
	projects map[string]*domain.Project
	members  map[string]map[string]*domain.ProjectMember // projectID -> userID
	tasks    map[string]*domain.Task
	files    map[string]*domain.File
	messages []*domain.Message
}

// New creates an empty in-memory database.
func New() *DB {
	return &DB{
		users:    make(map[string]*domain.User),
		sessions: make(map[string]*domain.Session),
		projects: make(map[string]*domain.Project),
		members:  make(map[string]map[string]*domain.ProjectMember),
		tasks:    make(map[string]*domain.Task),
		files:    make(map[string]*domain.File),
	}
}

// Ensure interfaces are met.
var _ domain.UserRepository = (*UserRepo)(nil)
var _ domain.SessionRepository = (*SessionRepo)(nil)
var _ domain.ProjectRepository = (*ProjectRepo)(nil)
var _ domain.MemberRepository = (*MemberRepo)(nil)
var _ domain.TaskRepository = (*TaskRepo)(nil)
var _ domain.FileRepository = (*FileRepo)(nil)
var _ domain.MessageRepository = (*MessageRepo)(nil)

// --- UserRepository ---

// UserRepo implements user persistence.
type UserRepo struct{ db *DB }

// Users returns the user repository.
func (db *DB) Users() *UserRepo { return &UserRepo{db: db} }

func (r *UserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if u, ok := r.db.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, u := range r.db.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *UserRepo) GetByVerificationToken(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, nil
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, u := range r.db.users {
		if u.VerificationToken == token {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *UserRepo) GetByInviteToken(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, nil
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, u := range r.db.users {
		if u.InviteToken == token {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	cp := *u
	r.db.users[u.ID] = &cp
	return nil
}

func (r *UserRepo) Update(ctx context.Context, u *domain.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.users[u.ID]; ok {
		cp := *u
		r.db.users[u.ID] = &cp
	}
	return nil
}

func (r *UserRepo) Delete(ctx context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	delete(r.db.users, id)
	for sid, s := range r.db.sessions {
		if s.UserID == id {
			delete(r.db.sessions, sid)
		}
	}
	for _, pm := range r.db.members {
		delete(pm, id)
	}
	return nil
}

func (r *UserRepo) List(ctx context.Context) ([]domain.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := make([]domain.User, 0, len(r.db.users))
	for _, u := range r.db.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *UserRepo) ListRecent(ctx context.Context, limit int) ([]domain.User, error) {
	all, _ := r.List(ctx)
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (r *UserRepo) Count(ctx context.Context) (int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return len(r.db.users), nil
}

func (r *UserRepo) CountByRole(ctx context.Context) (map[domain.Role]int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := make(map[domain.Role]int)
	for _, u := range r.db.users {
		out[u.Role]++
	}
	return out, nil
}

// --- SessionRepository ---

// SessionRepo implements session persistence.
type SessionRepo struct{ db *DB }

// Sessions returns the session repository.
func (db *DB) Sessions() *SessionRepo { return &SessionRepo{db: db} }

func (r *SessionRepo) Create(ctx context.Context, s *domain.Session) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	cp := *s
	r.db.sessions[s.ID] = &cp
	return nil
}

func (r *SessionRepo) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if s, ok := r.db.sessions[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, nil
}

func (r *SessionRepo) UpdateLastVerifiedAt(ctx context.Context, id string, t time.Time) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if s, ok := r.db.sessions[id]; ok {
		s.LastVerifiedAt = t
	}
	return nil
}

func (r *SessionRepo) Delete(ctx context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	delete(r.db.sessions, id)
	return nil
}

// --- ProjectRepository ---

// ProjectRepo implements project persistence.
type ProjectRepo struct{ db *DB }

// Projects returns the project repository.
func (db *DB) Projects() *ProjectRepo { return &ProjectRepo{db: db} }

func (r *ProjectRepo) Create(ctx context.Context, p *domain.Project) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	cp := *p
	r.db.projects[p.ID] = &cp
	return nil
}

// withCounts copies a project and fills the aggregate counts. Caller holds
// the lock.
func (r *ProjectRepo) withCounts(p *domain.Project) domain.Project {
	cp := *p
	cp.TaskCount, cp.FileCount, cp.MessageCount = 0, 0, 0
	for _, t := range r.db.tasks {
		if t.ProjectID == p.ID {
			cp.TaskCount++
		}
	}
	for _, f := range r.db.files {
		if f.ProjectID == p.ID {
			cp.FileCount++
		}
	}
	for _, m := range r.db.messages {
		if m.ProjectID == p.ID {
			cp.MessageCount++
		}
	}
	return cp
}

func (r *ProjectRepo) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if p, ok := r.db.projects[id]; ok {
		cp := r.withCounts(p)
		return &cp, nil
	}
	return nil, nil
}

func (r *ProjectRepo) ListForUser(ctx context.Context, userID string) ([]domain.Project, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := make([]domain.Project, 0)
	for pid, pm := range r.db.members {
		if _, ok := pm[userID]; !ok {
			continue
		}
		if p, ok := r.db.projects[pid]; ok {
			out = append(out, r.withCounts(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *ProjectRepo) Update(ctx context.Context, p *domain.Project) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if cur, ok := r.db.projects[p.ID]; ok {
		cur.Name = p.Name
		cur.Description = p.Description
	}
	return nil
}

func (r *ProjectRepo) Delete(ctx context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	delete(r.db.projects, id)
	delete(r.db.members, id)
	for tid, t := range r.db.tasks {
		if t.ProjectID == id {
			delete(r.db.tasks, tid)
		}
	}
	for fid, f := range r.db.files {
		if f.ProjectID == id {
			delete(r.db.files, fid)
		}
	}
	kept := r.db.messages[:0]
	for _, m := range r.db.messages {
		if m.ProjectID != id {
			kept = append(kept, m)
		}
	}
	r.db.messages = kept
	return nil
}

func (r *ProjectRepo) Count(ctx context.Context) (int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return len(r.db.projects), nil
}

// --- MemberRepository ---

// MemberRepo implements project membership persistence.
type MemberRepo struct{ db *DB }

// Members returns the membership repository.
func (db *DB) Members() *MemberRepo { return &MemberRepo{db: db} }

func (r *MemberRepo) Add(ctx context.Context, m *domain.ProjectMember) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	pm, ok := r.db.members[m.ProjectID]
	if !ok {
		pm = make(map[string]*domain.ProjectMember)
		r.db.members[m.ProjectID] = pm
	}
	cp := *m
	pm[m.UserID] = &cp
	return nil
}

// decorate copies a membership and fills denormalized user fields. Caller
// holds the lock.
func (r *MemberRepo) decorate(m *domain.ProjectMember) domain.ProjectMember {
	cp := *m
	if u, ok := r.db.users[m.UserID]; ok {
		cp.Name = u.Name
		cp.Email = u.Email
		cp.ProfilePictureURL = u.ProfilePictureURL
	}
	return cp
}

func (r *MemberRepo) Get(ctx context.Context, projectID, userID string) (*domain.ProjectMember, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if m, ok := r.db.members[projectID][userID]; ok {
		cp := r.decorate(m)
		return &cp, nil
	}
	return nil, nil
}

func (r *MemberRepo) List(ctx context.Context, projectID string) ([]domain.ProjectMember, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := make([]domain.ProjectMember, 0)
	for _, m := range r.db.members[projectID] {
		out = append(out, r.decorate(m))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *MemberRepo) Remove(ctx context.Context, projectID, userID string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	delete(r.db.members[projectID], userID)
	return nil
}

// --- TaskRepository ---

// TaskRepo implements task persistence.
type TaskRepo struct{ db *DB }

// Tasks returns the task repository.
func (db *DB) Tasks() *TaskRepo { return &TaskRepo{db: db} }

func (r *TaskRepo) Create(ctx context.Context, t *domain.Task) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	cp := *t
	r.db.tasks[t.ID] = &cp
	return nil
}

func (r *TaskRepo) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if t, ok := r.db.tasks[id]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, nil
}

func (r *TaskRepo) ListForProject(ctx context.Context, projectID string, status domain.TaskStatus) ([]domain.Task, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := make([]domain.Task, 0)
	for _, t := range r.db.tasks {
		if t.ProjectID != projectID {
			continue
		}
		if status != "" && t.Status != status {
			continue
		}
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *TaskRepo) Update(ctx context.Context, t *domain.Task) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.tasks[t.ID]; ok {
		cp := *t
		r.db.tasks[t.ID] = &cp
	}
	return nil
}

func (r *TaskRepo) Delete(ctx context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	delete(r.db.tasks, id)
	for _, f := range r.db.files {
		if f.TaskID == id {
			f.TaskID = ""
		}
	}
	return nil
}

func (r *TaskRepo) Count(ctx context.Context) (int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return len(r.db.tasks), nil
}

func (r *TaskRepo) CountByStatus(ctx context.Context) (map[domain.TaskStatus]int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := make(map[domain.TaskStatus]int)
	for _, t := range r.db.tasks {
		out[t.Status]++
	}
	return out, nil
}

// --- FileRepository ---

// FileRepo implements file metadata persistence.
type FileRepo struct{ db *DB }

// Files returns the file metadata repository.
func (db *DB) Files() *FileRepo { return &FileRepo{db: db} }

func (r *FileRepo) Create(ctx context.Context, f *domain.File) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	cp := *f
	r.db.files[f.ID] = &cp
	return nil
}

func (r *FileRepo) GetByID(ctx context.Context, id string) (*domain.File, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if f, ok := r.db.files[id]; ok {
		cp := *f
		return &cp, nil
	}
	return nil, nil
}

func (r *FileRepo) ListForProject(ctx context.Context, projectID string) ([]domain.File, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := make([]domain.File, 0)
	for _, f := range r.db.files {
		if f.ProjectID == projectID {
			out = append(out, *f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *FileRepo) Delete(ctx context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	delete(r.db.files, id)
	return nil
}

func (r *FileRepo) Count(ctx context.Context) (int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return len(r.db.files), nil
}

// --- MessageRepository ---

// MessageRepo implements message persistence.
type MessageRepo struct{ db *DB }

// Messages returns the message repository.
func (db *DB) Messages() *MessageRepo { return &MessageRepo{db: db} }

func (r *MessageRepo) Create(ctx context.Context, m *domain.Message) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	cp := *m
	r.db.messages = append(r.db.messages, &cp)
	return nil
}

func (r *MessageRepo) ListForProject(ctx context.Context, projectID string, limit int) ([]domain.Message, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := make([]domain.Message, 0)
	for _, m := range r.db.messages {
		if m.ProjectID != projectID {
			continue
		}
		cp := *m
		if u, ok := r.db.users[m.UserID]; ok {
			cp.AuthorName = u.Name
			cp.AuthorProfilePictureURL = u.ProfilePictureURL
		}
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (r *MessageRepo) Count(ctx context.Context) (int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return len(r.db.messages), nil
}
