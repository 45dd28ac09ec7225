package adapthttp

import (
	"time"

	"colab/internal/domain"
)

// Response shapes for entities whose domain types carry server-only fields
// (password hashes, tokens, object keys). Tasks serialize directly from the
// domain type.

type userResponse struct {
	ID                string      `json:"id"`
	Name              string      `json:"name"`
	Email             string      `json:"email"`
	ContactNumber     string      `json:"contactNumber"`
	ProfilePictureURL string      `json:"profilePictureUrl"`
	Role              domain.Role `json:"role"`
	EmailVerified     bool        `json:"emailVerified"`
	CreatedAt         time.Time   `json:"createdAt"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:                u.ID,
		Name:              u.Name,
		Email:             u.Email,
		ContactNumber:     u.ContactNumber,
		ProfilePictureURL: u.ProfilePictureURL,
		Role:              u.Role,
		EmailVerified:     u.EmailVerified,
		CreatedAt:         u.CreatedAt,
	}
}

func toUserResponses(users []domain.User) []userResponse {
	out := make([]userResponse, 0, len(users))
	for i := range users {
		out = append(out, toUserResponse(&users[i]))
	}
	return out
}

type projectResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	CreatedBy    string    `json:"createdBy"`
	CreatedAt    time.Time `json:"createdAt"`
	TaskCount    int       `json:"taskCount"`
	FileCount    int       `json:"fileCount"`
	MessageCount int       `json:"messageCount"`
}

func toProjectResponse(p *domain.Project) projectResponse {
	return projectResponse{
		ID:           p.ID,
		Name:         p.Name,
		Description:  p.Description,
		CreatedBy:    p.CreatedBy,
		CreatedAt:    p.CreatedAt,
		TaskCount:    p.TaskCount,
		FileCount:    p.FileCount,
		MessageCount: p.MessageCount,
	}
}

func toProjectResponses(projects []domain.Project) []projectResponse {
	out := make([]projectResponse, 0, len(projects))
	for i := range projects {
		out = append(out, toProjectResponse(&projects[i]))
	}
	return out
}

type memberResponse struct {
	UserID            string            `json:"userId"`
	ProjectID         string            `json:"projectId"`
	Role              domain.MemberRole `json:"role"`
	Name              string            `json:"name"`
	Email             string            `json:"email"`
	ProfilePictureURL string            `json:"profilePictureUrl"`
}

func toMemberResponse(m *domain.ProjectMember) memberResponse {
	return memberResponse{
		UserID:            m.UserID,
		ProjectID:         m.ProjectID,
		Role:              m.Role,
		Name:              m.Name,
		Email:             m.Email,
		ProfilePictureURL: m.ProfilePictureURL,
	}
}

func toMemberResponses(members []domain.ProjectMember) []memberResponse {
	out := make([]memberResponse, 0, len(members))
	for i := range members {
		out = append(out, toMemberResponse(&members[i]))
	}
	return out
}

type fileResponse struct {
	ID          string    `json:"id"`
	ProjectID   string    `json:"projectId"`
	TaskID      string    `json:"taskId,omitempty"`
	Name        string    `json:"name"`
	URL         string    `json:"url"`
	Size        int64     `json:"size"`
	ContentType string    `json:"contentType"`
	UploadedBy  string    `json:"uploadedBy"`
	CreatedAt   time.Time `json:"createdAt"`
}

func toFileResponse(f *domain.File) fileResponse {
	return fileResponse{
		ID:          f.ID,
		ProjectID:   f.ProjectID,
		TaskID:      f.TaskID,
		Name:        f.Name,
		URL:         f.URL,
		Size:        f.Size,
		ContentType: f.ContentType,
		UploadedBy:  f.UploadedBy,
		CreatedAt:   f.CreatedAt,
	}
}

func toFileResponses(files []domain.File) []fileResponse {
	out := make([]fileResponse, 0, len(files))
	for i := range files {
		out = append(out, toFileResponse(&files[i]))
	}
	return out
}

type messageResponse struct {
	ID                      string    `json:"id"`
	ProjectID               string    `json:"projectId"`
	UserID                  string    `json:"userId"`
	Body                    string    `json:"body"`
	CreatedAt               time.Time `json:"createdAt"`
	AuthorName              string    `json:"authorName"`
	AuthorProfilePictureURL string    `json:"authorProfilePictureUrl"`
}

func toMessageResponse(m *domain.Message) messageResponse {
	return messageResponse{
		ID:                      m.ID,
		ProjectID:               m.ProjectID,
		UserID:                  m.UserID,
		Body:                    m.Body,
		CreatedAt:               m.CreatedAt,
		AuthorName:              m.AuthorName,
		AuthorProfilePictureURL: m.AuthorProfilePictureURL,
	}
}

func toMessageResponses(messages []domain.Message) []messageResponse {
	out := make([]messageResponse, 0, len(messages))
	for i := range messages {
		out = append(out, toMessageResponse(&messages[i]))
	}
	return out
}
