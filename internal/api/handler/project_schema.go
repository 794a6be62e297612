package handler

import (
	"time"

	"github.com/crewboard/crewboard-api/internal/core/domain"
	"github.com/crewboard/crewboard-api/internal/core/ports"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Request types ---

type createProjectRequest struct {
	Title       string `json:"title"       validate:"required,min=1,max=200"`
	Description string `json:"description" validate:"max=2000"`
}

type updateProjectRequest struct {
	Title       *string `json:"title"       validate:"omitempty,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
}

type inviteMemberRequest struct {
	Email   string `json:"email"   validate:"required,email"`
	Message string `json:"message" validate:"max=500"`
}

type addCommentRequest struct {
	Text string `json:"text" validate:"required,min=1,max=2000"`
}

// Response-only types owned by the transport layer.
// These are intentionally separate from ports/domain types so the JSON
// contract is not coupled to internal service changes.

type userSummaryResponse struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Avatar string `json:"avatar,omitempty"`
}

type projectStatsResponse struct {
	TotalTasks int `json:"total_tasks"`
	DoneTasks  int `json:"done_tasks"`
	Progress   int `json:"progress"`
}

type projectResponse struct {
	ID          string                `json:"id"`
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Owner       userSummaryResponse   `json:"owner"`
	Members     []userSummaryResponse `json:"members"`
	Stats       projectStatsResponse  `json:"stats"`
	CreatedAt   time.Time             `json:"created_at"`
}

type commentResponse struct {
	ID        string              `json:"id"`
	Text      string              `json:"text"`
	Author    userSummaryResponse `json:"author"`
	CreatedAt time.Time           `json:"created_at"`
}

func toUserSummary(u *domain.User) userSummaryResponse {
	if u == nil {
		return userSummaryResponse{}
	}
	return userSummaryResponse{
		ID:     u.ID,
		Name:   u.Name,
		Email:  u.Email,
		Role:   string(u.Role),
		Avatar: u.Avatar,
	}
}

func toProjectResponse(v *ports.ProjectView) projectResponse {
	members := make([]userSummaryResponse, 0, len(v.Members))
	for _, m := range v.Members {
		members = append(members, toUserSummary(m))
	}
	return projectResponse{
		ID:          v.Project.ID,
		Title:       v.Project.Title,
		Description: v.Project.Description,
		Owner:       toUserSummary(v.Owner),
		Members:     members,
		Stats: projectStatsResponse{
			TotalTasks: v.Stats.TotalTasks,
			DoneTasks:  v.Stats.DoneTasks,
			Progress:   v.Stats.Progress,
		},
		CreatedAt: v.Project.CreatedAt,
	}
}

func toCommentResponse(v *ports.CommentView) commentResponse {
	return commentResponse{
		ID:        v.Comment.ID,
		Text:      v.Comment.Text,
		Author:    toUserSummary(v.Author),
		CreatedAt: v.Comment.CreatedAt,
	}
}

func toCommentResponses(views []*ports.CommentView) []commentResponse {
	out := make([]commentResponse, 0, len(views))
	for _, v := range views {
		out = append(out, toCommentResponse(v))
	}
	return out
}
