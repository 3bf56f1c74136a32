package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"whisprdraw-backend/internal/middleware"
	"whisprdraw-backend/internal/models"
)

// ProjectService is the project API used by ProjectsHandler.
type ProjectService interface {
	ListProjects(ctx context.Context, token, userID string) ([]models.Project, error)
	CreateProject(ctx context.Context, token string, req models.CreateProjectRequest) (*models.Project, error)
	UpdateProject(ctx context.Context, token, projectID, userID string, req models.UpdateProjectRequest) (*models.Project, error)
	GenerateIcon(ctx context.Context, token string, req models.IconGenerationRequest) (*models.IconGenerationResponse, error)
}

type ProjectsHandler struct {
	service ProjectService
}

func NewProjectsHandler(service ProjectService) *ProjectsHandler {
	return &ProjectsHandler{service: service}
}

// ListProjects godoc
// @Summary     List a user's projects
// @Description Returns the user's projects, most recently updated first
// @Tags        projects
// @Produce     json
// @Security    Bearer
// @Param       user_id path string true "User ID (UUID)"
// @Success     200 {object} models.ProjectListResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /api/projects/{user_id} [get]
func (h *ProjectsHandler) ListProjects(c *gin.Context) {
	projects, err := h.service.ListProjects(c.Request.Context(), middleware.Token(c), c.Param("user_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if projects == nil {
		projects = []models.Project{}
	}

	c.JSON(http.StatusOK, models.ProjectListResponse{Projects: projects})
}

// CreateProject godoc
// @Summary     Create a project
// @Tags        projects
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.CreateProjectRequest true "Project"
// @Success     201 {object} models.Project
// @Failure     400 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /api/projects [post]
func (h *ProjectsHandler) CreateProject(c *gin.Context) {
	var req models.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequestBody(c, err)
		return
	}

	project, err := h.service.CreateProject(c.Request.Context(), middleware.Token(c), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, project)
}

// UpdateProject godoc
// @Summary     Update a project
// @Description Overwrites only the fields present in the body. The project must belong to user_id.
// @Tags        projects
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       project_id path string true "Project ID (UUID)"
// @Param       user_id query string true "Owner user ID (UUID)"
// @Param       request body models.UpdateProjectRequest true "Fields to update"
// @Success     200 {object} models.Project
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /api/projects/{project_id} [put]
func (h *ProjectsHandler) UpdateProject(c *gin.Context) {
	var req models.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequestBody(c, err)
		return
	}

	project, err := h.service.UpdateProject(c.Request.Context(), middleware.Token(c), c.Param("project_id"), c.Query("user_id"), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, project)
}

// GenerateIcon godoc
// @Summary     Render a project icon
// @Description Renders an icon from the prompt, or from a topic label derived from the project when the prompt is blank
// @Tags        projects
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.IconGenerationRequest true "Icon request"
// @Success     200 {object} models.IconGenerationResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /api/projects/generate-icon [post]
func (h *ProjectsHandler) GenerateIcon(c *gin.Context) {
	var req models.IconGenerationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequestBody(c, err)
		return
	}

	resp, err := h.service.GenerateIcon(c.Request.Context(), middleware.Token(c), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
