package services

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/soundcollective/collective-api/internal/models"
	"github.com/soundcollective/collective-api/internal/repository"
	"github.com/soundcollective/collective-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrProjectNotFound       = errors.New("project not found")
	ErrTaskNotFound          = errors.New("task not found")
	ErrResourceNotFound      = errors.New("resource not found")
	ErrProjectNameRequired   = errors.New("project name is required")
	ErrTaskTitleRequired     = errors.New("task title is required")
	ErrResourceTitleRequired = errors.New("resource title is required")
	ErrEditPermissionDenied  = errors.New("user does not have edit access to this resource")
	ErrInvalidAssignee       = errors.New("one or more users do not exist or are not project members")
	ErrAlreadyMember         = errors.New("user is already a member of this project")
	ErrMemberNotFound        = errors.New("project member not found")
	ErrLastAdmin             = errors.New("cannot remove the project's last admin")
)

// ProjectService handles project, task, and resource business logic.
type ProjectService struct {
	projectRepo repository.ProjectRepository
	userRepo    repository.UserRepository
	mailer      *Mailer
}

// NewProjectService creates a new ProjectService.
func NewProjectService(projectRepo repository.ProjectRepository, userRepo repository.UserRepository, mailer *Mailer) *ProjectService {
	return &ProjectService{
		projectRepo: projectRepo,
		userRepo:    userRepo,
		mailer:      mailer,
	}
}

// TaskInput describes a task supplied inline with a project create/update.
type TaskInput struct {
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Status      *models.TaskStatus `json:"status"`
	Priority    *models.Priority   `json:"priority"`
	Deadline    *time.Time         `json:"deadline"`
}

// ResourceInput describes a resource supplied inline with a project create/update.
type ResourceInput struct {
	Title       string `json:"title"`
	Type        string `json:"type"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

// CreateProjectInput represents parameters to create a new project.
type CreateProjectInput struct {
	Name          string
	Description   string
	Status        *models.ProjectStatus
	Priority      *models.Priority
	Deadline      *time.Time
	TeamMemberIDs []uint64
	Tasks         []TaskInput
	Resources     []ResourceInput
	CreatorID     uint64
}

// CreateProject creates a project with its initial team, tasks, and resources.
// The creator always ends up as an admin member.
func (s *ProjectService) CreateProject(input CreateProjectInput) (*models.Project, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrProjectNameRequired
	}
	for _, t := range input.Tasks {
		if strings.TrimSpace(t.Title) == "" {
			return nil, ErrTaskTitleRequired
		}
	}
	for _, res := range input.Resources {
		if strings.TrimSpace(res.Title) == "" {
			return nil, ErrResourceTitleRequired
		}
	}

	return s.createProject(input, false)
}

// SaveDraft creates a project tolerating missing names; the status is forced
// to draft and untitled placeholders fill the gaps.
func (s *ProjectService) SaveDraft(input CreateProjectInput) (*models.Project, error) {
	if strings.TrimSpace(input.Name) == "" {
		input.Name = "Untitled Project"
	}
	for i := range input.Tasks {
		if strings.TrimSpace(input.Tasks[i].Title) == "" {
			input.Tasks[i].Title = fmt.Sprintf("Untitled Task %d", i+1)
		}
	}
	for i := range input.Resources {
		if strings.TrimSpace(input.Resources[i].Title) == "" {
			input.Resources[i].Title = fmt.Sprintf("Untitled Resource %d", i+1)
		}
	}
	draft := models.ProjectStatusDraft
	input.Status = &draft

	return s.createProject(input, true)
}

func (s *ProjectService) createProject(input CreateProjectInput, draft bool) (*models.Project, error) {
	status := models.ProjectStatusPlanning
	if input.Status != nil {
		status = *input.Status
	}
	priority := models.PriorityMedium
	if input.Priority != nil {
		priority = *input.Priority
	}

	if len(input.TeamMemberIDs) > 0 {
		count, err := s.userRepo.CountByIDs(input.TeamMemberIDs)
		if err != nil {
			return nil, fmt.Errorf("failed to verify team members: %w", err)
		}
		if int(count) != len(input.TeamMemberIDs) {
			return nil, ErrInvalidAssignee
		}
	}

	project := &models.Project{
		Name:        input.Name,
		Description: input.Description,
		Status:      status,
		Priority:    priority,
		Deadline:    input.Deadline,
		CreatorID:   input.CreatorID,
	}

	now := time.Now()
	members := []models.ProjectMember{{
		UserID:   input.CreatorID,
		Role:     models.RoleAdmin,
		JoinedAt: now,
	}}
	for _, id := range input.TeamMemberIDs {
		if id == input.CreatorID {
			continue
		}
		members = append(members, models.ProjectMember{
			UserID:      id,
			Role:        models.RoleMember,
			InvitedByID: &input.CreatorID,
			JoinedAt:    now,
		})
	}

	tasks := make([]models.Task, 0, len(input.Tasks))
	for _, t := range input.Tasks {
		tasks = append(tasks, buildTask(t, input.CreatorID))
	}

	resources := make([]models.Resource, 0, len(input.Resources))
	for _, res := range input.Resources {
		resources = append(resources, models.Resource{
			Title:       res.Title,
			Type:        res.Type,
			URL:         res.URL,
			Description: res.Description,
			CreatorID:   input.CreatorID,
		})
	}

	if err := s.projectRepo.CreateWithChildren(project, members, tasks, resources); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	return s.GetProject(project.ID)
}

// ListProjects returns the user's projects with team, tasks, and resources.
func (s *ProjectService) ListProjects(userID uint64) ([]models.Project, error) {
	projects, err := s.projectRepo.ListForUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

// GetProject returns one project in the same shape, with task assignees
// resolved to profiles.
func (s *ProjectService) GetProject(id uint64) (*models.Project, error) {
	project, err := s.projectRepo.FindByID(id,
		"Creator", "Members", "Members.User",
		"Tasks", "Tasks.Assignments", "Tasks.Assignments.User",
		"Resources")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	return project, nil
}

// UpdateProjectInput represents a partial project update. Nil fields are left
// untouched; non-nil Tasks/Resources replace the entire child set.
type UpdateProjectInput struct {
	Name          *string
	Description   *string
	Status        *models.ProjectStatus
	Priority      *models.Priority
	Deadline      *time.Time
	ClearDeadline bool
	Tasks         *[]TaskInput
	Resources     *[]ResourceInput
}

// UpdateProject applies a partial update. Requires project edit access. Every
// input is validated before anything is written; the field update, child-set
// replacements, and aggregate recompute then commit together or not at all.
func (s *ProjectService) UpdateProject(projectID, actorID uint64, input UpdateProjectInput) (*models.Project, error) {
	project, err := s.projectRepo.FindByID(projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}

	if err := s.requireProjectEdit(project, actorID); err != nil {
		return nil, err
	}

	if input.Name != nil && strings.TrimSpace(*input.Name) == "" {
		return nil, ErrProjectNameRequired
	}

	var tasks *[]models.Task
	if input.Tasks != nil {
		built := make([]models.Task, 0, len(*input.Tasks))
		for _, t := range *input.Tasks {
			if strings.TrimSpace(t.Title) == "" {
				return nil, ErrTaskTitleRequired
			}
			built = append(built, buildTask(t, actorID))
		}
		tasks = &built
	}

	var resources *[]models.Resource
	if input.Resources != nil {
		built := make([]models.Resource, 0, len(*input.Resources))
		for _, res := range *input.Resources {
			if strings.TrimSpace(res.Title) == "" {
				return nil, ErrResourceTitleRequired
			}
			built = append(built, models.Resource{
				Title:       res.Title,
				Type:        res.Type,
				URL:         res.URL,
				Description: res.Description,
				CreatorID:   actorID,
			})
		}
		resources = &built
	}

	if input.Name != nil {
		project.Name = *input.Name
	}
	if input.Description != nil {
		project.Description = *input.Description
	}
	if input.Status != nil {
		project.Status = *input.Status
	}
	if input.Priority != nil {
		project.Priority = *input.Priority
	}
	if input.ClearDeadline {
		project.Deadline = nil
	} else if input.Deadline != nil {
		project.Deadline = input.Deadline
	}

	if err := s.projectRepo.UpdateWithChildren(project, tasks, resources); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	return s.GetProject(projectID)
}

// DeleteProject removes the project and all owned rows.
func (s *ProjectService) DeleteProject(projectID uint64) error {
	if _, err := s.projectRepo.FindByID(projectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("failed to find project: %w", err)
	}
	if err := s.projectRepo.Delete(projectID); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return nil
}

// CreateTaskInput represents input for creating a task in a project.
type CreateTaskInput struct {
	Title       string
	Description string
	Priority    *models.Priority
	Deadline    *time.Time
	AssigneeIDs []uint64
	ProjectID   uint64
	CreatorID   uint64
}

// CreateTask adds a task, recomputes aggregates, and logs the activity.
func (s *ProjectService) CreateTask(input CreateTaskInput) (*models.Task, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, ErrTaskTitleRequired
	}

	task := buildTask(TaskInput{
		Title:       input.Title,
		Description: input.Description,
		Priority:    input.Priority,
		Deadline:    input.Deadline,
	}, input.CreatorID)
	task.ProjectID = input.ProjectID

	if err := s.projectRepo.CreateTask(&task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	if len(input.AssigneeIDs) > 0 {
		if err := s.assignUsers(&task, input.AssigneeIDs); err != nil {
			return nil, err
		}
	}

	s.logActivity(input.ProjectID, input.CreatorID, models.ActivityTaskCreated,
		fmt.Sprintf("Task %q created", task.Title), &task.ID, nil)

	return s.projectRepo.FindTaskByID(task.ID, "Assignments", "Assignments.User")
}

// UpdateTaskInput represents a partial task update.
type UpdateTaskInput struct {
	Title         *string
	Description   *string
	Priority      *models.Priority
	Deadline      *time.Time
	ClearDeadline bool
}

// UpdateTask applies a partial update. Requires task edit access.
func (s *ProjectService) UpdateTask(task *models.Task, actorID uint64, input UpdateTaskInput) (*models.Task, error) {
	if err := s.requireTaskEdit(task, actorID); err != nil {
		return nil, err
	}

	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, ErrTaskTitleRequired
		}
		task.Title = *input.Title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Priority != nil {
		task.Priority = *input.Priority
	}
	if input.ClearDeadline {
		task.Deadline = nil
	} else if input.Deadline != nil {
		task.Deadline = input.Deadline
	}

	if err := s.projectRepo.UpdateTask(task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	return s.projectRepo.FindTaskByID(task.ID, "Assignments", "Assignments.User")
}

// UpdateTaskStatus moves the task through its lifecycle. CompletedAt is set
// exactly when the status becomes completed and cleared on any other status.
func (s *ProjectService) UpdateTaskStatus(task *models.Task, actorID uint64, status models.TaskStatus) (*models.Task, error) {
	if err := s.requireTaskEdit(task, actorID); err != nil {
		return nil, err
	}

	task.Status = status
	if status == models.TaskStatusCompleted {
		now := time.Now()
		task.CompletedAt = &now
	} else {
		task.CompletedAt = nil
	}

	if err := s.projectRepo.UpdateTask(task); err != nil {
		return nil, fmt.Errorf("failed to update task status: %w", err)
	}

	if status == models.TaskStatusCompleted {
		s.logActivity(task.ProjectID, actorID, models.ActivityTaskCompleted,
			fmt.Sprintf("Task %q completed", task.Title), &task.ID, nil)
	}

	return s.projectRepo.FindTaskByID(task.ID, "Assignments", "Assignments.User")
}

// UpdateTaskAssignment replaces the task's assignee set with the given users.
func (s *ProjectService) UpdateTaskAssignment(task *models.Task, actorID uint64, userIDs []uint64) (*models.Task, error) {
	if err := s.requireTaskEdit(task, actorID); err != nil {
		return nil, err
	}
	if err := s.assignUsers(task, userIDs); err != nil {
		return nil, err
	}
	return s.projectRepo.FindTaskByID(task.ID, "Assignments", "Assignments.User")
}

func (s *ProjectService) assignUsers(task *models.Task, userIDs []uint64) error {
	for _, uid := range userIDs {
		if _, err := s.projectRepo.FindMember(task.ProjectID, uid); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInvalidAssignee
			}
			return fmt.Errorf("failed to verify assignee: %w", err)
		}
	}

	if err := s.projectRepo.SetTaskAssignees(task.ID, userIDs); err != nil {
		return fmt.Errorf("failed to assign users: %w", err)
	}

	for _, uid := range userIDs {
		s.notify(uid, models.NotificationAssignment,
			fmt.Sprintf("You were assigned to task %q", task.Title))
	}
	return nil
}

// DeleteTask removes a task. Requires task edit access.
func (s *ProjectService) DeleteTask(task *models.Task, actorID uint64) error {
	if err := s.requireTaskEdit(task, actorID); err != nil {
		return err
	}
	if err := s.projectRepo.DeleteTask(task); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	s.logActivity(task.ProjectID, actorID, models.ActivityTaskDeleted,
		fmt.Sprintf("Task %q deleted", task.Title), nil, nil)
	return nil
}

// CreateResourceInput represents input for creating a resource.
type CreateResourceInput struct {
	Title       string
	Type        string
	URL         string
	Description string
	ProjectID   uint64
	CreatorID   uint64
}

// CreateResource adds a resource and logs the activity.
func (s *ProjectService) CreateResource(input CreateResourceInput) (*models.Resource, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, ErrResourceTitleRequired
	}

	resource := &models.Resource{
		Title:       input.Title,
		Type:        input.Type,
		URL:         input.URL,
		Description: input.Description,
		ProjectID:   input.ProjectID,
		CreatorID:   input.CreatorID,
	}
	if err := s.projectRepo.CreateResource(resource); err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	s.logActivity(input.ProjectID, input.CreatorID, models.ActivityResourceAdded,
		fmt.Sprintf("Resource %q added", resource.Title), nil, &resource.ID)

	return resource, nil
}

// DeleteResource removes a resource. Requires resource edit access.
func (s *ProjectService) DeleteResource(resourceID, actorID uint64) error {
	resource, err := s.projectRepo.FindResourceByID(resourceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrResourceNotFound
		}
		return fmt.Errorf("failed to find resource: %w", err)
	}

	if err := s.requireResourceEdit(resource, actorID); err != nil {
		return err
	}

	if err := s.projectRepo.DeleteResource(resource); err != nil {
		return fmt.Errorf("failed to delete resource: %w", err)
	}
	s.logActivity(resource.ProjectID, actorID, models.ActivityResourceRemoved,
		fmt.Sprintf("Resource %q removed", resource.Title), nil, nil)
	return nil
}

// ListResources returns every resource row across projects.
func (s *ProjectService) ListResources() ([]models.Resource, error) {
	return s.projectRepo.ListResources()
}

// LogActivity appends a caller-supplied activity entry. Requires project edit
// access.
func (s *ProjectService) LogActivity(projectID, actorID uint64, description string) (*models.ProjectActivity, error) {
	project, err := s.projectRepo.FindByID(projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	if err := s.requireProjectEdit(project, actorID); err != nil {
		return nil, err
	}

	activity := &models.ProjectActivity{
		ProjectID:   projectID,
		Type:        models.ActivityNote,
		Description: description,
		ActorID:     actorID,
	}
	if err := s.projectRepo.LogActivity(activity); err != nil {
		return nil, fmt.Errorf("failed to log activity: %w", err)
	}
	return activity, nil
}

// ListActivities returns the project's activity log.
func (s *ProjectService) ListActivities(projectID uint64, params utils.PaginationParams) ([]models.ProjectActivity, int64, error) {
	return s.projectRepo.ListActivities(projectID, params)
}

// InviteToProject adds a user to the project team and notifies them.
func (s *ProjectService) InviteToProject(projectID, inviterID, userID uint64, role models.ProjectRole) (*models.ProjectMember, error) {
	project, err := s.projectRepo.FindByID(projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidAssignee
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if _, err := s.projectRepo.FindMember(projectID, userID); err == nil {
		return nil, ErrAlreadyMember
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}

	if role != models.RoleAdmin {
		role = models.RoleMember
	}
	member := &models.ProjectMember{
		ProjectID:   projectID,
		UserID:      userID,
		Role:        role,
		InvitedByID: &inviterID,
		JoinedAt:    time.Now(),
	}
	if err := s.projectRepo.AddMember(member); err != nil {
		return nil, fmt.Errorf("failed to add member: %w", err)
	}

	s.logActivity(projectID, inviterID, models.ActivityMemberJoined,
		fmt.Sprintf("%s joined the project", user.Name), nil, nil)
	s.notify(userID, models.NotificationInvite,
		fmt.Sprintf("You were added to project %q", project.Name))

	// Mail is best-effort; membership stands even when delivery fails.
	if s.mailer != nil && user.Email != "" {
		if err := s.mailer.SendProjectInvite(user.Email, user.Name, project.Name, utils.GenerateInviteToken()); err != nil {
			log.Printf("invite mail to %s failed: %v", user.Email, err)
		}
	}

	return member, nil
}

// UpdateProjectRole changes a member's role.
func (s *ProjectService) UpdateProjectRole(projectID, userID uint64, role models.ProjectRole) error {
	member, err := s.projectRepo.FindMember(projectID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMemberNotFound
		}
		return fmt.Errorf("failed to find member: %w", err)
	}

	// Demoting the last admin would strand the project.
	if member.Role == models.RoleAdmin && role != models.RoleAdmin {
		admins, err := s.projectRepo.CountAdmins(projectID)
		if err != nil {
			return fmt.Errorf("failed to count admins: %w", err)
		}
		if admins <= 1 {
			return ErrLastAdmin
		}
	}

	return s.projectRepo.UpdateMemberRole(projectID, userID, role)
}

// RemoveFromProject removes a member from the project team.
func (s *ProjectService) RemoveFromProject(projectID, userID uint64) error {
	member, err := s.projectRepo.FindMember(projectID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMemberNotFound
		}
		return fmt.Errorf("failed to find member: %w", err)
	}

	if member.Role == models.RoleAdmin {
		admins, err := s.projectRepo.CountAdmins(projectID)
		if err != nil {
			return fmt.Errorf("failed to count admins: %w", err)
		}
		if admins <= 1 {
			return ErrLastAdmin
		}
	}

	return s.projectRepo.RemoveMember(projectID, userID)
}

// ListMembers returns all members of a project.
func (s *ProjectService) ListMembers(projectID uint64) ([]models.ProjectMember, error) {
	return s.projectRepo.ListMembers(projectID)
}

// ListMembersByRole returns members holding a role.
func (s *ProjectService) ListMembersByRole(projectID uint64, role models.ProjectRole) ([]models.ProjectMember, error) {
	return s.projectRepo.ListMembersByRole(projectID, role)
}

// PostChatMessage appends a message to the project chat.
func (s *ProjectService) PostChatMessage(projectID, userID uint64, content string) (*models.ChatMessage, error) {
	if strings.TrimSpace(content) == "" {
		return nil, errors.New("message content is required")
	}
	msg := &models.ChatMessage{ProjectID: projectID, UserID: userID, Content: content}
	if err := s.projectRepo.CreateChatMessage(msg); err != nil {
		return nil, fmt.Errorf("failed to post message: %w", err)
	}
	return msg, nil
}

// ListChatMessages returns the project chat, newest first.
func (s *ProjectService) ListChatMessages(projectID uint64, params utils.PaginationParams) ([]models.ChatMessage, int64, error) {
	return s.projectRepo.ListChatMessages(projectID, params)
}

// requireProjectEdit allows project admins and the project creator.
func (s *ProjectService) requireProjectEdit(project *models.Project, userID uint64) error {
	if project.CreatorID == userID {
		return nil
	}
	return s.requireAdmin(project.ID, userID)
}

// requireTaskEdit allows project admins and the task creator.
func (s *ProjectService) requireTaskEdit(task *models.Task, userID uint64) error {
	if task.CreatorID == userID {
		return nil
	}
	return s.requireAdmin(task.ProjectID, userID)
}

// requireResourceEdit allows project admins and the resource creator.
func (s *ProjectService) requireResourceEdit(resource *models.Resource, userID uint64) error {
	if resource.CreatorID == userID {
		return nil
	}
	return s.requireAdmin(resource.ProjectID, userID)
}

func (s *ProjectService) requireAdmin(projectID, userID uint64) error {
	member, err := s.projectRepo.FindMember(projectID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEditPermissionDenied
		}
		return fmt.Errorf("failed to check membership: %w", err)
	}
	if member.Role != models.RoleAdmin {
		return ErrEditPermissionDenied
	}
	return nil
}

// logActivity records a system-generated activity entry. Log failures are not
// allowed to fail the mutation they describe.
func (s *ProjectService) logActivity(projectID, actorID uint64, typ models.ActivityType, description string, taskID, resourceID *uint64) {
	activity := &models.ProjectActivity{
		ProjectID:   projectID,
		Type:        typ,
		Description: description,
		TaskID:      taskID,
		ResourceID:  resourceID,
		ActorID:     actorID,
	}
	if err := s.projectRepo.LogActivity(activity); err != nil {
		log.Printf("failed to log activity for project %d: %v", projectID, err)
	}
}

func (s *ProjectService) notify(userID uint64, typ models.NotificationType, message string) {
	n := &models.Notification{UserID: userID, Type: typ, Message: message}
	if err := s.userRepo.CreateNotification(n); err != nil {
		log.Printf("failed to create notification for user %d: %v", userID, err)
	}
}

func buildTask(t TaskInput, creatorID uint64) models.Task {
	status := models.TaskStatusPending
	if t.Status != nil {
		status = *t.Status
	}
	priority := models.PriorityMedium
	if t.Priority != nil {
		priority = *t.Priority
	}
	task := models.Task{
		Title:       t.Title,
		Description: t.Description,
		Status:      status,
		Priority:    priority,
		Deadline:    t.Deadline,
		CreatorID:   creatorID,
	}
	if status == models.TaskStatusCompleted {
		now := time.Now()
		task.CompletedAt = &now
	}
	return task
}
