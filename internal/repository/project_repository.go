package repository

import (
	"math"

	"github.com/soundcollective/collective-api/internal/database"
	"github.com/soundcollective/collective-api/internal/models"
	"github.com/soundcollective/collective-api/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormProjectRepository is a GORM implementation of ProjectRepository
type GormProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &GormProjectRepository{db: db}
}

// CreateWithChildren creates a project together with its initial members,
// tasks, and resources atomically.
func (r *GormProjectRepository) CreateWithChildren(project *models.Project, members []models.ProjectMember, tasks []models.Task, resources []models.Resource) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(project).Error; err != nil {
			return err
		}

		for i := range members {
			members[i].ProjectID = project.ID
		}
		if len(members) > 0 {
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&members).Error; err != nil {
				return err
			}
		}

		for i := range tasks {
			tasks[i].ProjectID = project.ID
		}
		if len(tasks) > 0 {
			if err := tx.Create(&tasks).Error; err != nil {
				return err
			}
		}

		for i := range resources {
			resources[i].ProjectID = project.ID
		}
		if len(resources) > 0 {
			if err := tx.Create(&resources).Error; err != nil {
				return err
			}
		}

		return recalcAggregates(tx, project.ID)
	})
}

// FindByID finds a project by ID with optional preloading
func (r *GormProjectRepository) FindByID(id uint64, preload ...string) (*models.Project, error) {
	var project models.Project
	query := r.db
	for _, p := range preload {
		query = query.Preload(p)
	}
	if err := query.First(&project, id).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// ListForUser lists projects the user belongs to, with team, tasks, and
// resources attached.
func (r *GormProjectRepository) ListForUser(userID uint64) ([]models.Project, error) {
	var projectIDs []uint64
	if err := r.db.Model(&models.ProjectMember{}).
		Where("user_id = ?", userID).
		Pluck("project_id", &projectIDs).Error; err != nil {
		return nil, err
	}
	if len(projectIDs) == 0 {
		return []models.Project{}, nil
	}

	var projects []models.Project
	err := r.db.
		Preload("Members").
		Preload("Members.User").
		Preload("Tasks").
		Preload("Tasks.Assignments.User").
		Preload("Resources").
		Where("id IN ?", projectIDs).
		Order("created_at DESC").
		Find(&projects).Error
	return projects, err
}

// UpdateWithChildren persists changed project fields and, when a child slice
// is non-nil, swaps the entire task or resource set. Everything, including the
// aggregate recompute, commits in one transaction.
func (r *GormProjectRepository) UpdateWithChildren(project *models.Project, tasks *[]models.Task, resources *[]models.Resource) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(project).Error; err != nil {
			return err
		}
		if tasks != nil {
			if err := replaceProjectTasks(tx, project.ID, *tasks); err != nil {
				return err
			}
		}
		if resources != nil {
			if err := replaceProjectResources(tx, project.ID, *resources); err != nil {
				return err
			}
		}
		return recalcAggregates(tx, project.ID)
	})
}

// replaceProjectTasks swaps the project's entire task set. Existing tasks and
// their assignments are removed first; activity rows drop their references.
func replaceProjectTasks(tx *gorm.DB, projectID uint64, tasks []models.Task) error {
	var taskIDs []uint64
	if err := tx.Model(&models.Task{}).Where("project_id = ?", projectID).Pluck("id", &taskIDs).Error; err != nil {
		return err
	}
	if len(taskIDs) > 0 {
		if err := tx.Where("task_id IN ?", taskIDs).Delete(&models.TaskAssignment{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.ProjectActivity{}).Where("task_id IN ?", taskIDs).Update("task_id", nil).Error; err != nil {
			return err
		}
	}
	if err := tx.Where("project_id = ?", projectID).Delete(&models.Task{}).Error; err != nil {
		return err
	}

	for i := range tasks {
		tasks[i].ID = 0
		tasks[i].ProjectID = projectID
	}
	if len(tasks) > 0 {
		if err := tx.Create(&tasks).Error; err != nil {
			return err
		}
	}
	return nil
}

// replaceProjectResources swaps the project's entire resource set.
func replaceProjectResources(tx *gorm.DB, projectID uint64, resources []models.Resource) error {
	var resourceIDs []uint64
	if err := tx.Model(&models.Resource{}).Where("project_id = ?", projectID).Pluck("id", &resourceIDs).Error; err != nil {
		return err
	}
	if len(resourceIDs) > 0 {
		if err := tx.Model(&models.ProjectActivity{}).Where("resource_id IN ?", resourceIDs).Update("resource_id", nil).Error; err != nil {
			return err
		}
	}
	if err := tx.Where("project_id = ?", projectID).Delete(&models.Resource{}).Error; err != nil {
		return err
	}

	for i := range resources {
		resources[i].ID = 0
		resources[i].ProjectID = projectID
	}
	if len(resources) > 0 {
		if err := tx.Create(&resources).Error; err != nil {
			return err
		}
	}
	return nil
}

// Delete removes the project and everything it owns. Order matters: child
// rows referencing task/resource ids go first, the project row last.
func (r *GormProjectRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var taskIDs []uint64
		if err := tx.Model(&models.Task{}).Where("project_id = ?", id).Pluck("id", &taskIDs).Error; err != nil {
			return err
		}

		if err := tx.Where("project_id = ?", id).Delete(&models.ProjectActivity{}).Error; err != nil {
			return err
		}
		if len(taskIDs) > 0 {
			if err := tx.Where("task_id IN ?", taskIDs).Delete(&models.TaskAssignment{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("project_id = ?", id).Delete(&models.ChatMessage{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", id).Delete(&models.ProjectMember{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", id).Delete(&models.Task{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", id).Delete(&models.Resource{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Project{}, id).Error
	})
}

// CreateTask creates a task and recomputes the parent aggregates.
func (r *GormProjectRepository) CreateTask(task *models.Task) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(task).Error; err != nil {
			return err
		}
		return recalcAggregates(tx, task.ProjectID)
	})
}

// FindTaskByID finds a task by ID with optional preloading
func (r *GormProjectRepository) FindTaskByID(id uint64, preload ...string) (*models.Task, error) {
	var task models.Task
	query := r.db
	for _, p := range preload {
		query = query.Preload(p)
	}
	if err := query.First(&task, id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// UpdateTask saves the task and recomputes the parent aggregates.
func (r *GormProjectRepository) UpdateTask(task *models.Task) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(task).Error; err != nil {
			return err
		}
		return recalcAggregates(tx, task.ProjectID)
	})
}

// DeleteTask removes the task, its assignments, and its aggregate
// contribution; activity rows keep their text but drop the reference.
func (r *GormProjectRepository) DeleteTask(task *models.Task) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", task.ID).Delete(&models.TaskAssignment{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.ProjectActivity{}).Where("task_id = ?", task.ID).Update("task_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Delete(task).Error; err != nil {
			return err
		}
		return recalcAggregates(tx, task.ProjectID)
	})
}

// SetTaskAssignees replaces the task's assignee set.
func (r *GormProjectRepository) SetTaskAssignees(taskID uint64, userIDs []uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", taskID).Delete(&models.TaskAssignment{}).Error; err != nil {
			return err
		}
		if len(userIDs) == 0 {
			return nil
		}
		assignments := make([]models.TaskAssignment, 0, len(userIDs))
		for _, uid := range userIDs {
			assignments = append(assignments, models.TaskAssignment{TaskID: taskID, UserID: uid})
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&assignments).Error
	})
}

// CreateResource creates a resource row
func (r *GormProjectRepository) CreateResource(resource *models.Resource) error {
	return r.db.Create(resource).Error
}

// FindResourceByID finds a resource by ID
func (r *GormProjectRepository) FindResourceByID(id uint64) (*models.Resource, error) {
	var resource models.Resource
	if err := r.db.First(&resource, id).Error; err != nil {
		return nil, err
	}
	return &resource, nil
}

// DeleteResource removes the resource; activity rows drop the reference.
func (r *GormProjectRepository) DeleteResource(resource *models.Resource) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.ProjectActivity{}).Where("resource_id = ?", resource.ID).Update("resource_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(resource).Error
	})
}

// ListResources returns all resources across projects; per-project filtering
// is the caller's concern.
func (r *GormProjectRepository) ListResources() ([]models.Resource, error) {
	var resources []models.Resource
	err := r.db.Order("updated_at DESC").Find(&resources).Error
	return resources, err
}

// LogActivity appends an activity row
func (r *GormProjectRepository) LogActivity(activity *models.ProjectActivity) error {
	return r.db.Create(activity).Error
}

// ListActivities returns the project's activity log, newest first
func (r *GormProjectRepository) ListActivities(projectID uint64, params utils.PaginationParams) ([]models.ProjectActivity, int64, error) {
	var total int64
	query := r.db.Model(&models.ProjectActivity{}).Where("project_id = ?", projectID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var activities []models.ProjectActivity
	err := query.
		Preload("Actor").
		Order("created_at DESC").
		Scopes(database.Paginate(params)).
		Find(&activities).Error
	return activities, total, err
}

// FindMember finds a specific project member
func (r *GormProjectRepository) FindMember(projectID, userID uint64) (*models.ProjectMember, error) {
	var member models.ProjectMember
	if err := r.db.Where("project_id = ? AND user_id = ?", projectID, userID).First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// AddMember adds a member to a project
func (r *GormProjectRepository) AddMember(member *models.ProjectMember) error {
	return r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(member).Error
}

// UpdateMemberRole updates a member's role
func (r *GormProjectRepository) UpdateMemberRole(projectID, userID uint64, role models.ProjectRole) error {
	return r.db.Model(&models.ProjectMember{}).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Update("role", role).Error
}

// RemoveMember removes a member from a project
func (r *GormProjectRepository) RemoveMember(projectID, userID uint64) error {
	return r.db.Where("project_id = ? AND user_id = ?", projectID, userID).
		Delete(&models.ProjectMember{}).Error
}

// ListMembers lists all members of a project
func (r *GormProjectRepository) ListMembers(projectID uint64) ([]models.ProjectMember, error) {
	var members []models.ProjectMember
	err := r.db.Preload("User").Where("project_id = ?", projectID).Find(&members).Error
	return members, err
}

// ListMembersByRole lists members of a project holding the given role
func (r *GormProjectRepository) ListMembersByRole(projectID uint64, role models.ProjectRole) ([]models.ProjectMember, error) {
	var members []models.ProjectMember
	err := r.db.Preload("User").
		Where("project_id = ? AND role = ?", projectID, role).
		Find(&members).Error
	return members, err
}

// CountAdmins counts the project's admins
func (r *GormProjectRepository) CountAdmins(projectID uint64) (int64, error) {
	var count int64
	err := r.db.Model(&models.ProjectMember{}).
		Where("project_id = ? AND role = ?", projectID, models.RoleAdmin).
		Count(&count).Error
	return count, err
}

// CreateChatMessage appends a chat message
func (r *GormProjectRepository) CreateChatMessage(msg *models.ChatMessage) error {
	return r.db.Create(msg).Error
}

// ListChatMessages returns the project's chat, newest first
func (r *GormProjectRepository) ListChatMessages(projectID uint64, params utils.PaginationParams) ([]models.ChatMessage, int64, error) {
	var total int64
	query := r.db.Model(&models.ChatMessage{}).Where("project_id = ?", projectID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var messages []models.ChatMessage
	err := query.
		Preload("User").
		Order("created_at DESC").
		Scopes(database.Paginate(params)).
		Find(&messages).Error
	return messages, total, err
}

// recalcAggregates rewrites the project's derived task counters and progress
// from the live task rows. Must run inside the same transaction as the task
// mutation that invalidated them.
func recalcAggregates(tx *gorm.DB, projectID uint64) error {
	var total, completed int64
	if err := tx.Model(&models.Task{}).Where("project_id = ?", projectID).Count(&total).Error; err != nil {
		return err
	}
	if err := tx.Model(&models.Task{}).
		Where("project_id = ? AND status = ?", projectID, models.TaskStatusCompleted).
		Count(&completed).Error; err != nil {
		return err
	}

	progress := 0
	if total > 0 {
		progress = int(math.Round(float64(completed) / float64(total) * 100))
	}

	return tx.Model(&models.Project{}).Where("id = ?", projectID).Updates(map[string]interface{}{
		"total_tasks":     total,
		"completed_tasks": completed,
		"progress":        progress,
	}).Error
}
