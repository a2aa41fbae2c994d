package http

import (
	"log"

	"github.com/gin-gonic/gin"

	"github.com/jobdesk/jobdesk/internal/auth"
	"github.com/jobdesk/jobdesk/internal/entities"
)

// UserStore is the slice of the users repository the controller needs.
type UserStore interface {
	List() ([]entities.User, error)
	GetByID(id uint) (*entities.User, error)
	Delete(id uint) error
}

// UsersController handles the user account endpoints.
type UsersController struct {
	users   UserStore
	auditor auth.Auditor
}

func NewUsersController(users UserStore, auditor auth.Auditor) *UsersController {
	return &UsersController{users: users, auditor: auditor}
}

// ListUsers handles GET /api/users. Admin only.
func (uc *UsersController) ListUsers(c *gin.Context) {
	users, err := uc.users.List()
	if err != nil {
		respondInternalError(c, err, "list users")
		return
	}
	c.JSON(200, users)
}

// Profile handles GET /api/users/profile, returning the caller's account.
func (uc *UsersController) Profile(c *gin.Context) {
	identity, ok := auth.CurrentIdentity(c)
	if !ok {
		respondForbidden(c, "authentication required")
		return
	}

	user, err := uc.users.GetByID(identity.ID)
	if err != nil {
		respondInternalError(c, err, "load profile")
		return
	}
	if user == nil {
		respondNotFound(c, "user")
		return
	}

	c.JSON(200, user)
}

// DeleteUser handles DELETE /api/users/:id. The ownership gate runs before
// this handler, so the target is always the caller's own account.
func (uc *UsersController) DeleteUser(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	user, err := uc.users.GetByID(id)
	if err != nil {
		respondInternalError(c, err, "load user")
		return
	}
	if user == nil {
		respondNotFound(c, "user")
		return
	}

	if err := uc.users.Delete(id); err != nil {
		respondInternalError(c, err, "delete user")
		return
	}

	uc.logUserEvent(id, "user_delete", c.ClientIP())
	respondSuccess(c, "user deleted successfully")
}

func (uc *UsersController) logUserEvent(userID uint, action string, ip string) {
	if uc.auditor == nil {
		return
	}
	event := &entities.AuditEvent{
		UserID:    userID,
		EventType: entities.AuditEventUser,
		Action:    action,
		IPAddress: ip,
		Status:    entities.AuditStatusSuccess,
	}
	if err := uc.auditor.LogEvent(event); err != nil {
		log.Printf("Failed to record audit event: %v", err)
	}
}
