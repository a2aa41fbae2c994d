package http

import (
	"errors"
	"log"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jobdesk/jobdesk/internal/auth"
	"github.com/jobdesk/jobdesk/internal/entities"
	"github.com/jobdesk/jobdesk/internal/uploads"
)

// JobStore is the slice of the jobs repository the controller needs.
type JobStore interface {
	List() ([]entities.Job, error)
	GetByID(id uint) (*entities.Job, error)
	Create(job *entities.Job) error
	Delete(id uint) error
}

// ApplicationStore records and lists job applications.
type ApplicationStore interface {
	Apply(userID, jobID uint) error
	ListJobIDs(userID uint) ([]uint, error)
}

// JobsController handles the job-posting endpoints.
type JobsController struct {
	jobs         JobStore
	applications ApplicationStore
	images       *uploads.Store
	auditor      auth.Auditor
}

func NewJobsController(jobs JobStore, applications ApplicationStore, images *uploads.Store, auditor auth.Auditor) *JobsController {
	return &JobsController{
		jobs:         jobs,
		applications: applications,
		images:       images,
		auditor:      auditor,
	}
}

// ListJobs handles GET /api/jobs.
func (jc *JobsController) ListJobs(c *gin.Context) {
	jobs, err := jc.jobs.List()
	if err != nil {
		respondInternalError(c, err, "list jobs")
		return
	}
	c.JSON(200, jobs)
}

// CreateJob handles POST /api/jobs. Multipart form with title, description,
// company, salary, active and an optional image file. Admin only; the
// posting's owner is the caller.
func (jc *JobsController) CreateJob(c *gin.Context) {
	identity, ok := auth.CurrentIdentity(c)
	if !ok {
		respondForbidden(c, "authentication required")
		return
	}

	title := c.PostForm("title")
	description := c.PostForm("description")
	company := c.PostForm("company")
	if title == "" || description == "" || company == "" {
		respondBadRequest(c, "title, description and company are required")
		return
	}

	salary, err := strconv.Atoi(c.PostForm("salary"))
	if err != nil {
		respondBadRequest(c, "salary must be an integer")
		return
	}

	active := true
	if v := c.PostForm("active"); v != "" {
		active, err = strconv.ParseBool(v)
		if err != nil {
			respondBadRequest(c, "active must be a boolean")
			return
		}
	}

	var imagePath string
	if fh, err := c.FormFile("image"); err == nil {
		imagePath, err = jc.images.Save(fh)
		if err != nil {
			switch {
			case errors.Is(err, uploads.ErrFileTooLarge):
				respondBadRequest(c, "image exceeds the maximum upload size")
			case errors.Is(err, uploads.ErrUnsupportedType):
				respondBadRequest(c, "image must be a JPEG, PNG, GIF or WebP file")
			default:
				respondInternalError(c, err, "save job image")
			}
			return
		}
	}

	job := &entities.Job{
		Title:       title,
		Description: description,
		Company:     company,
		Salary:      salary,
		Active:      active,
		ImagePath:   imagePath,
		OwnerID:     identity.ID,
		PostedAt:    time.Now(),
	}

	if err := jc.jobs.Create(job); err != nil {
		// The posting failed; don't strand the stored image.
		if imagePath != "" {
			if rmErr := jc.images.Remove(imagePath); rmErr != nil {
				log.Printf("Failed to remove image for failed posting: %v", rmErr)
			}
		}
		respondInternalError(c, err, "create job")
		return
	}

	jc.logJobEvent(identity.ID, "job_create", &job.ID, c.ClientIP())
	respondCreated(c, job)
}

// DeleteJob handles DELETE /api/jobs/:id. Only the posting's owner may
// delete it.
func (jc *JobsController) DeleteJob(c *gin.Context) {
	identity, ok := auth.CurrentIdentity(c)
	if !ok {
		respondForbidden(c, "authentication required")
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	job, err := jc.jobs.GetByID(id)
	if err != nil {
		respondInternalError(c, err, "load job")
		return
	}
	if job == nil {
		respondNotFound(c, "job")
		return
	}

	if !auth.IsOwner(identity, job.OwnerID) {
		respondForbidden(c, "job was not created by you")
		return
	}

	if err := jc.jobs.Delete(id); err != nil {
		respondInternalError(c, err, "delete job")
		return
	}

	// Best effort; the sweeper catches anything missed here.
	if job.ImagePath != "" {
		if err := jc.images.Remove(job.ImagePath); err != nil {
			log.Printf("Failed to remove image for deleted job %d: %v", id, err)
		}
	}

	jc.logJobEvent(identity.ID, "job_delete", &id, c.ClientIP())
	respondSuccess(c, "job deleted successfully")
}

// ApplyToJob handles POST /api/jobs/:id/apply.
func (jc *JobsController) ApplyToJob(c *gin.Context) {
	identity, ok := auth.CurrentIdentity(c)
	if !ok {
		respondForbidden(c, "authentication required")
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	job, err := jc.jobs.GetByID(id)
	if err != nil {
		respondInternalError(c, err, "load job")
		return
	}
	if job == nil {
		respondNotFound(c, "job")
		return
	}

	if err := jc.applications.Apply(identity.ID, id); err != nil {
		respondInternalError(c, err, "apply to job")
		return
	}

	c.JSON(201, SuccessResponse{Message: "successfully applied for the job"})
}

// ListAppliedJobs handles GET /api/jobs/applied.
func (jc *JobsController) ListAppliedJobs(c *gin.Context) {
	identity, ok := auth.CurrentIdentity(c)
	if !ok {
		respondForbidden(c, "authentication required")
		return
	}

	ids, err := jc.applications.ListJobIDs(identity.ID)
	if err != nil {
		respondInternalError(c, err, "list applied jobs")
		return
	}
	if ids == nil {
		ids = []uint{}
	}

	c.JSON(200, gin.H{"applied": ids})
}

func (jc *JobsController) logJobEvent(userID uint, action string, entityID *uint, ip string) {
	if jc.auditor == nil {
		return
	}
	event := &entities.AuditEvent{
		UserID:    userID,
		EventType: entities.AuditEventJob,
		Action:    action,
		EntityID:  entityID,
		IPAddress: ip,
		Status:    entities.AuditStatusSuccess,
	}
	if err := jc.auditor.LogEvent(event); err != nil {
		log.Printf("Failed to record audit event: %v", err)
	}
}
