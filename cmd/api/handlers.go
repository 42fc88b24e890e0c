package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"hris/internal/auth"
	"hris/internal/certificate"
	"hris/internal/cloudinary"
	"hris/internal/config"
	"hris/internal/employee"
	"hris/internal/importer"
	"hris/internal/recruit"
	"hris/internal/training"
)

type handlers struct {
	cfg       config.App
	employees *employee.Repository
	trainings *training.Service
	certs     *certificate.Service
	certRepo  *certificate.Repository
	recruits  *recruit.Repository
	importer  *importer.Service
	cdn       *cloudinary.Client
}

func (h *handlers) login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ident, err := h.employees.IdentityByEmail(c.Request.Context(), req.Email)
	if err != nil {
		// Same answer for unknown email and wrong password.
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(ident.PasswordHash), []byte(req.Password)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	tokens, err := auth.Issue(ident.ID, ident.Role, ident.Email, h.cfg.JWTIssuer, h.cfg.JWTSigningKey, h.cfg.AccessTTL, h.cfg.RefreshTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token issue failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"access_token":  tokens.AccessToken,
		"refresh_token": tokens.RefreshToken,
		"expires_at":    tokens.AccessExp.Unix(),
		"role":          ident.Role,
	})
}

// upload stores a base64 image or multipart file and returns its public URL.
func (h *handlers) upload(c *gin.Context) {
	if h.cdn == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "image storage not configured"})
		return
	}

	var result *cloudinary.UploadResult
	var err error
	switch {
	case strings.Contains(c.ContentType(), "multipart/form-data"):
		file, header, ferr := c.Request.FormFile("file")
		if ferr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file field required"})
			return
		}
		defer file.Close()
		data, ferr := io.ReadAll(file)
		if ferr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "read file failed"})
			return
		}
		result, err = h.cdn.UploadBytes(data, header.Filename)
	default:
		var body struct {
			Data string `json:"data" binding:"required"`
		}
		if berr := c.ShouldBindJSON(&body); berr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "provide {\"data\": \"<base64 data URL>\"}"})
			return
		}
		result, err = h.cdn.UploadBase64(body.Data)
	}

	if err != nil {
		log.Printf("upload failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "upload failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": result.SecureURL, "public_id": result.PublicID, "bytes": result.Bytes})
}

type trainingRequest struct {
	Title            string               `json:"title" binding:"required"`
	Venue            string               `json:"venue"`
	Date             string               `json:"date" binding:"required"`
	StartTime        string               `json:"start_time" binding:"required"`
	EndTime          string               `json:"end_time"`
	Description      string               `json:"description"`
	ScheduleType     string               `json:"schedule_type" binding:"required"`
	ImageURL         string               `json:"image_url"`
	CertificateTitle string               `json:"certificate_title"`
	Signatories      []training.Signatory `json:"signatories"`
	Attendees        []string             `json:"attendees"`
}

// checkRules applies the advisory scheduling rules. requireFuture is set on
// creation only; edits of past sessions stay possible.
func (req trainingRequest) checkRules(requireFuture bool) error {
	if err := training.ValidateNoSunday(req.Date); err != nil {
		return err
	}
	if err := training.ValidateOfficeHours(req.StartTime); err != nil {
		return fmt.Errorf("start_time: %w", err)
	}
	if req.EndTime != "" {
		if err := training.ValidateOfficeHours(req.EndTime); err != nil {
			return fmt.Errorf("end_time: %w", err)
		}
	}
	if requireFuture {
		if err := training.ValidateFutureStart(req.Date, req.StartTime, time.Now()); err != nil {
			return err
		}
	}
	return nil
}

func (req trainingRequest) toTraining() (training.Training, error) {
	start, err := time.ParseInLocation("2006-01-02 15:04", req.Date+" "+req.StartTime, time.Local)
	if err != nil {
		return training.Training{}, fmt.Errorf("invalid start: %w", err)
	}
	t := training.Training{
		Title:            req.Title,
		Venue:            req.Venue,
		StartAt:          start,
		Description:      req.Description,
		ScheduleType:     req.ScheduleType,
		ImageURL:         req.ImageURL,
		CertificateTitle: req.CertificateTitle,
		Signatories:      req.Signatories,
		Attendees:        req.Attendees,
	}
	if req.EndTime != "" {
		end, err := time.ParseInLocation("2006-01-02 15:04", req.Date+" "+req.EndTime, time.Local)
		if err != nil {
			return training.Training{}, fmt.Errorf("invalid end: %w", err)
		}
		t.EndAt = &end
	}
	return t, nil
}

// trainingView decorates a training with its derived lifecycle phase.
type trainingView struct {
	training.Training
	Phase training.Phase `json:"phase"`
}

func viewOf(t training.Training, now time.Time) trainingView {
	return trainingView{Training: t, Phase: t.Phase(now)}
}

func (h *handlers) listTrainings(c *gin.Context) {
	phase := training.Phase(c.Query("phase"))
	switch phase {
	case "", training.PhaseUpcoming, training.PhasePendingAttendance, training.PhaseCompleted:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown phase"})
		return
	}
	list, err := h.trainings.List(c.Request.Context(), phase)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	now := time.Now()
	views := make([]trainingView, 0, len(list))
	for _, t := range list {
		views = append(views, viewOf(t, now))
	}
	c.JSON(http.StatusOK, gin.H{"trainings": views})
}

func (h *handlers) createTraining(c *gin.Context) {
	var req trainingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := req.checkRules(true); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	t, err := req.toTraining()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	created, err := h.trainings.Create(c.Request.Context(), t, auth.FromContext(c).Subject)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, viewOf(created, time.Now()))
}

func (h *handlers) getTraining(c *gin.Context) {
	t, err := h.trainings.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, training.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "training not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, viewOf(t, time.Now()))
}

func (h *handlers) updateTraining(c *gin.Context) {
	var req trainingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := req.checkRules(false); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	t, err := req.toTraining()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	t.ID = c.Param("id")
	updated, err := h.trainings.Update(c.Request.Context(), t)
	if errors.Is(err, training.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "training not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, viewOf(updated, time.Now()))
}

func (h *handlers) deleteTraining(c *gin.Context) {
	err := h.trainings.Delete(c.Request.Context(), c.Param("id"))
	if errors.Is(err, training.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "training not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) saveAttendance(c *gin.Context) {
	var req struct {
		Attendance map[string]bool `json:"attendance" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	t, err := h.trainings.SaveAttendance(c.Request.Context(), c.Param("id"), req.Attendance)
	switch {
	case errors.Is(err, training.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "training not found"})
		return
	case errors.Is(err, training.ErrNotEnded):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	case errors.Is(err, training.ErrNoAttendees), errors.Is(err, training.ErrUnknownAttendee):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, viewOf(t, time.Now()))
}

// regenerateCertificates re-issues certificates synchronously, e.g. after a
// signature image was fixed. The worker handles the automatic post-attendance
// batch; this endpoint covers manual re-runs.
func (h *handlers) regenerateCertificates(c *gin.Context) {
	if h.certs == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "certificate storage not configured"})
		return
	}
	t, err := h.trainings.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, training.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "training not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !t.HasAttendance() {
		c.JSON(http.StatusConflict, gin.H{"error": "attendance has not been recorded"})
		return
	}
	report := h.certs.IssueForTraining(c.Request.Context(), t, auth.FromContext(c).Name)
	c.JSON(http.StatusOK, report)
}

func (h *handlers) listCertificates(c *gin.Context) {
	recs, err := h.certRepo.ListForTraining(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"certificates": recs})
}

func (h *handlers) listEmployees(c *gin.Context) {
	list, err := h.employees.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"employees": list})
}

func (h *handlers) listDepots(c *gin.Context) {
	list, err := h.employees.ListDepots(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"depots": list})
}

func (h *handlers) getSignatureDefaults(c *gin.Context) {
	defaults, err := h.employees.SignatureDefaults(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"signature_defaults": defaults})
}

func (h *handlers) putSignatureDefaults(c *gin.Context) {
	var req struct {
		SignatureDefaults []training.Signatory `json:"signature_defaults"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(req.SignatureDefaults) > training.MaxSignatories {
		c.JSON(http.StatusBadRequest, gin.H{"error": "at most four signatories"})
		return
	}
	if err := h.employees.SaveSignatureDefaults(c.Request.Context(), req.SignatureDefaults); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"signature_defaults": req.SignatureDefaults})
}

func (h *handlers) submitApplication(c *gin.Context) {
	var req struct {
		FirstName string `json:"first_name" binding:"required"`
		LastName  string `json:"last_name" binding:"required"`
		Email     string `json:"email" binding:"required,email"`
		Position  string `json:"position" binding:"required"`
		Depot     string `json:"depot" binding:"required"`
		ResumeURL string `json:"resume_url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	app, err := h.recruits.Insert(c.Request.Context(), recruit.Application{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Position:  req.Position,
		Depot:     req.Depot,
		ResumeURL: req.ResumeURL,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, app)
}

func (h *handlers) listApplications(c *gin.Context) {
	list, err := h.recruits.List(c.Request.Context(), c.Query("status"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"applications": list})
}

func (h *handlers) updateApplicationStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	app, err := h.recruits.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	switch {
	case errors.Is(err, recruit.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "application not found"})
		return
	case errors.Is(err, recruit.ErrBadTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app)
}

func (h *handlers) listPendingApplicants(c *gin.Context) {
	list, err := h.recruits.ListPending(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"pending_applicants": list})
}

// importEmployees runs the CSV bulk import. The body is either a multipart
// form with a "file" field or the raw CSV itself. Validation failures reject
// the whole file with zero accounts created.
func (h *handlers) importEmployees(c *gin.Context) {
	var file io.Reader
	if strings.Contains(c.ContentType(), "multipart/form-data") {
		f, _, err := c.Request.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file field required"})
			return
		}
		defer f.Close()
		file = f
	} else {
		file = c.Request.Body
	}

	report, err := h.importer.Run(c.Request.Context(), file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	// The report is the only copy of the generated passwords; write it before
	// the throttled mail phase, which can outlast the write timeout on large
	// batches.
	c.JSON(http.StatusOK, report)
	go h.importer.SendCredentialMails(report.Details)
}
