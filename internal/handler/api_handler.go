package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/tutorbook/internal/dto"
	"github.com/noah-isme/tutorbook/internal/middleware"
	"github.com/noah-isme/tutorbook/internal/models"
	"github.com/noah-isme/tutorbook/internal/service"
	appErrors "github.com/noah-isme/tutorbook/pkg/errors"
	"github.com/noah-isme/tutorbook/pkg/response"
)

// APIHandler exposes the catalog and the booking logs as JSON.
type APIHandler struct {
	catalog  *service.CatalogService
	bookings *service.BookingService
	requests *service.LessonRequestService
	exports  *service.ExportService
}

// NewAPIHandler constructs an APIHandler.
func NewAPIHandler(catalog *service.CatalogService, bookings *service.BookingService, requests *service.LessonRequestService, exports *service.ExportService) *APIHandler {
	return &APIHandler{catalog: catalog, bookings: bookings, requests: requests, exports: exports}
}

// Goals godoc
// @Summary List goals
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /goals [get]
func (h *APIHandler) Goals(c *gin.Context) {
	goals, err := h.catalog.Goals(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetMeta(c, "count", len(goals))
	response.JSON(c, http.StatusOK, goals, middleware.ExtractMeta(c))
}

// Teachers godoc
// @Summary List tutors
// @Tags Catalog
// @Produce json
// @Param goal query string false "Only tutors for this goal, best rated first"
// @Param sort query string false "random, rating, price_asc or price_desc"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /teachers [get]
func (h *APIHandler) Teachers(c *gin.Context) {
	ctx := c.Request.Context()
	var (
		teachers []models.Teacher
		err      error
	)
	if goal := c.Query("goal"); goal != "" {
		_, teachers, err = h.catalog.TeachersByGoal(ctx, goal)
		middleware.SetMeta(c, "goal", goal)
	} else {
		order := models.ParseTeacherSort(c.Query("sort"))
		teachers, err = h.catalog.Teachers(ctx, order)
		middleware.SetMeta(c, "sort", string(order))
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetMeta(c, "count", len(teachers))
	response.JSON(c, http.StatusOK, teachers, middleware.ExtractMeta(c))
}

// Teacher godoc
// @Summary Tutor profile with free times per day
// @Tags Catalog
// @Produce json
// @Param id path int true "Teacher ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /teachers/{id} [get]
func (h *APIHandler) Teacher(c *gin.Context) {
	profile, err := h.catalog.Profile(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile)
}

// Bookings godoc
// @Summary List bookings in submission order
// @Tags Records
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /bookings [get]
func (h *APIHandler) Bookings(c *gin.Context) {
	bookings, err := h.bookings.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetMeta(c, "count", len(bookings))
	response.JSON(c, http.StatusOK, bookings, middleware.ExtractMeta(c))
}

// Booking godoc
// @Summary Get one booking
// @Tags Records
// @Produce json
// @Param id path int true "Booking ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /bookings/{id} [get]
func (h *APIHandler) Booking(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "booking not found"))
		return
	}
	booking, err := h.bookings.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, booking)
}

// CreateBooking godoc
// @Summary Book a tutor slot
// @Tags Records
// @Accept json
// @Produce json
// @Param payload body dto.CreateBookingRequest true "Booking"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /bookings [post]
func (h *APIHandler) CreateBooking(c *gin.Context) {
	var req dto.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload"))
		return
	}
	form := service.BookingForm{
		Weekday:     req.Weekday,
		Time:        req.Time,
		ClientName:  req.ClientName,
		ClientPhone: req.ClientPhone,
	}
	if req.TeacherID != nil {
		form.TeacherID = strconv.Itoa(*req.TeacherID)
	}
	confirmation, err := h.bookings.Book(c.Request.Context(), form)
	if err != nil {
		h.formError(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, confirmation)
}

// Requests godoc
// @Summary List lesson requests in submission order
// @Tags Records
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /requests [get]
func (h *APIHandler) Requests(c *gin.Context) {
	requests, err := h.requests.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetMeta(c, "count", len(requests))
	response.JSON(c, http.StatusOK, requests, middleware.ExtractMeta(c))
}

// CreateRequest godoc
// @Summary Submit a lesson request
// @Tags Records
// @Accept json
// @Produce json
// @Param payload body service.LessonRequestForm true "Lesson request"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /requests [post]
func (h *APIHandler) CreateRequest(c *gin.Context) {
	var form service.LessonRequestForm
	if err := c.ShouldBindJSON(&form); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload"))
		return
	}
	confirmation, err := h.requests.Submit(c.Request.Context(), form)
	if err != nil {
		h.formError(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, confirmation)
}

// ExportBookings godoc
// @Summary Download the booking ledger
// @Tags Records
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv (default) or pdf"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /bookings/export [get]
func (h *APIHandler) ExportBookings(c *gin.Context) {
	result, err := h.exports.Bookings(c.Request.Context(), c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Data(http.StatusOK, result.ContentType, result.Body)
}

// formError answers validation failures with the field messages in meta.
func (h *APIHandler) formError(c *gin.Context, err error) {
	if fields := service.FormErrors(err); fields != nil {
		appErr := appErrors.FromError(err)
		_ = c.Error(err)
		c.JSON(appErr.Status, response.Envelope{Error: appErr, Meta: map[string]interface{}{"fields": fields}})
		return
	}
	response.Error(c, err)
}
