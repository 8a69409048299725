package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/tutorbook/internal/models"
	"github.com/noah-isme/tutorbook/internal/service"
	appErrors "github.com/noah-isme/tutorbook/pkg/errors"
	"github.com/noah-isme/tutorbook/pkg/response"
)

type sortOption struct {
	Value string
	Label string
}

var sortOptions = []sortOption{
	{Value: string(models.SortRandom), Label: "In random order"},
	{Value: string(models.SortRating), Label: "Best rated first"},
	{Value: string(models.SortPriceDesc), Label: "Most expensive first"},
	{Value: string(models.SortPriceAsc), Label: "Cheapest first"},
}

// PageHandler renders the public HTML site.
type PageHandler struct {
	catalog  *service.CatalogService
	bookings *service.BookingService
	requests *service.LessonRequestService
	logger   *zap.Logger
}

// NewPageHandler constructs a PageHandler.
func NewPageHandler(catalog *service.CatalogService, bookings *service.BookingService, requests *service.LessonRequestService, logger *zap.Logger) *PageHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PageHandler{catalog: catalog, bookings: bookings, requests: requests, logger: logger}
}

// Index renders the home page with the goal list and a random tutor sample.
func (h *PageHandler) Index(c *gin.Context) {
	ctx := c.Request.Context()
	goals, err := h.catalog.Goals(ctx)
	if err != nil {
		response.ErrorPage(c, err)
		return
	}
	teachers, err := h.catalog.Sample(ctx)
	if err != nil {
		response.ErrorPage(c, err)
		return
	}
	response.Page(c, tmplIndex, gin.H{"Goals": goals, "Teachers": teachers})
}

// All renders every tutor in the order chosen by ?sort.
func (h *PageHandler) All(c *gin.Context) {
	order := models.ParseTeacherSort(c.Query("sort"))
	teachers, err := h.catalog.Teachers(c.Request.Context(), order)
	if err != nil {
		response.ErrorPage(c, err)
		return
	}
	response.Page(c, tmplAll, gin.H{
		"Title":       "All tutors",
		"Teachers":    teachers,
		"Sort":        string(order),
		"SortOptions": sortOptions,
	})
}

// Goal renders the tutors teaching towards one goal.
func (h *PageHandler) Goal(c *gin.Context) {
	goal, teachers, err := h.catalog.TeachersByGoal(c.Request.Context(), c.Param("goal"))
	if err != nil {
		response.ErrorPage(c, err)
		return
	}
	response.Page(c, tmplGoal, gin.H{"Title": goal.Text, "Goal": goal, "Teachers": teachers})
}

// Profile renders a tutor profile with free times per day.
func (h *PageHandler) Profile(c *gin.Context) {
	profile, err := h.catalog.Profile(c.Request.Context(), c.Param("teacher_id"))
	if err != nil {
		response.ErrorPage(c, err)
		return
	}
	response.Page(c, tmplProfile, gin.H{"Title": profile.Teacher.Name, "Profile": profile})
}

// RequestForm renders the empty lesson request form.
func (h *PageHandler) RequestForm(c *gin.Context) {
	h.renderRequestForm(c, h.requests.DefaultForm(), nil)
}

// RequestSubmit validates and stores a lesson request. Invalid input
// re-renders the form with field errors.
func (h *PageHandler) RequestSubmit(c *gin.Context) {
	var form service.LessonRequestForm
	if err := c.ShouldBind(&form); err != nil {
		response.ErrorPage(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "malformed form"))
		return
	}
	confirmation, err := h.requests.Submit(c.Request.Context(), form)
	if err != nil {
		if fields := service.FormErrors(err); fields != nil {
			h.renderRequestForm(c, form, fields)
			return
		}
		response.ErrorPage(c, err)
		return
	}
	response.Page(c, tmplRequestDone, gin.H{"Title": "Request received", "Confirmation": confirmation})
}

func (h *PageHandler) renderRequestForm(c *gin.Context, form service.LessonRequestForm, fields service.FieldErrors) {
	goals, err := h.catalog.Goals(c.Request.Context())
	if err != nil {
		response.ErrorPage(c, err)
		return
	}
	if form.Goal == "" {
		form.Goal = models.DefaultGoal
	}
	if form.Time == "" {
		form.Time = models.DefaultTimeBucket
	}
	response.Page(c, tmplRequest, gin.H{
		"Title":       "Find me a tutor",
		"Form":        form,
		"Errors":      fields,
		"Goals":       goals,
		"TimeBuckets": models.TimeBuckets,
	})
}

// BookingForm renders the booking form for a free slot. Out-of-range
// weekday or time is 404 and a busy slot is 403.
func (h *PageHandler) BookingForm(c *gin.Context) {
	slot, err := h.bookings.CheckSlot(c.Request.Context(), c.Param("teacher_id"), c.Param("weekday"), c.Param("time"))
	if err != nil {
		response.ErrorPage(c, err)
		return
	}
	form := service.BookingForm{
		TeacherID: c.Param("teacher_id"),
		Weekday:   slot.Day,
		Time:      slot.Time,
	}
	h.renderBookingForm(c, slot, form, nil)
}

// BookingSubmit validates and stores a booking. On the slot URL the path
// parameters take precedence over the hidden form fields.
func (h *PageHandler) BookingSubmit(c *gin.Context) {
	var form service.BookingForm
	if err := c.ShouldBind(&form); err != nil {
		response.ErrorPage(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "malformed form"))
		return
	}
	if id := c.Param("teacher_id"); id != "" {
		form.TeacherID = id
		form.Weekday = c.Param("weekday")
		form.Time = c.Param("time")
	}

	ctx := c.Request.Context()
	confirmation, err := h.bookings.Book(ctx, form)
	if err == nil {
		response.Page(c, tmplBookingDone, gin.H{"Title": "Lesson booked", "Confirmation": confirmation})
		return
	}

	fields := service.FormErrors(err)
	if fields == nil {
		response.ErrorPage(c, err)
		return
	}
	slot, slotErr := h.bookings.CheckSlot(ctx, form.TeacherID, form.Weekday, form.Time)
	if slotErr != nil {
		h.logger.Debug("booking form rejected without a valid slot", zap.Any("fields", fields), zap.Error(slotErr))
		response.ErrorPage(c, slotErr)
		return
	}
	h.renderBookingForm(c, slot, form, fields)
}

func (h *PageHandler) renderBookingForm(c *gin.Context, slot *service.SlotSelection, form service.BookingForm, fields service.FieldErrors) {
	response.Page(c, tmplBooking, gin.H{
		"Title":  "Book " + slot.Teacher.Name,
		"Slot":   slot,
		"Form":   form,
		"Errors": fields,
	})
}

// NotFound renders the HTML 404 page for unmatched routes.
func (h *PageHandler) NotFound(c *gin.Context) {
	response.ErrorPage(c, appErrors.Clone(appErrors.ErrNotFound, "page not found"))
}
