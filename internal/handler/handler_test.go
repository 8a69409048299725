package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/tutorbook/internal/models"
	"github.com/noah-isme/tutorbook/internal/repository"
	"github.com/noah-isme/tutorbook/internal/service"
	"github.com/noah-isme/tutorbook/pkg/storage"
)

type testSite struct {
	router *gin.Engine
	dir    string
}

func writeJSON(t *testing.T, path string, v interface{}) {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, raw, 0o644))
}

func newTestSite(t *testing.T, checks map[string]ReadinessCheck) testSite {
	t.Helper()
	gin.SetMode(gin.TestMode)
	dir := t.TempDir()

	writeJSON(t, filepath.Join(dir, repository.GoalsFile), map[string]string{
		"travel": "For travel",
		"study":  "For school",
		"work":   "For work",
	})
	clara := models.NewWeeklyAvailability(true)
	clara["wed"]["16:00"] = false
	writeJSON(t, filepath.Join(dir, repository.TeachersFile), []models.Teacher{
		{ID: 1, Name: "Anna", About: "Loves grammar", Rating: 4.5, Picture: "/a.png", Price: 900, Goals: []string{"travel"}, Free: models.NewWeeklyAvailability(true)},
		{ID: 2, Name: "Boris", About: "Business English", Rating: 4.1, Picture: "/b.png", Price: 700, Goals: []string{"work"}, Free: models.NewWeeklyAvailability(false)},
		{ID: 3, Name: "Clara", About: "Exam preparation", Rating: 4.9, Picture: "/c.png", Price: 1300, Goals: []string{"travel", "study"}, Free: clara},
	})

	store, err := storage.NewLocalStorage(dir)
	require.NoError(t, err)
	catalog, err := repository.LoadFileCatalog(store)
	require.NoError(t, err)
	bookingRepo := repository.NewFileBookingRepository(store, catalog)
	teacherRepo := repository.NewFileTeacherRepository(catalog, bookingRepo)
	goalRepo := repository.NewFileGoalRepository(catalog)
	requestRepo := repository.NewFileLessonRequestRepository(store)

	logr := zap.NewNop()
	metrics := service.NewMetricsService()
	validate := service.NewValidator()
	catalogSvc := service.NewCatalogService(goalRepo, teacherRepo, nil, 6, logr)
	svc := Services{
		Catalog:  catalogSvc,
		Bookings: service.NewBookingService(bookingRepo, teacherRepo, catalogSvc, metrics, validate, logr),
		Requests: service.NewLessonRequestService(requestRepo, goalRepo, metrics, validate, logr),
		Exports:  service.NewExportService(bookingRepo, teacherRepo, logr, nil, nil),
		Metrics:  metrics,
		Checks:   checks,
	}
	router, err := NewRouter(RouterConfig{APIPrefix: "/api/v1", EnableMetrics: true}, svc, logr)
	require.NoError(t, err)
	return testSite{router: router, dir: dir}
}

func (s testSite) get(path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func (s testSite) postForm(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s testSite) bookings(t *testing.T) []models.Booking {
	t.Helper()
	raw, err := os.ReadFile(filepath.Join(s.dir, repository.BookingsFile))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	require.NoError(t, err)
	var file struct {
		Records []models.Booking `json:"records"`
	}
	require.NoError(t, json.Unmarshal(raw, &file))
	return file.Records
}

func bookingForm(phone string) url.Values {
	return url.Values{
		"client_teacher": {"3"},
		"client_weekday": {"wed"},
		"client_time":    {"14:00"},
		"client_name":    {"Ivan"},
		"client_phone":   {phone},
	}
}

func TestCatalogPages(t *testing.T) {
	site := newTestSite(t, nil)

	w := site.get("/")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `href="/goals/travel/"`)
	assert.Equal(t, 3, strings.Count(w.Body.String(), `class="teacher"`))

	w = site.get("/all/?sort=price_asc")
	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Less(t, strings.Index(body, "Boris"), strings.Index(body, "Anna"))
	assert.Less(t, strings.Index(body, "Anna"), strings.Index(body, "Clara"))

	w = site.get("/goals/travel/")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Clara")
	assert.NotContains(t, w.Body.String(), "Boris")

	assert.Equal(t, http.StatusNotFound, site.get("/goals/cooking/").Code)
	assert.Equal(t, http.StatusNotFound, site.get("/no/such/page").Code)
}

func TestProfilePage(t *testing.T) {
	site := newTestSite(t, nil)

	w := site.get("/profiles/3/")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Clara")
	assert.Contains(t, body, "For school")
	assert.Contains(t, body, `href="/booking/3/wed/14:00/"`)
	assert.NotContains(t, body, `href="/booking/3/wed/16:00/"`)

	assert.Equal(t, http.StatusNotFound, site.get("/profiles/99/").Code)
	assert.Equal(t, http.StatusNotFound, site.get("/profiles/abc/").Code)
}

func TestBookingFormSlotChecks(t *testing.T) {
	site := newTestSite(t, nil)

	w := site.get("/booking/3/wed/14:00/")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `name="client_time" value="14:00"`)

	for _, path := range []string{
		"/booking/3/xyz/14:00/",
		"/booking/3/wed/09:00/",
		"/booking/3/wed/24:00/",
		"/booking/999/funday/14:00/",
		"/booking/abc/wed/07:00/",
		"/booking/999/wed/14:00/",
	} {
		assert.Equal(t, http.StatusNotFound, site.get(path).Code, path)
	}

	w = site.get("/booking/3/wed/16:00/")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "Clara")
	assert.NotContains(t, w.Body.String(), `name="client_phone"`)
}

func TestBookingSubmitCreatesRecordAndFlipsSlot(t *testing.T) {
	site := newTestSite(t, nil)

	w := site.postForm("/booking_done/", bookingForm("+7-916-1234567"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Lesson booked")
	assert.Contains(t, w.Body.String(), "Wednesday, 14:00")

	records := site.bookings(t)
	require.Len(t, records, 1)
	assert.Equal(t, 3, records[0].TeacherID)
	assert.Equal(t, "wed", records[0].Day)
	assert.Equal(t, "14:00", records[0].StartTime)
	assert.Equal(t, "+7-916-1234567", records[0].ClientPhone)

	assert.Equal(t, http.StatusForbidden, site.get("/booking/3/wed/14:00/").Code)
	assert.NotContains(t, site.get("/profiles/3/").Body.String(), `href="/booking/3/wed/14:00/"`)

	w = site.postForm("/booking_done/", bookingForm("89161234567"))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Len(t, site.bookings(t), 1)
}

func TestBookingSubmitOnSlotURL(t *testing.T) {
	site := newTestSite(t, nil)

	form := bookingForm("8(916)123-45-67")
	form.Set("client_time", "08:00")
	w := site.postForm("/booking/1/fri/18:00/", form)
	require.Equal(t, http.StatusOK, w.Code)

	records := site.bookings(t)
	require.Len(t, records, 1)
	assert.Equal(t, 1, records[0].TeacherID)
	assert.Equal(t, "fri", records[0].Day)
	assert.Equal(t, "18:00", records[0].StartTime)
}

func TestBookingSubmitOnShortHourSlotURL(t *testing.T) {
	site := newTestSite(t, nil)

	require.Equal(t, http.StatusOK, site.get("/booking/1/fri/8/").Code)

	w := site.postForm("/booking/1/fri/8/", bookingForm("+7-916-1234567"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Lesson booked")

	records := site.bookings(t)
	require.Len(t, records, 1)
	assert.Equal(t, 1, records[0].TeacherID)
	assert.Equal(t, "fri", records[0].Day)
	assert.Equal(t, "08:00", records[0].StartTime)

	assert.Equal(t, http.StatusForbidden, site.get("/booking/1/fri/8:00/").Code)
	assert.Equal(t, http.StatusNotFound, site.postForm("/booking/1/fri/9/", bookingForm("+7-916-1234567")).Code)
	assert.Len(t, site.bookings(t), 1)
}

func (s testSite) postJSON(path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func TestAPICreateBookingTakesNumericTeacherID(t *testing.T) {
	site := newTestSite(t, nil)

	w := site.postJSON("/api/v1/bookings", `{"teacher_id":1,"weekday":"fri","time":"8","client_name":"Ivan","client_phone":"+7-916-1234567"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var envelope struct {
		Data struct {
			Booking models.Booking `json:"booking"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, 1, envelope.Data.Booking.TeacherID)
	assert.Equal(t, "08:00", envelope.Data.Booking.StartTime)

	w = site.postJSON("/api/v1/bookings", `{"teacher_id":"1","weekday":"fri","time":"10:00","client_name":"Ivan","client_phone":"+7-916-1234567"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = site.postJSON("/api/v1/bookings", `{"weekday":"fri","time":"10:00","client_name":"Ivan","client_phone":"+7-916-1234567"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"client_teacher"`)

	w = site.postJSON("/api/v1/bookings", `{"teacher_id":42,"weekday":"fri","time":"10:00","client_name":"Ivan","client_phone":"+7-916-1234567"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Len(t, site.bookings(t), 1)
}

func TestBookingSubmitInvalidPhoneRerendersForm(t *testing.T) {
	site := newTestSite(t, nil)

	w := site.postForm("/booking_done/", bookingForm("call me"))
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `name="client_phone" value="call me"`)
	assert.Contains(t, body, `class="error"`)
	assert.Empty(t, site.bookings(t))

	w = site.postForm("/booking_done/", url.Values{"client_teacher": {"3"}, "client_weekday": {"wed"}, "client_time": {"14:00"}})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, strings.Count(w.Body.String(), `class="error"`))
	assert.Empty(t, site.bookings(t))
}

func TestRequestFlow(t *testing.T) {
	site := newTestSite(t, nil)

	w := site.get("/request/")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `value="travel" checked`)
	assert.Contains(t, w.Body.String(), `value="1-2" checked`)

	w = site.postForm("/request_done/", url.Values{
		"goal": {"work"}, "time": {"3-5"}, "client_name": {"Olga"}, "client_phone": {"+7-916-1234567"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "For work")
	assert.Contains(t, body, "3-5 hours a week")
	assert.Contains(t, body, "+7-916-1234567")

	w = site.postForm("/request/", url.Values{
		"goal": {"work"}, "time": {"3-5"}, "client_name": {"Olga"}, "client_phone": {"x"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `class="error"`)
	assert.Contains(t, w.Body.String(), `value="work" checked`)

	raw, err := os.ReadFile(filepath.Join(site.dir, repository.RequestsFile))
	require.NoError(t, err)
	var file struct {
		Records []models.LessonRequest `json:"records"`
	}
	require.NoError(t, json.Unmarshal(raw, &file))
	require.Len(t, file.Records, 1)
	assert.Equal(t, "work", file.Records[0].Goal)
}

func TestAPIEndpoints(t *testing.T) {
	site := newTestSite(t, nil)

	w := site.get("/api/v1/teachers?goal=travel")
	require.Equal(t, http.StatusOK, w.Code)
	var envelope struct {
		Data []models.Teacher      `json:"data"`
		Meta map[string]interface{} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data, 2)
	assert.Equal(t, 3, envelope.Data[0].ID)
	assert.Equal(t, float64(2), envelope.Meta["count"])

	assert.Equal(t, http.StatusNotFound, site.get("/api/v1/teachers/42").Code)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings",
		strings.NewReader(`{"teacher_id":3,"weekday":"wed","time":"14:00","client_name":"Ivan","client_phone":"123-"}`))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	site.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"client_phone"`)

	require.Equal(t, http.StatusOK, site.postForm("/booking_done/", bookingForm("+7-916-1234567")).Code)

	w = site.get("/api/v1/bookings/export?format=csv")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, w.Body.String(), "Clara,Wednesday,14:00,Ivan,+7-916-1234567")

	w = site.get("/api/v1/bookings/1")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, http.StatusBadRequest, site.get("/api/v1/bookings/export?format=doc").Code)
}

func TestOperationalEndpoints(t *testing.T) {
	site := newTestSite(t, map[string]ReadinessCheck{
		"storage": func(ctx context.Context) error { return nil },
		"cache":   func(ctx context.Context) error { return errors.New("redis down") },
	})

	assert.Equal(t, http.StatusOK, site.get("/health").Code)

	w := site.get("/ready")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "redis down")

	site.get("/profiles/1/")
	w = site.get("/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `path="/profiles/:teacher_id/"`)
}
