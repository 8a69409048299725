package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/tutorbook/pkg/errors"
)

// ErrorTemplate is the page rendered by ErrorPage.
const ErrorTemplate = "error.html"

// Envelope represents the common response contract.
type Envelope struct {
	Data  interface{}            `json:"data,omitempty"`
	Error *appErrors.Error       `json:"error,omitempty"`
	Meta  map[string]interface{} `json:"meta,omitempty"`
}

// JSON sends a success response with optional metadata.
func JSON(c *gin.Context, status int, data interface{}, meta ...map[string]interface{}) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	envelope := Envelope{Data: data}
	if len(meta) > 0 && meta[0] != nil {
		envelope.Meta = meta[0]
	}
	c.JSON(status, envelope)
}

// Error sends an error response converting the error to the common structure.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	_ = c.Error(err)
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	c.JSON(appErr.Status, Envelope{Error: appErr})
}

// Page renders an HTML template with HTTP 200.
func Page(c *gin.Context, name string, data gin.H) {
	c.HTML(http.StatusOK, name, data)
}

// ErrorPage renders the HTML error page for err. Internal details of 5xx
// errors stay in the log.
func ErrorPage(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	_ = c.Error(err)
	message := appErr.Message
	if appErr.Status >= http.StatusInternalServerError {
		message = appErrors.ErrInternal.Message
	}
	c.HTML(appErr.Status, ErrorTemplate, gin.H{
		"Status":  appErr.Status,
		"Title":   http.StatusText(appErr.Status),
		"Message": message,
	})
}
