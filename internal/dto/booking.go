package dto

// CreateBookingRequest payload for booking a tutor slot over the JSON API.
type CreateBookingRequest struct {
	TeacherID   *int   `json:"teacher_id" example:"3"`
	Weekday     string `json:"weekday" example:"wed"`
	Time        string `json:"time" example:"14:00"`
	ClientName  string `json:"client_name"`
	ClientPhone string `json:"client_phone" example:"+7-916-1234567"`
}
