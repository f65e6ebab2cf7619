package actions

import (
	"net/url"

	"github.com/goliatone/go-intake/pkg/form"
)

// RegisterPath is where a created (or recovered) user continues.
func RegisterPath(userID string) string {
	return "/patients/" + url.PathEscape(userID) + "/register"
}

// AppointmentPath is where a registered patient continues.
func AppointmentPath(userID string) string {
	return "/patients/" + url.PathEscape(userID) + "/new-appointment"
}

// ToRegister is the form.Destination for the basic form.
func ToRegister(result form.Result) string {
	return RegisterPath(result.ID)
}

// ToAppointment is the form.Destination for the detailed form.
func ToAppointment(result form.Result) string {
	return AppointmentPath(result.ID)
}
