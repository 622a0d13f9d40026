package status

import (
	"net/http"
	"strconv"
)

type Status struct {
	Code         int
	ReasonPhrase string
}

func (s Status) String() string {
	return strconv.Itoa(s.Code) + " " + s.ReasonPhrase
}

// Statuses produced by the bridges themselves.
// Everything else is passed through from the origin.
var (
	OK                  = FromCode(http.StatusOK)
	RequestTimeout      = FromCode(http.StatusRequestTimeout)
	InternalServerError = FromCode(http.StatusInternalServerError)
	GatewayTimeout      = FromCode(http.StatusGatewayTimeout)
)

// FromCode fills in the registered reason phrase for code, if any.
func FromCode(code int) Status {
	return Status{Code: code, ReasonPhrase: http.StatusText(code)}
}
