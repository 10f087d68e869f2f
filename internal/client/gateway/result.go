package gateway

import "fmt"

// Result is the uniform outcome of a data operation. A failed result always
// carries a human-readable Message; Data is the zero value.
type Result[T any] struct {
	Success bool
	Data    T
	Message string
}

// ExportResult is the outcome of the enquiry export download.
type ExportResult struct {
	Success  bool
	Blob     []byte
	Filename string
	Message  string
}

const (
	msgBackendError  = "Backend error. Please check backend server logs."
	msgLoginBadReply = "Login failed: invalid response from backend."
	msgExportFailed  = "Failed to download enquiries file"
	msgTooLarge      = "Response too large."

	defaultExportName = "enquiries.xlsx"
)

func unreachableMessage(base string) string {
	return fmt.Sprintf("Cannot reach backend (%s). Start the backend server and retry.", base)
}

func clientErrorMessage(status int) string {
	return fmt.Sprintf("Request failed (HTTP %d).", status)
}

func loginErrorMessage(status int) string {
	return fmt.Sprintf("Login failed (HTTP %d).", status)
}

func failure[T any](msg string) Result[T] {
	return Result[T]{Message: msg}
}
