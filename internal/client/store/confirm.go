package store

// Confirmer asks the operator to approve a destructive action.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(prompt string) bool

func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

const (
	promptDeletePackage   = "Are you sure you want to delete this package?"
	promptDeleteEnquiry   = "Are you sure you want to delete this enquiry?"
	promptDeleteHomeImage = "Are you sure you want to delete this image?"
	promptDeleteUser      = "Are you sure you want to delete this user?"
)
