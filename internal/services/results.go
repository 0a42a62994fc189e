package services

// Failure kinds. The HTTP layer maps them to 404, 403 and 409.
const (
	FailNotFound    = "not_found"
	FailForbidden   = "forbidden"
	FailAlreadyDone = "already_done"
	FailInvalid     = "invalid"
)

// Failure is embedded in every business result. Expected outcomes such as a
// missing or foreign entity are reported here instead of through error.
type Failure struct {
	Error string `json:"error,omitempty"`
	Kind  string `json:"-"`
}

func (f Failure) Failed() bool { return f.Error != "" }

// FailureKind lets callers read the kind off any result that embeds Failure.
func (f Failure) FailureKind() string { return f.Kind }

func notFound(msg string) Failure    { return Failure{Error: msg, Kind: FailNotFound} }
func forbidden(msg string) Failure   { return Failure{Error: msg, Kind: FailForbidden} }
func alreadyDone(msg string) Failure { return Failure{Error: msg, Kind: FailAlreadyDone} }
func invalid(msg string) Failure     { return Failure{Error: msg, Kind: FailInvalid} }
