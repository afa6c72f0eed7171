package services

// ProcessorClient is the outbound boundary to the card payment processor.
// The HTTP implementation lives in centime_service.go; tests substitute
// fakes.
type ProcessorClient interface {
	// ListSources returns up to limit saved payment sources for a customer.
	ListSources(customerID string, limit int) ([]ProcessorSource, error)
	// CreateCustomer registers a new processor customer with an initial
	// card token.
	CreateCustomer(email, token string) (*ProcessorCustomer, error)
	// CreateSource attaches a new card token to an existing customer.
	CreateSource(customerID, token string) (*ProcessorSource, error)
	// CreateCharge captures a charge. Exactly one of req.CustomerID and
	// req.SourceToken must be set.
	CreateCharge(req ChargeRequest) (*ProcessorCharge, error)
	// RefundCharge reverses a captured charge. Used to compensate when
	// local finalization fails after a successful remote charge.
	RefundCharge(chargeID string) error
}

// ProcessorCustomer is the processor's customer object.
type ProcessorCustomer struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// ProcessorSource is a saved payment source (card) on a customer.
type ProcessorSource struct {
	ID       string `json:"id"`
	Brand    string `json:"brand"`
	Last4    string `json:"last4"`
	ExpMonth int    `json:"exp_month"`
	ExpYear  int    `json:"exp_year"`
}

// ChargeRequest describes a charge to capture. Amount is in the processor's
// minor currency units.
type ChargeRequest struct {
	Amount      int64
	Currency    string
	CustomerID  string
	SourceToken string
}

// ProcessorCharge is the processor's charge object.
type ProcessorCharge struct {
	ID     string `json:"id"`
	Amount int64  `json:"amount"`
	Status string `json:"status"`
}

// ProcessorErrorKind is the closed set of processor failure classes. Every
// failure the client returns carries exactly one kind so callers can match
// exhaustively.
type ProcessorErrorKind int

const (
	// ProcessorErrCard covers declined or invalid cards.
	ProcessorErrCard ProcessorErrorKind = iota
	// ProcessorErrRateLimit means too many requests hit the API too quickly.
	ProcessorErrRateLimit
	// ProcessorErrInvalidRequest means invalid parameters were supplied.
	ProcessorErrInvalidRequest
	// ProcessorErrAuthentication means our API credentials were rejected.
	ProcessorErrAuthentication
	// ProcessorErrConnection means network communication failed.
	ProcessorErrConnection
	// ProcessorErrAPI is a generic processor-side failure.
	ProcessorErrAPI
	// ProcessorErrUnknown is anything outside the processor's taxonomy.
	ProcessorErrUnknown
)

// ProcessorError is a structured processor failure. Message carries the
// processor's human-readable description when one was returned.
type ProcessorError struct {
	Kind    ProcessorErrorKind
	Message string
}

func (e *ProcessorError) Error() string {
	return "processor: " + e.UserMessage()
}

// UserMessage maps the failure kind to the message shown to the customer.
// Card failures surface the processor's own message since it names the
// concrete card problem.
func (e *ProcessorError) UserMessage() string {
	switch e.Kind {
	case ProcessorErrCard:
		if e.Message != "" {
			return e.Message
		}
		return "Your card was declined"
	case ProcessorErrRateLimit:
		return "Rate limit error"
	case ProcessorErrInvalidRequest:
		return "Invalid parameters"
	case ProcessorErrAuthentication:
		return "Not authenticated"
	case ProcessorErrConnection:
		return "Network error"
	case ProcessorErrAPI:
		return "Something went wrong. You were not charged. Please try again"
	default:
		return "A serious error occurred. We have been notified."
	}
}
