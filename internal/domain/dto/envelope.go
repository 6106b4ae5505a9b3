package dto

// Status is the outcome carried by every Envelope.
type Status string

const (
	StatusSuccess Status = "SUCCESS"
	StatusError   Status = "ERROR"
)

// SuccessMessage is the message attached to every successful envelope.
const SuccessMessage = "Operation completed successfully"

// Envelope is the uniform wrapper around every response payload, both on the
// TCP protocol and on the HTTP API.
//
// Invariant: Status == StatusError implies Data == nil (serialized as null).
//
// swagger:model Envelope
type Envelope struct {
	Status  Status `json:"status" example:"SUCCESS"`
	Message string `json:"message" example:"Operation completed successfully"`
	Data    any    `json:"data"`
}

// Success wraps data in a SUCCESS envelope.
func Success(data any) Envelope {
	return Envelope{Status: StatusSuccess, Message: SuccessMessage, Data: data}
}

// Failure builds an ERROR envelope; Data is always nil.
func Failure(message string) Envelope {
	return Envelope{Status: StatusError, Message: message}
}

// OK reports whether the envelope carries a successful outcome.
func (e Envelope) OK() bool {
	return e.Status == StatusSuccess
}
