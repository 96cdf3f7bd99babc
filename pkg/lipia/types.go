package lipia

import "encoding/json"

// StkPushRequest is the outbound charge request body.
type StkPushRequest struct {
	PhoneNumber       string   `json:"phone_number"`
	Amount            float64  `json:"amount"`
	ExternalReference string   `json:"external_reference"`
	CallbackURL       string   `json:"callback_url"`
	Metadata          Metadata `json:"metadata"`
}

// Metadata identifies the initiating system to the gateway.
type Metadata struct {
	Source string `json:"source"`
}

// StkPushResponse is the gateway's synchronous acknowledgement. Only the
// top-level success flag is interpreted; the data payload is passed through
// to the caller untouched.
type StkPushResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   json.RawMessage `json:"error,omitempty"`
}
