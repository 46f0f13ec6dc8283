package protocol

// RequestType determines which operation the server performs and how the
// request's Data field is interpreted.
type RequestType string

const (
	Login               RequestType = "LOGIN"
	Register            RequestType = "REGISTER"
	UpdatePairing       RequestType = "UPDATE_PAIRING"
	SendInvitation      RequestType = "SEND_INVITATION"
	AcceptInvitation    RequestType = "ACCEPT_INVITATION"
	DeclineInvitation   RequestType = "DECLINE_INVITATION"
	AcknowledgeResponse RequestType = "ACKNOWLEDGE_RESPONSE"
	RequestMove         RequestType = "REQUEST_MOVE"
	SendMove            RequestType = "SEND_MOVE"
	AbortGame           RequestType = "ABORT_GAME"
	CompleteGame        RequestType = "COMPLETE_GAME"
)

// Request is the single message shape clients send. Data carries a JSON
// document whose shape depends on Type - a serialized User for LOGIN and
// REGISTER, a quoted username for SEND_INVITATION, a bare integer for the
// event id and move payloads. Data is empty for types that need none.
type Request struct {
	Type RequestType `json:"type"`
	Data string      `json:"data,omitempty"`
}
