package protocol

type ResponseStatus string

const (
	StatusSuccess ResponseStatus = "SUCCESS"
	StatusFailure ResponseStatus = "FAILURE"
)

// ServerResponse is the closed set of response shapes the dispatcher can
// produce. The connection worker serializes whichever variant it receives.
type ServerResponse interface {
	serverResponse()
}

type Response struct {
	Status  ResponseStatus `json:"status"`
	Message string         `json:"message"`
}

func (Response) serverResponse() {}

func Success(message string) Response {
	return Response{Status: StatusSuccess, Message: message}
}

func Failure(message string) Response {
	return Response{Status: StatusFailure, Message: message}
}

// GamingResponse answers a REQUEST_MOVE. Move is the opponent's pending
// cell, or NoMove when the mailbox is empty. Active turns false once the
// game has been declined, aborted or completed.
type GamingResponse struct {
	Response
	Move   int  `json:"move"`
	Active bool `json:"active"`
}

// PairingResponse answers an UPDATE_PAIRING poll with the users available
// for a game, the newest invitation addressed to the caller, and the newest
// answered invitation the caller sent.
type PairingResponse struct {
	Response
	AvailableUsers     []User `json:"availableUsers"`
	Invitation         *Event `json:"invitation,omitempty"`
	InvitationResponse *Event `json:"invitationResponse,omitempty"`
}

// User is the wire shape of a player account. Password is only ever set by
// clients on LOGIN and REGISTER; the server never serializes it back.
type User struct {
	Username    string `json:"username"`
	Password    string `json:"password,omitempty"`
	DisplayName string `json:"displayName"`
	Online      bool   `json:"online"`
}

// Event is the wire shape of one invitation-to-game lifecycle record.
type Event struct {
	EventID  int64  `json:"eventId"`
	Sender   string `json:"sender"`
	Opponent string `json:"opponent"`
	Status   string `json:"status"`
	Turn     string `json:"turn,omitempty"`
	Move     int    `json:"move"`
}
