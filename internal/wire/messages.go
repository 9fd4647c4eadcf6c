package wire

// Request and response messages of the rpass.v1.Vault service. Fields use
// integer CBOR keys so the encoding stays compact and stable under renames.

type RegisterRequest struct {
	UserName string `cbor:"1,keyasint"`
	Password []byte `cbor:"2,keyasint"`
}

type RegisterResponse struct {
	UserID string `cbor:"1,keyasint"`
}

type LoginRequest struct {
	UserName string `cbor:"1,keyasint"`
	Password []byte `cbor:"2,keyasint"`
}

// LoginResponse carries the opaque session token to send back in the
// session_token metadata key.
type LoginResponse struct {
	Token  string `cbor:"1,keyasint"`
	UserID string `cbor:"2,keyasint"`
}

type LogoutRequest struct{}

type LogoutResponse struct{}

// ClearDataRequest deletes the logged-in user and all of its records. The
// password is checked again.
type ClearDataRequest struct {
	Password []byte `cbor:"1,keyasint"`
}

type ClearDataResponse struct{}

type NewRecordRequest struct {
	Name    string `cbor:"1,keyasint"`
	Payload []byte `cbor:"2,keyasint"`
}

type NewRecordResponse struct{}

type ReadRecordRequest struct {
	Name string `cbor:"1,keyasint"`
}

type ReadRecordResponse struct {
	Payload []byte `cbor:"1,keyasint"`
}

type UpdateRecordRequest struct {
	Name    string `cbor:"1,keyasint"`
	Payload []byte `cbor:"2,keyasint"`
}

type UpdateRecordResponse struct{}

type DeleteRecordRequest struct {
	Name string `cbor:"1,keyasint"`
}

type DeleteRecordResponse struct{}

type ListRecordsRequest struct{}

type ListRecordsResponse struct {
	Names []string `cbor:"1,keyasint"`
}

type PingRequest struct{}

type PingResponse struct {
	Status string `cbor:"1,keyasint"`
}
