package rpc_types

// RpcError is a JSON-RPC error with code and message
type RpcError struct {
	Code        int    `json:"error_code"`
	ErrorString string `json:"error"`
	Type        string `json:"type"`
	Message     string `json:"error_message,omitempty"`
}

func (e RpcError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.ErrorString
}

// Error codes
const (
	// Universal errors
	RpcUNKNOWN          = -1
	RpcMETHOD_NOT_FOUND = -32601
	RpcINVALID_PARAMS   = -32602
	RpcINTERNAL         = -32603

	// General purpose errors
	RpcGENERAL         = 1
	RpcMISSING_COMMAND = 2
	RpcTOO_BUSY        = 6
	RpcSLOW_DOWN       = 7

	// Subscription errors
	RpcSTREAM_MALFORMED = 26

	RpcNOT_ENABLED   = 31
	RpcNOT_SUPPORTED = 32

	RpcINVALID_API_VERSION = 38
	RpcINVALID_FIELD       = 43
)

// Standard error constructors
func NewRpcError(code int, error, errorType, message string) *RpcError {
	return &RpcError{
		Code:        code,
		ErrorString: error,
		Type:        errorType,
		Message:     message,
	}
}

func RpcErrorUnknown(message string) *RpcError {
	return NewRpcError(RpcUNKNOWN, "unknown", "unknown", message)
}

func RpcErrorInvalidParams(message string) *RpcError {
	return NewRpcError(RpcINVALID_PARAMS, "invalidParams", "invalidParams", message)
}

func RpcErrorMethodNotFound(method string) *RpcError {
	return NewRpcError(RpcMETHOD_NOT_FOUND, "unknownCmd", "unknownCmd", "Unknown method: "+method)
}

func RpcErrorMissingCommand() *RpcError {
	return NewRpcError(RpcMISSING_COMMAND, "missingCommand", "missingCommand", "Missing command field")
}

func RpcErrorInternal(message string) *RpcError {
	return NewRpcError(RpcINTERNAL, "internal", "internal", message)
}

func RpcErrorSlowDown(message string) *RpcError {
	return NewRpcError(RpcSLOW_DOWN, "slowDown", "slowDown", message)
}

func RpcErrorInvalidApiVersion(version string) *RpcError {
	return NewRpcError(RpcINVALID_API_VERSION, "invalidApiVersion", "invalidApiVersion", "Invalid API version: "+version)
}

func RpcErrorNotEnabled(feature string) *RpcError {
	return NewRpcError(RpcNOT_ENABLED, "notEnabled", "notEnabled", "Feature not enabled: "+feature)
}

func RpcErrorNotSupported(message string) *RpcError {
	return NewRpcError(RpcNOT_SUPPORTED, "notSupported", "notSupported", message)
}

func RpcErrorStreamMalformed(stream string) *RpcError {
	return NewRpcError(RpcSTREAM_MALFORMED, "malformedStream", "malformedStream", "Unknown stream: "+stream)
}

// RpcErrorInvalidField returns an error for an invalid field value
func RpcErrorInvalidField(field string) *RpcError {
	return NewRpcError(RpcINVALID_FIELD, "invalidParams", "invalidParams", "Invalid field '"+field+"'.")
}

// RpcErrorMissingField returns an error for a missing required field
func RpcErrorMissingField(field string) *RpcError {
	return NewRpcError(RpcINVALID_PARAMS, "invalidParams", "invalidParams", "Missing field '"+field+"'.")
}
