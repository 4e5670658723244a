package jsonrpc

// InnerError is the JSON-RPC error object shape; kept as an alias of Error
// so call sites that build an error payload before attaching it to a
// Response read naturally as "build an inner error, then wrap it".
type InnerError = Error

// NewInnerError builds an InnerError (alias of Error) value.
func NewInnerError(code int, message string, data interface{}) InnerError {
	return InnerError{Code: code, Message: message, Data: data}
}

// NewParsingError creates a new parsing error.
func NewParsingError(err error, data []byte) *Error {
	e := NewInnerError(ParseError, err.Error(), nil)
	if len(data) > 0 {
		e.Data = string(data)
	}
	return &e
}

// NewInternalError creates a new internal error.
func NewInternalError(err error) *Error {
	e := NewInnerError(InternalError, err.Error(), nil)
	return &e
}

// NewInvalidRequest creates a new invalid request error.
func NewInvalidRequest(message string) *Error {
	e := NewInnerError(InvalidRequest, message, nil)
	return &e
}

// NewInvalidParams creates a new invalid params error.
func NewInvalidParams(message string) *Error {
	e := NewInnerError(InvalidParams, message, nil)
	return &e
}

// NewMethodNotFound creates a new method-not-found error.
func NewMethodNotFound(method string) *Error {
	e := NewInnerError(MethodNotFound, "Unknown method: "+method, nil)
	return &e
}

// NewTransportError creates a session/origin level error.
func NewTransportError(message string) *Error {
	e := NewInnerError(TransportError, message, nil)
	return &e
}

// NewResponseError builds a Response carrying the given error and id.
func NewResponseError(id RequestId, err *Error) *Response {
	return &Response{Id: id, Jsonrpc: Version, Error: err}
}
