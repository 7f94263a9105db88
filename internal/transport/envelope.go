package transport

import (
	"github.com/opforge/opforge/internal/authz"
)

// callResponse is the success envelope for a delegate invocation.
type callResponse struct {
	Result any `json:"result"`
}

// errorResponse is the error envelope. Denied carries enough structure for
// the client to reconstruct the exact typed failure a local denial produces:
// callers cannot distinguish "denied locally" from "denied remotely".
type errorResponse struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    int           `json:"code"`
	Message string        `json:"message"`
	Denied  *deniedDetail `json:"denied,omitempty"`
}

type deniedDetail struct {
	TypeName  string `json:"type_name"`
	Operation string `json:"operation"`
	Reason    string `json:"reason,omitempty"`
}

func deniedFromError(err *authz.DeniedError) *deniedDetail {
	return &deniedDetail{
		TypeName:  err.TypeName,
		Operation: err.Operation,
		Reason:    err.Reason,
	}
}

func (d *deniedDetail) toError() *authz.DeniedError {
	return &authz.DeniedError{
		TypeName:  d.TypeName,
		Operation: d.Operation,
		Reason:    d.Reason,
	}
}
