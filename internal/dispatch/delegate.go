package dispatch

import "github.com/google/uuid"

// delegateNamespace is the fixed UUID namespace delegate identities hash
// into. Changing it invalidates every registered identity.
var delegateNamespace = uuid.MustParse("8f2f6f2e-9f1d-4a3e-8a52-6a0e5a1c9b77")

// DelegateID derives the deterministic identity for an operation delegate.
// The identity is a pure function of the type and assigned operation name, so
// independently built clients and servers agree on it.
func DelegateID(typeName, operationName string) string {
	return uuid.NewSHA1(delegateNamespace, []byte(typeName+"/"+operationName)).String()
}
