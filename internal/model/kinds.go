package model

// OperationKind classifies the role a member plays on its declaring type.
type OperationKind string

const (
	KindCreate  OperationKind = "create"
	KindFetch   OperationKind = "fetch"
	KindInsert  OperationKind = "insert"
	KindUpdate  OperationKind = "update"
	KindDelete  OperationKind = "delete"
	KindExecute OperationKind = "execute"
	KindEvent   OperationKind = "event"
)

// ValidKind returns true if k is a recognized operation kind.
func ValidKind(k string) bool {
	switch OperationKind(k) {
	case KindCreate, KindFetch, KindInsert, KindUpdate, KindDelete, KindExecute, KindEvent:
		return true
	}
	return false
}

// IsWrite returns true for the kinds that participate in Save synthesis.
func (k OperationKind) IsWrite() bool {
	return k == KindInsert || k == KindUpdate || k == KindDelete
}

// ReturnShape is the declared return shape of a member, before classification.
type ReturnShape string

const (
	ReturnVoid                ReturnShape = "void"
	ReturnBool                ReturnShape = "bool"
	ReturnTarget              ReturnShape = "target"
	ReturnNullableTarget      ReturnShape = "nullable_target"
	ReturnAsyncVoid           ReturnShape = "async_void"
	ReturnAsyncBool           ReturnShape = "async_bool"
	ReturnAsyncTarget         ReturnShape = "async_target"
	ReturnAsyncNullableTarget ReturnShape = "async_nullable_target"
	ReturnAsyncResult         ReturnShape = "async_result"
)

// ValidReturnShape returns true if s is a recognized return shape.
func ValidReturnShape(s string) bool {
	switch ReturnShape(s) {
	case ReturnVoid, ReturnBool, ReturnTarget, ReturnNullableTarget,
		ReturnAsyncVoid, ReturnAsyncBool, ReturnAsyncTarget,
		ReturnAsyncNullableTarget, ReturnAsyncResult:
		return true
	}
	return false
}

// IsAsync returns true for the asynchronous return shapes.
func (s ReturnShape) IsAsync() bool {
	switch s {
	case ReturnAsyncVoid, ReturnAsyncBool, ReturnAsyncTarget,
		ReturnAsyncNullableTarget, ReturnAsyncResult:
		return true
	}
	return false
}

// ReturnsTarget returns true if the shape yields the target entity.
func (s ReturnShape) ReturnsTarget() bool {
	switch s {
	case ReturnTarget, ReturnNullableTarget, ReturnAsyncTarget, ReturnAsyncNullableTarget:
		return true
	}
	return false
}

// IsNullable returns true if the shape can yield an absent result.
func (s ReturnShape) IsNullable() bool {
	return s == ReturnNullableTarget || s == ReturnAsyncNullableTarget
}

// AsAsync promotes a shape to its asynchronous form. Already-async shapes are
// returned unchanged.
func (s ReturnShape) AsAsync() ReturnShape {
	switch s {
	case ReturnVoid:
		return ReturnAsyncVoid
	case ReturnBool:
		return ReturnAsyncBool
	case ReturnTarget:
		return ReturnAsyncTarget
	case ReturnNullableTarget:
		return ReturnAsyncNullableTarget
	}
	return s
}

// ParameterRole distinguishes how a declared parameter is sourced and whether
// it appears in generated public signatures.
type ParameterRole string

const (
	// RoleBusiness is a caller-supplied value parameter.
	RoleBusiness ParameterRole = "business"
	// RoleService is resolved externally and never appears in a public signature.
	RoleService ParameterRole = "service"
	// RoleTarget is the entity instance being operated on. At most one per
	// operation; always emitted first in generated signatures.
	RoleTarget ParameterRole = "target"
	// RoleCancellation is a cancellation-signal parameter.
	RoleCancellation ParameterRole = "cancellation"
)

// ValidRole returns true if r is a recognized parameter role.
func ValidRole(r string) bool {
	switch ParameterRole(r) {
	case RoleBusiness, RoleService, RoleTarget, RoleCancellation:
		return true
	}
	return false
}
