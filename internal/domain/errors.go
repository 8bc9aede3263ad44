package domain

import "errors"

type Kind int

const (
	KindUnauthenticated Kind = iota + 1
	KindForbidden
	KindValidation
	KindConflict
)

// Error is a domain failure reported to the caller as a structured payload.
// Anything that is not an *Error is treated as an internal failure.
type Error struct {
	Kind    Kind
	Code    string
	Message string
}

func (e *Error) Error() string { return e.Message }

// Is matches on kind and code so wrapped sentinels compare equal.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Code == t.Code
}

func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Code: "validation", Message: msg}
}

func Conflict(code, msg string) *Error {
	return &Error{Kind: KindConflict, Code: code, Message: msg}
}

var (
	ErrNotAuthenticated = &Error{Kind: KindUnauthenticated, Code: "not_authenticated", Message: "Log in required"}
	ErrWrongRole        = &Error{Kind: KindForbidden, Code: "wrong_role", Message: "Operation not allowed for this account type"}

	ErrNoItems         = &Error{Kind: KindValidation, Code: "no_items", Message: "ordered_items: is required"}
	ErrBasketNotFound  = Conflict("basket_not_found", "basket not found")
	ErrBasketEmpty     = Conflict("basket_empty", "basket is empty")
	ErrDuplicateItem   = Conflict("duplicate_item", "item already in basket, use update instead")
	ErrListingNotFound = Conflict("listing_not_found", "product listing not found")
	ErrShopNameTaken   = Conflict("shop_name_taken", "shop name belongs to another partner")
	ErrEmailTaken      = Conflict("email_taken", "email is already registered")
)

// KindOf returns the domain kind of err, or 0 for internal errors.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return 0
}

// ItemError reports a per-item failure inside a batch basket operation.
type ItemError struct {
	ProductInfo int64  `json:"product_info"`
	Error       string `json:"error"`
}
