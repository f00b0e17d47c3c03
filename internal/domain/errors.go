package domain

import "errors"

var (
	// ErrEmptyInput signals required text or tag input that is missing or blank.
	ErrEmptyInput = errors.New("empty input")
	// ErrUserNotFound signals an unknown username.
	ErrUserNotFound = errors.New("user not found")
	// ErrBookNotFound signals a missing catalog item.
	ErrBookNotFound = errors.New("book not found")
	// ErrInvalidRecord signals a record that failed construction-time validation.
	ErrInvalidRecord = errors.New("invalid record")
	// ErrInsufficientPoints signals a redemption attempt exceeding the user's balance.
	ErrInsufficientPoints = errors.New("insufficient points")
	// ErrShopItemNotFound signals an unknown shop item.
	ErrShopItemNotFound = errors.New("shop item not found")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrExtractionFailed signals a topic extraction strategy failure.
	ErrExtractionFailed = errors.New("topic extraction failed")
)
