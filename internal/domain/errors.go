package domain

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrInvalidConversationID = errors.New("invalid conversation id")
	ErrConversationNotFound  = errors.New("conversation not found")
	ErrMissingSender         = errors.New("missing sender id or role")
	ErrEmptyContent          = errors.New("empty message content")
	ErrMessageTooLarge       = errors.New("message too large")
	ErrUnknownParticipant    = errors.New("unknown participant")

	// ErrTransientStore marks storage I/O failures the caller may retry.
	ErrTransientStore = errors.New("transient store failure")
)
