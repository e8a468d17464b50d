package handler

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/smartdaycare/chat-service/internal/domain"
)

// writeError converts a domain error into an HTTP response. Conflicts never
// reach this point: the service resolves duplicate-creation races internally.
func writeError(w http.ResponseWriter, log *zap.Logger, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrInvalidConversationID),
		errors.Is(err, domain.ErrMissingSender),
		errors.Is(err, domain.ErrEmptyContent),
		errors.Is(err, domain.ErrMessageTooLarge),
		errors.Is(err, domain.ErrUnknownParticipant):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})

	case errors.Is(err, domain.ErrConversationNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})

	case errors.Is(err, domain.ErrTransientStore):
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "store temporarily unavailable, retry"})

	default:
		log.Error("internal error", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}
