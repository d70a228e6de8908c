package lastfm

import (
	"encoding/json"
	"fmt"

	apperrors "github.com/matzehuels/artistgraph/pkg/errors"
	"github.com/matzehuels/artistgraph/pkg/httputil"
	"github.com/matzehuels/artistgraph/pkg/integrations"
)

// apiStatus is the error envelope Last.fm returns instead of a payload.
type apiStatus struct {
	Error   int    `json:"error"`
	Message string `json:"message"`
}

func (s *apiStatus) status() *apiStatus { return s }

type errorReporter interface {
	status() *apiStatus
}

func (s *apiStatus) err(httpStatus int) error {
	api := &apperrors.APIError{Status: httpStatus, Number: s.Error, Message: s.Message}
	switch s.Error {
	case errInvalidParameters:
		return fmt.Errorf("%w: %s", integrations.ErrNotFound, s.Message)
	case errInvalidAPIKey, errSuspendedAPIKey:
		return apperrors.Wrap(apperrors.ErrCodeUnauthorized, api, "last.fm rejected the API key")
	case errRateLimited:
		return httputil.Retryable(&apperrors.RateLimitedError{Message: s.Message})
	case errOperationFailed, errServiceOffline, errTemporary:
		return httputil.Retryable(apperrors.Wrap(apperrors.ErrCodeNetwork,
			fmt.Errorf("%w: %v", integrations.ErrNetwork, api), "last.fm unavailable"))
	default:
		return apperrors.Wrap(apperrors.ErrCodeAPI, api, "last.fm request failed")
	}
}

// decodeError maps a non-2xx response carrying a Last.fm error body.
// Bodies without an error number fall back to the status mapping.
func decodeError(status int, body []byte) error {
	var s apiStatus
	if json.Unmarshal(body, &s) != nil || s.Error == 0 {
		return nil
	}
	return s.err(status)
}
