package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestCodeAndStatusMapping(t *testing.T) {
	cause := fmt.Errorf("boom")
	testCases := []struct {
		name   string
		err    error
		code   ErrorCode
		status int
	}{
		{
			name:   "invalid image is a client error",
			err:    NewInvalidImageError("req-1", cause),
			code:   ErrorInvalidImage,
			status: http.StatusBadRequest,
		},
		{
			name:   "engine failure is a server error",
			err:    NewEngineFailedError("req-1", "retry", cause),
			code:   ErrorEngineFailed,
			status: http.StatusInternalServerError,
		},
		{
			name:   "preprocess failure is a server error",
			err:    NewPreprocessFailedError("req-1", "normalize", cause),
			code:   ErrorPreprocessFailed,
			status: http.StatusInternalServerError,
		},
		{
			name:   "plain error has no code",
			err:    cause,
			code:   "",
			status: http.StatusInternalServerError,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CodeOf(tc.err); got != tc.code {
				t.Errorf("CodeOf = %q, want %q", got, tc.code)
			}
			if got := HTTPStatus(tc.err); got != tc.status {
				t.Errorf("HTTPStatus = %d, want %d", got, tc.status)
			}
		})
	}
}

func TestErrorWrapsCause(t *testing.T) {
	cause := fmt.Errorf("language data missing")
	err := NewPreprocessFailedError("req-2", "normalize", cause)

	if !stderrors.Is(err, cause) {
		t.Error("cause is not reachable through the error chain")
	}
	if err.Stage != "normalize" {
		t.Errorf("Stage = %q, want normalize", err.Stage)
	}
}
