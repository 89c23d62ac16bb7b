package errors_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/jwebster45206/npc-world/internal/errors"
)

type ErrorsTestSuite struct {
	suite.Suite
}

func TestErrorsSuite(t *testing.T) {
	suite.Run(t, new(ErrorsTestSuite))
}

func (s *ErrorsTestSuite) TestNewError() {
	testCases := []struct {
		name     string
		code     errors.Code
		message  string
		expected string
	}{
		{
			name:     "not found error",
			code:     errors.CodeNotFound,
			message:  "npc not found",
			expected: "NOT_FOUND: npc not found",
		},
		{
			name:     "invalid argument error",
			code:     errors.CodeInvalidArgument,
			message:  "position not walkable",
			expected: "INVALID_ARGUMENT: position not walkable",
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			err := errors.New(tc.code, tc.message)
			s.Equal(tc.expected, err.Error())
			s.Equal(tc.code, err.Code)
			s.Equal(tc.message, err.Message)
		})
	}
}

func (s *ErrorsTestSuite) TestWrapPreservesCode() {
	base := errors.NotFoundf("npc not found: %s", "green_npc").WithMeta("npc_id", "green_npc")
	wrapped := errors.Wrap(base, "failed to move npc")

	s.Equal(errors.CodeNotFound, wrapped.Code)
	s.Equal("failed to move npc", wrapped.Message)
	s.Equal("green_npc", wrapped.Meta["npc_id"])
	s.True(errors.IsNotFound(wrapped))
	s.True(errors.Is(wrapped, errors.NotFound("")))
}

func (s *ErrorsTestSuite) TestWrapPlainError() {
	baseErr := fmt.Errorf("connection refused")
	wrapped := errors.Wrap(baseErr, "failed to publish")

	s.Equal(errors.CodeInternal, wrapped.Code)
	s.Equal(baseErr, wrapped.Unwrap())
	s.Nil(errors.Wrap(nil, "nothing"))
}

func (s *ErrorsTestSuite) TestGetCodeAndMessage() {
	s.Equal(errors.CodeOK, errors.GetCode(nil))
	s.Equal(errors.CodeInternal, errors.GetCode(fmt.Errorf("plain")))
	s.Equal("plain", errors.GetMessage(fmt.Errorf("plain")))
	s.Equal("bad limit", errors.GetMessage(errors.InvalidArgument("bad limit")))
	s.Equal("", errors.GetMessage(nil))
}

func (s *ErrorsTestSuite) TestHTTPStatus() {
	s.Equal(http.StatusOK, errors.CodeOK.HTTPStatus())
	s.Equal(http.StatusBadRequest, errors.CodeInvalidArgument.HTTPStatus())
	s.Equal(http.StatusNotFound, errors.CodeNotFound.HTTPStatus())
	s.Equal(http.StatusPreconditionFailed, errors.CodeFailedPrecondition.HTTPStatus())
	s.Equal(http.StatusServiceUnavailable, errors.CodeUnavailable.HTTPStatus())
	s.Equal(http.StatusInternalServerError, errors.CodeInternal.HTTPStatus())
	s.Equal(http.StatusInternalServerError, errors.Code("BOGUS").HTTPStatus())
}
