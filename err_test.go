package cmislib

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmislib/cmislib.go/pkg/connection"
)

func TestMapCommonErrors(t *testing.T) {
	cases := map[int]error{
		http.StatusBadRequest:          ErrInvalidArgument,
		http.StatusUnauthorized:        ErrPermissionDenied,
		http.StatusForbidden:           ErrPermissionDenied,
		http.StatusNotFound:            ErrObjectNotFound,
		http.StatusMethodNotAllowed:    ErrNotSupported,
		http.StatusConflict:            ErrUpdateConflict,
		http.StatusInternalServerError: ErrRuntime,
	}
	for status, kind := range cases {
		err := mapCommonErrors(&connection.HTTPError{StatusCode: status, URL: "http://cmis.example/x"})

		var cmisErr *CmisError
		require.ErrorAs(t, err, &cmisErr, "status %d", status)
		assert.Equal(t, status, cmisErr.Status)
		assert.Equal(t, "http://cmis.example/x", cmisErr.Message)
		assert.ErrorIs(t, err, kind)
	}
}

func TestMapCommonErrors_Passthrough(t *testing.T) {
	teapot := &connection.HTTPError{StatusCode: http.StatusTeapot}
	assert.Same(t, teapot, mapCommonErrors(teapot))

	plain := errors.New("dial tcp: refused")
	assert.Same(t, plain, mapCommonErrors(plain))
	assert.Nil(t, mapCommonErrors(nil))
}

func TestAsCmisError(t *testing.T) {
	err := asCmisError(&connection.HTTPError{StatusCode: http.StatusBadGateway, URL: "u"})
	var cmisErr *CmisError
	require.ErrorAs(t, err, &cmisErr)
	assert.Equal(t, http.StatusBadGateway, cmisErr.Status)
	assert.ErrorIs(t, err, ErrCmis)

	plain := errors.New("boom")
	assert.Same(t, plain, asCmisError(plain))
}

func TestCmisError_Error(t *testing.T) {
	err := &CmisError{Status: 404, Err: ErrObjectNotFound, Message: "http://cmis.example/x"}
	assert.Equal(t, "object not found (status 404): http://cmis.example/x", err.Error())

	local := newError(ErrNotSupported, "repository does not support %s", "ACL")
	assert.Equal(t, "not supported: repository does not support ACL", local.Error())
	assert.ErrorIs(t, local, ErrNotSupported)
	assert.NotErrorIs(t, local, ErrNotImplemented)
}
