package errors

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/adminconsole/internal/api"
	"github.com/dropDatabas3/adminconsole/internal/auth"
	"github.com/dropDatabas3/adminconsole/internal/post"
)

func TestFromError_MapsDomainErrors(t *testing.T) {
	cases := []struct {
		err    error
		code   string
		status int
	}{
		{fmt.Errorf("auth: permission info: %w", api.ErrUnauthorized), "SESSION_EXPIRED", http.StatusUnauthorized},
		{auth.ErrLoginInProgress, "LOGIN_IN_PROGRESS", http.StatusConflict},
		{&post.ValidationError{Fields: map[string]string{"name": "required"}}, "MISSING_FIELDS", http.StatusBadRequest},
		{fmt.Errorf("auth: login: %w", &api.APIError{Status: 200, Code: 1002000000, Msg: "bad credentials"}), "BACKEND_REJECTED", http.StatusBadRequest},
		{&api.APIError{Status: 503}, "BACKEND_UNAVAILABLE", http.StatusBadGateway},
		{context.DeadlineExceeded, "GATEWAY_TIMEOUT", http.StatusGatewayTimeout},
		{stderrors.New("boom"), "INTERNAL_SERVER_ERROR", http.StatusInternalServerError},
		{ErrForbidden, "FORBIDDEN", http.StatusForbidden},
	}
	for _, tc := range cases {
		got := FromError(tc.err)
		require.Equal(t, tc.code, got.Code, tc.err.Error())
		require.Equal(t, tc.status, got.HTTPStatus)
	}
}

func TestWithDetail_DoesNotMutateBase(t *testing.T) {
	e := ErrBadRequest.WithDetail("x")
	require.Equal(t, "x", e.Detail)
	require.Empty(t, ErrBadRequest.Detail)
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, ErrDictNotFound.WithDetail("common_status"))

	require.Equal(t, http.StatusNotFound, rec.Code)
	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Equal(t, "DICT_NOT_FOUND", body["code"])
	require.Equal(t, "common_status", body["detail"])
}
