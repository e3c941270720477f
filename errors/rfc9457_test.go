// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package errors

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type codedError struct {
	message string
	code    string
	status  int
}

func (e *codedError) Error() string { return e.message }
func (e *codedError) Code() string  { return e.code }
func (e *codedError) HTTPStatus() int {
	if e.status == 0 {
		return http.StatusInternalServerError
	}
	return e.status
}

func TestRFC9457_Format(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		formatter  *RFC9457
		err        error
		wantStatus int
		wantType   string
		wantCode   string
	}{
		{
			name:       "plain error",
			formatter:  NewRFC9457("https://api.example.com/problems"),
			err:        errors.New("something went wrong"),
			wantStatus: http.StatusInternalServerError,
			wantType:   "about:blank",
		},
		{
			name:       "coded error with status",
			formatter:  NewRFC9457("https://api.example.com/problems"),
			err:        &codedError{message: "bad input", code: "invalid_input", status: http.StatusBadRequest},
			wantStatus: http.StatusBadRequest,
			wantType:   "https://api.example.com/problems/invalid_input",
			wantCode:   "invalid_input",
		},
		{
			name:       "not found",
			formatter:  NewRFC9457(""),
			err:        NotFound("/missing"),
			wantStatus: http.StatusNotFound,
			wantType:   "route_not_found",
			wantCode:   "route_not_found",
		},
		{
			name:       "wrapped status",
			formatter:  NewRFC9457(""),
			err:        WithStatus(errors.New("busy"), http.StatusServiceUnavailable),
			wantStatus: http.StatusServiceUnavailable,
			wantType:   "about:blank",
		},
		{
			name: "custom resolvers",
			formatter: &RFC9457{
				TypeResolver:   func(error) string { return "https://example.com/custom" },
				StatusResolver: func(error) int { return http.StatusTeapot },
			},
			err:        errors.New("test"),
			wantStatus: http.StatusTeapot,
			wantType:   "https://example.com/custom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, "/missing", nil)
			resp := tt.formatter.Format(req, tt.err)

			assert.Equal(t, tt.wantStatus, resp.Status)
			assert.Equal(t, "application/problem+json; charset=utf-8", resp.ContentType)

			p, ok := resp.Body.(ProblemDetail)
			require.True(t, ok)
			assert.Equal(t, tt.wantType, p.Type)
			assert.Equal(t, http.StatusText(tt.wantStatus), p.Title)
			assert.Equal(t, "/missing", p.Instance)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, p.Extensions["code"])
			} else {
				assert.NotContains(t, p.Extensions, "code")
			}
		})
	}
}

func TestRFC9457_ErrorID(t *testing.T) {
	t.Parallel()

	t.Run("generated uuid", func(t *testing.T) {
		t.Parallel()

		resp := NewRFC9457("").Format(httptest.NewRequest(http.MethodGet, "/", nil), errors.New("x"))
		id, ok := resp.Body.(ProblemDetail).Extensions["error_id"].(string)
		require.True(t, ok)
		_, err := uuid.Parse(id)
		assert.NoError(t, err)
	})

	t.Run("custom generator", func(t *testing.T) {
		t.Parallel()

		f := &RFC9457{ErrorIDGenerator: func() string { return "fixed" }}
		resp := f.Format(httptest.NewRequest(http.MethodGet, "/", nil), errors.New("x"))
		assert.Equal(t, "fixed", resp.Body.(ProblemDetail).Extensions["error_id"])
	})

	t.Run("disabled", func(t *testing.T) {
		t.Parallel()

		f := &RFC9457{DisableErrorID: true}
		resp := f.Format(httptest.NewRequest(http.MethodGet, "/", nil), errors.New("x"))
		assert.NotContains(t, resp.Body.(ProblemDetail).Extensions, "error_id")
	})
}

func TestProblemDetail_MarshalJSON(t *testing.T) {
	t.Parallel()

	p := ProblemDetail{
		Type:   "about:blank",
		Title:  "Not Found",
		Status: http.StatusNotFound,
		Extensions: map[string]any{
			"code":   "route_not_found",
			"status": 999, // reserved, must not override
		},
	}

	data, err := json.Marshal(p)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.InDelta(t, 404, got["status"], 0)
	assert.Equal(t, "route_not_found", got["code"])
	assert.NotContains(t, got, "detail")
	assert.NotContains(t, got, "instance")
}
