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
	"net/http"
)

// defaultFormatter is used by Write when no formatter is given.
var defaultFormatter Formatter = NewRFC9457("")

// Write formats err with f and writes the complete response to w. Headers
// carried by the response replace any already set under the same name.
// A nil f selects an RFC9457 formatter without a base URL.
func Write(w http.ResponseWriter, req *http.Request, f Formatter, err error) error {
	if f == nil {
		f = defaultFormatter
	}
	resp := f.Format(req, err)

	h := w.Header()
	for k, vs := range resp.Headers {
		h.Del(k)
		for _, v := range vs {
			h.Add(k, v)
		}
	}
	h.Set("Content-Type", resp.ContentType)
	h.Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(resp.Status)

	if req != nil && req.Method == http.MethodHead {
		return nil
	}

	return json.NewEncoder(w).Encode(resp.Body)
}
