package response

import (
	"encoding/json"
	"net/http"
	"time"
)

type Response struct {
	Data any `json:"data"`
}

type ResponseError struct {
	Error ErrorBody `json:"error"`
}

type ErrorBody struct {
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	Path      string    `json:"path"`
	Timestamp time.Time `json:"timestamp"`
}

func SuccessJSON(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, Response{Data: data})
}

func ErrorJSON(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	writeJSON(w, status, ResponseError{
		Error: ErrorBody{
			Code:      code,
			Message:   message,
			Path:      r.URL.Path,
			Timestamp: time.Now().UTC(),
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
