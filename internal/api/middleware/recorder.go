package middleware

import (
	"bytes"
	"net/http"
)

// statusRecorder запоминает статус ответа, при capture=true еще и тело
type statusRecorder struct {
	http.ResponseWriter
	status  int
	capture bool
	body    bytes.Buffer
}

func newStatusRecorder(w http.ResponseWriter, capture bool) *statusRecorder {
	return &statusRecorder{ResponseWriter: w, status: http.StatusOK, capture: capture}
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.capture {
		r.body.Write(b)
	}
	return r.ResponseWriter.Write(b)
}
