package middleware

import "net/http"

// ResponseRecorder wraps ResponseWriter, captures the status code and runs a
// hook once before the first header or body write.
type ResponseRecorder struct {
	http.ResponseWriter
	status      int
	bytes       int
	wrote       bool
	beforeWrite func(http.ResponseWriter)
}

// NewResponseRecorder wraps w with a 200 default status.
func NewResponseRecorder(w http.ResponseWriter) *ResponseRecorder {
	return &ResponseRecorder{ResponseWriter: w, status: http.StatusOK}
}

// SetBeforeWrite registers fn to run right before headers are sent.
func (rw *ResponseRecorder) SetBeforeWrite(fn func(http.ResponseWriter)) {
	rw.beforeWrite = fn
}

func (rw *ResponseRecorder) prepare() {
	if rw.wrote {
		return
	}
	rw.wrote = true
	if rw.beforeWrite != nil {
		rw.beforeWrite(rw.ResponseWriter)
	}
}

// WriteHeader records the status code.
func (rw *ResponseRecorder) WriteHeader(statusCode int) {
	if rw.wrote {
		return
	}
	rw.prepare()
	rw.status = statusCode
	rw.ResponseWriter.WriteHeader(statusCode)
}

// Write sends the body, writing a 200 header first if needed.
func (rw *ResponseRecorder) Write(b []byte) (int, error) {
	rw.prepare()
	n, err := rw.ResponseWriter.Write(b)
	rw.bytes += n
	return n, err
}

// Status returns the written status code.
func (rw *ResponseRecorder) Status() int { return rw.status }

// Written reports whether headers have been sent.
func (rw *ResponseRecorder) Written() bool { return rw.wrote }

// BytesWritten returns the body size written so far.
func (rw *ResponseRecorder) BytesWritten() int { return rw.bytes }

// Unwrap exposes the underlying writer to http.ResponseController.
func (rw *ResponseRecorder) Unwrap() http.ResponseWriter { return rw.ResponseWriter }
