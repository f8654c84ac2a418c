package middleware

import "net/http"

// ResponseRecorder wraps ResponseWriter, captures the status code and runs a
// hook right before the first header write.
type ResponseRecorder struct {
	http.ResponseWriter
	status      int
	wrote       bool
	beforeWrite func(http.ResponseWriter)
}

func NewResponseRecorder(w http.ResponseWriter) *ResponseRecorder {
	return &ResponseRecorder{ResponseWriter: w, status: http.StatusOK}
}

// SetBeforeWrite registers fn to run once before headers are sent.
func (rw *ResponseRecorder) SetBeforeWrite(fn func(http.ResponseWriter)) { rw.beforeWrite = fn }

func (rw *ResponseRecorder) writeHeaderOnce() {
	if rw.wrote {
		return
	}
	rw.wrote = true
	if rw.beforeWrite != nil {
		rw.beforeWrite(rw.ResponseWriter)
	}
}

func (rw *ResponseRecorder) WriteHeader(statusCode int) {
	rw.writeHeaderOnce()
	rw.status = statusCode
	rw.ResponseWriter.WriteHeader(statusCode)
}

func (rw *ResponseRecorder) Write(b []byte) (int, error) {
	rw.writeHeaderOnce()
	return rw.ResponseWriter.Write(b)
}

func (rw *ResponseRecorder) Status() int { return rw.status }

// Unwrap lets http.ResponseController reach the underlying writer.
func (rw *ResponseRecorder) Unwrap() http.ResponseWriter { return rw.ResponseWriter }
