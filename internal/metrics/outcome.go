package metrics

// Outcome is the recorded result of a single attempt.
//
// A transport failure carries an ErrorKind and no StatusCode. A non-200
// response carries StatusCode and ResponseBody and no ErrorKind.
type Outcome struct {
	LatencyMs    float64   `json:"latency_ms" yaml:"latency_ms"`
	StatusCode   int       `json:"status_code,omitempty" yaml:"status_code,omitempty"`
	Success      bool      `json:"success" yaml:"success"`
	ErrorKind    ErrorKind `json:"error_kind,omitempty" yaml:"error_kind,omitempty"`
	ErrorMessage string    `json:"error_message,omitempty" yaml:"error_message,omitempty"`
	ResponseBody string    `json:"response_body,omitempty" yaml:"response_body,omitempty"`
}

// HasResponse reports whether the attempt received an HTTP response.
func (o Outcome) HasResponse() bool {
	return o.StatusCode > 0
}
