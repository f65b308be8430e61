package chain

import "net/http"

// Envelope is the uniform {status, data} shape produced for both outcomes
// of a chain run. Callers must distinguish success from failure by the
// error channel of Run, not by inspecting Status.
type Envelope struct {
	Status int  `json:"status"`
	Data   Data `json:"data"`
}

// Envelope renders the error record into the uniform error envelope:
// status defaults to 500, the message to DefaultMessage and the
// attributed step name to UnknownFunc.
func (e *Error) Envelope() *Envelope {
	status := e.Status
	if status <= 0 {
		status = http.StatusInternalServerError
	}
	message := e.Message
	if message == "" && e.Cause != nil {
		message = e.Cause.Error()
	}
	if message == "" {
		message = DefaultMessage
	}
	fn := e.Func
	if fn == "" {
		fn = UnknownFunc
	}
	return &Envelope{
		Status: status,
		Data:   Data{"message": message, "func": fn},
	}
}

// successEnvelope copies the final running context and strips the seed
// keys and the bookkeeping key
func successEnvelope(data Data) *Envelope {
	body := make(Data, len(data))
	for k, v := range data {
		body[k] = v
	}
	delete(body, EventKey)
	delete(body, ContextKey)
	delete(body, StepNameKey)
	return &Envelope{Status: http.StatusOK, Data: body}
}
