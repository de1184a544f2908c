package handler

// Response is the envelope every endpoint renders.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func ok(message string, data any) Response {
	return Response{Success: true, Message: message, Data: data}
}
