package dto

// Response is the envelope every endpoint returns.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func OK(data interface{}) Response {
	return Response{Success: true, Data: data}
}

func OKMessage(data interface{}, message string) Response {
	return Response{Success: true, Data: data, Message: message}
}

func Fail(message string) Response {
	return Response{Success: false, Error: message}
}
