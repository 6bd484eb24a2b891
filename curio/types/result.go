package types

// Result is the uniform {success, data|error} envelope of every gateway call and HTTP reply.
type Result struct {
	Success    bool   `json:"success"`
	Data       any    `json:"data,omitempty"`
	Error      string `json:"error,omitempty"`
	Provider   string `json:"provider,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

func OK(data any) Result {
	return Result{Success: true, Data: data}
}

func Fail(err error) Result {
	return Result{Success: false, Error: err.Error()}
}
