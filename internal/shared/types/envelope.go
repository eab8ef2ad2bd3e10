package types

// Envelope is the {success, data} wrapper the frame returns for every request.
// When Success is false, Data is an error description and never a payload.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
}

// Succeeded creates a successful envelope
func Succeeded(data interface{}) Envelope {
	return Envelope{Success: true, Data: data}
}

// Failed creates a failed envelope carrying an error description
func Failed(description string) Envelope {
	return Envelope{Success: false, Data: description}
}
