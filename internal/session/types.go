package session

import "go-chi-calculator/internal/calculator"

// InputRequest is the JSON body for POST /sessions/{id}/input. Key carries a
// single key; Keys a sequence applied in order. Key names follow the
// keyboard contract: 0-9, + - * /, ., %, = or Enter, Backspace, Escape.
type InputRequest struct {
	Key  string   `json:"key,omitempty"`
	Keys []string `json:"keys,omitempty"`
}

// StateResponse describes a session after a request.
type StateResponse struct {
	ID       string `json:"id"`
	Display  string `json:"display"`
	Message  string `json:"message,omitempty"`
	Phase    string `json:"phase"`
	First    string `json:"first"`
	Second   string `json:"second"`
	Operator string `json:"operator"`
	Ignored  int    `json:"ignored,omitempty"`
}

func newStateResponse(id string, st calculator.State) StateResponse {
	return StateResponse{
		ID:       id,
		Display:  st.Display,
		Phase:    st.Phase.String(),
		First:    st.First,
		Second:   st.Second,
		Operator: st.Operator.String(),
	}
}
