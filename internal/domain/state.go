package domain

type AlertKind string

const (
	AlertTransport         AlertKind = "transport"
	AlertMalformedResponse AlertKind = "malformed_response"
)

// Alert is a user-visible message. Diagnostic detail never goes here.
type Alert struct {
	Kind    AlertKind `json:"kind"`
	Message string    `json:"message"`
}

func TransportAlert() *Alert {
	return &Alert{Kind: AlertTransport, Message: "Error fetching from AI Backend."}
}

func MalformedResponseAlert() *Alert {
	return &Alert{Kind: AlertMalformedResponse, Message: "AI returned a malformed response. Please try again."}
}

// FilterOptions are the known dropdown values loaded from the service.
type FilterOptions struct {
	Locations []string `json:"locations"`
	Cuisines  []string `json:"cuisines"`
}

// State is everything one page session shows.
type State struct {
	Prompt        string               `json:"prompt"`
	Selections    Selections           `json:"selections"`
	Options       FilterOptions        `json:"options"`
	OptionsLoaded bool                 `json:"options_loaded"`
	Result        RecommendationResult `json:"result"`
	Loading       bool                 `json:"loading"`
	Alert         *Alert               `json:"alert,omitempty"`
}

func NewState() State {
	return State{
		Selections: DefaultSelections(),
		Options:    FilterOptions{Locations: []string{}, Cuisines: []string{}},
		Result:     EmptyResult(),
	}
}

// Clone returns a copy that shares no slices or pointers with s.
func (s State) Clone() State {
	out := s
	out.Options = FilterOptions{
		Locations: cloneStrings(s.Options.Locations),
		Cuisines:  cloneStrings(s.Options.Cuisines),
	}
	out.Result = s.Result.Clone()
	if s.Alert != nil {
		alert := *s.Alert
		out.Alert = &alert
	}
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
