// Package ipc carries review commands between a running owner and forwarders
// over a unix socket, one JSON line per request and response.
package ipc

// Request names one review command and its positional arguments.
type Request struct {
	Command string   `json:"command"`
	Args    []string `json:"args,omitempty"`
}

// Response is the owner's reply. Message is a human-readable rendering of
// the resulting session view.
type Response struct {
	OK       bool     `json:"ok"`
	State    string   `json:"state,omitempty"`
	Message  string   `json:"message,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
	Error    string   `json:"error,omitempty"`
}
