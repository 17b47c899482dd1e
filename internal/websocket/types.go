// internal/websocket/types.go
package websocket

// RPCRequest is an inbound method call from a connected front end.
type RPCRequest struct {
	ID     string        `json:"id"`
	Method string        `json:"method"`
	Params []interface{} `json:"params"`
}

// RPCResponse answers one RPCRequest.
type RPCResponse struct {
	ID     string      `json:"id"`
	Result interface{} `json:"result,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// Event is a server-initiated push: project changes, stream chunks,
// task status updates.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Envelope is the single wire frame. Kind selects which member is set:
// "rpc_request", "rpc_response" or "event".
type Envelope struct {
	Kind     string       `json:"kind"`
	Request  *RPCRequest  `json:"request,omitempty"`
	Response *RPCResponse `json:"response,omitempty"`
	Event    *Event       `json:"event,omitempty"`
}
