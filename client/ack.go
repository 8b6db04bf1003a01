package client

import "fmt"

// Result codes carried by [Acknowledgement] responses. Endpoint-specific codes
// are defined by the API; the engine itself only fabricates the two below.
const (
	// ResultCodeAlreadyAbsent marks a synthesized success acknowledgement: the
	// call targeted a resource that no longer exists, and the selected
	// strategy treats that as already done.
	ResultCodeAlreadyAbsent = 0
)

// Acknowledgement is the generic result-code/result-message response shape
// shared by many mutation endpoints. It is the only response type the engine
// will fabricate placeholder values for; see [NotFoundSuccess] and
// [ClientErrorParseOrDefault].
type Acknowledgement struct {
	ResultCode    int    `json:"resultCode"`
	ResultMessage string `json:"resultMessage"`
}

// synthesized success: the missing resource is treated as already handled.
func ackAlreadyAbsent() Acknowledgement {
	return Acknowledgement{
		ResultCode:    ResultCodeAlreadyAbsent,
		ResultMessage: "resource already absent; treated as success",
	}
}

// synthesized error: the status code is embedded as the result code so callers
// inspecting only the acknowledgement can still see what happened.
func ackFromStatus(statusCode int) Acknowledgement {
	return Acknowledgement{
		ResultCode:    statusCode,
		ResultMessage: fmt.Sprintf("empty or malformed error body (HTTP %d)", statusCode),
	}
}
