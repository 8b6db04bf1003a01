package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"reflect"
)

// NotFoundHandling selects what a 404 response means for a call. The zero
// value is the strict default: the call fails with an [*APIError].
type NotFoundHandling int

const (
	// NotFoundError fails the call with the full 404 diagnostic context.
	NotFoundError NotFoundHandling = iota

	// NotFoundNil resolves the call with no value and no error.
	NotFoundNil

	// NotFoundParse tries to parse the error body as the response type,
	// falling back to a synthesized success acknowledgement when the body is
	// empty or malformed.
	NotFoundParse

	// NotFoundSuccess always resolves to a synthesized success
	// acknowledgement, without looking at the body. Intended for naturally
	// idempotent endpoints (eg delete-by-id), where "already gone" is success.
	NotFoundSuccess
)

func (h NotFoundHandling) String() string {
	switch h {
	case NotFoundError:
		return "error"
	case NotFoundNil:
		return "nil"
	case NotFoundParse:
		return "parse"
	case NotFoundSuccess:
		return "success"
	}
	return fmt.Sprintf("NotFoundHandling(%d)", int(h))
}

// ParseNotFoundHandling parses the string form used by CLI flags and config.
func ParseNotFoundHandling(raw string) (NotFoundHandling, error) {
	switch raw {
	case "", "error":
		return NotFoundError, nil
	case "nil":
		return NotFoundNil, nil
	case "parse":
		return NotFoundParse, nil
	case "success":
		return NotFoundSuccess, nil
	}
	return NotFoundError, fmt.Errorf("unknown not-found handling: %q", raw)
}

// ClientErrorHandling selects what a non-404 4xx response means for a call.
// The zero value is the strict default: the call fails with an [*APIError].
type ClientErrorHandling int

const (
	// ClientErrorError fails the call with the full diagnostic context.
	ClientErrorError ClientErrorHandling = iota

	// ClientErrorParse tries to parse the error body as the response type,
	// failing the call when the body is empty or malformed.
	ClientErrorParse

	// ClientErrorParseOrDefault tries to parse the error body as the response
	// type, falling back to a synthesized error acknowledgement embedding the
	// status code when the body is empty or malformed.
	ClientErrorParseOrDefault
)

func (h ClientErrorHandling) String() string {
	switch h {
	case ClientErrorError:
		return "error"
	case ClientErrorParse:
		return "parse"
	case ClientErrorParseOrDefault:
		return "default"
	}
	return fmt.Sprintf("ClientErrorHandling(%d)", int(h))
}

// ParseClientErrorHandling parses the string form used by CLI flags and config.
func ParseClientErrorHandling(raw string) (ClientErrorHandling, error) {
	switch raw {
	case "", "error":
		return ClientErrorError, nil
	case "parse":
		return ClientErrorParse, nil
	case "default":
		return ClientErrorParseOrDefault, nil
	}
	return ClientErrorError, fmt.Errorf("unknown client-error handling: %q", raw)
}

// resolveResponse classifies the exchange by status class and resolves it per
// the request's strategies. It reports whether a value was written to out.
// Lenient outcomes return (false, nil) or (true, nil); fatal ones return an
// [*APIError].
func resolveResponse(x *Exchange, req *APIRequest, out any) (bool, error) {
	code := x.StatusCode()
	switch {
	case code < 400:
		return resolveSuccess(x, out)
	case code == 404:
		return resolveNotFound(x, req.OnNotFound, out)
	case code < 500:
		return resolveClientError(x, req.OnClientError, out)
	default:
		// 5xx is never suppressed, regardless of strategy.
		return false, errorFromExchange(x, nil)
	}
}

func resolveSuccess(x *Exchange, out any) (bool, error) {
	body, err := x.Body()
	if err != nil {
		return false, errorFromExchange(x, fmt.Errorf("reading response body: %w", err))
	}
	if len(body) == 0 {
		// an empty 2xx body is "no value", not an error
		return false, nil
	}
	switch v := out.(type) {
	case nil:
		return false, nil
	case *string:
		*v = string(body)
		return true, nil
	case *bytes.Buffer:
		v.Write(body)
		return true, nil
	}
	if err := decodeInto(body, out); err != nil {
		return false, errorFromExchange(x, fmt.Errorf("decoding response body: %w", err))
	}
	return true, nil
}

func resolveNotFound(x *Exchange, handling NotFoundHandling, out any) (bool, error) {
	switch handling {
	case NotFoundNil:
		return false, nil
	case NotFoundParse:
		body, err := x.Body()
		if err == nil && len(body) > 0 {
			if decodeErr := decodeInto(body, out); decodeErr == nil {
				return true, nil
			}
		}
		slog.Debug("unparsable 404 body, synthesizing acknowledgement")
		return synthesizeSuccess(out), nil
	case NotFoundSuccess:
		return synthesizeSuccess(out), nil
	default:
		return false, errorFromExchange(x, nil)
	}
}

func resolveClientError(x *Exchange, handling ClientErrorHandling, out any) (bool, error) {
	if handling == ClientErrorError {
		return false, errorFromExchange(x, nil)
	}
	body, err := x.Body()
	if err == nil && len(body) > 0 {
		if decodeErr := decodeInto(body, out); decodeErr == nil {
			return true, nil
		}
	}
	if handling == ClientErrorParseOrDefault {
		slog.Debug("unparsable 4xx body, synthesizing acknowledgement", "status", x.StatusCode())
		return synthesizeError(out, x.StatusCode()), nil
	}
	return false, errorFromExchange(x, nil)
}

// synthesizeSuccess writes a fabricated success acknowledgement when out is an
// *Acknowledgement. No other response type has a structurally safe default, so
// anything else resolves to "no value".
func synthesizeSuccess(out any) bool {
	if ack, ok := out.(*Acknowledgement); ok {
		*ack = ackAlreadyAbsent()
		return true
	}
	return false
}

func synthesizeError(out any, statusCode int) bool {
	if ack, ok := out.(*Acknowledgement); ok {
		*ack = ackFromStatus(statusCode)
		return true
	}
	return false
}

// decodeInto unmarshals into a fresh value of out's type and assigns it only
// on success, so a failed parse can fall back to a synthesized default without
// leaving out half-written.
func decodeInto(body []byte, out any) error {
	rv := reflect.ValueOf(out)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("response target must be a non-nil pointer, got %T", out)
	}
	tmp := reflect.New(rv.Type().Elem())
	if err := json.Unmarshal(body, tmp.Interface()); err != nil {
		return err
	}
	rv.Elem().Set(tmp.Elem())
	return nil
}
