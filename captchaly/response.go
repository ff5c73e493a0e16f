package captchaly

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/valyala/fastjson"
)

// extractToken pulls the solved token out of a 200 body.
//
// The service answers {"token": ...}. A token that is itself an object comes back
// as its JSON text. Bodies that only parse once single quotes are swapped for
// double quotes (GeeTest answers this way) are passed through untouched. A JSON
// object without a token is an invalid response.
func extractToken(body []byte) (string, error) {
	v, err := fastjson.ParseBytes(body)
	if err != nil {
		if verr := fastjson.ValidateBytes(relax(body)); verr != nil {
			return "", fmt.Errorf("%w: %v", ErrInvalidResponse, err)
		}
		return strings.TrimSpace(string(body)), nil
	}

	if v.Type() != fastjson.TypeObject {
		return strings.TrimSpace(string(body)), nil
	}

	token := v.Get("token")
	if token == nil {
		return "", fmt.Errorf("%w: missing token", ErrInvalidResponse)
	}
	return valueText(token)
}

// extractBalance returns the balance field, numeric or string, as text
func extractBalance(body []byte) (string, error) {
	v, err := fastjson.ParseBytes(body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	balance := v.Get("balance")
	if balance == nil {
		return "", fmt.Errorf("%w: missing balance", ErrInvalidResponse)
	}

	return valueText(balance)
}

// validationMessage returns detail[0].msg from a 422 body
func validationMessage(body []byte) string {
	v, err := fastjson.ParseBytes(body)
	if err != nil {
		return rawMessage(body)
	}

	msg := v.Get("detail", "0", "msg")
	if msg == nil {
		return rawMessage(body)
	}

	text, err := valueText(msg)
	if err != nil {
		return rawMessage(body)
	}
	return text
}

func rawMessage(body []byte) string {
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		return MessageUnknown
	}
	return msg
}

func valueText(v *fastjson.Value) (string, error) {
	switch v.Type() {
	case fastjson.TypeString:
		return string(v.GetStringBytes()), nil
	case fastjson.TypeNull:
		return "", fmt.Errorf("%w: null value", ErrInvalidResponse)
	default:
		return v.String(), nil
	}
}

func relax(b []byte) []byte {
	return bytes.ReplaceAll(b, []byte("'"), []byte(`"`))
}

// parseRelaxedObject decodes JSON that may use single quotes for strings
func parseRelaxedObject(s string) (map[string]any, error) {
	var result map[string]any
	if err := json.Unmarshal(relax([]byte(s)), &result); err != nil {
		return nil, fmt.Errorf("failed to parse relaxed JSON: %w", err)
	}
	return result, nil
}
