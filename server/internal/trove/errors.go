package trove

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/gophercloud/gophercloud"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrServiceUnavailable = errors.New("service not available in the catalog")
)

// translateErr converts gophercloud response errors into errors that carry
// the backend's own message.
func translateErr(err error) error {
	switch e := err.(type) {
	case nil:
		return nil
	case gophercloud.ErrDefault401:
		return fmt.Errorf("%w: %s", ErrUnauthorized, responseReason(e.Body))
	case *gophercloud.ErrDefault401:
		return fmt.Errorf("%w: %s", ErrUnauthorized, responseReason(e.Body))
	case gophercloud.ErrDefault403:
		return fmt.Errorf("%w: %s", ErrUnauthorized, responseReason(e.Body))
	case *gophercloud.ErrDefault403:
		return fmt.Errorf("%w: %s", ErrUnauthorized, responseReason(e.Body))
	case gophercloud.ErrDefault404:
		return fmt.Errorf("%w: %s", ErrNotFound, responseReason(e.Body))
	case *gophercloud.ErrDefault404:
		return fmt.Errorf("%w: %s", ErrNotFound, responseReason(e.Body))
	case gophercloud.ErrDefault400:
		return errors.New(responseReason(e.Body))
	case *gophercloud.ErrDefault400:
		return errors.New(responseReason(e.Body))
	case gophercloud.ErrDefault500:
		return fmt.Errorf("code: 500, reason: %s", responseReason(e.Body))
	case *gophercloud.ErrDefault500:
		return fmt.Errorf("code: 500, reason: %s", responseReason(e.Body))
	case gophercloud.ErrUnexpectedResponseCode:
		return fmt.Errorf("code: %d, reason: %s", e.Actual, responseReason(e.Body))
	case *gophercloud.ErrUnexpectedResponseCode:
		return fmt.Errorf("code: %d, reason: %s", e.Actual, responseReason(e.Body))
	default:
		return err
	}
}

// responseReason extracts the message from a Trove fault body such as
// {"badRequest": {"message": "...", "code": 400}}. The raw body is returned
// when it cannot be parsed.
func responseReason(body []byte) string {
	var fault map[string]struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &fault); err == nil {
		for _, f := range fault {
			if f.Message != "" {
				return f.Message
			}
		}
	}
	return strings.TrimSpace(string(body))
}
