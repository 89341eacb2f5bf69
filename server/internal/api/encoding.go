package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"
	goahttp "goa.design/goa/v3/http"

	"github.com/trovedash/console/server/internal/launch"
	"github.com/trovedash/console/server/internal/notice"
)

func writeResponse(w http.ResponseWriter, r *http.Request, status int, body any) {
	enc := goahttp.ResponseEncoder(r.Context(), w)
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := enc.Encode(body); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error, notices []notice.Notice) {
	status, body := apiErr(err)
	body.Notices = notices
	if status >= http.StatusInternalServerError {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("request failed")
	}
	writeResponse(w, r, status, body)
}

func decodeBody(r *http.Request, v any) error {
	if err := goahttp.RequestDecoder(r).Decode(v); err != nil {
		return fmt.Errorf("%w: %s", errInvalidBody, err)
	}
	return nil
}

// decodeFields reads a launch form submission. Values may be sent as JSON
// strings, numbers or booleans.
func decodeFields(r *http.Request) (launch.Fields, error) {
	var raw map[string]any
	if err := decodeBody(r, &raw); err != nil {
		return nil, err
	}
	fields := make(launch.Fields, len(raw))
	for key, value := range raw {
		switch v := value.(type) {
		case nil:
		case string:
			fields[key] = v
		case float64:
			fields[key] = strconv.FormatFloat(v, 'f', -1, 64)
		case bool:
			fields[key] = strconv.FormatBool(v)
		default:
			return nil, fmt.Errorf("%w: field %q must be a scalar", errInvalidBody, key)
		}
	}
	return fields, nil
}
