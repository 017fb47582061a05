// Package httputil provides HTTP helpers for the chart host.
//
// # Overview
//
//   - [WriteJSON]: encode a response body with a status code
//   - [WriteError]: encode an error as {"error": {"code", "message"}}
//   - [StatusFor]: map coded errors to HTTP status codes
//   - [ContentFormat]: pick an input format from a Content-Type header
//
// Handlers return errors from the chart packages unchanged and let
// [WriteError] choose the status:
//
//	if err := c.SetData(series); err != nil {
//	    httputil.WriteError(w, err)
//	    return
//	}
//
// Errors without a code map to 500 and their message is hidden from the
// client.
package httputil
