// Package httputil provides the JSON response and request-decoding
// helpers shared by the relay's API handlers.
//
// Handlers use these instead of raw http.ResponseWriter calls so every
// endpoint emits the same envelope, including for provider errors
// surfaced from SparkPost.
package httputil
