// Package encoder turns AG-UI events into wire frames and back.
//
// The framing is negotiated from the client's Accept header: a header mentioning
// text/event-stream gets Server-Sent Events frames written by the AG-UI SDK
// (an id line, then data: <json>, then a blank line), anything else gets
// newline-delimited JSON. The header value itself is echoed back as the response
// content type.
package encoder
