// Package httpapi exposes the agent over HTTP.
//
// POST /openai-agent accepts a RunAgentInput and streams the run's events back in
// the encoding selected by the Accept header, flushing after every event.
// GET /openai-agent/runs/{threadId}/{runId}/events follows a run through the event
// mirror from the moment it subscribes.
package httpapi
