// Package handler wraps a chain run into the response shape a serverless
// platform expects.
//
// The chain executor only produces envelopes; mapping them onto
// {statusCode, body} and owning the event bus for one invocation is this
// package's job.
package handler
