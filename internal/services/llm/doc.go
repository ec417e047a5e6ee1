// Package llm provides an OpenAI-compatible chat client used to describe
// images and summarize documents before they are named and filed.
//
// Any endpoint that speaks the chat completions API works: OpenAI itself, a
// local Ollama or llama.cpp server, or a hosted gateway. Text prompts go to
// the text model; image prompts go to the vision model with the image
// attached as a downscaled JPEG data URI.
//
// # Entry Points
//
// NewClient: construct client from Config.
// Client.Complete: send a single text prompt, receive the trimmed reply.
// Client.Describe: send a prompt plus an image file to the vision model.
// Client.HealthCheck: verify the endpoint and text model answer.
//
// # Retry Behaviour
//
// The client retries on HTTP 408/429/5xx errors, empty replies and network
// timeouts with exponential backoff (base 1s, max 10s, up to 5 attempts by
// default). Context cancellation aborts retries immediately.
package llm
