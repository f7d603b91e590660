// Package httpapi exposes the concierge over a JSON HTTP API built on gin.
//
// Endpoints:
//
//	POST   /v1/sessions           start a session
//	GET    /v1/sessions/:id       session details and stats
//	DELETE /v1/sessions/:id       end a session
//	POST   /v1/sessions/:id/turns ask a question within a session
//	POST   /v1/intent             classify an utterance
//	POST   /v1/rank               rank corpus documents
//	GET    /healthz               liveness
//	GET    /metrics               Prometheus metrics
package httpapi
