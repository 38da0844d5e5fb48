// Package httpapi is the JSON HTTP surface of the notes backend: the /auth
// endpoints backed by notesauth.Engine, the bearer-guarded /notes endpoints,
// /health and /metrics.
//
// Every authentication failure is answered with the same 401 body so clients
// cannot tell an unknown email from a wrong password or a revoked token.
package httpapi
