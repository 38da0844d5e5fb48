// Package jwt issues and verifies the signed access and refresh tokens used by
// notesauth. A Manager is bound to one algorithm and key set; tokens signed any
// other way, including alg=none, are rejected.
package jwt
