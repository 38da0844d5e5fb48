// Package provider implements the strategies the HTTP layer uses to turn a
// bearer credential into a notesauth.User.
//
// Token delegates to Engine.ResolveCurrentUser. Mock returns a fixed user for
// every input and must only be selected for development. The choice is made
// once at assembly through [New].
package provider
