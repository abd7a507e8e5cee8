// Package http contains the HTTP handlers for the reseller license
// portal API. Handlers are thin: they bind and validate the request,
// read the caller's identity context from the middleware chain, delegate
// to a service, and render the result. Visibility decisions never happen
// here; a hidden record has already become "absent" by the time a
// handler sees it.
package http
