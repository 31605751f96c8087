// Package server hosts the Fiber HTTP service and request middleware chain.
// It wires the /static/ entry point into the asset handler, serves the
// bundled index page, and owns the shared upstream http.Client used for
// origin fetches. Keep exports narrow and accept explicit dependencies so
// tests can inject fake handlers.
package server
