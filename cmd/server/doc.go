// Package main is the entry point for the rendergate fetch service.
//
// The service accepts a target URL, drives one browser session on a
// remote automation backend (navigate, wait for the document body, read
// the serialized HTML), and returns the page:
//
//	Client → Rendergate → Remote browser backend (devtools protocol)
//
// Configuration:
//   - Environment variables (12-factor)
//   - CLI flags (override env vars)
//
// Usage:
//
//	./server -port 8000 -endpoint http://localhost:4444/wd/hub
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
