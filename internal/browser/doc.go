/*
Package browser is the remote session client for the fetch service.

# Overview

Each fetch request gets exactly one browser session: the client connects
to the automation backend over the devtools protocol, creates a page in a
fresh incognito context, applies the fixed capability profile, and hands
the page back as a Session. The Session exposes the three operations the
fetch flow needs (Navigate, WaitReady, ReadDocument) plus Close, which
releases the session and never raises.

# Session lifecycle

	open -> navigate -> wait for body -> read HTML -> close

Sessions are never pooled or reused across requests. Close is safe to
defer on every exit path; it swallows teardown failures so they cannot
mask the handler's outcome.

# Backend modes

By default the client attaches to the remote endpoint configured via
BROWSER_ENDPOINT. In local-launch mode it instead launches a fresh local
browser per session with the profile's process flags (headless toggle,
sandbox, window size), mirroring what a standalone automation node does
per session.

# Errors

All failures surface as *Error with a Code classifying them for the HTTP
boundary: connection (backend unreachable), navigation_timeout and
readiness_timeout (bounded waits expired), protocol (devtools failure
mid-session), internal (anything else).
*/
package browser
