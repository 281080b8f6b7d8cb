/*
Package monitoring provides performance monitoring and metrics collection.

# Overview

This package implements Prometheus-based metrics collection for the fetch
service, tracking HTTP requests, page fetch outcomes, and browser session
lifecycle.

# Usage

	// Create metrics collector
	metrics := monitoring.NewMetrics()

	// Add middleware to Gin router
	router.Use(monitoring.Middleware(metrics))

	// Record fetch outcomes
	metrics.RecordFetch("success", duration)

# Metrics Endpoint

Each collector owns its registry; expose it via:

	router.GET("/metrics", gin.WrapH(metrics.Handler()))
*/
package monitoring
