// Package middleware contains HTTP middleware for the Fiber application.
//
//   - auth: rejects requests without the configured X-API-Key header.
//   - rayid: reuses or generates a per-request X-Ray-ID, stores it in the
//     request locals for logger.WithRayID and echoes it in the response.
//
// RayID is registered first so every later log line carries the id.
package middleware
