// Package fetch defines core types shared across subsystems: normalized
// requests, fetch jobs, engine metadata, and the error taxonomy returned to
// the API boundary.
package fetch
