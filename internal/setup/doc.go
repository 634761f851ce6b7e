// Package setup provisions the backend schema. Migrate applies the
// embedded goose migrations straight to Postgres; RunSimpleSetup creates
// the two core tables through the exec_sql RPC when only the HTTP API is
// reachable.
package setup
