// Package domain contains the core types of the partner dashboard: the
// per-server configuration aggregate with its four independently updatable
// sections, the Discord entities the dashboard displays, and the interfaces
// the HTTP layer depends on.
package domain
