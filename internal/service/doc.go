// Package service provides the application services layered over the
// stores: deck management with dashboard stats, user registration and
// login, and the wiring that turns a settings change into a synchronous
// history replay. Session scheduling itself lives in the scheduler
// subpackage.
package service
