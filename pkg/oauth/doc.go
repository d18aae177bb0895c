// Package oauth reconciles identities from an external provider with local
// accounts and runs the provider redirect flow.
package oauth
