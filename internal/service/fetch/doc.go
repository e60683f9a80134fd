// Package fetch resolves the newest full installer and guarantees a matching
// bundle exists in the applications directory, downloading it when absent.
//
// Unlike the release service, the emitted size is converted to bytes.
package fetch
