// Package storefs stores saved documents on the local filesystem.
package storefs
