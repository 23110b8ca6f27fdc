// Package storage holds the logo storage backends. Both implement
// auth.LogoStorage.
package storage
