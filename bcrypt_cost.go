//go:build !race

package auth

const defaultPasswordHashCost = 10

func passwordHashCost() int {
	return defaultPasswordHashCost
}
