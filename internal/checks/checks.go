// Package checks ships the built-in checkers. They are deliberately small
// pattern checks over the token stream.
package checks

import "tscan/internal/checker"

// All returns a fresh instance of every built-in checker in registration order.
func All() []checker.Checker {
	return []checker.Checker{
		&ZeroDiv{},
		&AssignInCondition{},
	}
}
