// Package domain contains the core business entities of the assistant: the
// Task requested by a user, its priority and type, and the lifecycle state
// machine that moves it from pending to a terminal status. It is independent
// of any specific infrastructure or delivery mechanism.
package domain
