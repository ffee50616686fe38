package types

type contextKey string

// ClientAppKey carries the initialized client app through the command
// context so subcommand packages can reach it.
const ClientAppKey contextKey = "clientApp"
