package constants

const (
	// AppName is the keyring service name and log prefix.
	AppName = "chunkwise"

	// DefaultKeyringUser is the keyring account under which the database
	// connection string is stored.
	DefaultKeyringUser = "db-connection"

	// EnvOwner names the environment variable that overrides the owner id
	// resolved from the local install.
	EnvOwner = "CHUNKWISE_USER"

	// EnvDBConnection names the environment variable carrying a Postgres
	// connection string.
	EnvDBConnection = "CHUNKWISE_DB_CONNECTION"
)
