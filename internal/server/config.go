package server

type Config struct {
	// ListenAddr is the HTTP listen address for the API server.
	ListenAddr string
}
