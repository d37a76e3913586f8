package client

import "github.com/rdashevsky/kafwire/logger"

// Option is a function that configures a Conn.
// Options are applied in the order they are passed to Connect.
type Option func(*Conn)

// Logger sets the logger used across the connection, its channels, and
// the classifier. The default discards everything.
//
// Example:
//
//	client.Connect(ctx, cfg, client.Logger(logger.New("debug")))
func Logger(l logger.Interface) Option {
	return func(c *Conn) {
		c.log = l
	}
}
