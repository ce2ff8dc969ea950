package config

import (
	"flag"
	"fmt"
	"os"

	"github.com/dmitrijs2005/taskkeeper/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string     HTTP bind address (e.g. ":3000")
//	-g string     gRPC health bind address (e.g. ":50051")
//	-d string     PostgreSQL DSN
//	-s string     token signing secret
//	-k int        bcrypt cost
//	-m int        max avatar size, bytes
//	-t duration   shutdown timeout (e.g. "10s")
//	-l string     log level
//	-f string     sender address of account emails
//	-u string     S3 root user
//	-p string     S3 root password
//	-b string     S3 bucket
//	-r string     S3 region
//	-e string     S3 base endpoint
//
// Only these flags are read from os.Args (see flagx.FilterArgs), so the
// -c/-config flag handled by parseJson does not collide.
func parseFlags(config *Config) error {
	args := flagx.FilterArgs(os.Args[1:], []string{
		"-a", "-g", "-d", "-s", "-k", "-m", "-t", "-l", "-f", "-u", "-p", "-b", "-r", "-e",
	})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "HTTP address and port")
	fs.StringVar(&config.EndpointAddrGRPC, "g", config.EndpointAddrGRPC, "gRPC health address and port")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "token signing secret")
	fs.IntVar(&config.BcryptCost, "k", config.BcryptCost, "bcrypt cost")
	fs.Int64Var(&config.MaxAvatarSize, "m", config.MaxAvatarSize, "max avatar size in bytes")
	fs.DurationVar(&config.ShutdownTimeout, "t", config.ShutdownTimeout, "shutdown timeout")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.StringVar(&config.MailFrom, "f", config.MailFrom, "mail sender address")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "r", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}
	return nil
}
