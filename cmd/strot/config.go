package main

import (
	"context"
	"fmt"
	"os"

	"strot/pkg/types"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/k0kubun/pp/v3"
	"github.com/kelseyhightower/envconfig"
	"github.com/urfave/cli/v2"
)

// loadConfig reads PREFIX_NAME variables, falling back to the bare NAME.
func loadConfig(prefix string) (*types.Config, error) {
	c := new(types.Config)
	if err := envconfig.Process(prefix, c); err != nil {
		return nil, fmt.Errorf("process environment config: %w", err)
	}

	if c.DatabaseURL == "" {
		return nil, fmt.Errorf("set DATABASE_URL")
	}

	if c.CookieHashKey == "" {
		return nil, fmt.Errorf("set COOKIE_HASH_KEY")
	}

	if c.ServerPort == 0 {
		c.ServerPort = 8080
	}

	if c.ReadTimeoutSec == 0 {
		c.ReadTimeoutSec = 10
	}

	if c.WriteTimeoutSec == 0 {
		c.WriteTimeoutSec = 15
	}

	return c, nil
}

func loadAWSConfig(ctx context.Context) (aws.Config, error) {
	config, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load aws config: %w", err)
	}

	return config, nil
}

const redacted = "[redacted]"

// redactConfig returns a copy safe to print.
func redactConfig(c *types.Config) types.Config {
	out := *c
	for _, secret := range []*string{
		&out.DatabaseURL,
		&out.StorageSecretKey,
		&out.StripeSecretKey,
		&out.CookieHashKey,
		&out.CookieBlockKey,
		&out.SeedAdminPassword,
	} {
		if *secret != "" {
			*secret = redacted
		}
	}
	return out
}

var configCommand = &cli.Command{
	Name:  "config",
	Usage: "Print the loaded configuration with secrets redacted",
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig(c.String("env-prefix"))
		if err != nil {
			return err
		}

		printer := pp.New()
		printer.SetOutput(os.Stdout)
		printer.SetColoringEnabled(false)
		printer.Println(redactConfig(cfg))

		return nil
	},
}
