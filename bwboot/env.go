package bwboot

import (
	"github.com/caarlos0/env/v11"
)

// RegionEnvVar names the deployment region. The Lambda runtime sets it automatically.
const RegionEnvVar = "AWS_REGION"

// Environment holds the typed environment variables the composition root reads directly.
// Everything else in the environment reaches the application through Config.
type Environment struct {
	Region       string `env:"AWS_REGION"`
	ServiceName  string `env:"SERVICE_NAME" envDefault:"bwchat"`
	OtelExporter string `env:"OTEL_EXPORTER" envDefault:"xrayudp"`
	OtelDisabled bool   `env:"OTEL_SDK_DISABLED"`
	// FunctionName is set by the Lambda runtime; empty when running elsewhere.
	FunctionName string `env:"AWS_LAMBDA_FUNCTION_NAME"`
}

// ParseEnv parses the process environment into an Environment.
func ParseEnv() (Environment, error) {
	var e Environment
	if err := env.Parse(&e); err != nil {
		return e, configErrorWrap("environment", err, "failed to parse environment")
	}
	return e, nil
}
