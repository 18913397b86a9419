package deploy

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Manifest is the subset of a render.yaml blueprint the service relies on.
type Manifest struct {
	Services []Service `yaml:"services"`
}

type Service struct {
	Type            string   `yaml:"type"`
	Name            string   `yaml:"name"`
	Env             string   `yaml:"env"`
	Runtime         string   `yaml:"runtime"`
	Plan            string   `yaml:"plan"`
	BuildCommand    string   `yaml:"buildCommand"`
	StartCommand    string   `yaml:"startCommand"`
	EnvVars         []EnvVar `yaml:"envVars"`
	HealthCheckPath string   `yaml:"healthCheckPath"`
	AutoDeploy      *bool    `yaml:"autoDeploy"`
}

// EnvVar is a literal value, sync: false for values set in the dashboard,
// or generateValue for secrets the platform creates.
type EnvVar struct {
	Key           string `yaml:"key"`
	Value         string `yaml:"value"`
	Sync          *bool  `yaml:"sync"`
	GenerateValue bool   `yaml:"generateValue"`
}

// Language returns env, falling back to the newer runtime field.
func (s Service) Language() string {
	if s.Env != "" {
		return s.Env
	}
	return s.Runtime
}

func ParseManifest(r io.Reader) (Manifest, error) {
	var m Manifest
	if err := yaml.NewDecoder(r).Decode(&m); err != nil {
		return Manifest{}, fmt.Errorf("parse manifest: %w", err)
	}
	return m, nil
}
