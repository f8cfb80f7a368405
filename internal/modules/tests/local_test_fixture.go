package tests

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/docker/go-connections/nat"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	postgresUser     = "slotbot"
	postgresPassword = "slotbot"
	postgresDB       = "slotbot"
)

// SkipInfrastructure skips tests that need docker when asked to, or in -short mode.
func SkipInfrastructure(t *testing.T) {
	t.Helper()

	if os.Getenv("SKIP_INFRASTRUCTURE") == "true" || testing.Short() {
		t.Skip("infrastructure tests disabled")
	}
}

// LocalTestFixture owns a single throwaway container.
type LocalTestFixture struct {
	container testcontainers.Container
	URL       string
}

func (f *LocalTestFixture) Stop(ctx context.Context) error {
	if f.container == nil {
		return nil
	}
	return f.container.Terminate(ctx)
}

func StartPostgres(ctx context.Context) (*LocalTestFixture, error) {
	port := nat.Port("5432/tcp")

	dsn := func(host string, port nat.Port) string {
		return fmt.Sprintf(
			"postgres://%s:%s@%s:%s/%s?sslmode=disable",
			postgresUser, postgresPassword, host, port.Port(), postgresDB,
		)
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:15-alpine",
			ExposedPorts: []string{string(port)},
			Env: map[string]string{
				"POSTGRES_USER":     postgresUser,
				"POSTGRES_PASSWORD": postgresPassword,
				"POSTGRES_DB":       postgresDB,
			},
			WaitingFor: wait.ForSQL(port, "postgres", dsn),
		},
		Started: true,
	})
	if err != nil {
		return nil, err
	}

	url, err := containerURL(ctx, container, port, dsn)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, err
	}

	return &LocalTestFixture{container: container, URL: url}, nil
}

func StartRedis(ctx context.Context) (*LocalTestFixture, error) {
	port := nat.Port("6379/tcp")

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{string(port)},
			WaitingFor:   wait.ForListeningPort(port),
		},
		Started: true,
	})
	if err != nil {
		return nil, err
	}

	url, err := containerURL(ctx, container, port, func(host string, port nat.Port) string {
		return fmt.Sprintf("redis://%s:%s/0", host, port.Port())
	})
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, err
	}

	return &LocalTestFixture{container: container, URL: url}, nil
}

func containerURL(
	ctx context.Context,
	container testcontainers.Container,
	port nat.Port,
	format func(string, nat.Port) string,
) (string, error) {
	host, err := container.Host(ctx)
	if err != nil {
		return "", err
	}

	mapped, err := container.MappedPort(ctx, port)
	if err != nil {
		return "", err
	}

	return format(host, mapped), nil
}
