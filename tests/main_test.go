package tests

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/redis"

	"walletpass/db"
)

var (
	startedContainers []testcontainers.Container
	redisAddr         = os.Getenv("REDIS_ADDR")
)

// TestMain starts the containers missing from the environment. The database is reached
// through db.GetDb, which reads POSTGRES_URL.
func TestMain(m *testing.M) {
	code := 1
	defer func() {
		if r := recover(); r != nil {
			fmt.Printf("\033[1;31m> Setup failed: %v\033[0m\n", r)
		}
		terminateContainers()
		os.Exit(code)
	}()

	startMissingContainers()
	code = m.Run()
}

func startMissingContainers() {
	if os.Getenv("POSTGRES_URL") == "" {
		fmt.Printf("\033[1;33m%s\033[0m", "> Starting postgres container\n")
		postgresContainer, postgresURL, err := db.StartPostgresContainer(context.Background())
		if postgresContainer != nil {
			startedContainers = append(startedContainers, postgresContainer)
		}
		if err != nil {
			panic(err)
		}

		if err := os.Setenv("POSTGRES_URL", postgresURL); err != nil {
			panic(err)
		}
	}

	if redisAddr == "" {
		fmt.Printf("\033[1;33m%s\033[0m", "> Starting redis container\n")
		redisContainer, addr := startRedisContainer()
		startedContainers = append(startedContainers, redisContainer)
		redisAddr = addr
	}
}

func terminateContainers() {
	ctx := context.Background()
	for _, container := range startedContainers {
		if err := container.Terminate(ctx); err != nil {
			fmt.Printf("\033[1;31m> Could not terminate container: %v\033[0m\n", err)
		}
	}
}

func startRedisContainer() (testcontainers.Container, string) {
	ctx := context.Background()
	redisContainer, err := redis.RunContainer(ctx,
		testcontainers.WithImage("docker.io/redis:7"),
		redis.WithLogLevel(redis.LogLevelVerbose),
	)
	if err != nil {
		panic(err)
	}

	uri, err := redisContainer.ConnectionString(ctx)
	if err != nil {
		panic(err)
	}

	return redisContainer, strings.TrimPrefix(uri, "redis://")
}
